package ui

import (
	"encoding/json"
	"io"
)

// Severity classifies the visual weight of a piece of inline text.
type Severity uint8

const (
	SeverityInfo     Severity = iota // plain
	SeveritySuccess                  // green
	SeverityWarn                     // yellow
	SeverityError                    // red
	SeverityCritical                 // bold
)

// StyledText pairs a plain string with a Severity annotation. It marshals
// as the plain Text so JSON output never carries ANSI codes.
//
//	u.Info("%s -> %s", name, u.Style(ui.StyledText{Text: addr, Severity: ui.SeveritySuccess}))
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI is all the terminal interaction of the wns commands. Commands write
// through it so that tests can swap in a RecordingUI.
type UI interface {
	// Style returns t coloured according to its Severity, or the plain text
	// when colours are disabled.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error writes a failure in red. It does not exit.
	Error(format string, args ...any)
	// Critical is for data the user must review before signing, and for
	// the receipt of what was just submitted.
	Critical(format string, args ...any)

	// Section writes a separator centred around title.
	Section(title string)

	// KeyValue renders an aligned 2-column block.
	KeyValue(rows [][2]string)

	// Table renders a bordered table with a header row. When headers is
	// empty no header row is rendered.
	Table(headers []string, rows [][]string)

	// Spinner starts an animated spinner and returns the function that
	// stops it. It is a no-op off a terminal.
	Spinner(msg string) func()

	// Confirm asks a yes/no question. An empty answer picks the default.
	Confirm(prompt string, defaultYes bool) bool

	// Writer is where machine readable output (JSON) goes.
	Writer() io.Writer
}
