package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	sectionWidth = 50
	promptPrefix = "> "
)

// TerminalUI is the production UI. It writes coloured output to out and
// reads answers from in.
type TerminalUI struct {
	out         io.Writer
	in          *bufio.Reader
	au          aurora.Aurora
	interactive bool
}

// NewTerminalUI writes to os.Stdout and reads from os.Stdin. Colours and
// the spinner are enabled when stdout is a real terminal.
func NewTerminalUI() *TerminalUI {
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	return NewTerminalUIWith(os.Stdout, os.Stdin, tty)
}

// NewTerminalUIWith builds a TerminalUI over arbitrary streams; tty
// switches colours and the spinner on.
func NewTerminalUIWith(out io.Writer, in io.Reader, tty bool) *TerminalUI {
	return &TerminalUI{
		out:         out,
		in:          bufio.NewReader(in),
		au:          aurora.NewAurora(tty),
		interactive: tty,
	}
}

func (u *TerminalUI) writeLine(line string) {
	fmt.Fprintln(u.out, line)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityCritical:
		return u.au.Bold(t.Text).String()
	default:
		return t.Text
	}
}

func (u *TerminalUI) Info(format string, args ...any) {
	u.writeLine(fmt.Sprintf(format, args...))
}

func (u *TerminalUI) Success(format string, args ...any) {
	u.writeLine(u.au.Green(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Warn(format string, args ...any) {
	u.writeLine(u.au.Yellow(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Error(format string, args ...any) {
	u.writeLine(u.au.Red(fmt.Sprintf(format, args...)).String())
}

func (u *TerminalUI) Critical(format string, args ...any) {
	u.writeLine(u.au.Bold(fmt.Sprintf(format, args...)).String())
}

// Section prints a separator line centred around the title, surrounded by
// blank lines:
//
//	============ Confirm registration ============
func (u *TerminalUI) Section(title string) {
	titled := " " + title + " "
	bars := sectionWidth - runewidth.StringWidth(titled)
	if bars < 6 {
		bars = 6
	}
	left := bars / 2
	right := bars - left
	fmt.Fprintf(u.out, "\n%s%s%s\n\n", strings.Repeat("=", left), titled, strings.Repeat("=", right))
}

// Confirm prints the question followed by a "> " prompt. It asks again
// until the answer is y, n or empty. EOF counts as the default.
func (u *TerminalUI) Confirm(prompt string, defaultYes bool) bool {
	options := "[Y/n]"
	if !defaultYes {
		options = "[y/N]"
	}
	u.Info("%s %s", prompt, options)
	for {
		fmt.Fprint(u.out, promptPrefix)
		text, err := u.in.ReadString('\n')
		input := strings.ToLower(strings.TrimSpace(text))
		switch {
		case input == "y" || input == "yes":
			return true
		case input == "n" || input == "no":
			return false
		case input == "" || err != nil:
			return defaultYes
		}
		u.Error("please enter y or n")
	}
}

// cellWidth is the visible width of s, ignoring ANSI sequences.
func cellWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

func padRight(s string, w int) string {
	if visible := cellWidth(s); visible < w {
		return s + strings.Repeat(" ", w-visible)
	}
	return s
}

// KeyValue pads the label column to the longest label so values line up.
func (u *TerminalUI) KeyValue(rows [][2]string) {
	maxLabel := 0
	for _, r := range rows {
		if w := cellWidth(r[0]); w > maxLabel {
			maxLabel = w
		}
	}
	for _, r := range rows {
		fmt.Fprintf(u.out, "%s  %s\n", padRight(r[0], maxLabel), r[1])
	}
}

// Table computes column widths over the headers and every row, so ANSI
// colour codes embedded in cells do not break alignment.
func (u *TerminalUI) Table(headers []string, rows [][]string) {
	ncols := len(headers)
	for _, r := range rows {
		if len(r) > ncols {
			ncols = len(r)
		}
	}
	if ncols == 0 {
		return
	}
	widths := make([]int, ncols)
	for i, h := range headers {
		widths[i] = cellWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := cellWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	border := func(s string) string { return borderStyle.Render(s) }
	rule := func(l, m, r string) string {
		parts := make([]string, ncols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return border(l + strings.Join(parts, m) + r)
	}
	renderRow := func(cells []string) string {
		parts := make([]string, ncols)
		for i := range parts {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			parts[i] = " " + padRight(val, widths[i]) + " "
		}
		return border("│") + strings.Join(parts, border("│")) + border("│")
	}

	u.writeLine(rule("┌", "┬", "┐"))
	if len(headers) > 0 {
		u.writeLine(renderRow(headers))
		u.writeLine(rule("├", "┼", "┤"))
	}
	for _, row := range rows {
		u.writeLine(renderRow(row))
	}
	u.writeLine(rule("└", "┴", "┘"))
}

// Spinner starts an animated spinner with msg and returns a stop function.
// Off a terminal only the message is printed, once.
func (u *TerminalUI) Spinner(msg string) func() {
	if !u.interactive {
		u.writeLine(msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
		// the spinner clears its line with \r but leaves no newline
		fmt.Fprintln(u.out)
	}
}

func (u *TerminalUI) Writer() io.Writer {
	return u.out
}
