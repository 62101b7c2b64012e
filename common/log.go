package common

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Log is the process wide logger. User facing output goes through the ui
// package; Log is for diagnostics and defaults to warnings only.
var Log = NewLogger()

func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&TextFormatter{})
	return log
}

// LoggerFor returns an entry tagged with the module name.
func LoggerFor(module string) *logrus.Entry {
	return Log.WithField("module", module)
}

// TextFormatter renders "time [level] module: message key=value ...".
type TextFormatter struct{}

func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, " [%s] ", entry.Level.String())
	module, ok := entry.Data["module"].(string)
	if !ok {
		module = "default"
	}
	b.WriteString(module)
	b.WriteString(": ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "module" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
