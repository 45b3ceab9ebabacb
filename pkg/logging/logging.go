// Package logging sets up the diagnostic logger for the command line tool.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Formatter renders one entry per line as "prog: message[: error]",
// followed by any extra fields as key=value pairs.
type Formatter struct {
	Prog  string
	Color bool
}

// Format implements logrus.Formatter.
func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	b := e.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	if f.Color {
		b.WriteString(colorBold)
		b.WriteString(levelColor(e.Level))
		b.WriteString(f.Prog)
		b.WriteString(":")
		b.WriteString(colorReset)
	} else {
		b.WriteString(f.Prog)
		b.WriteString(":")
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)

	if err, ok := e.Data[logrus.ErrorKey]; ok {
		fmt.Fprintf(b, ": %v", err)
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != logrus.ErrorKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelColor(l logrus.Level) string {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return colorRed
	case logrus.WarnLevel:
		return colorYellow
	}
	return colorCyan
}

// CanColor reports whether w is a terminal.
func CanColor(w io.Writer) bool {
	fd, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(fd.Fd()) || isatty.IsCygwinTerminal(fd.Fd())
}

// New returns a logger writing to out with the prog prefix.
func New(prog string, out io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&Formatter{Prog: prog, Color: CanColor(out)})
	return logger
}
