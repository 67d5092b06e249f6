package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	ansiReset = "\033[0m"
	ansiBlue  = "\033[34m"
)

// Level tags and their colours.
var levelStyles = map[string]struct{ tag, color string }{
	"DEBUG": {"[DBG]", "\033[36m"},
	"INFO":  {"[INF]", "\033[32m"},
	"WARN":  {"[WRN]", "\033[33m"},
	"ERROR": {"[ERR]", "\033[31m"},
	"FATAL": {"[FTL]", "\033[35m"},
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(s, color string, noColor bool) string {
	if noColor {
		return s
	}
	return color + s + ansiReset
}

// serviceTag is the upper-cased first three letters of the service, or
// empty for short or default names.
func serviceTag(service string) string {
	if service == "default" || len(service) < 3 {
		return ""
	}
	return "[" + strings.ToUpper(service[:3]) + "]"
}

// newConsoleLogger prints "15:04:05 [SUB][INF] message key:value".
func newConsoleLogger(w io.Writer, noColor bool, service string) zerolog.Logger {
	prefix := ""
	if tag := serviceTag(service); tag != "" {
		prefix = paint(tag, ansiBlue, noColor)
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			raw := strings.ToUpper(fmt.Sprint(i))
			style, ok := levelStyles[raw]
			if !ok {
				return prefix + "[" + raw + "]"
			}
			return prefix + paint(style.tag, style.color, noColor)
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprint(i) + ":" },
	})
}
