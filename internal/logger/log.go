package logger

import (
	"bytes"
	"fmt"
	"github.com/logrusorgru/aurora/v3"
	"strings"
)

type Printer interface {
	Output(calldepth int, s string) error
}

type Logger interface {
	Successf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Error(err error)
	SQL(query string, args ...interface{})
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// ParseLevel understands DEBUG, INFO, WARN and ERROR, anything else is INFO
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "ERROR", "WARN", "WARNING":
		return LevelError
	default:
		return LevelInfo
	}
}

type ColoredLogger struct {
	printer Printer
	level   Level
	sql     bool
}

type BWLogger struct {
	printer Printer
	level   Level
	sql     bool
}

var _ Logger = (*ColoredLogger)(nil)
var _ Logger = (*BWLogger)(nil)

func NewColorLogger(p Printer, sql bool, level Level) *ColoredLogger {
	return &ColoredLogger{
		printer: p,
		level:   level,
		sql:     sql,
	}
}

func NewBWLogger(p Printer, sql bool, level Level) *BWLogger {
	return &BWLogger{
		printer: p,
		level:   level,
		sql:     sql,
	}
}

func (cl *ColoredLogger) Debugf(format string, args ...interface{}) {
	if cl.level <= LevelDebug {
		msg := fmt.Sprintf("zmigrate debug: "+format, args...)
		_ = cl.printer.Output(2, aurora.Yellow(msg).String())
	}
}

func (cl *ColoredLogger) Infof(format string, args ...interface{}) {
	if cl.level <= LevelInfo {
		msg := fmt.Sprintf("zmigrate: "+format, args...)
		_ = cl.printer.Output(2, aurora.Cyan(msg).String())
	}
}

func (cl *ColoredLogger) Successf(format string, args ...interface{}) {
	if cl.level <= LevelInfo {
		msg := fmt.Sprintf("zmigrate: "+format, args...)
		_ = cl.printer.Output(2, aurora.Green(msg).String())
	}
}

func (cl *ColoredLogger) Error(err error) {
	msg := fmt.Sprintf("zmigrate error: %s", err.Error())
	_ = cl.printer.Output(2, aurora.Red(msg).String())
}

func (cl *ColoredLogger) SQL(query string, args ...interface{}) {
	if cl.sql {
		_ = cl.printer.Output(2, aurora.Gray(15, formatSQL(query, args...)).String())
	}
}

func (bwl *BWLogger) Debugf(format string, args ...interface{}) {
	if bwl.level <= LevelDebug {
		msg := fmt.Sprintf("zmigrate debug: "+format, args...)
		_ = bwl.printer.Output(2, msg)
	}
}

func (bwl *BWLogger) Infof(format string, args ...interface{}) {
	if bwl.level <= LevelInfo {
		msg := fmt.Sprintf("zmigrate: "+format, args...)
		_ = bwl.printer.Output(2, msg)
	}
}

func (bwl *BWLogger) Successf(format string, args ...interface{}) {
	if bwl.level <= LevelInfo {
		msg := fmt.Sprintf("zmigrate: "+format, args...)
		_ = bwl.printer.Output(2, msg)
	}
}

func (bwl *BWLogger) Error(err error) {
	msg := fmt.Sprintf("zmigrate error: %s", err.Error())
	_ = bwl.printer.Output(2, msg)
}

func (bwl *BWLogger) SQL(query string, args ...interface{}) {
	if bwl.sql {
		_ = bwl.printer.Output(2, formatSQL(query, args...))
	}
}

func formatSQL(query string, args ...interface{}) string {
	var buf bytes.Buffer
	buf.WriteString("zmigrate running sql: ")
	buf.WriteString(query)

	if len(args) == 0 {
		return buf.String()
	}

	buf.WriteString("\nquery parameters: ")

	for i := range args {
		if i+1 < len(args) {
			buf.WriteString(fmt.Sprintf("{%#v}, ", args[i]))
		} else {
			buf.WriteString(fmt.Sprintf("{%#v}", args[i]))
		}
	}

	return buf.String()
}
