// Package logger provides level-gated, router-id-prefixed logging for the
// routing daemon. It is adapted from the teacher's global util/logger:
// generalized here to be instance-bound (one Logger per RouterId) rather
// than a package-level singleton, since a process hosts exactly one router
// identity for its whole lifetime and every log line must carry that
// identity per the wire-format's operational logging requirement.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mitchellh/colorstring"
	"golang.org/x/term"
)

type Level int

const (
	NONE Level = iota
	WARN
	INFO
	DEBUG
)

const levelEnv = "LOG_LEVEL"

// Logger prints leveled, router-id-prefixed lines to an underlying
// *log.Logger. The stdlib logger already serializes concurrent writers
// internally, so Logger does not add a redundant lock on top of it.
type Logger struct {
	routerID string
	level    Level
	std      *log.Logger
	color    bool
}

// New builds a Logger for routerID, writing to w (typically os.Stdout).
// The log level is read from LOG_LEVEL (NONE/WARN/INFO/DEBUG, default INFO).
func New(routerID string, w io.Writer) *Logger {
	l := &Logger{
		routerID: routerID,
		level:    levelFromEnv(),
		std:      log.New(w, "", log.LstdFlags),
	}
	if f, ok := w.(*os.File); ok {
		l.color = term.IsTerminal(int(f.Fd()))
	}
	return l
}

func levelFromEnv() Level {
	v, present := os.LookupEnv(levelEnv)
	if !present {
		return INFO
	}
	switch v {
	case "NONE":
		return NONE
	case "WARN":
		return WARN
	case "INFO":
		return INFO
	case "DEBUG":
		return DEBUG
	default:
		return INFO
	}
}

func (l *Logger) tag(level, color string) string {
	if l.color {
		return colorstring.Color(fmt.Sprintf("[%s]%s[reset]", color, level))
	}
	return level
}

// Errorf logs a fatal configuration or invariant error and terminates the
// process, mirroring the teacher's Errorf.
func (l *Logger) Errorf(format string, v ...any) {
	l.std.Fatalf("[%s] %s %s", l.routerID, l.tag("ERROR", "red"), fmt.Sprintf(format, v...))
}

// Warnf logs a transient, non-fatal error or unexpected condition.
func (l *Logger) Warnf(format string, v ...any) {
	if l.level < WARN {
		return
	}
	l.std.Printf("[%s] %s %s", l.routerID, l.tag("WARN", "yellow"), fmt.Sprintf(format, v...))
}

// Infof logs a normal operational event (packet sent/received, neighbor
// recognized, route installed, neighbor failed).
func (l *Logger) Infof(format string, v ...any) {
	if l.level < INFO {
		return
	}
	l.std.Printf("[%s] %s %s", l.routerID, l.tag("INFO", "green"), fmt.Sprintf(format, v...))
}

// Debugf logs fine-grained diagnostic detail.
func (l *Logger) Debugf(format string, v ...any) {
	if l.level < DEBUG {
		return
	}
	l.std.Printf("[%s] %s %s", l.routerID, l.tag("DEBUG", "cyan"), fmt.Sprintf(format, v...))
}
