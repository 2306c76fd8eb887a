// Package log provides a small leveled, key/value logger in the style
// geth's own log package: Trace/Debug/Info/Warn/Error/Crit, each taking a
// message followed by alternating key/value pairs.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is the severity of a log record, ordered from most to least verbose.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCrit
)

func (lv Level) String() string {
	switch lv {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCrit:
		return "CRIT"
	default:
		return "?????"
	}
}

// color codes, applied only when the destination is a terminal.
const (
	colorReset  = "\x1b[0m"
	colorGray   = "\x1b[90m"
	colorBlue   = "\x1b[34m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
	colorBoldRed = "\x1b[1;31m"
)

func levelColor(lv Level) string {
	switch lv {
	case LevelTrace, LevelDebug:
		return colorGray
	case LevelInfo:
		return colorBlue
	case LevelWarn:
		return colorYellow
	case LevelError:
		return colorRed
	case LevelCrit:
		return colorBoldRed
	default:
		return ""
	}
}

// Logger writes leveled records to an underlying writer.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	level    Level
}

var root = New(os.Stderr)

// New creates a Logger writing to w, auto-colorized if w is a terminal.
func New(w io.Writer) *Logger {
	colorize := false
	out := w
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		out = colorable.NewColorable(f)
	}
	return &Logger{
		out:      out,
		colorize: colorize,
		level:    LevelInfo,
	}
}

// SetLevel changes the minimum level the logger emits.
func (l *Logger) SetLevel(lv Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lv
}

func (l *Logger) log(lv Level, msg string, ctx []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lv < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	var buf []byte
	if l.colorize {
		buf = append(buf, levelColor(lv)...)
	}
	buf = append(buf, fmt.Sprintf("%-5s", lv)...)
	if l.colorize {
		buf = append(buf, colorReset...)
	}
	buf = append(buf, fmt.Sprintf("[%s] %s", ts, msg)...)
	for i := 0; i+1 < len(ctx); i += 2 {
		buf = append(buf, fmt.Sprintf(" %v=%v", ctx[i], ctx[i+1])...)
	}
	if len(ctx)%2 == 1 {
		buf = append(buf, fmt.Sprintf(" %v=MISSING", ctx[len(ctx)-1])...)
	}
	buf = append(buf, '\n')
	l.out.Write(buf)
	if lv == LevelCrit {
		os.Exit(1)
	}
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LevelTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LevelDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LevelInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LevelWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LevelError, msg, ctx) }
func (l *Logger) Crit(msg string, ctx ...interface{})  { l.log(LevelCrit, msg, ctx) }

// Root returns the package-level default logger.
func Root() *Logger { return root }

func SetLevel(lv Level)                  { root.SetLevel(lv) }
func Trace(msg string, ctx ...interface{}) { root.log(LevelTrace, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.log(LevelDebug, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.log(LevelInfo, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.log(LevelWarn, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.log(LevelError, msg, ctx) }
func Crit(msg string, ctx ...interface{})  { root.log(LevelCrit, msg, ctx) }
