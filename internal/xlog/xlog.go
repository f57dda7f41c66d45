// Package xlog maps the CLI's six-level verbosity scale (spec.md §6: Off,
// Warning, Outer, Inner, Full, Debug) onto a github.com/sirupsen/logrus
// logger, following the severity-threshold logging idiom used throughout
// the teacher's own CLI front-ends.
package xlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level is one step of the solver's own verbosity scale. It does not map
// 1:1 onto logrus's seven levels: Outer and Inner are solver-specific
// granularities (outer-controller iterations vs. inner-loop iterations),
// both logged at logrus's Info level but distinguished by the "phase"
// field every call site attaches.
type Level int

const (
	Off Level = iota
	Warning
	Outer
	Inner
	Full
	Debug
)

// Parse converts the CLI's -v flag value into a Level. Unknown input
// defaults to Warning, matching the CLI's documented default verbosity.
func Parse(s string) Level {
	switch s {
	case "Off":
		return Off
	case "Warning":
		return Warning
	case "Outer":
		return Outer
	case "Inner":
		return Inner
	case "Full":
		return Full
	case "Debug":
		return Debug
	default:
		return Warning
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case Off:
		return logrus.PanicLevel // nothing at or below Panic is ever emitted via the level gate below
	case Warning:
		return logrus.WarnLevel
	case Outer, Inner:
		return logrus.InfoLevel
	case Full:
		return logrus.DebugLevel
	case Debug:
		return logrus.TraceLevel
	default:
		return logrus.WarnLevel
	}
}

// Logger wraps a *logrus.Logger configured for one solve's verbosity
// level. Every package that logs takes a *Logger rather than reaching for
// a global, so concurrent solves in the same process (spec.md §5, one
// cancellation handle per solve) never share mutable logger state.
type Logger struct {
	*logrus.Logger
	level Level
}

// New builds a Logger at the given verbosity, writing to w (os.Stderr in
// production, a buffer in tests). Off suppresses all output by directing
// it to io.Discard rather than special-casing every call site.
func New(level Level, w io.Writer) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level == Off {
		l.SetOutput(io.Discard)
	} else {
		l.SetOutput(w)
	}
	l.SetLevel(level.logrusLevel())
	return &Logger{Logger: l, level: level}
}

// NewStderr is the convenience constructor for a production run: it
// writes to os.Stderr.
func NewStderr(level Level) *Logger { return New(level, os.Stderr) }

// Outer logs one outer-controller iteration event at Outer verbosity or
// above.
func (lg *Logger) Outer(msg string, fields logrus.Fields) {
	if lg.level < Outer {
		return
	}
	lg.WithFields(fields).WithField("phase", "outer").Info(msg)
}

// Inner logs one tabu-search inner-loop iteration event at Inner
// verbosity or above.
func (lg *Logger) Inner(msg string, fields logrus.Fields) {
	if lg.level < Inner {
		return
	}
	lg.WithFields(fields).WithField("phase", "inner").Info(msg)
}

// Trend logs one per-iteration trend line (objective, violation,
// augmented score) at Full verbosity or above.
func (lg *Logger) Trend(fields logrus.Fields) {
	if lg.level < Full {
		return
	}
	lg.WithFields(fields).Debug("trend")
}
