// Package simlog provides the leveled logger the CLI driver uses to
// report progress and failures, plus a StepLogger that
// formats per-step simulation metrics in the field-oriented style the
// driver's progress output uses.
package simlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/s417-lama/sph-dambreaking/sphmath"
)

// Logger is the leveled logging contract every component that needs to
// report progress or failure depends on.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// level ordering determines which writer a line goes to: DEBUG/INFO are
// routine progress and go to out; WARN/ERROR are routed to err so a
// driver's stdout snapshot piping isn't polluted by failures.
type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func (lv level) String() string {
	switch lv {
	case levelDebug:
		return "debug"
	case levelInfo:
		return "info"
	case levelWarn:
		return "warn"
	default:
		return "error"
	}
}

// DefaultLogger writes logfmt-style lines (level=... tag=... msg=...) to
// stdout for DEBUG/INFO and stderr for WARN/ERROR.
type DefaultLogger struct {
	mu    sync.Mutex
	debug bool
	tag   string
	out   *log.Logger
	err   *log.Logger
}

// NewDefaultLogger builds a DefaultLogger tagged with tag (pass "" for no
// tag), with debug-level output enabled or not.
func NewDefaultLogger(tag string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug: debug,
		tag:   tag,
		out:   log.New(os.Stdout, "", flags),
		err:   log.New(os.Stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) writerFor(lv level) *log.Logger {
	if lv >= levelWarn {
		return l.err
	}
	return l.out
}

// line renders a logfmt-style record: level=<lv> [tag=<tag>] msg="<msg>".
func (l *DefaultLogger) line(lv level, format string, args ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "level=%s ", lv)
	if l.tag != "" {
		fmt.Fprintf(&b, "tag=%s ", l.tag)
	}
	fmt.Fprintf(&b, "msg=%q", fmt.Sprintf(format, args...))
	return b.String()
}

func (l *DefaultLogger) emit(lv level, format string, args ...any) {
	l.writerFor(lv).Print(l.line(lv, format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.emit(levelDebug, format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any)  { l.emit(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.emit(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.emit(levelError, format, args...) }

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything, for tests and
// callers that haven't wired a real one.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool                { return false }
func (nopLogger) SetDebug(enabled bool)             {}
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}

// StepReport carries the per-step fields original_source/sph.cpp's main
// loop prints to stdout: the simulation clock, the step index, the
// timestep just taken, and whether the tree was reused rather than
// rebuilt for that step.
type StepReport struct {
	Time      sphmath.Real
	StepIndex int
	DT        sphmath.Real
	Reused    bool
}

// StepLogger reports simulation progress through an underlying Logger,
// keeping the step-report field layout in one place instead of scattering
// a format string across every caller.
type StepLogger struct {
	Logger Logger
}

// NewStepLogger wraps l for step reporting.
func NewStepLogger(l Logger) StepLogger { return StepLogger{Logger: l} }

// LogStep emits one progress line for r.
func (s StepLogger) LogStep(r StepReport) {
	s.Logger.Infof("step=%d time=%.5f dt=%.6f reused=%v", r.StepIndex, r.Time, r.DT, r.Reused)
}

// LogStepTo is a convenience for writing step reports straight to an
// arbitrary writer (e.g. a run manifest) bypassing the leveled Logger,
// using the same field layout as LogStep.
func LogStepTo(w io.Writer, r StepReport) {
	fmt.Fprintf(w, "step=%d time=%.5f dt=%.6f reused=%v\n", r.StepIndex, r.Time, r.DT, r.Reused)
}
