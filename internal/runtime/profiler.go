package runtime

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Profiler opens a named span around each operator invocation.
type Profiler interface {
	Begin(op string) Span
}

// Span is an open profiling scope. End closes it on every exit path.
type Span interface {
	End()
}

type nopProfiler struct{}
type nopSpan struct{}

func (nopProfiler) Begin(string) Span { return nopSpan{} }
func (nopSpan) End()                  {}

// NopProfiler records nothing. It is the default so the library stays
// silent unless a sink is configured.
func NopProfiler() Profiler { return nopProfiler{} }

// LogProfiler reports span durations through a zap logger.
type LogProfiler struct {
	log *zap.SugaredLogger
}

func NewLogProfiler(log *zap.SugaredLogger) *LogProfiler {
	return &LogProfiler{log: log}
}

func (p *LogProfiler) Begin(op string) Span {
	return &logSpan{
		log:   p.log,
		op:    op,
		id:    uuid.NewString(),
		start: time.Now(),
	}
}

type logSpan struct {
	log   *zap.SugaredLogger
	op    string
	id    string
	start time.Time
	done  bool
}

func (s *logSpan) End() {
	if s.done {
		return
	}
	s.done = true
	s.log.Debugw("op", "name", s.op, "span", s.id, "took", time.Since(s.start))
}
