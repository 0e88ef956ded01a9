package metapath

import (
	"io"
	"log/slog"
	"os"
)

type Tracer interface {
	Enter(string)
	Leave(string)
	Error(string, error)
	Cached(string)
}

type discardTracer struct{}

func (_ discardTracer) Enter(_ string)          {}
func (_ discardTracer) Leave(_ string)          {}
func (_ discardTracer) Error(_ string, _ error) {}
func (_ discardTracer) Cached(_ string)         {}

type stdioTracer struct {
	logger   *slog.Logger
	depth    int
	errcount int
}

func TraceStdout() Tracer {
	return TraceWriter(os.Stdout)
}

func TraceStderr() Tracer {
	return TraceWriter(os.Stderr)
}

func TraceWriter(w io.Writer) Tracer {
	tracer := stdioTracer{
		logger: stdioLogger(w),
	}
	return &tracer
}

func stdioLogger(w io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, &opts))
}

func (t *stdioTracer) Enter(fn string) {
	t.depth++
	args := []any{
		"function",
		fn,
		"depth",
		t.depth,
	}
	t.logger.Debug("start call", args...)
}

func (t *stdioTracer) Leave(fn string) {
	args := []any{
		"function",
		fn,
		"depth",
		t.depth,
	}
	t.logger.Debug("done call", args...)
	t.depth--
}

func (t *stdioTracer) Cached(fn string) {
	args := []any{
		"function",
		fn,
		"depth",
		t.depth,
	}
	t.logger.Debug("cached result", args...)
}

func (t *stdioTracer) Error(fn string, err error) {
	t.errcount++
	args := []any{
		"function",
		fn,
		"depth",
		t.depth,
		"errors",
		t.errcount,
		"err",
		err,
	}
	t.logger.Error("call failed", args...)
}
