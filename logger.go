package gputext

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

var (
	backendMu sync.RWMutex
	backend   any
)

// SetLogger configures the logger for gputext and the GPU backend of the
// most recently created Renderer. By default nothing is logged. Pass nil
// to restore the silent default.
//
// Log levels used by gputext:
//   - [slog.LevelDebug]: per-frame counts and draw calls
//   - [slog.LevelInfo]: lifecycle (renderer ready, device, SDF mode)
//   - [slog.LevelWarn]: abandoned frames and skipped draw sequences
//
// Example:
//
//	gputext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	backendMu.RLock()
	b := backend
	backendMu.RUnlock()
	if b != nil {
		propagateLogger(b, l)
	}
}

// Logger returns the current logger used by gputext.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(b any, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// registerBackend remembers b for SetLogger and hands it the current
// logger.
func registerBackend(b any) {
	backendMu.Lock()
	backend = b
	backendMu.Unlock()
	propagateLogger(b, Logger())
}
