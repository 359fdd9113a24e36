// Package telemetry holds the decoder's slicing trace logger.
//
// It mirrors the "traceLevels.slicing" configuration knob from the original
// Ice runtime: a no-op logger by default, swappable by the embedding
// application via SetLogger.
package telemetry

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	mu         sync.RWMutex
	traceLevel int
)

// Logger returns the package-wide logger. It is a no-op logger until
// SetLogger is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger installs l as the package-wide logger. Passing nil restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// SetTraceLevel sets the slicing trace verbosity (0 disables tracing, >0
// enables it). Mirrors Ice's traceLevels.slicing.
func SetTraceLevel(level int) {
	mu.Lock()
	defer mu.Unlock()
	traceLevel = level
}

// TraceSlicing reports whether slicing-trace logging is enabled.
func TraceSlicing() bool {
	mu.RLock()
	defer mu.RUnlock()
	return traceLevel > 0
}

// SlicingUnknownType logs that an instance's most-derived type was unknown
// and its slice was preserved/skipped.
func SlicingUnknownType(kind, typeID string) {
	if !TraceSlicing() {
		return
	}
	Logger().Debug("slicing unknown type",
		zap.String("kind", kind),
		zap.String("typeId", typeID),
	)
}

// ClassGraphDepthRejected logs a class-graph-depth-limit rejection.
func ClassGraphDepthRejected(depth, max int) {
	if !TraceSlicing() {
		return
	}
	Logger().Debug("class graph depth exceeded",
		zap.Int("depth", depth),
		zap.Int("max", max),
	)
}

// SequenceSizeRejected logs an aggregate sequence-size-budget rejection.
func SequenceSizeRejected(requested, budget int) {
	if !TraceSlicing() {
		return
	}
	Logger().Debug("sequence size budget exceeded",
		zap.Int("requested", requested),
		zap.Int("budget", budget),
	)
}
