package dice

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// LoggedSource wraps a Source and logs every draw at debug level.
// Used by the dungeon tool to trace a generation run.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
	draws  atomic.Int64
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the draw.
//
// Precondition: n > 0.
// Postcondition: result is in [0, n); Draws() has increased by one.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	idx := l.draws.Add(1)
	l.logger.Debug("random draw",
		zap.Int64("index", idx),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Draws returns how many values have been drawn so far.
func (l *LoggedSource) Draws() int64 {
	return l.draws.Load()
}
