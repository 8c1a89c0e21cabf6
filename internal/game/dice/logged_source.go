package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level together with
// its position in the stream.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
	draws  int
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Float64 draws from the wrapped source and logs the value.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.draws++
	l.logger.Debug("rng draw",
		zap.Int("draw", l.draws),
		zap.Float64("value", v),
	)
	return v
}

// Draws returns how many values have been drawn through this source.
func (l *LoggedSource) Draws() int { return l.draws }
