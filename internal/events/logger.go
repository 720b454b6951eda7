package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// zapAdapter routes watermill's internal logging into zap.
type zapAdapter struct {
	logger *zap.Logger
}

func newZapAdapter(logger *zap.Logger) watermill.LoggerAdapter {
	return &zapAdapter{logger: logger.Named("watermill")}
}

func fields(lf watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(lf))
	for k, v := range lf {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (z *zapAdapter) Error(msg string, err error, lf watermill.LogFields) {
	z.logger.Error(msg, append(fields(lf), zap.Error(err))...)
}

func (z *zapAdapter) Info(msg string, lf watermill.LogFields) {
	z.logger.Info(msg, fields(lf)...)
}

func (z *zapAdapter) Debug(msg string, lf watermill.LogFields) {
	z.logger.Debug(msg, fields(lf)...)
}

// Trace is folded into debug; zap has no lower level.
func (z *zapAdapter) Trace(msg string, lf watermill.LogFields) {
	z.logger.Debug(msg, fields(lf)...)
}

func (z *zapAdapter) With(lf watermill.LogFields) watermill.LoggerAdapter {
	return &zapAdapter{logger: z.logger.With(fields(lf)...)}
}
