package aop

import (
	"time"

	"go.uber.org/zap"
)

// LoggingHandler logs every intercepted call with its duration.
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler is the constructor for a logging handler bean.
//
//	container.Component("loggingHandler", aop.NewLoggingHandler, container.Ref("logger"))
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger.Named("aop")}
}

func (h *LoggingHandler) Invoke(inv *Invocation) ([]any, error) {
	start := time.Now()
	out, err := inv.Proceed()
	fields := []zap.Field{
		zap.String("bean", inv.Bean),
		zap.String("method", inv.Method),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		h.logger.Warn("call failed", append(fields, zap.Error(err))...)
		return out, err
	}
	h.logger.Info("call", fields...)
	return out, nil
}
