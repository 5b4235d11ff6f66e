package logging

import (
	"go.uber.org/zap"
)

// NewZapLogger returns a *zap.Logger for library code. It shares the sink,
// level and fields of logger, and is named after the component using it.
func NewZapLogger(logger *Logger, component string) *zap.Logger {
	zl := logger.Zap()
	if component != "" {
		zl = zl.Named(component)
	}
	return zl
}
