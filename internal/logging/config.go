package logging

import (
	"strings"

	"go.uber.org/zap"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level is the minimum log level to output (DEBUG, INFO, WARN, ERROR, FATAL)
	Level string
	// Format is the output format (json, console)
	Format string
	// Output is the output destination (stdout, stderr, or file path)
	Output string
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	ws, _, err := zap.Open(output)
	if err != nil {
		return nil, err
	}

	return newLogger(ParseLevel(cfg.Level), cfg.Format, ws), nil
}

// ParseLevel converts a case-insensitive level name to a LogLevel.
// Unknown names map to InfoLevel.
func ParseLevel(level string) LogLevel {
	switch LogLevel(strings.ToUpper(level)) {
	case DebugLevel:
		return DebugLevel
	case WarnLevel:
		return WarnLevel
	case ErrorLevel:
		return ErrorLevel
	case FatalLevel:
		return FatalLevel
	default:
		return InfoLevel
	}
}
