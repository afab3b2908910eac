package resttree

import "github.com/rs/zerolog"

// Logger receives structured log events from clients and the
// transport adapter.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards all log events. Clients use it when no logger is
// configured.
type NopLogger struct{}

// NewNopLogger creates a logger that discards everything.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (l *NopLogger) Debug(string, map[string]interface{}) {}
func (l *NopLogger) Info(string, map[string]interface{})  {}
func (l *NopLogger) Warn(string, map[string]interface{})  {}
func (l *NopLogger) Error(string, map[string]interface{}) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps a zerolog logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

func (l *ZerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
