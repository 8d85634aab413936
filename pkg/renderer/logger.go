package renderer

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/df07/go-procedural-raymarcher/pkg/core"
)

// SlogLogger implements core.Logger on top of a structured logger
type SlogLogger struct {
	logger *slog.Logger
}

// Printf logs the formatted message at info level
func (l *SlogLogger) Printf(format string, args ...interface{}) {
	l.logger.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// NewSlogLogger adapts logger to core.Logger
func NewSlogLogger(logger *slog.Logger) core.Logger {
	return &SlogLogger{logger: logger}
}

// NewDefaultLogger creates a logger writing text records to stderr
func NewDefaultLogger() core.Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}
