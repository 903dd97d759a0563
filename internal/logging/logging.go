// Package logging provides structured logging for the csentinel agent.
//
// It wraps github.com/sirupsen/logrus so every component logs through the
// same leveled, field-based interface instead of fmt.Print to stderr.
package logging

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

var (
	defaultLogger *logrus.Logger
	loggerMu      sync.RWMutex
)

func init() {
	defaultLogger = logrus.New()
	defaultLogger.SetOutput(os.Stderr)
	defaultLogger.SetLevel(logrus.InfoLevel)
	defaultLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Config holds logger construction options.
type Config struct {
	// Level is the minimum level that will be logged.
	Level logrus.Level
	// Format selects "json" or "text" (default) output.
	Format string
	// Output is the log destination; defaults to os.Stderr.
	Output io.Writer
}

// New builds a *logrus.Logger from cfg.
func New(cfg Config) *logrus.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(cfg.Output)
	l.SetLevel(cfg.Level)
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *logrus.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = l
}

// Default returns the package-level default logger.
func Default() *logrus.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// WithComponent tags entries with the originating component name.
func WithComponent(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}

// ContextWithLogger attaches l to ctx.
func ContextWithLogger(ctx context.Context, l *logrus.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger attached to ctx, or Default() if none.
func FromContext(ctx context.Context) *logrus.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*logrus.Logger); ok {
		return l
	}
	return Default()
}

// ParseLevel parses a level string, defaulting to Info on an unrecognised
// value rather than failing startup over a logging misconfiguration.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
