// Package logging builds the process logger: zap underneath, exposed as a logr.Logger.
package logging

import (
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Debug forces the debug level regardless of Level.
	Debug bool

	// Level is one of debug, info, warn(ing), error or critical, case insensitive.
	// Anything else means info.
	Level string

	// BuildVersion is added to every entry when set.
	BuildVersion string
}

// New returns a production zap logger adapted to logr, and a func flushing it.
func New(opts Options) (logr.Logger, func(), error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(opts.level())
	zl, err := zapCfg.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return NewLoggerWithBuild(zl, opts.BuildVersion), func() { _ = zl.Sync() }, nil
}

// NewLoggerWithBuild creates a logger with serviceBuild field if buildVersion is provided
func NewLoggerWithBuild(zl *zap.Logger, buildVersion string) logr.Logger {
	logger := zapr.NewLogger(zl)

	// Add serviceBuild to all log entries if provided
	if buildVersion != "" {
		logger = logger.WithValues("serviceBuild", buildVersion)
	}

	return logger
}

func (o Options) level() zapcore.Level {
	if o.Debug {
		return zapcore.DebugLevel
	}
	return ParseLevel(o.Level)
}

func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "critical", "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
