// Package logger builds the process zap logger and carries request loggers in contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/orgrank/internal/version"
)

// Options pick the encoder and level. Empty fields take the environment default.
type Options struct {
	Env    string // prod, local, dev, docker
	Level  string // debug, info, warn, error
	Format string // json or console
}

// New builds the process logger. prod logs JSON at info; the other
// environments log colored console output at debug. Every entry carries
// the service name and build version.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch opts.Env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", opts.Env)
	}

	switch opts.Format {
	case "":
	case "json":
		cfg.Encoding = "json"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	case "console":
		cfg.Encoding = "console"
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	if opts.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(zap.String("service", "orgrank"), zap.String("version", version.Version)), nil
}
