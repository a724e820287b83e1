// Package logger builds the zap logger of the moneyin command, optionally forwarding errors to sentry.
package logger

import (
	"time"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Debug        bool
	SentryDSN    string
	SentryClient *sentry.Client
	Tags         map[string]string
}

// Logger is a zap logger with the sentry client it reports to, if any.
type Logger struct {
	*zap.Logger
	sentry *sentry.Client
}

// New builds a logger, development config in debug mode, production otherwise.
func New(cfg Config) (*Logger, error) {
	var zapConfig zap.Config
	if cfg.Debug {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	// stdout is reserved to reports
	zapConfig.OutputPaths = []string{"stderr"}

	base, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	if cfg.SentryDSN == "" && cfg.SentryClient == nil {
		return &Logger{Logger: base}, nil
	}

	client := cfg.SentryClient
	if client == nil {
		client, err = sentry.NewClient(sentry.ClientOptions{
			Dsn:   cfg.SentryDSN,
			Debug: cfg.Debug,
		})
		if err != nil {
			return nil, err
		}
	}

	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
		Tags:              cfg.Tags,
	}, zapsentry.NewSentryClientFromClient(client))
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: zapsentry.AttachCoreToLogger(core, base), sentry: client}, nil
}

// Close flushes buffered log entries and sentry events.
func (l *Logger) Close(timeout time.Duration) {
	_ = l.Sync()
	if l.sentry != nil {
		l.sentry.Flush(timeout)
	}
}
