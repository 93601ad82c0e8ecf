package log

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(ctx context.Context, msg string, fields ...any)
	Info(ctx context.Context, msg string, fields ...any)
	Warn(ctx context.Context, msg string, fields ...any)
	Error(ctx context.Context, msg string, fields ...any)
}

type logger struct {
	zap *otelzap.Logger
}

var (
	instance Logger
	once     sync.Once
)

// SetupLogger builds the process zap logger. LOG_LEVEL and APP_ENV tune it.
func SetupLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if os.Getenv("APP_ENV") == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Init wires the process logger once; later calls are ignored.
func Init(z *zap.Logger) {
	once.Do(func() {
		otel := otelzap.New(z, otelzap.WithMinLevel(zap.InfoLevel))
		otelzap.ReplaceGlobals(otel)
		instance = &logger{zap: otel}
	})
}

func GetLogger() Logger {
	if instance == nil {
		Init(SetupLogger())
	}
	return instance
}

// Setup returns the raw otelzap logger used by HTTP handlers and middleware.
func Setup() *otelzap.Logger {
	return otelzap.New(SetupLogger())
}

// New wraps an existing otelzap logger, mostly useful in tests.
func New(z *otelzap.Logger) Logger {
	return &logger{zap: z}
}

func (l *logger) Debug(ctx context.Context, msg string, fields ...any) {
	l.zap.Ctx(ctx).Debug(msg, toZapFields(fields)...)
}

func (l *logger) Info(ctx context.Context, msg string, fields ...any) {
	l.zap.Ctx(ctx).Info(msg, toZapFields(fields)...)
}

func (l *logger) Warn(ctx context.Context, msg string, fields ...any) {
	l.zap.Ctx(ctx).Warn(msg, toZapFields(fields)...)
}

func (l *logger) Error(ctx context.Context, msg string, fields ...any) {
	l.zap.Ctx(ctx).Error(msg, toZapFields(fields)...)
}

func toZapFields(fields []any) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for i, f := range fields {
		switch v := f.(type) {
		case zap.Field:
			out = append(out, v)
		case error:
			out = append(out, zap.Error(v))
		default:
			out = append(out, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}
	return out
}
