package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger — контракт логирования для всего сервиса.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	// WithContext возвращает логгер с trace/span из ctx, если они есть.
	WithContext(ctx context.Context) Logger
}

// Config задаёт энкодер и уровень.
type Config struct {
	Level string // debug, info, warn, error
	Env   string // prod включает JSON-энкодер
}

// ZapLogger реализует Logger поверх sugared-логгера zap.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger создаёт zap-логгер для заданного окружения.
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	var zapCfg zap.Config
	if cfg.Env == "prod" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &ZapLogger{sugar: l.Sugar()}, nil
}

// NewDefault возвращает dev-логгер, а если zap не собрать, то no-op.
func NewDefault() *ZapLogger {
	l, err := NewZapLogger(Config{Level: "info"})
	if err != nil {
		return NewNop()
	}
	return l
}

// NewNop возвращает логгер, который всё отбрасывает.
func NewNop() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *ZapLogger) Debugf(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *ZapLogger) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *ZapLogger) Warnf(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *ZapLogger) Errorf(err error, format string, args ...any) {
	l.sugar.With(zap.Error(err)).Errorf(format, args...)
}

func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return l
	}

	return &ZapLogger{sugar: l.sugar.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)}
}

// Sync сбрасывает буферизованные записи.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
