package observability

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogLevel = "info"

type contextKey string

const loggerContextKey contextKey = "observability.logger"

var noopLogger = zap.NewNop()

// NewLogger constructs a production-ready zap logger emitting structured JSON.
// The level is read from LOG_LEVEL and defaults to info.
func NewLogger() (*zap.Logger, error) {
	return NewLoggerWithLevel(os.Getenv("LOG_LEVEL"))
}

// NewLoggerWithLevel is NewLogger with an explicit level name.
func NewLoggerWithLevel(levelName string) (*zap.Logger, error) {
	return newConfig(parseLevel(levelName)).Build()
}

// FileOptions configures the rotating log file written next to stdout.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewFileLogger writes the same JSON entries to stdout and to a rotating file.
func NewFileLogger(levelName string, file FileOptions) (*zap.Logger, error) {
	if strings.TrimSpace(file.Path) == "" {
		return NewLoggerWithLevel(levelName)
	}
	cfg := newConfig(parseLevel(levelName))
	rotator := &lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    intOr(file.MaxSizeMB, 64),
		MaxBackups: intOr(file.MaxBackups, 7),
		MaxAge:     intOr(file.MaxAgeDays, 7),
	}
	encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), cfg.Level),
		zapcore.NewCore(encoder.Clone(), zapcore.AddSync(rotator), cfg.Level),
	)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

func parseLevel(levelName string) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelName)))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}
	return level
}

func intOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func newConfig(level zap.AtomicLevel) zap.Config {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "logger",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		StacktraceKey:  "stacktrace",
	}

	return zap.Config{
		Level:             level,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     false,
		DisableStacktrace: true,
	}
}

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext retrieves the logger from context, defaulting to a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// PrintfAdapter adapts zap to printf-style logging interfaces.
type PrintfAdapter struct {
	logger *zap.SugaredLogger
}

// NewPrintfAdapter creates a PrintfAdapter backed by the supplied logger.
func NewPrintfAdapter(logger *zap.Logger) PrintfAdapter {
	if logger == nil {
		logger = noopLogger
	}
	return PrintfAdapter{logger: logger.Sugar()}
}

// Printf implements the Printf-style logging expected by net/http.Server.ErrorLog consumers.
func (a PrintfAdapter) Printf(format string, args ...any) {
	a.logger.Infof(format, args...)
}

// Print implements chi's middleware.LoggerInterface.
func (a PrintfAdapter) Print(v ...any) {
	a.logger.Info(v...)
}
