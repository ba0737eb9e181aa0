package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu sync.RWMutex
	l  *zap.Logger
)

func init() {
	zapLogger, err := newLogger(zapcore.InfoLevel, "console")
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	setLogger(zapLogger)
}

// Init replaces the process logger. level is one of debug, info, warn, error;
// encoding is "console" or "json".
func Init(level, encoding string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level %q: %w", level, err)
	}

	zapLogger, err := newLogger(lvl, encoding)
	if err != nil {
		return err
	}

	setLogger(zapLogger)
	return nil
}

func setLogger(zapLogger *zap.Logger) {
	mu.Lock()
	l = zapLogger
	mu.Unlock()

	zap.ReplaceGlobals(zapLogger)
	// Redirect is best-effort: the only failure is a nil logger.
	_, _ = zap.RedirectStdLogAt(zapLogger, zapcore.InfoLevel)
}

func newLogger(logLevel zapcore.Level, encoding string) (*zap.Logger, error) {
	encoder, err := getEncoder(encoding)
	if err != nil {
		return nil, err
	}

	zapLogger := zap.New(zapcore.NewTee(
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= logLevel && level < zapcore.ErrorLevel
			}),
		),
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool {
				return level >= zapcore.ErrorLevel
			}),
		),
	))

	return zapLogger.WithOptions(zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

func getEncoder(encoding string) (zapcore.Encoder, error) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "message",

		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.ISO8601TimeEncoder,

		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	switch encoding {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case "console", "":
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("failed to find encoder: %q", encoding)
	}
}

func get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return l
}

// Logger returns the underlying zap logger for components that take one.
func Logger() *zap.Logger { return get() }

func Debug(msg string, fields ...zap.Field) { get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { get().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { get().Fatal(msg, fields...) }

// Sync flushes buffered log entries.
func Sync() error {
	return get().Sync()
}
