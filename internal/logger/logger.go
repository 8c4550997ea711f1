package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var mu sync.RWMutex

var (
	plain = zap.NewNop()
	sugar = plain.Sugar()
)

// New creates a console zap logger with coloured levels.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		lvl,
	)
	return zap.New(core, zap.AddCaller()), nil
}

// Init builds the process logger. Unknown levels fall back to info.
func Init(level string) *zap.Logger {
	l, err := New(level)
	if err != nil {
		l, _ = New("info")
		l.Sugar().Warnf("unknown LOG_LEVEL %q, using info", level)
	}
	Set(l)
	return l
}

// Set replaces the process logger (tests use zap.NewNop or zaptest).
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	plain = l
	sugar = l.Sugar()
}

// L returns the structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return plain
}

// S returns the sugared logger.
func S() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}
