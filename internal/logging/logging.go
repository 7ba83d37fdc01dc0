package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogFile = "sview.log"
	timeKey        = "time"
	messageKey     = "message"
)

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      string
	logFile      *os.File
	zapLogger    *zap.Logger
	logger       = logr.Discard()
)

// Configure opens the log destination. Empty paths fall back to the default
// file and directories are created when missing. level accepts zap level
// names; unknown names mean info. Until Configure runs every entry is
// discarded.
func Configure(path, level string) error {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = timeKey
	encoderCfg.MessageKey = messageKey
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(f),
		zap.NewAtomicLevelAt(lvl),
	)

	closeLocked()
	logPath = path
	logFile = f
	zapLogger = zap.New(core)
	logger = zapr.NewLogger(zapLogger)
	return nil
}

// Close flushes and releases the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	logger = logr.Discard()
}

func closeLocked() {
	if zapLogger != nil {
		_ = zapLogger.Sync()
		zapLogger = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Path reports the active log file, or "" before Configure.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Logger returns the shared logr.Logger.
func Logger() logr.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// Error records err at error level.
func Error(err error) {
	if err == nil {
		return
	}
	Logger().Error(err, "error")
}

// Diagnostic records a recoverable problem, such as a descriptor that names
// an unknown type, together with key/value context.
func Diagnostic(msg string, keysAndValues ...interface{}) {
	Logger().Info(msg, append([]interface{}{"diagnostic", true}, keysAndValues...)...)
}

// Debug records a message at debug verbosity.
func Debug(msg string, keysAndValues ...interface{}) {
	Logger().V(1).Info(msg, keysAndValues...)
}

// Trace records a structured event when tracing is enabled.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled := traceEnabled
	l := logger
	mu.Unlock()
	if !enabled {
		return
	}
	if payload == nil {
		l.Info("trace", "event", event)
		return
	}
	l.Info("trace", "event", event, "payload", payload)
}
