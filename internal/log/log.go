// Package log holds the process wide zap logger used by the command line tools and the
// demo service.
package log

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// New builds a logger at the given level. Console encoding is used unless json is set.
func New(level Level, json bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(string(level)))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	if !json {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build logger")
	}
	return l, nil
}

// Init replaces the global logger.
func Init(level Level, json bool) error {
	l, err := New(level, json)
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Info logs msg at level. A leading error in kv is logged under the "error" key, the rest
// are key value pairs.
func Info(level string, msg string, kv ...interface{}) {
	if len(kv) > 0 {
		if err, ok := kv[0].(error); ok {
			kv = append([]interface{}{"error", err.Error()}, kv[1:]...)
		}
	}

	s := L().Sugar()
	switch Level(strings.ToLower(level)) {
	case DebugLevel:
		s.Debugw(msg, kv...)
	case WarnLevel:
		s.Warnw(msg, kv...)
	case ErrorLevel:
		s.Errorw(msg, kv...)
	default:
		s.Infow(msg, kv...)
	}
}

func Sync() {
	_ = L().Sync()
}
