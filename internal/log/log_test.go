package log

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zap.DebugLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })
	return logs
}

func TestInfo(t *testing.T) {
	logs := observe(t)

	Info(string(WarnLevel), "verification failed", errors.New("boom"), "keyid", "k1")
	Info(string(DebugLevel), "signed", "keyid", "k2")
	Info("unknown", "fallback")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "k1", entries[0].ContextMap()["keyid"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
}

func TestNamed(t *testing.T) {
	logs := observe(t)

	Named("server").Info("started")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "server", logs.All()[0].LoggerName)
}

func TestNew(t *testing.T) {
	l, err := New(InfoLevel, true)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(DebugLevel, false)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", false)
	assert.Error(t, err)
}
