package logger

import (
	"log/slog"
	"testing"

	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	l, err = New("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = New("loud")
	assert.Error(t, err)
}

func TestInstallGlobalRoutesIntoZap(t *testing.T) {
	prevSlog := slog.Default()
	prevGeth := gethlog.Root()
	t.Cleanup(func() {
		slog.SetDefault(prevSlog)
		gethlog.SetDefault(prevGeth)
	})

	core, logs := observer.New(zapcore.InfoLevel)
	InstallGlobal(zap.New(core))

	slog.Info("from slog", "chain", "ETHEREUM")
	slog.Debug("dropped")
	gethlog.Warn("from geth", "url", "https://rpc")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "from slog", entries[0].Message)
	assert.Equal(t, "ETHEREUM", entries[0].ContextMap()["chain"])
	assert.Equal(t, "from geth", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "geth", entries[1].LoggerName)
}
