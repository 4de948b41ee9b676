package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew_Levels(t *testing.T) {
	log, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("nonsense", "xml")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestGorm_LogModeCopies(t *testing.T) {
	log, err := New("info", "json")
	require.NoError(t, err)
	g := NewGorm(log)

	silent := g.LogMode(gormlogger.Silent)

	assert.Equal(t, gormlogger.Warn, g.level)
	assert.Equal(t, gormlogger.Silent, silent.(*Gorm).level)
}
