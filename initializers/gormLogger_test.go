package initializers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, 100*time.Millisecond), logs
}

func query() (string, int64) {
	return "SELECT * FROM products", 3
}

func TestGormLoggerTrace(t *testing.T) {
	ctx := context.Background()

	t.Run("errors are logged with the query", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), query, errors.New("deadlock"))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "gorm", entries[0].LoggerName)
		assert.Equal(t, "SELECT * FROM products", entries[0].ContextMap()["sql"])
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now().Add(-time.Second), query, nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("fast queries only at info", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), query, nil)
		assert.Zero(t, logs.Len())

		l.LogMode(gormlogger.Info).Trace(ctx, time.Now(), query, nil)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		l, logs := observedGormLogger(gormlogger.Silent)
		l.Trace(ctx, time.Now(), query, errors.New("deadlock"))
		l.Error(ctx, "migration failed: %s", "boom")
		assert.Zero(t, logs.Len())
	})
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLevel("silent"))
	assert.Equal(t, gormlogger.Error, gormLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, gormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, gormLevel(""))
}
