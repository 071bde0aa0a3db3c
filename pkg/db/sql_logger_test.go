package db

import (
	"context"
	"errors"
	"testing"
	"time"

	appLog "cme-platform/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	appLog.SetLogger(zap.New(core))
	t.Cleanup(func() { appLog.SetLogger(nil) })
	return logs
}

func TestSQLLoggerIgnoresRecordNotFound(t *testing.T) {
	logs := observeLogs(t)
	l := NewSQLLogger(logger.Warn)
	sql := func() (string, int64) { return "SELECT * FROM user_account WHERE email = 'a@b.c'", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "SELECT * FROM user_account WHERE email = 'a@b.c'", entry.ContextMap()["sql"])
}

func TestSQLLoggerLevels(t *testing.T) {
	logs := observeLogs(t)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	NewSQLLogger(logger.Warn).Trace(context.Background(), time.Now(), sql, nil)
	assert.Zero(t, logs.Len())

	NewSQLLogger(logger.Warn).Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)

	NewSQLLogger(logger.Warn).LogMode(logger.Info).Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 2, logs.Len())

	NewSQLLogger(logger.Info).LogMode(logger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())

	NewSQLLogger(logger.Info).Error(context.Background(), "migrate %s failed", "course")
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "migrate course failed", logs.All()[2].Message)
}
