package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLog "cme-platform/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 超过该耗时的 SQL 记为慢查询
const slowQueryThreshold = 200 * time.Millisecond

// SQLLogger 将 GORM 日志写入 zap
// 记录不存在属于正常查询结果，不记为错误
type SQLLogger struct {
	level         logger.LogLevel
	slowThreshold time.Duration
}

func NewSQLLogger(level logger.LogLevel) *SQLLogger {
	return &SQLLogger{level: level, slowThreshold: slowQueryThreshold}
}

func (l *SQLLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		appLog.Infof(msg, args...)
	}
}

func (l *SQLLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		appLog.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *SQLLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		appLog.Errorf(msg, args...)
	}
}

// Trace 每条 SQL 执行后回调
func (l *SQLLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		appLog.WithField("sql", sql).Error("SQL执行失败",
			zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		appLog.WithField("sql", sql).Warn("慢查询",
			zap.Duration("elapsed", elapsed), zap.Duration("threshold", l.slowThreshold), zap.Int64("rows", rows))
	case l.level >= logger.Info:
		sql, rows := fc()
		appLog.WithField("sql", sql).Info("SQL",
			zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	}
}
