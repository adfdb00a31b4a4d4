package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLogger "github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlowQueryThreshold 이 시간을 넘는 쿼리는 warn으로 기록
const SlowQueryThreshold = 200 * time.Millisecond

// gormLogger forwards gorm's logging to pkg/logger.
// Record-not-found is expected on lookups and is never logged as an error.
type gormLogger struct {
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level, slowThreshold: SlowQueryThreshold}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		appLogger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		appLogger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		appLogger.Error(fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		appLogger.Error("Query failed", err, map[string]interface{}{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	case elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		appLogger.Warn("Slow query", map[string]interface{}{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	case l.level >= logger.Info:
		sql, rows := fc()
		appLogger.Debug("Query", map[string]interface{}{
			"sql":        sql,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}
}
