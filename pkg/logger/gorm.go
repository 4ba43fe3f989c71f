package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's query log into the global slog logger, tagging
// each statement with the request ID carried on its context.
type GormLogger struct {
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger(logLevel gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{LogLevel: logLevel, SlowThreshold: slowThreshold}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	copied := *l
	copied.LogLevel = level
	return &copied
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Info, slog.LevelInfo, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Warn, slog.LevelWarn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Error, slog.LevelError, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, level slog.Level, msg string, data []interface{}) {
	if l.LogLevel < min {
		return
	}
	Log.Log(ctx, level, fmt.Sprintf(msg, data...), l.contextAttrs(ctx)...)
}

func (l *GormLogger) contextAttrs(ctx context.Context) []any {
	if id := RequestID(ctx); id != "" {
		return []any{slog.String("request_id", id)}
	}
	return nil
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	// not-found lookups drive normal control flow in the services
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	attrs := append(l.contextAttrs(ctx),
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	)

	switch {
	case err != nil && l.LogLevel >= gormlogger.Error:
		Log.ErrorContext(ctx, "sql error", append(attrs, Err(err))...)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		Log.WarnContext(ctx, "slow sql", attrs...)
	case l.LogLevel >= gormlogger.Info:
		Log.DebugContext(ctx, "sql", attrs...)
	}
}
