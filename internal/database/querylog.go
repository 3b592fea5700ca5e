package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxLoggedSQL = 512

// queryLog sends gorm output through slog. Failed statements log at error
// and statements slower than slow log at warn; the rest only appear when gorm
// runs at Info.
type queryLog struct {
	log   *slog.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newQueryLog(log *slog.Logger, slow time.Duration) *queryLog {
	return &queryLog{log: log.With(slog.String("component", "sql")), level: logger.Warn, slow: slow}
}

func (q *queryLog) LogMode(level logger.LogLevel) logger.Interface {
	c := *q
	c.level = level
	return &c
}

func (q *queryLog) printf(ctx context.Context, min logger.LogLevel, lvl slog.Level, msg string, data []any) {
	if q.level >= min {
		q.log.Log(ctx, lvl, fmt.Sprintf(msg, data...))
	}
}

func (q *queryLog) Info(ctx context.Context, msg string, data ...any) {
	q.printf(ctx, logger.Info, slog.LevelInfo, msg, data)
}

func (q *queryLog) Warn(ctx context.Context, msg string, data ...any) {
	q.printf(ctx, logger.Warn, slog.LevelWarn, msg, data)
}

func (q *queryLog) Error(ctx context.Context, msg string, data ...any) {
	q.printf(ctx, logger.Error, slog.LevelError, msg, data)
}

func (q *queryLog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var lvl slog.Level
	msg := "sql"
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && q.level >= logger.Error:
		lvl, msg = slog.LevelError, "sql failed"
	case q.slow > 0 && elapsed > q.slow && q.level >= logger.Warn:
		lvl, msg = slog.LevelWarn, "sql slow"
	case q.level >= logger.Info:
		lvl = slog.LevelInfo
	default:
		return
	}

	stmt, rows := fc()
	if len(stmt) > maxLoggedSQL {
		stmt = stmt[:maxLoggedSQL] + "..."
	}
	attrs := []slog.Attr{
		slog.String("sql", stmt),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if lvl == slog.LevelError {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	q.log.LogAttrs(ctx, lvl, msg, attrs...)
}
