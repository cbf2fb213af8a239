package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FuketsuBaka/sequelize-sscce/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// queryLogger routes GORM's statement log through pkg/logger.
type queryLogger struct {
	log       logger.Logger
	level     gormlogger.LogLevel
	params    bool
	benchmark bool
	slow      time.Duration
	observer  QueryObserver
}

func newQueryLogger(config Config, observer QueryObserver) *queryLogger {
	return &queryLogger{
		log:       logger.GetLogger().Named("sql"),
		level:     gormlogger.Info,
		params:    config.LogQueryParameters,
		benchmark: config.Benchmark,
		slow:      config.SlowThreshold,
		observer:  observer,
	}
}

func (l *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.level = level
	return &n
}

func (l *queryLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *queryLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *queryLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	if l.benchmark && l.observer != nil {
		l.observer.ObserveQuery(operationOf(sql), elapsed, err)
	}
	if l.level <= gormlogger.Silent {
		return
	}

	fields := []any{"sql", sql, "rows", rows}
	if l.benchmark {
		fields = append(fields, "elapsed_ms", float64(elapsed.Microseconds())/1000)
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.Error("query failed", append(fields, "error", err)...)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		l.log.Warn("slow query", fields...)
	case l.level >= gormlogger.Info:
		l.log.Info("executed", fields...)
	}
}

// ParamsFilter hides bound values from the logged SQL unless parameter
// logging is enabled.
func (l *queryLogger) ParamsFilter(_ context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.params {
		return sql, params
	}
	return sql, nil
}

func operationOf(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
