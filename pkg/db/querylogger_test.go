package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/FuketsuBaka/sequelize-sscce/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type MockQueryObserver struct {
	mock.Mock
}

func (m *MockQueryObserver) ObserveQuery(operation string, elapsed time.Duration, err error) {
	m.Called(operation, elapsed, err)
}

func newObservedQueryLogger(config Config, obs QueryObserver) (*queryLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	ql := newQueryLogger(config, obs)
	ql.log = logger.Wrap(zap.New(core))
	return ql, logs
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestQueryLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("benchmark logs elapsed time and feeds observer", func(t *testing.T) {
		obs := new(MockQueryObserver)
		obs.On("ObserveQuery", "insert", mock.AnythingOfType("time.Duration"), nil).Return().Once()
		ql, logs := newObservedQueryLogger(Config{Benchmark: true}, obs)

		ql.Trace(ctx, time.Now(), statement(`INSERT INTO "users" ("name") VALUES ('User 1')`, 1), nil)

		obs.AssertExpectations(t)
		entries := logs.FilterMessage("executed").AllUntimed()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Contains(t, fields, "elapsed_ms")
		assert.Equal(t, int64(1), fields["rows"])
	})

	t.Run("failed statement", func(t *testing.T) {
		failure := errors.New("UNIQUE constraint failed: users.username, users.deleted_at")
		obs := new(MockQueryObserver)
		obs.On("ObserveQuery", "update", mock.Anything, failure).Return().Once()
		ql, logs := newObservedQueryLogger(Config{Benchmark: true}, obs)

		ql.Trace(ctx, time.Now(), statement(`UPDATE "users" SET "deleted_at"=?`, 0), failure)

		obs.AssertExpectations(t)
		entries := logs.FilterMessage("query failed").AllUntimed()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("record not found is not a failure", func(t *testing.T) {
		ql, logs := newObservedQueryLogger(Config{}, nil)

		ql.Trace(ctx, time.Now(), statement(`SELECT * FROM "users" LIMIT 1`, 0), gorm.ErrRecordNotFound)

		assert.Equal(t, 0, logs.FilterMessage("query failed").Len())
		assert.Equal(t, 1, logs.FilterMessage("executed").Len())
	})

	t.Run("without benchmark", func(t *testing.T) {
		obs := new(MockQueryObserver)
		ql, logs := newObservedQueryLogger(Config{Benchmark: false}, obs)

		ql.Trace(ctx, time.Now(), statement(`SELECT count(*) FROM "users"`, 1), nil)

		obs.AssertNotCalled(t, "ObserveQuery", mock.Anything, mock.Anything, mock.Anything)
		entries := logs.AllUntimed()
		require.Len(t, entries, 1)
		assert.NotContains(t, entries[0].ContextMap(), "elapsed_ms")
	})

	t.Run("slow statement", func(t *testing.T) {
		ql, logs := newObservedQueryLogger(Config{SlowThreshold: time.Millisecond}, nil)

		ql.Trace(ctx, time.Now().Add(-time.Second), statement(`SELECT 1`, 1), nil)

		assert.Equal(t, 1, logs.FilterMessage("slow query").Len())
	})

	t.Run("silent still observes", func(t *testing.T) {
		obs := new(MockQueryObserver)
		obs.On("ObserveQuery", "select", mock.Anything, nil).Return().Once()
		ql, logs := newObservedQueryLogger(Config{Benchmark: true}, obs)

		ql.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), statement(`SELECT 1`, 1), nil)

		obs.AssertExpectations(t)
		assert.Equal(t, 0, logs.Len())
	})
}

func TestQueryLogger_ParamsFilter(t *testing.T) {
	ctx := context.Background()

	hidden := &queryLogger{params: false}
	sql, params := hidden.ParamsFilter(ctx, "SELECT ?", "secret")
	assert.Equal(t, "SELECT ?", sql)
	assert.Nil(t, params)

	shown := &queryLogger{params: true}
	_, params = shown.ParamsFilter(ctx, "SELECT ?", "secret")
	assert.Equal(t, []interface{}{"secret"}, params)
}

func TestQueryLogger_WithConnection(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name         string
		logParams    bool
		expectSecret bool
	}{
		{name: "parameters hidden", logParams: false, expectSecret: false},
		{name: "parameters logged", logParams: true, expectSecret: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			conn := setupTestDB(t, Config{LogQueryParameters: tc.logParams})
			ql, logs := newObservedQueryLogger(Config{LogQueryParameters: tc.logParams}, nil)
			conn.conn.Logger = ql

			require.NoError(t, conn.Define(&stampedProbe{}))
			require.NoError(t, conn.Sync(ctx, SyncOptions{Force: true}))
			require.NoError(t, conn.Conn(ctx).Create(&stampedProbe{Name: "secret-name"}).Error)

			var insert string
			for _, entry := range logs.FilterMessage("executed").AllUntimed() {
				sql, _ := entry.ContextMap()["sql"].(string)
				if strings.HasPrefix(sql, "INSERT") {
					insert = sql
				}
			}
			require.NotEmpty(t, insert)
			assert.Equal(t, tc.expectSecret, strings.Contains(insert, "secret-name"))
		})
	}
}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "select", operationOf("SELECT * FROM users"))
	assert.Equal(t, "update", operationOf("  update users set x = 1"))
	assert.Equal(t, "unknown", operationOf(""))
}
