package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type probe struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type stampedProbe struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (stampedProbe) Timestamps() bool { return true }

type hookSpy struct {
	mock.Mock
}

func (s *hookSpy) Call() {
	s.Called()
}

func setupTestDB(t *testing.T, config Config) *DB {
	config.Dialect = DialectSQLite
	config.Storage = filepath.Join(t.TempDir(), "sscce.db")

	conn, err := Create(config, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
