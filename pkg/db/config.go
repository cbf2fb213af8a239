package db

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

var ErrUnsupportedDialect = errors.New("unsupported dialect")

type Config struct {
	Dialect  Dialect
	User     string
	Host     string
	Port     string
	Password string
	Database string
	// Schema is the postgres schema tables live in; ignored by sqlite.
	Schema string
	// Storage is the sqlite database file (or ":memory:").
	Storage string

	LogQueryParameters bool
	Benchmark          bool
	// DefineTimestamps is the default for models that do not implement Timestamped.
	DefineTimestamps bool
	SlowThreshold    time.Duration
}

func (c Config) postgresDSN(withSearchPath bool) string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", c.Host, c.User, c.Password, c.Database, c.Port)
	if withSearchPath && c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Dialect {
	case DialectPostgres:
		return postgres.Open(c.postgresDSN(true)), nil
	case DialectSQLite:
		storage := c.Storage
		if storage == "" {
			storage = ":memory:"
		}
		return sqlite.Open(storage), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedDialect, "%q", c.Dialect)
}
