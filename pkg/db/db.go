package db

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// QueryObserver receives the timing of every statement when benchmarking is on.
type QueryObserver interface {
	ObserveQuery(operation string, elapsed time.Duration, err error)
}

type DB struct {
	conn *gorm.DB
	cfg  Config

	lock       sync.Mutex
	models     []any
	beforeSync []func()
	afterSync  []func()
}

func Create(config Config, observer QueryObserver) (*DB, error) {
	dialector, err := config.dialector()
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: newQueryLogger(config, observer),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", config.Dialect)
	}

	return &DB{conn: conn, cfg: config}, nil
}

func (r *DB) Conn(ctx context.Context) *gorm.DB {
	return r.conn.WithContext(ctx)
}

func (r *DB) Dialect() Dialect {
	return r.cfg.Dialect
}

func (r *DB) Close() error {
	sqlDB, err := r.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
