package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncOptions struct {
	// Force drops every defined table before recreating it.
	Force bool
}

// Timestamped lets a model override Config.DefineTimestamps.
type Timestamped interface {
	Timestamps() bool
}

// Define registers models for Sync. Models that do not opt into timestamps
// while the connection default is off lose their automatic create/update times.
func (r *DB) Define(models ...any) error {
	for _, model := range models {
		if err := r.applyTimestampDefault(model); err != nil {
			return err
		}
	}

	r.lock.Lock()
	r.models = append(r.models, models...)
	r.lock.Unlock()
	return nil
}

func (r *DB) applyTimestampDefault(model any) error {
	enabled := r.cfg.DefineTimestamps
	if t, ok := model.(Timestamped); ok {
		enabled = t.Timestamps()
	}
	if enabled {
		return nil
	}

	// the parsed schema is cached per connection, so the change sticks
	stmt := &gorm.Statement{DB: r.conn}
	if err := stmt.Parse(model); err != nil {
		return errors.Wrap(err, "parsing model")
	}
	for _, field := range stmt.Schema.Fields {
		field.AutoCreateTime = 0
		field.AutoUpdateTime = 0
	}
	return nil
}

func (r *DB) BeforeBulkSync(fn func()) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.beforeSync = append(r.beforeSync, fn)
}

func (r *DB) AfterBulkSync(fn func()) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.afterSync = append(r.afterSync, fn)
}

// Sync creates the tables of every defined model. After-hooks only run when
// the whole sync succeeded.
func (r *DB) Sync(ctx context.Context, options SyncOptions) error {
	r.lock.Lock()
	models := append([]any(nil), r.models...)
	before := append([]func(){}, r.beforeSync...)
	after := append([]func(){}, r.afterSync...)
	r.lock.Unlock()

	for _, fn := range before {
		fn()
	}

	conn := r.Conn(ctx)
	if r.cfg.Dialect == DialectPostgres && r.cfg.Schema != "" {
		if err := conn.Exec("CREATE SCHEMA IF NOT EXISTS ?", clause.Table{Name: r.cfg.Schema}).Error; err != nil {
			return errors.Wrapf(err, "creating schema %s", r.cfg.Schema)
		}
	}

	if options.Force {
		for i := len(models) - 1; i >= 0; i-- {
			if err := conn.Migrator().DropTable(models[i]); err != nil {
				return errors.Wrap(err, "dropping tables")
			}
		}
	}

	if err := conn.AutoMigrate(models...); err != nil {
		return errors.Wrap(err, "migrating models")
	}

	for _, fn := range after {
		fn()
	}
	return nil
}
