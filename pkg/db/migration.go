package db

import (
	"database/sql"

	"github.com/FuketsuBaka/sequelize-sscce/pkg/logger"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// Migrate applies the goose migrations in dir, an alternative to Sync that
// builds the same schema from plain SQL.
func Migrate(config Config, dir string) error {
	db, dialect, err := newSqlConnection(config)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetLogger(logger.GetLogger().Named("migrate"))
	if err = goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err = goose.Up(db, dir); err != nil {
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}

func newSqlConnection(config Config) (*sql.DB, string, error) {
	switch config.Dialect {
	case DialectPostgres:
		db, err := sql.Open("postgres", config.postgresDSN(false))
		return db, "postgres", err
	case DialectSQLite:
		storage := config.Storage
		if storage == "" {
			storage = ":memory:"
		}
		// registered by gorm.io/driver/sqlite
		db, err := sql.Open("sqlite3", storage)
		return db, "sqlite3", err
	}
	return nil, "", errors.Wrapf(ErrUnsupportedDialect, "%q", config.Dialect)
}
