package config

import (
	"time"

	"github.com/FuketsuBaka/sequelize-sscce/pkg/db"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/logger"
	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every setting of the reproduction. Defaults match the
// credentials of the CI database the scenario was first reported against.
type Config struct {
	AppEnv  string `env:"APP_ENV,default=dev"`
	AppName string `env:"APP_NAME,default=sequelize_sscce"`

	DBDialect            string        `env:"DB_DIALECT,default=postgres"`
	DBHost               string        `env:"DB_HOST,default=localhost"`
	DBPort               string        `env:"DB_PORT,default=5432"`
	DBUser               string        `env:"DB_USER,default=test"`
	DBPassword           string        `env:"DB_PASSWORD,default=test"`
	DBName               string        `env:"DB_NAME,default=tests"`
	DBSchema             string        `env:"DB_SCHEMA,default=tests"`
	DBStorage            string        `env:"DB_STORAGE,default=sscce.db"`
	DBLogQueryParameters bool          `env:"DB_LOG_QUERY_PARAMETERS,default=true"`
	DBBenchmark          bool          `env:"DB_BENCHMARK,default=true"`
	DBDefineTimestamps   bool          `env:"DB_DEFINE_TIMESTAMPS,default=false"`
	DBSlowThreshold      time.Duration `env:"DB_SLOW_THRESHOLD,default=200ms"`

	PromNamespace string `env:"PROM_NAMESPACE,default=sscce"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Database converts the DB_* settings into a connection config.
func (c *Config) Database() db.Config {
	return db.Config{
		Dialect:            db.Dialect(c.DBDialect),
		Host:               c.DBHost,
		Port:               c.DBPort,
		User:               c.DBUser,
		Password:           c.DBPassword,
		Database:           c.DBName,
		Schema:             c.DBSchema,
		Storage:            c.DBStorage,
		LogQueryParameters: c.DBLogQueryParameters,
		Benchmark:          c.DBBenchmark,
		DefineTimestamps:   c.DBDefineTimestamps,
		SlowThreshold:      c.DBSlowThreshold,
	}
}
