package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/FuketsuBaka/sequelize-sscce/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require.NoError(t, Load(""))

	cfg := Get().Database()
	assert.Equal(t, db.DialectPostgres, cfg.Dialect)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "test", cfg.User)
	assert.Equal(t, "test", cfg.Password)
	assert.Equal(t, "tests", cfg.Database)
	assert.Equal(t, "tests", cfg.Schema)
	assert.True(t, cfg.LogQueryParameters)
	assert.True(t, cfg.Benchmark)
	assert.False(t, cfg.DefineTimestamps)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowThreshold)
	assert.Equal(t, "sscce", Get().PromNamespace)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DB_DIALECT", "sqlite")
	t.Setenv("DB_STORAGE", ":memory:")
	t.Setenv("DB_BENCHMARK", "false")

	require.NoError(t, Load(""))

	cfg := Get().Database()
	assert.Equal(t, db.DialectSQLite, cfg.Dialect)
	assert.Equal(t, ":memory:", cfg.Storage)
	assert.False(t, cfg.Benchmark)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=from_file\nDB_PORT=6543\n"), 0o600))
	// godotenv sets variables for the whole process
	t.Cleanup(func() {
		_ = os.Unsetenv("DB_NAME")
		_ = os.Unsetenv("DB_PORT")
	})

	require.NoError(t, Load(path))

	assert.Equal(t, "from_file", Get().DBName)
	assert.Equal(t, "6543", Get().DBPort)
}

func TestLoad_MissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
