package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/FuketsuBaka/sequelize-sscce/internal/config"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/db"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/logger"
)

func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// main.go --dir=./migrations/postgres
	dbConf := config.Get().Database()
	err = db.Migrate(dbConf, getMigrationPath(dbConf.Dialect))
	if err != nil {
		logger.Error("migration: error running migrations", "error", err)
		os.Exit(1)
	}
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Stat(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Stat(".env"); err != nil {
		return ""
	}
	return ".env"
}

func getMigrationPath(dialect db.Dialect) string {
	for _, v := range os.Args {
		if strings.Contains(v, "--dir=") {
			s := strings.Split(v, "=")
			if _, err := os.Stat(s[1]); err != nil {
				logger.Error("failed to open the passed migration dir, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return filepath.Join("migrations", string(dialect))
}
