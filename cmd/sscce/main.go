package main

import (
	"context"
	"os"
	"strings"

	"github.com/FuketsuBaka/sequelize-sscce/internal/config"
	"github.com/FuketsuBaka/sequelize-sscce/internal/repository"
	"github.com/FuketsuBaka/sequelize-sscce/internal/scenario"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/db"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/logger"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/prom"
	"github.com/pkg/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	metrics, err := prom.Create(config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed creating metrics", "error", err)
		return 1
	}

	dbConf := config.Get().Database()
	conn, err := db.Create(dbConf, metrics)
	if err != nil {
		logger.Error("failed connecting to database", "dialect", dbConf.Dialect, "error", err)
		return 1
	}
	defer conn.Close()

	users, err := repository.NewUserRepository(conn)
	if err != nil {
		logger.Error("failed defining users model", "error", err)
		return 1
	}

	report, err := scenario.New(conn, users).Run(context.Background())
	if dbConf.Benchmark {
		logBenchmark(metrics)
	}

	switch {
	case errors.Is(err, scenario.ErrExpectationFailed):
		logger.Error("scenario did not reproduce", "error", err)
		return 1
	case err != nil:
		logger.Error("scenario aborted", "error", err)
		return 2
	}

	logger.Info("scenario reproduced",
		"dialect", dbConf.Dialect,
		"users", len(report.Users),
		"count", report.Count,
		"destroy", report.Destroy.String(),
	)
	return 0
}

func logBenchmark(metrics *prom.Metrics) {
	stats, err := metrics.Summary()
	if err != nil {
		logger.Warn("failed gathering query metrics", "error", err)
		return
	}
	for _, s := range stats {
		logger.Info("query benchmark",
			"operation", s.Operation,
			"count", s.Count,
			"total_ms", s.Total.Milliseconds(),
			"failures", s.Failures,
		)
	}
}

func argContainsEnvPath() string {
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
	return ""
}
