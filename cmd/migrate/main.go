package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-management/backend/config"
	"github.com/pageza/recipe-management/backend/internal/database"
	"github.com/pageza/recipe-management/backend/internal/logger"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Revert the initial migration, dropping the Recipes table")
	status := flag.Bool("status", false, "Print migration status and exit")
	flag.Parse()

	os.Exit(run(*rollback, *status))
}

func run(rollback, status bool) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		return 2
	}
	if err := logger.Init(cfg.LogLevel, cfg.Environment == config.Development); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()
	log := logger.WithModule("migrate")

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return 1
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db.DB)
	if err != nil {
		log.Error("failed to create migrator", zap.Error(err))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch {
	case status:
		results, err := migrator.Status(ctx)
		if err != nil {
			log.Error("failed to read migration status", zap.Error(err))
			return 1
		}
		for _, r := range results {
			fmt.Printf("%d\t%s\t%s\n", r.Source.Version, r.State, r.Source.Path)
		}
		return 0
	case rollback:
		err = migrator.Revert(ctx)
	default:
		err = migrator.Apply(ctx)
	}

	var schemaErr *database.SchemaError
	if errors.As(err, &schemaErr) {
		log.Error("migration failed",
			zap.String("op", schemaErr.Op),
			zap.String("table", schemaErr.Table),
			zap.Int64("version", schemaErr.Version),
			zap.Error(err),
		)
		return 1
	}
	if err != nil {
		log.Error("migration failed", zap.Error(err))
		return 1
	}
	return 0
}
