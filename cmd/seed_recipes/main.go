package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/recipe-management/backend/config"
	"github.com/pageza/recipe-management/backend/internal/actor"
	"github.com/pageza/recipe-management/backend/internal/database"
	"github.com/pageza/recipe-management/backend/internal/logger"
	"github.com/pageza/recipe-management/backend/internal/service"
	"github.com/pageza/recipe-management/backend/internal/testhelpers/fakes"
)

const seedActor = "seed"

func main() {
	count := flag.Int("count", 25, "Number of recipes to generate")
	seed := flag.Uint64("seed", 0, "Random seed; 0 picks one")
	flag.Parse()

	if err := run(*count, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(count int, seed uint64) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogLevel, true); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.WithModule("seed")

	db, err := database.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db.DB)
	if err != nil {
		return err
	}
	ctx := actor.NewContext(context.Background(), seedActor)
	if err := migrator.Up(ctx); err != nil {
		return err
	}

	recipes := service.NewRecipeService(db.DB)
	gen := fakes.New(seed)
	created := 0
	for i := 0; i < count; i++ {
		r, err := recipes.CreateRecipe(ctx, gen.RecipeForCreation())
		if err != nil {
			log.Warn("failed to create recipe", zap.Int("index", i), zap.Error(err))
			continue
		}
		created++
		log.Debug("created recipe", zap.String("id", r.ID.String()), zap.Stringp("title", r.Title))
	}

	log.Info("seeding complete", zap.Int("created", created), zap.Int("requested", count))
	if created < count {
		return fmt.Errorf("created %d of %d recipes", created, count)
	}
	return nil
}
