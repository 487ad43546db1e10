package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/auth"
	"github.com/foodshare/foodshare/internal/db"
	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/pkg/config"
	"github.com/foodshare/foodshare/pkg/logging"
)

var seedDonor string

func main() {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the FoodShare database schema",
		SilenceUsage: true,
		RunE:         run,
	}
	root.Flags().StringVar(&seedDonor, "seed-donor", "", "create a donor account, given as email:password")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logging.GetLogger().Sync()
	logger := logging.WithComponent("migrate")

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("Schema migrated")

	if seedDonor == "" {
		return nil
	}
	email, password, ok := strings.Cut(seedDonor, ":")
	if !ok || email == "" || password == "" {
		return errors.New("--seed-donor must be email:password")
	}

	svc := auth.New(db.NewRepository(database.DB), &cfg.Auth)
	id, err := svc.Register(ctx, email, password, "donor")
	if errors.Is(err, donation.ErrValidation) {
		logger.Info("Donor account already exists", zap.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed donor: %w", err)
	}
	logger.Info("Donor account created", zap.Int64("user_id", id.ID), zap.String("email", email))
	return nil
}
