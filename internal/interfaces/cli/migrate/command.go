package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/echomag/echomag/internal/bootstrap"
	"github.com/echomag/echomag/internal/infrastructure/config"
	"github.com/echomag/echomag/internal/infrastructure/database"
	"github.com/echomag/echomag/internal/infrastructure/migration"
	"github.com/echomag/echomag/internal/infrastructure/mongostore"
	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/logger"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply schema migrations for the configured store and report their status.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply pending scripts on MySQL, sync tables on SQLite, or create indexes on MongoDB.`,
		RunE:  runUp,
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database.`,
		RunE:  runStatus,
	}
}

func initEnv(ctx context.Context) (*config.Config, logger.Interface, error) {
	cfg, log, err := bootstrap.LoadRuntime(env, configPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.Driver == constants.DriverMongoDB {
		return cfg, log, nil
	}

	if err := database.Init(ctx, &cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, log, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, log, err := initEnv(ctx)
	if err != nil {
		return err
	}

	log.Infow("running up migrations", "environment", env, "driver", cfg.Database.Driver)

	if cfg.Database.Driver == constants.DriverMongoDB {
		store, err := database.ConnectMongo(ctx, &cfg.Mongo, cfg.Database.ConnectRetries)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		if err := mongostore.EnsureIndexes(ctx, store.Database); err != nil {
			log.Errorw("index creation failed", "error", err)
			return fmt.Errorf("index creation failed: %w", err)
		}
		log.Infow("mongo indexes are up to date")
		return nil
	}
	defer database.Close()

	manager, err := migration.NewManager(cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	if err := manager.Migrate(database.Get()); err != nil {
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := initEnv(context.Background())
	if err != nil {
		return err
	}
	if cfg.Database.Driver != constants.DriverMySQL {
		return fmt.Errorf("status is only tracked for the %s driver", constants.DriverMySQL)
	}
	defer database.Close()

	log.Infow("checking migration status", "environment", env)

	manager, err := migration.NewManager(cfg.Database.Driver, log)
	if err != nil {
		return err
	}

	version, err := manager.Version(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", env)
	fmt.Fprintf(out, "  Current Version: %d\n", version)

	if err := manager.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}
