package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/echomag/echomag/internal/bootstrap"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the expiry scheduler without the HTTP API",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, log, err := bootstrap.LoadRuntime(env, configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	if err := container.Scheduler.Start(); err != nil {
		_ = container.Close(context.Background())
		return fmt.Errorf("failed to start expiry scheduler: %w", err)
	}
	log.Infow("expiry worker started",
		"environment", env,
		"interval", cfg.Expiry.Interval.String())

	<-ctx.Done()
	log.Infow("shutting down expiry worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Expiry.ShutdownTimeout+5*time.Second)
	defer cancel()

	if err := container.Close(shutdownCtx); err != nil {
		log.Errorw("failed to release resources", "error", err)
		return err
	}

	log.Infow("expiry worker exited gracefully")
	return nil
}
