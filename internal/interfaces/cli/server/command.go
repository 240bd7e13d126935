package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/echomag/echomag/internal/bootstrap"
	httpRouter "github.com/echomag/echomag/internal/interfaces/http"
	"github.com/echomag/echomag/internal/shared/goroutine"
)

var (
	env         string
	configPath  string
	noScheduler bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the admin HTTP API together with the recurring plan-expiry scheduler.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Serve the API without running the expiry scheduler")

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

	log.Infow("starting server",
		"environment", env,
		"driver", cfg.Database.Driver,
		"scheduler", !noScheduler)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	if !noScheduler {
		if err := container.Scheduler.Start(); err != nil {
			_ = container.Close(context.Background())
			return fmt.Errorf("failed to start expiry scheduler: %w", err)
		}
	}

	router := httpRouter.NewRouter(container, log)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Expiry.CycleTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})

	select {
	case <-ctx.Done():
		log.Infow("shutting down server")
	case err = <-serveErr:
		log.Errorw("server stopped unexpectedly", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Expiry.ShutdownTimeout+5*time.Second)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Errorw("server forced to shutdown", "error", shutdownErr)
	}
	if closeErr := container.Close(shutdownCtx); closeErr != nil {
		log.Errorw("failed to release resources", "error", closeErr)
	}

	if err != nil {
		return err
	}
	log.Infow("server exited gracefully")
	return nil
}
