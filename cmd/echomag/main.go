package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/echomag/echomag/internal/interfaces/cli/admin"
	"github.com/echomag/echomag/internal/interfaces/cli/expiry"
	"github.com/echomag/echomag/internal/interfaces/cli/migrate"
	"github.com/echomag/echomag/internal/interfaces/cli/report"
	"github.com/echomag/echomag/internal/interfaces/cli/server"
	"github.com/echomag/echomag/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "echomag",
		Short: "EchoMag subscription plan service",
		Long:  `EchoMag downgrades lapsed paid subscriptions to the free tier and serves expiry and revenue reports to the admin console.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		expiry.NewCommand(),
		report.NewCommand(),
		migrate.NewCommand(),
		admin.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
