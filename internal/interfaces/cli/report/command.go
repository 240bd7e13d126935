package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	revenueUsecases "github.com/echomag/echomag/internal/application/revenue/usecases"
	"github.com/echomag/echomag/internal/bootstrap"
)

var (
	env        string
	configPath string
	months     int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reporting commands",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	revenue := &cobra.Command{
		Use:   "revenue",
		Short: "Print the monthly revenue summary",
		RunE:  runRevenue,
	}
	revenue.Flags().IntVar(&months, "months", 0, "Number of months to include (default 12)")
	cmd.AddCommand(revenue)

	return cmd
}

func runRevenue(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap.LoadRuntime(env, configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	container, err := bootstrap.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer container.Close(ctx)

	query := revenueUsecases.GetRevenueSummaryQuery{}
	if cmd.Flags().Changed("months") {
		query.Months = &months
	}

	summary, err := container.UseCases.GetRevenueSummary.Execute(ctx, query)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
