package expiry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/echomag/echomag/internal/application/expiry/usecases"
	"github.com/echomag/echomag/internal/bootstrap"
	"github.com/echomag/echomag/internal/domain/expiry"
)

var (
	env        string
	configPath string
	nowFlag    string
	horizon    int
	days       int
	limit      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expiry",
		Short: "Plan expiry operations",
		Long:  `Run an expiry cycle once or inspect expiry statistics and run history.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newRunCommand(),
		newStatsCommand(),
		newExpiringCommand(),
		newRunsCommand(),
	)

	return cmd
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one expiry cycle and print its result",
		RunE:  runCycle,
	}
	cmd.Flags().StringVar(&nowFlag, "now", "", "Evaluate expiry at this RFC3339 instant instead of the current time")
	return cmd
}

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print expiry statistics for paid accounts",
		RunE:  runStats,
	}
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Expiring-soon horizon in days (default from config)")
	return cmd
}

func newExpiringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List paid accounts expiring within the given number of days",
		RunE:  runExpiring,
	}
	cmd.Flags().IntVar(&days, "days", 0, "Look-ahead window in days (default from config)")
	return cmd
}

func newRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent expiry runs",
		RunE:  runRuns,
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", usecases.DefaultRunListLimit, "Number of runs to show")
	return cmd
}

func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *bootstrap.Container) error) error {
	cfg, log, err := bootstrap.LoadRuntime(env, configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	container, err := bootstrap.NewContainer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			log.Warnw("failed to release resources", "error", err)
		}
	}()

	return fn(ctx, container)
}

func runCycle(cmd *cobra.Command, args []string) error {
	var now *time.Time
	if nowFlag != "" {
		parsed, err := time.Parse(time.RFC3339, nowFlag)
		if err != nil {
			return fmt.Errorf("invalid --now value: %w", err)
		}
		now = &parsed
	}

	return withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
		timeout := c.Config().Expiry.CycleTimeout
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		result := c.UseCases.RunExpiryCycle.Execute(ctx, usecases.RunExpiryCycleCommand{
			Now:     now,
			Trigger: expiry.TriggerCLI,
		})
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("expiry cycle failed: %s", result.Message)
		}
		return nil
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
		query := usecases.GetExpiryStatisticsQuery{}
		if cmd.Flags().Changed("horizon") {
			query.HorizonDays = &horizon
		}
		stats, err := c.UseCases.GetExpiryStatistics.Execute(ctx, query)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stats)
	})
}

func runExpiring(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
		query := usecases.ListExpiringAccountsQuery{}
		if cmd.Flags().Changed("days") {
			query.Days = &days
		}
		result, err := c.UseCases.ListExpiringAccounts.Execute(ctx, query)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	})
}

func runRuns(cmd *cobra.Command, args []string) error {
	return withContainer(cmd, func(ctx context.Context, c *bootstrap.Container) error {
		runs, err := c.UseCases.ListExpiryRuns.Execute(ctx, usecases.ListExpiryRunsQuery{Limit: &limit})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), runs)
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
