package bootstrap

import (
	"github.com/echomag/echomag/internal/application/expiry/usecases"
	revenueUsecases "github.com/echomag/echomag/internal/application/revenue/usecases"
	"github.com/echomag/echomag/internal/infrastructure/scheduler"
)

func (c *Container) initUseCases() {
	expiryCfg := c.cfg.Expiry
	log := c.log.Named("expiry")

	scan := usecases.NewScanExpiredAccountsUseCase(c.repos.accounts, log)
	downgrade := usecases.NewDowngradeAccountsUseCase(c.repos.accounts, expiryCfg.Concurrency, expiryCfg.WriteTimeout, log)
	runCycle := usecases.NewRunExpiryCycleUseCase(scan, downgrade, c.repos.runs, c.statsCache, log)

	c.Scheduler = scheduler.NewSchedulerManager(runCycle, expiryCfg, c.log)

	c.UseCases = &UseCases{
		RunExpiryCycle:       runCycle,
		GetExpiryStatistics:  usecases.NewGetExpiryStatisticsUseCase(c.repos.accounts, c.statsCache, expiryCfg.DefaultHorizonDays, log),
		ListExpiringAccounts: usecases.NewListExpiringAccountsUseCase(c.repos.accounts, expiryCfg.DefaultHorizonDays, log),
		ListExpiryRuns:       usecases.NewListExpiryRunsUseCase(c.repos.runs, log),
		GetSchedulerStatus:   usecases.NewGetSchedulerStatusUseCase(c.Scheduler, runCycle, c.repos.runs, log),
		GetRevenueSummary:    revenueUsecases.NewGetRevenueSummaryUseCase(c.repos.payments, c.repos.accounts, c.log.Named("revenue")),
	}
}
