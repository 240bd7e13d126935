package bootstrap

import (
	"fmt"

	"github.com/echomag/echomag/internal/infrastructure/config"
	"github.com/echomag/echomag/internal/shared/biztime"
	"github.com/echomag/echomag/internal/shared/logger"
)

// LoadRuntime loads configuration and initialises the process-wide logger
// and business timezone. Every command calls it first.
func LoadRuntime(env, configPath string) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = MapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Business timezone drives day and month boundaries in reports
	if err := biztime.Init(cfg.BizTime.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
