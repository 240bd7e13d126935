package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/echomag/echomag/internal/shared/config"
	"github.com/echomag/echomag/internal/shared/utils"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Mongo    sharedConfig.MongoConfig    `mapstructure:"mongo"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	BizTime  sharedConfig.BizTimeConfig  `mapstructure:"biztime"`
	Expiry   sharedConfig.ExpiryConfig   `mapstructure:"expiry"`
	Admin    sharedConfig.AdminConfig    `mapstructure:"admin"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// When configPath is empty the file is optional and defaults apply.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("ECHOMAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := utils.ValidateStruct(&config.Expiry); err != nil {
		return nil, fmt.Errorf("invalid expiry config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "echomag")
	v.SetDefault("database.sqlite_path", "echomag.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.connect_retries", 5)

	// MongoDB defaults
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "echomag")
	v.SetDefault("mongo.connect_timeout", "10s")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("biztime.timezone", "UTC")

	// Expiry defaults
	v.SetDefault("expiry.interval", "24h")
	v.SetDefault("expiry.run_on_start", true)
	v.SetDefault("expiry.cycle_timeout", "10m")
	v.SetDefault("expiry.write_timeout", "10s")
	v.SetDefault("expiry.concurrency", 8)
	v.SetDefault("expiry.default_horizon_days", 30)
	v.SetDefault("expiry.stats_cache_ttl", "60s")
	v.SetDefault("expiry.shutdown_timeout", "30s")
	v.SetDefault("expiry.trigger_token", "")

	// Admin defaults
	v.SetDefault("admin.role_cache_size", 1024)
	v.SetDefault("admin.role_cache_ttl", "1m")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.token_ttl", "1h")
}
