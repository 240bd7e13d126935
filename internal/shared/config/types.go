package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the account store backend. Driver is one of
// mysql, sqlite or mongodb; the mongodb driver reads MongoConfig instead.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnectRetries  uint   `mapstructure:"connect_retries"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type BizTimeConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// ExpiryConfig tunes the plan-expiry scheduler and cycle.
type ExpiryConfig struct {
	Interval           time.Duration `mapstructure:"interval" validate:"gt=0"`
	RunOnStart         bool          `mapstructure:"run_on_start"`
	CycleTimeout       time.Duration `mapstructure:"cycle_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	Concurrency        int           `mapstructure:"concurrency" validate:"gte=1,lte=256"`
	DefaultHorizonDays int           `mapstructure:"default_horizon_days" validate:"gte=0"`
	StatsCacheTTL      time.Duration `mapstructure:"stats_cache_ttl" validate:"gte=0"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	TriggerToken       string        `mapstructure:"trigger_token"`
}

type AdminConfig struct {
	RoleCacheSize int           `mapstructure:"role_cache_size"`
	RoleCacheTTL  time.Duration `mapstructure:"role_cache_ttl"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}
