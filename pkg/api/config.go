package api

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Jobs   JobConfig
	CORS   CORSConfig

	// SummaryConfig is an optional summary config file applied to every job
	// before per-request overrides.
	SummaryConfig string
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type JobConfig struct {
	MaxWorkers      int
	JobTimeout      time.Duration
	CleanupInterval time.Duration
	ResultTTL       time.Duration
	MaxBodyBytes    int64
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads the daemon configuration from SUMMARYD_* environment
// variables, e.g. SUMMARYD_SERVER_ADDRESS or SUMMARYD_JOBS_MAX_WORKERS.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("summaryd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("jobs.max_workers", 4)
	v.SetDefault("jobs.timeout", 10*time.Minute)
	v.SetDefault("jobs.cleanup_interval", 5*time.Minute)
	v.SetDefault("jobs.ttl", time.Hour)
	v.SetDefault("jobs.max_body_bytes", int64(100<<20)) // 100MB
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("summary.config", "")

	cfg := &Config{
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Jobs: JobConfig{
			MaxWorkers:      v.GetInt("jobs.max_workers"),
			JobTimeout:      v.GetDuration("jobs.timeout"),
			CleanupInterval: v.GetDuration("jobs.cleanup_interval"),
			ResultTTL:       v.GetDuration("jobs.ttl"),
			MaxBodyBytes:    v.GetInt64("jobs.max_body_bytes"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		SummaryConfig: v.GetString("summary.config"),
	}
	if cfg.Jobs.MaxWorkers < 1 {
		cfg.Jobs.MaxWorkers = 1
	}
	return cfg, nil
}
