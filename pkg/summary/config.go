package summary

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages summarisation settings using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Encoding
	v.SetDefault("encode.algorithm", EncoderSorted)
	v.SetDefault("encode.symmetric", false)

	// Lossy drop pass
	v.SetDefault("drop.enabled", false)
	v.SetDefault("drop.error_bound", 0.0)

	// Driver loop
	v.SetDefault("driver.max_iterations", 20)
	v.SetDefault("driver.report_every", 0)
	v.SetDefault("strategy.threshold_floor", 0.0)

	// Performance parameters
	v.SetDefault("performance.parallel", true)
	v.SetDefault("performance.num_workers", runtime.NumCPU())

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *Config) EncodeAlgorithm() string { return c.v.GetString("encode.algorithm") }
func (c *Config) Symmetric() bool { return c.v.GetBool("encode.symmetric") }

func (c *Config) DropEnabled() bool { return c.v.GetBool("drop.enabled") }
func (c *Config) DropErrorBound() float64 { return c.v.GetFloat64("drop.error_bound") }

func (c *Config) MaxIterations() int { return c.v.GetInt("driver.max_iterations") }
func (c *Config) ReportEvery() int { return c.v.GetInt("driver.report_every") }
func (c *Config) ThresholdFloor() float64 { return c.v.GetFloat64("strategy.threshold_floor") }

func (c *Config) Parallel() bool { return c.v.GetBool("performance.parallel") }
func (c *Config) NumWorkers() int { return c.v.GetInt("performance.num_workers") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }

// Workers is the effective worker count: 1 when parallelism is off.
func (c *Config) Workers() int {
	if !c.Parallel() || c.NumWorkers() < 1 {
		return 1
	}
	return c.NumWorkers()
}

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "summary").Logger()
}
