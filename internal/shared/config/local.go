package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LocalConfig contains all configuration for a local run.
type LocalConfig struct {
	Job              JobConfig     `mapstructure:"job"`
	Input            string        `mapstructure:"input"`
	Output           string        `mapstructure:"output"`
	Threads          int           `mapstructure:"threads"`
	Partitions       int           `mapstructure:"partitions"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	Logging          LoggingConfig `mapstructure:"logging"`
	Status           StatusConfig  `mapstructure:"status"`
}

// JobConfig selects a registered job and its parameters.
type JobConfig struct {
	Name   string            `mapstructure:"name"`
	Params map[string]string `mapstructure:"params"`
}

// LoadLocal loads the local run configuration from the given path.
// If configPath is empty, it looks for local.yaml in the config/ directory.
// Environment variables with PARMR_ prefix override config file values.
func LoadLocal(configPath string) (*LocalConfig, error) {
	v := viper.New()

	v.SetDefault("job.name", "wordcount")
	v.SetDefault("threads", runtime.NumCPU())
	v.SetDefault("partitions", 4)
	v.SetDefault("progress_interval", time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.rest.addr", ":8080")
	v.SetDefault("status.rest.read_timeout", 15*time.Second)
	v.SetDefault("status.rest.write_timeout", 15*time.Second)
	v.SetDefault("status.rest.idle_timeout", 60*time.Second)
	v.SetDefault("status.grpc.addr", ":9090")
	v.SetDefault("status.grpc.enable_reflection", true)
	v.SetDefault("status.grpc.keepalive_min_time", 30*time.Second)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("local")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PARMR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg LocalConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings a run cannot start without.
func (c *LocalConfig) Validate() error {
	switch {
	case c.Job.Name == "":
		return errors.New("job name is required")
	case c.Input == "":
		return errors.New("input pattern is required")
	case c.Output == "":
		return errors.New("output directory is required")
	case c.Threads < 1:
		return fmt.Errorf("threads must be >= 1, got %d", c.Threads)
	case c.Partitions < 1:
		return fmt.Errorf("partitions must be >= 1, got %d", c.Partitions)
	case c.ProgressInterval <= 0:
		return fmt.Errorf("progress interval must be positive, got %s", c.ProgressInterval)
	}
	return nil
}
