package config

import "time"

// StatusConfig controls the optional status servers started next to a run.
type StatusConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	REST    RESTConfig `mapstructure:"rest"`
	GRPC    GRPCConfig `mapstructure:"grpc"`
}

// RESTConfig contains REST API server configuration.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GRPCConfig contains gRPC server configuration.
type GRPCConfig struct {
	Addr             string        `mapstructure:"addr"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
	KeepaliveMinTime time.Duration `mapstructure:"keepalive_min_time"`
}
