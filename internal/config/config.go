package config

import "time"

// Config holds client and peer configuration values.
type Config struct {
	Server          string          `mapstructure:"server" yaml:"server"`
	Secure          bool            `mapstructure:"secure" yaml:"secure"`
	LogLevel        string          `mapstructure:"log_level" yaml:"log_level"`
	CredentialsPath string          `mapstructure:"credentials_path" yaml:"credentials_path"`
	Reconnect       ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`
	Peer            PeerConfig      `mapstructure:"peer" yaml:"peer"`
}

// ReconnectConfig controls whether a new session follows a lost one.
type ReconnectConfig struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxAttempts     int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval" yaml:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval" yaml:"max_interval"`
}

// PeerConfig configures the development room server.
type PeerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxMessageLength  int           `mapstructure:"max_message_length" yaml:"max_message_length"`
	MaxRoomLength     int           `mapstructure:"max_room_length" yaml:"max_room_length"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Server:          "localhost:8000",
		LogLevel:        "info",
		CredentialsPath: "wirechat-credentials.db",
		Reconnect: ReconnectConfig{
			MaxAttempts:     5,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     30 * time.Second,
		},
		Peer: PeerConfig{
			Addr:              ":8000",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			MaxMessageLength:  255,
			MaxRoomLength:     100,
		},
	}
}
