package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "WIRECHAT"
	envConfigDefaultPath = "WIRECHAT_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "wirechat.yaml"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"server":           "server",
	"secure":           "secure",
	"log-level":        "log_level",
	"credentials-path": "credentials_path",
	"reconnect":        "reconnect.enabled",
	"addr":             "peer.addr",
}

// Load resolves configuration and returns it with the config file path used.
// Precedence: defaults < config file < WIRECHAT_* env < changed flags.
// A missing config file is created with the defaults.
func Load(logger *zerolog.Logger, explicitPath string, flags *pflag.FlagSet) (Config, string, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, flags); err != nil {
		return cfg, "", err
	}

	path := resolveConfigPath(explicitPath)
	v.SetConfigFile(path)
	if err := readOrCreate(v, path, cfg, logger); err != nil {
		return cfg, path, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, path, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, path, nil
}

// setDefaults registers every key so env overrides apply without a config file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server", cfg.Server)
	v.SetDefault("secure", cfg.Secure)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("credentials_path", cfg.CredentialsPath)

	v.SetDefault("reconnect.enabled", cfg.Reconnect.Enabled)
	v.SetDefault("reconnect.max_attempts", cfg.Reconnect.MaxAttempts)
	v.SetDefault("reconnect.initial_interval", cfg.Reconnect.InitialInterval)
	v.SetDefault("reconnect.max_interval", cfg.Reconnect.MaxInterval)

	v.SetDefault("peer.addr", cfg.Peer.Addr)
	v.SetDefault("peer.read_header_timeout", cfg.Peer.ReadHeaderTimeout)
	v.SetDefault("peer.shutdown_timeout", cfg.Peer.ShutdownTimeout)
	v.SetDefault("peer.max_message_length", cfg.Peer.MaxMessageLength)
	v.SetDefault("peer.max_room_length", cfg.Peer.MaxRoomLength)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func readOrCreate(v *viper.Viper, path string, cfg Config, logger *zerolog.Logger) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}

	if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
		// Defaults still apply; the file is a convenience.
		logger.Warn().Err(writeErr).Str("path", path).Msg("failed to write default config")
		return nil
	}
	logger.Info().Str("path", path).Msg("created default config")

	if readErr := v.ReadInConfig(); readErr != nil {
		logger.Warn().Err(readErr).Str("path", path).Msg("failed to read config after writing default")
	}
	return nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
