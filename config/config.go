package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the TCP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig locates the durable artifacts: key material, the encrypted
// ledger blob and nonce, and the plain customer registry.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type LedgerConfig struct {
	// AllowReset is the explicit operator confirmation required to discard
	// a ledger that fails decryption or chain validation at startup. When
	// false the server refuses to start instead of silently losing history.
	AllowReset bool `mapstructure:"allow_reset"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SLS_ (Secure Ledger
// Service). Nested keys use underscore: SLS_SERVER_PORT, SLS_STORAGE_DATA_DIR.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults. 3876 is the port the original teller protocol used.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3876)
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("ledger.allow_reset", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SLS_LEDGER_ALLOW_RESET -> ledger.allow_reset
	v.SetEnvPrefix("SLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required; env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
