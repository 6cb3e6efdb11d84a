// Package config provides phrasevault configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/phrasevault/phrasevault/store"
)

// Config holds all phrasevault configuration.
type Config struct {
	Environment string
	Log         LogConfig
	Store       StoreConfig
	Security    SecurityConfig
	Wallet      WalletConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// StoreConfig selects and parameterizes the persistence backend.
type StoreConfig struct {
	Backend        string
	Path           string
	KeyringService string
}

// SecurityConfig holds key-derivation, lockout, and PIN policy settings.
type SecurityConfig struct {
	KeyIterations    int
	VerifyIterations int
	MaxAttempts      int
	LockoutDuration  time.Duration
	MinPinLength     int
	MaxPinLength     int
}

// WalletConfig holds wallet defaults.
type WalletConfig struct {
	DefaultNetwork string
}

// Load reads configuration from PHRASEVAULT_-prefixed environment
// variables.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment
	v.SetEnvPrefix("phrasevault")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Environment: v.GetString("env"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Store: StoreConfig{
			Backend:        v.GetString("store.backend"),
			Path:           v.GetString("store.path"),
			KeyringService: v.GetString("store.keyring_service"),
		},
		Security: SecurityConfig{
			KeyIterations:    v.GetInt("security.key_iterations"),
			VerifyIterations: v.GetInt("security.verify_iterations"),
			MaxAttempts:      v.GetInt("security.max_attempts"),
			LockoutDuration:  v.GetDuration("security.lockout_duration"),
			MinPinLength:     v.GetInt("security.min_pin_length"),
			MaxPinLength:     v.GetInt("security.max_pin_length"),
		},
		Wallet: WalletConfig{
			DefaultNetwork: v.GetString("wallet.default_network"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Store defaults
	v.SetDefault("store.backend", store.BackendBolt)
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.keyring_service", "phrasevault")

	// Security defaults
	v.SetDefault("security.key_iterations", 210_000)
	v.SetDefault("security.verify_iterations", 10_000)
	v.SetDefault("security.max_attempts", 5)
	v.SetDefault("security.lockout_duration", 5*time.Minute)
	v.SetDefault("security.min_pin_length", 6)
	v.SetDefault("security.max_pin_length", 20)

	// Wallet defaults
	v.SetDefault("wallet.default_network", "mainnet")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	// Floors, not defaults: a host can raise the work factors but never
	// weaken them below the floor.
	if c.Security.KeyIterations < 100_000 {
		return fmt.Errorf("security.key_iterations must be at least 100000, got %d", c.Security.KeyIterations)
	}
	if c.Security.VerifyIterations < 1_000 {
		return fmt.Errorf("security.verify_iterations must be at least 1000, got %d", c.Security.VerifyIterations)
	}
	if c.Security.MaxAttempts < 1 {
		return fmt.Errorf("security.max_attempts must be at least 1, got %d", c.Security.MaxAttempts)
	}
	if c.Security.LockoutDuration <= 0 {
		return fmt.Errorf("security.lockout_duration must be positive, got %v", c.Security.LockoutDuration)
	}
	if c.Security.MinPinLength < 6 {
		return fmt.Errorf("security.min_pin_length must be at least 6, got %d", c.Security.MinPinLength)
	}
	if c.Security.MaxPinLength < c.Security.MinPinLength {
		return fmt.Errorf("security.max_pin_length must be at least security.min_pin_length, got %d", c.Security.MaxPinLength)
	}

	valid := false
	for _, b := range store.Backends() {
		if c.Store.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown store backend %q (valid: %s)", c.Store.Backend, strings.Join(store.Backends(), ", "))
	}
	if (c.Store.Backend == store.BackendBolt || c.Store.Backend == store.BackendSQLite) && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
	}
	return nil
}

// OpenStore opens the configured persistence backend.
func (c *Config) OpenStore() (store.Store, error) {
	path := c.Store.Path
	if c.Store.Backend == store.BackendKeyring {
		path = c.Store.KeyringService
	}
	return store.Open(c.Store.Backend, path)
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "phrasevault.db"
	}
	return filepath.Join(home, ".phrasevault", "vault.db")
}
