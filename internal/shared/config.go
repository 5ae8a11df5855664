package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values loaded from the config file.
const (
	EnvBackendURL = "LMX_BACKEND_URL"
	EnvLogLevel   = "LMX_LOG_LEVEL"
)

// Progress scales the simulator can report.
const (
	ScaleFraction = "fraction"
	ScalePercent  = "percent"
)

// Simulator state stores.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend   BackendConfig   `toml:"backend"`
	Server    ServerConfig    `toml:"server"`
	Simulator SimulatorConfig `toml:"simulator"`
	Database  DatabaseConfig  `toml:"database"`
	Log       LogConfig       `toml:"log"`
}

// BackendConfig locates the LiveMigrate service the dashboard polls.
type BackendConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request HTTP timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// ServerConfig contains HTTP server settings for the web dashboard.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SimulatorConfig controls the development backend.
type SimulatorConfig struct {
	Host              string  `toml:"host"`
	Port              int     `toml:"port"`
	Store             string  `toml:"store"`
	TotalRecords      int     `toml:"total_records"`
	BatchSize         int     `toml:"batch_size"`
	RecordDelayMS     int     `toml:"record_delay_ms"`
	BatchDelayMS      int     `toml:"batch_delay_ms"`
	ProgressScale     string  `toml:"progress_scale"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Addr returns host:port.
func (s SimulatorConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RecordDelay is the pause after each simulated record.
func (s SimulatorConfig) RecordDelay() time.Duration {
	return time.Duration(s.RecordDelayMS) * time.Millisecond
}

// BatchDelay is the pause after each simulated batch.
func (s SimulatorConfig) BatchDelay() time.Duration {
	return time.Duration(s.BatchDelayMS) * time.Millisecond
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads the config file at path when it exists, falling back to defaults, then applies environment overrides.
//
// A .env file in the working directory is loaded first when present; variables already set in the environment win.
func ResolveConfig(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides config values with LMX_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first invalid setting wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: backend.url %q must be an absolute URL", ErrInvalidConfig, c.Backend.URL)
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: backend.timeout_seconds must not be negative", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Simulator.Port <= 0 || c.Simulator.Port > 65535 {
		return fmt.Errorf("%w: simulator.port %d out of range", ErrInvalidConfig, c.Simulator.Port)
	}
	switch c.Simulator.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("%w: simulator.store must be %q or %q", ErrInvalidConfig, StoreMemory, StoreSQLite)
	}
	switch c.Simulator.ProgressScale {
	case ScaleFraction, ScalePercent:
	default:
		return fmt.Errorf("%w: simulator.progress_scale must be %q or %q", ErrInvalidConfig, ScaleFraction, ScalePercent)
	}
	if c.Simulator.TotalRecords <= 0 || c.Simulator.BatchSize <= 0 {
		return fmt.Errorf("%w: simulator.total_records and simulator.batch_size must be positive", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
