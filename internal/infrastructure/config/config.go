package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Nimbus Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Database   DatabaseConfig   `yaml:"database"`
	API        APIConfig        `yaml:"api"`
	Weather    WeatherConfig    `yaml:"weather"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
	Security   SecurityConfig   `yaml:"security"`
}

// SiteConfig contains deployment-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WeatherConfig contains settings for the upstream weather data service.
//
// URL is the endpoint returning OpenWeatherMap-format JSON for a lat/lon
// query. CacheTTL bounds how long a snapshot is served from the in-memory
// cache before a fresh fetch.
type WeatherConfig struct {
	URL      string `yaml:"url"`
	Timeout  int    `yaml:"timeout"`   // seconds, outbound request timeout
	CacheTTL int    `yaml:"cache_ttl"` // seconds, per-coordinate snapshot TTL
}

// ScenarioConfig contains settings for the scenario rule lookup service.
//
// URL may point at a peer deployment or at this binary's own API; rules
// are always fetched with the caller's forwarded credential.
type ScenarioConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"` // seconds, outbound request timeout
}

// EvaluationConfig contains settings for the interval evaluation scheduler.
//
// The scheduler only runs when Enabled is true and ServiceToken is set:
// every run needs a bearer credential to forward to the weather and
// scenario services, so an unset token disables scheduled evaluation.
type EvaluationConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Interval     int    `yaml:"interval"` // seconds between runs
	ServiceToken string `yaml:"service_token"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: NIMBUS_SECTION_KEY
// For example: NIMBUS_DATABASE_PATH, NIMBUS_WEATHER_URL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "home-001",
			Name:     "Nimbus Home",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/nimbus.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Weather: WeatherConfig{
			URL:      "http://localhost:8081/api/v1/weather",
			Timeout:  10,
			CacheTTL: 60,
		},
		Scenario: ScenarioConfig{
			URL:     "http://localhost:8080/api/v1/scenarios",
			Timeout: 10,
		},
		Evaluation: EvaluationConfig{
			Enabled:  false,
			Interval: 60,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "nimbus-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 15,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: NIMBUS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("NIMBUS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("NIMBUS_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("NIMBUS_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Collaborator services
	if v := os.Getenv("NIMBUS_WEATHER_URL"); v != "" {
		cfg.Weather.URL = v
	}
	if v := os.Getenv("NIMBUS_SCENARIO_URL"); v != "" {
		cfg.Scenario.URL = v
	}

	// Evaluation scheduler credential
	if v := os.Getenv("NIMBUS_EVALUATION_SERVICE_TOKEN"); v != "" {
		cfg.Evaluation.ServiceToken = v
	}

	// MQTT
	if v := os.Getenv("NIMBUS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("NIMBUS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("NIMBUS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("NIMBUS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := os.Getenv("NIMBUS_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Collaborator validation
	if c.Weather.URL == "" {
		errs = append(errs, "weather.url is required")
	}
	if c.Weather.CacheTTL < 0 {
		errs = append(errs, "weather.cache_ttl must not be negative")
	}
	// scenario.url may be empty: rules are then served from the local store.

	// Evaluation validation
	if c.Evaluation.Enabled && c.Evaluation.Interval < 1 {
		errs = append(errs, "evaluation.interval must be at least 1 second")
	}
	if c.Evaluation.Enabled && c.Evaluation.ServiceToken == "" {
		errs = append(errs, "evaluation.service_token is required when the scheduler is enabled")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Security validation - JWT secret is REQUIRED
	// Status transitions drive physical devices; a forgeable token would
	// let an attacker switch them at will.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set NIMBUS_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetWeatherTimeout returns the weather client timeout as a Duration.
func (c *Config) GetWeatherTimeout() time.Duration {
	return time.Duration(c.Weather.Timeout) * time.Second
}

// GetWeatherCacheTTL returns the weather snapshot cache TTL as a Duration.
func (c *Config) GetWeatherCacheTTL() time.Duration {
	return time.Duration(c.Weather.CacheTTL) * time.Second
}

// GetScenarioTimeout returns the scenario client timeout as a Duration.
func (c *Config) GetScenarioTimeout() time.Duration {
	return time.Duration(c.Scenario.Timeout) * time.Second
}

// GetEvaluationInterval returns the scheduler interval as a Duration.
func (c *Config) GetEvaluationInterval() time.Duration {
	return time.Duration(c.Evaluation.Interval) * time.Second
}
