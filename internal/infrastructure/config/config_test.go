package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
site:
  id: "test-home"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
weather:
  url: "http://weather.local/api/v1/weather"
  cache_ttl: 30
scenario:
  url: "http://scenario.local/api/v1/scenarios"
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-home" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-home")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.Weather.URL != "http://weather.local/api/v1/weather" {
		t.Errorf("Weather.URL = %q, want %q", cfg.Weather.URL, "http://weather.local/api/v1/weather")
	}

	if got := cfg.GetWeatherCacheTTL(); got != 30*time.Second {
		t.Errorf("GetWeatherCacheTTL() = %v, want %v", got, 30*time.Second)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("NIMBUS_WEATHER_URL", "http://override.local/weather")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Weather.URL != "http://override.local/weather" {
		t.Errorf("Weather.URL = %q, want env override", cfg.Weather.URL)
	}
}

func TestConfig_Validate(t *testing.T) {
	// validJWTSecret is a secret that meets the 32-character minimum requirement
	validJWTSecret := "test-secret-key-at-least-32-chars!"

	valid := func() *Config {
		return &Config{
			Site:     SiteConfig{ID: "home-001"},
			Database: DatabaseConfig{Path: "/data/nimbus.db"},
			API:      APIConfig{Port: 8080},
			Weather:  WeatherConfig{URL: "http://localhost:8081/weather", CacheTTL: 60},
			Scenario: ScenarioConfig{URL: "http://localhost:8080/scenarios"},
			MQTT:     MQTTConfig{QoS: 1},
			Security: SecurityConfig{JWT: JWTConfig{Secret: validJWTSecret}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing site id",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "missing weather url",
			mutate:  func(c *Config) { c.Weather.URL = "" },
			wantErr: true,
		},
		{
			name:    "empty scenario url means local rules",
			mutate:  func(c *Config) { c.Scenario.URL = "" },
			wantErr: false,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: true,
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "too-short" },
			wantErr: true,
		},
		{
			name: "scheduler enabled without token",
			mutate: func(c *Config) {
				c.Evaluation.Enabled = true
				c.Evaluation.Interval = 60
				c.Evaluation.ServiceToken = ""
			},
			wantErr: true,
		},
		{
			name: "scheduler enabled with token",
			mutate: func(c *Config) {
				c.Evaluation.Enabled = true
				c.Evaluation.Interval = 60
				c.Evaluation.ServiceToken = "svc-token"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
