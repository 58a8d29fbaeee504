// Nimbus Core - weather-driven home automation
//
// This is the main entry point for the Nimbus Core application. Nimbus
// manages a registry of geo-located devices and evaluates weather-driven
// scenario rules against them: when a rule's condition holds for a
// device's local weather, the device transitions to the rule's target
// status with a full audit trail.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nimbushome/nimbus-core/migrations"

	"github.com/nimbushome/nimbus-core/internal/api"
	"github.com/nimbushome/nimbus-core/internal/auth"
	"github.com/nimbushome/nimbus-core/internal/device"
	"github.com/nimbushome/nimbus-core/internal/evaluation"
	"github.com/nimbushome/nimbus-core/internal/infrastructure/config"
	"github.com/nimbushome/nimbus-core/internal/infrastructure/database"
	"github.com/nimbushome/nimbus-core/internal/infrastructure/influxdb"
	"github.com/nimbushome/nimbus-core/internal/infrastructure/logging"
	"github.com/nimbushome/nimbus-core/internal/infrastructure/mqtt"
	"github.com/nimbushome/nimbus-core/internal/scenario"
	"github.com/nimbushome/nimbus-core/internal/weather"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Nimbus Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	deviceRepo := device.NewSQLiteRepository(db.DB)
	typeRepo := device.NewSQLiteTypeRepository(db.DB)
	changeRepo := device.NewStatusChangeRepository(db.DB)
	ruleRepo := scenario.NewSQLiteRepository(db.DB)
	userRepo := auth.NewUserRepository(db.DB)

	// Device registry
	deviceRegistry := device.NewRegistry(deviceRepo)
	deviceRegistry.SetLogger(log)
	if refreshErr := deviceRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}
	log.Info("device registry initialised", "devices", deviceRegistry.GetDeviceCount())

	// Rule registry
	ruleRegistry := scenario.NewRegistry(ruleRepo)
	ruleRegistry.SetLogger(log)
	if refreshErr := ruleRegistry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading rule registry: %w", refreshErr)
	}

	// Seed the admin user on first boot
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin user: %w", seedErr)
	}

	// Status changer: guarded, audited transitions
	changer := device.NewStatusChanger(db.DB, deviceRepo, changeRepo, deviceRegistry)
	changer.SetLogger(log)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	topics := mqtt.Topics{}
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		changer.SetPublisher(mqttClient, topics)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		changer.SetTelemetry(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Weather source: HTTP client fronted by a short-TTL cache
	weatherClient := weather.NewClient(cfg.Weather.URL, time.Duration(cfg.Weather.Timeout)*time.Second)
	weatherClient.SetLogger(log)
	weatherService := weather.NewService(weatherClient, time.Duration(cfg.Weather.CacheTTL)*time.Second)
	if influxClient != nil {
		weatherService.SetTelemetry(influxClient)
	}
	log.Info("weather client initialised", "url", cfg.Weather.URL, "cache_ttl_seconds", cfg.Weather.CacheTTL)

	// Rule lookup: remote service when configured, local registry otherwise
	var ruleLookup scenario.Lookup = ruleRegistry
	if cfg.Scenario.URL != "" {
		ruleClient := scenario.NewClient(cfg.Scenario.URL, time.Duration(cfg.Scenario.Timeout)*time.Second)
		ruleClient.SetLogger(log)
		ruleLookup = ruleClient
		log.Info("using remote rule service", "url", cfg.Scenario.URL)
	} else {
		log.Info("using local rule store")
	}

	// Evaluation orchestrator
	orchestrator := evaluation.NewOrchestrator(deviceRegistry, ruleLookup, weatherService, changer)
	orchestrator.SetLogger(log)
	if mqttClient != nil {
		orchestrator.SetPublisher(mqttClient, topics)
	}
	if influxClient != nil {
		orchestrator.SetTelemetry(influxClient)
	}

	// Interval scheduler (optional)
	if cfg.Evaluation.Enabled {
		scheduler := evaluation.NewScheduler(orchestrator, cfg.GetEvaluationInterval(), cfg.Evaluation.ServiceToken)
		scheduler.SetLogger(log)
		go scheduler.Start(ctx)
	} else {
		log.Info("evaluation scheduler disabled")
	}

	// HTTP API
	apiServer, err := api.New(api.Deps{
		Config:       cfg.API,
		Security:     cfg.Security,
		Logger:       log,
		Registry:     deviceRegistry,
		Changer:      changer,
		TypeRepo:     typeRepo,
		ChangeRepo:   changeRepo,
		Rules:        ruleRegistry,
		Weather:      weatherService,
		Orchestrator: orchestrator,
		Users:        userRepo,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Nimbus Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses NIMBUS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("NIMBUS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
