// Device Registry - HTTP/JSON inventory service for networked devices.
//
// This is the main entry point for the device registry. It loads
// configuration, opens the relational store (SQLite by default, PostgreSQL
// optionally), connects the optional MQTT event publisher and InfluxDB
// metrics sink, and serves the REST API until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"sort"
	"syscall"

	_ "github.com/nerrad567/device-registry/migrations"

	"github.com/nerrad567/device-registry/internal/api"
	"github.com/nerrad567/device-registry/internal/device"
	"github.com/nerrad567/device-registry/internal/infrastructure/config"
	"github.com/nerrad567/device-registry/internal/infrastructure/database"
	"github.com/nerrad567/device-registry/internal/infrastructure/influxdb"
	"github.com/nerrad567/device-registry/internal/infrastructure/logging"
	"github.com/nerrad567/device-registry/internal/infrastructure/mqtt"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting device registry",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := st.close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database ready", "driver", cfg.Database.Driver)

	registry := device.NewRegistry(st.repo)
	registry.SetLogger(log)

	checks := map[string]api.HealthChecker{"database": st.health}

	deps := api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Registry: registry,
		DB:       st.stats,
		Version:  version,
	}
	events := &eventFanout{}

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
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

		events.mqtt = mqttClient
		deps.MQTT = mqttClient
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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

		events.influx = influxClient
		deps.Metrics = influxClient
		deps.InfluxDB = influxClient
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	if events.enabled() {
		registry.SetPublisher(events)
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server listening", "address", server.Addr())
	checks["api"] = server

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, InfluxDB, MQTT, then the database.

	log.Info("device registry stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses DEVREG_CONFIG if set. Otherwise the default path is used when it
// exists, and "" (built-in defaults) when it does not.
func getConfigPath() string {
	if path := os.Getenv("DEVREG_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return defaultConfigPath
}

// healthCheck verifies every started dependency is healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - checks: Dependencies by name (database, mqtt, influxdb, api)
//
// Returns:
//   - error: First health check failure in name order, or nil if all healthy
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := checks[name].HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// store bundles the repository chosen by database.driver with its
// pool statistics, health check and shutdown hook.
type store struct {
	repo   device.Repository
	stats  api.StatsProvider
	health api.HealthCheckFunc
	close  func() error
}

// openStore opens the configured database and ensures the devices table exists.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		gdb, err := database.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}

		repo := device.NewGormRepository(gdb)
		if err := repo.Migrate(ctx); err != nil {
			sqlDB.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("creating schema: %w", err)
		}
		return &store{repo: repo, stats: sqlDB, health: repo.Ping, close: sqlDB.Close}, nil

	default:
		db, err := database.Open(ctx, database.Config{
			Path:        cfg.Path,
			WALMode:     cfg.WALMode,
			BusyTimeout: cfg.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}

		if err := db.EnsureSchema(ctx); err != nil {
			db.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("creating schema: %w", err)
		}
		return &store{
			repo:   device.NewSQLiteRepository(db.DB),
			stats:  db,
			health: db.HealthCheck,
			close:  db.Close,
		}, nil
	}
}

// eventPublisher is the MQTT side of eventFanout.
type eventPublisher interface {
	Topics() mqtt.Topics
	PublishJSON(topic string, v any) error
}

// eventRecorder is the InfluxDB side of eventFanout.
type eventRecorder interface {
	RecordDeviceEvent(event string)
}

// eventFanout forwards device lifecycle events to MQTT and InfluxDB.
// Either side may be nil.
type eventFanout struct {
	mqtt   eventPublisher
	influx eventRecorder
}

func (f *eventFanout) enabled() bool {
	return f.mqtt != nil || f.influx != nil
}

// PublishDeviceEvent implements device.EventPublisher.
func (f *eventFanout) PublishDeviceEvent(_ context.Context, event device.Event) error {
	if f.influx != nil {
		f.influx.RecordDeviceEvent(string(event.Type))
	}
	if f.mqtt == nil {
		return nil
	}
	topic := f.mqtt.Topics().DeviceEvent(event.DeviceID, string(event.Type))
	if err := f.mqtt.PublishJSON(topic, event); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}
