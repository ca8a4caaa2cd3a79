// Command sensornetd runs the Sensornet Core daemon.
//
// It wires together the SQLite inventory store, the authentication and
// authorization services, the HTTP API, the MQTT ingest pipeline and the
// optional InfluxDB measurement mirror, then blocks until it receives an
// interrupt or termination signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telemetree/sensornet-core/internal/api"
	"github.com/telemetree/sensornet-core/internal/audit"
	"github.com/telemetree/sensornet-core/internal/auth"
	"github.com/telemetree/sensornet-core/internal/infrastructure/config"
	"github.com/telemetree/sensornet-core/internal/infrastructure/database"
	"github.com/telemetree/sensornet-core/internal/infrastructure/influxdb"
	"github.com/telemetree/sensornet-core/internal/infrastructure/logging"
	"github.com/telemetree/sensornet-core/internal/infrastructure/mqtt"
	"github.com/telemetree/sensornet-core/internal/ingest"
	"github.com/telemetree/sensornet-core/internal/inventory"
	"github.com/telemetree/sensornet-core/internal/measurement"

	// Register embedded SQL migrations with the database package.
	_ "github.com/telemetree/sensornet-core/migrations"
)

// Build information, injected at compile time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sensornetd: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns the configuration file path, checking the
// SENSORNET_CONFIG environment variable before falling back to the default.
func getConfigPath() string {
	if path := os.Getenv("SENSORNET_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

func run(ctx context.Context) error {
	bootLog := logging.Default()
	bootLog.Info("starting sensornetd",
		"version", version,
		"commit", commit,
		"built", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)

	// --- Database ---------------------------------------------------------

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing database", "error", err)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// --- Repositories -----------------------------------------------------

	users := auth.NewUserRepository(db.DB)
	inv := inventory.NewSQLiteRepository(db.DB)
	readings := measurement.NewSQLiteRepository(db.DB)
	auditLog := audit.NewSQLiteRepository(db.DB)

	if _, err := auth.SeedAdmin(ctx, users, log.Logger); err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}

	// --- Authentication ---------------------------------------------------

	tokens := auth.NewTokenService(cfg.Security.JWT.Secret, cfg.AccessTokenTTL())
	authenticator := auth.NewAuthenticator(users, tokens)

	// --- MQTT -------------------------------------------------------------

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT broker: %w", err)
		}
		defer func() {
			if err := mqttClient.Close(); err != nil {
				log.Error("closing MQTT client", "error", err)
			}
		}()

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT broker connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT broker disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled, measurement ingest unavailable")
	}

	// --- InfluxDB mirror --------------------------------------------------

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			// The SQLite store remains authoritative; a missing mirror
			// degrades dashboards, not the inventory.
			log.Warn("InfluxDB unavailable, continuing without mirror", "error", err)
			influxClient = nil
		} else {
			defer func() {
				if err := influxClient.Close(); err != nil {
					log.Error("closing InfluxDB client", "error", err)
				}
			}()
			influxClient.SetOnError(func(err error) {
				log.Warn("InfluxDB write failed", "error", err)
			})
		}
	}

	// --- API server -------------------------------------------------------

	srv, err := api.New(api.Deps{
		Config:        cfg.API,
		WS:            cfg.WebSocket,
		Security:      cfg.Security,
		Logger:        log,
		Tokens:        tokens,
		Authenticator: authenticator,
		Users:         users,
		Inventory:     inv,
		Readings:      readings,
		Audit:         auditLog,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error("closing API server", "error", err)
		}
	}()

	// --- Ingest pipeline --------------------------------------------------

	var ingestSvc *ingest.Service
	if mqttClient != nil {
		var mirror ingest.Mirror
		if influxClient != nil {
			mirror = influxClient
		}
		ingestSvc = ingest.New(mqttClient, inv, readings, mirror, srv.Hub(), log, byte(cfg.MQTT.QoS))
		if err := ingestSvc.Start(); err != nil {
			return fmt.Errorf("starting ingest pipeline: %w", err)
		}
		defer ingestSvc.Stop()
	}

	healthCheck(ctx, log, db, mqttClient, influxClient)

	log.Info("initialisation complete",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"mqtt", cfg.MQTT.Enabled,
		"influxdb", influxClient != nil,
	)

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// healthCheck verifies connectivity to each backing service at startup.
// Failures are logged, not fatal: the daemon runs degraded rather than
// refusing to start when an optional service is down.
func healthCheck(ctx context.Context, log *logging.Logger, db *database.DB, mq *mqtt.Client, influx *influxdb.Client) {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.HealthCheck(checkCtx); err != nil {
		log.Warn("database health check failed", "error", err)
	}
	if mq != nil {
		if err := mq.HealthCheck(checkCtx); err != nil {
			log.Warn("MQTT health check failed", "error", err)
		}
	}
	if influx != nil {
		if err := influx.HealthCheck(checkCtx); err != nil {
			log.Warn("InfluxDB health check failed", "error", err)
		}
	}
}
