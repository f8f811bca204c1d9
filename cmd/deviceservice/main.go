// deviceservice answers the callbacks of device discovery adapters: whether
// a discovered device is accepted, which credentials it uses, and what to
// provision in the cluster when it appears.
//
// Configuration is read from DEVICESERVICE_CONFIG or configs/config.yaml;
// with neither present the service runs on defaults and environment
// overrides.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/deviceservice/internal/api"
	"github.com/nerrad567/deviceservice/internal/audit"
	"github.com/nerrad567/deviceservice/internal/credential"
	"github.com/nerrad567/deviceservice/internal/dispatch"
	"github.com/nerrad567/deviceservice/internal/infrastructure/config"
	"github.com/nerrad567/deviceservice/internal/infrastructure/database"
	"github.com/nerrad567/deviceservice/internal/infrastructure/influxdb"
	"github.com/nerrad567/deviceservice/internal/infrastructure/kube"
	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/infrastructure/mqtt"
	"github.com/nerrad567/deviceservice/internal/metrics"
	"github.com/nerrad567/deviceservice/internal/naming"
	"github.com/nerrad567/deviceservice/internal/reconcile"
	"github.com/nerrad567/deviceservice/internal/resource"
	"github.com/nerrad567/deviceservice/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

// healthCheckTimeout bounds the startup health checks.
const healthCheckTimeout = 10 * time.Second

// auditPath serves the audit history on the metrics listener.
const auditPath = "/audit"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting deviceservice",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	kubeClient, err := kube.Connect(cfg.Kubernetes, version)
	if err != nil {
		return fmt.Errorf("connecting to kubernetes: %w", err)
	}
	store := kube.NewStore(kubeClient.Dynamic())
	log.Info("kubernetes client ready", "host", kubeClient.Host())

	var (
		observers []reconcile.Observer
		recorders []dispatch.Recorder
		checks    []namedCheck
		auditRepo audit.Repository
	)

	// Open audit database (optional)
	if cfg.Database.Enabled {
		db, dbErr := database.Open(cfg.Database)
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("audit database ready", "path", db.Path())

		auditRepo = audit.NewSQLiteRepository(db.DB)
		observers = append(observers, audit.NewRecorder(auditRepo, log))
		checks = append(checks, namedCheck{"database", db.HealthCheck})
	} else {
		log.Info("audit database disabled")
	}

	// Connect to MQTT broker (optional)
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

		observers = append(observers, mqtt.NewEventPublisher(mqttClient, byte(cfg.MQTT.QoS), log))
		checks = append(checks, namedCheck{"mqtt", mqttClient.HealthCheck})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		writer := influxdb.NewWriter(influxClient)
		observers = append(observers, writer)
		recorders = append(recorders, writer)
		checks = append(checks, namedCheck{"influxdb", influxClient.HealthCheck})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Prometheus metrics on their own listener (optional)
	var httpMetrics api.HTTPObserver
	if cfg.Metrics.Enabled {
		m := metrics.New()
		metricsServer := metrics.NewServer(cfg.Metrics, m, log)
		if auditRepo != nil {
			metricsServer.Mount(auditPath, audit.Handler(auditRepo, log))
		}
		if startErr := metricsServer.Start(); startErr != nil {
			return fmt.Errorf("starting metrics server: %w", startErr)
		}
		defer func() {
			if closeErr := metricsServer.Close(); closeErr != nil {
				log.Error("error closing metrics server", "error", closeErr)
			}
		}()

		observers = append(observers, m)
		recorders = append(recorders, m)
		httpMetrics = m
	}

	engine, err := buildEngine(cfg, store, log, observers, recorders)
	if err != nil {
		return err
	}
	log.Info("protocols registered", "protocols", engine.Protocols())

	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Logger:     log,
		Dispatcher: engine,
		Metrics:    httpMetrics,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	checks = append(checks, namedCheck{"api", server.HealthCheck})

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	checkStore(ctx, store, log)
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API server, metrics,
	// InfluxDB, MQTT, database.
	log.Info("deviceservice stopped")
	return nil
}

// getConfigPath returns DEVICESERVICE_CONFIG if set, otherwise the default.
func getConfigPath() string {
	if path := os.Getenv("DEVICESERVICE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadConfig loads path, falling back to defaults plus environment
// overrides when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.LoadDefaults()
	}
	return cfg, err
}

// buildEngine wires the credential resolver, the reconciler and both
// protocols into a dispatch engine.
//
// Parameters:
//   - cfg: Application configuration
//   - store: Declarative store the reconciler writes to
//   - log: Logger instance
//   - observers: Receive every reconcile outcome
//   - recorders: Receive every dispatch decision
//
// Returns:
//   - *dispatch.Engine: Engine with debugEcho and onvif registered
//   - error: If the digest size or lookup concurrency is invalid
func buildEngine(cfg *config.Config, store resource.Store, log *logging.Logger, observers []reconcile.Observer, recorders []dispatch.Recorder) (*dispatch.Engine, error) {
	digester, err := naming.NewDigester(cfg.Naming.DigestSize)
	if err != nil {
		return nil, fmt.Errorf("creating digester: %w", err)
	}

	resolver, err := credential.NewResolver(cfg.Credentials.Directory, cfg.Credentials.MaxConcurrentLookups, log)
	if err != nil {
		return nil, fmt.Errorf("creating credential resolver: %w", err)
	}
	if cfg.Credentials.Directory == "" {
		log.Warn("credential directory not configured, onvif credential queries will fail")
	}

	reconciler := reconcile.New(store, digester, log, observers...)

	engine := dispatch.NewEngine(log, recorders...)
	engine.Register(dispatch.ProtocolDebugEcho, dispatch.NewDebugEcho(reconciler, log))
	engine.Register(dispatch.ProtocolONVIF, dispatch.NewONVIF(reconciler, resolver, cfg.ONVIF.AssetNamespace, log))
	return engine, nil
}

// namedCheck is one dependency health check.
type namedCheck struct {
	name  string
	check func(ctx context.Context) error
}

// healthCheck runs every check and returns the first failure.
func healthCheck(ctx context.Context, checks []namedCheck) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	for _, c := range checks {
		if err := c.check(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

// checkStore verifies the CronTab and Asset resources are served. A
// failure is only logged: the service still answers queries that need no
// store, and reconciles fail per request until the cluster is fixed.
func checkStore(ctx context.Context, store *kube.Store, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := store.HealthCheck(ctx, resource.KindCronTab, resource.KindAsset); err != nil {
		log.Warn("kubernetes store not ready", "error", err)
		return
	}
	log.Info("kubernetes store ready")
}
