package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the device service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Kubernetes  KubernetesConfig  `yaml:"kubernetes"`
	Naming      NamingConfig      `yaml:"naming"`
	Credentials CredentialsConfig `yaml:"credentials"`
	ONVIF       ONVIFConfig       `yaml:"onvif"`
	Logging     LoggingConfig     `yaml:"logging"`
	Database    DatabaseConfig    `yaml:"database"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`

	// RequestTimeout bounds every handler, including the store round trips
	// it makes (seconds). Zero leaves requests unbounded.
	RequestTimeout int `yaml:"request_timeout"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// KubernetesConfig contains settings for reaching the cluster API server
// that holds Asset and CronTab resources.
type KubernetesConfig struct {
	// Kubeconfig is an explicit kubeconfig path. When empty the in-cluster
	// service account is tried first, then the default loading rules.
	Kubeconfig string `yaml:"kubeconfig"`

	// Context selects a kubeconfig context other than the current one.
	Context string `yaml:"context"`

	// QPS and Burst tune the client-side rate limiter.
	QPS   float32 `yaml:"qps"`
	Burst int     `yaml:"burst"`

	// Timeout is the per-call HTTP timeout in seconds. Zero means none.
	Timeout int `yaml:"timeout"`
}

// NamingConfig controls how resource names are derived from device identifiers.
type NamingConfig struct {
	// DigestSize is the BLAKE2b output width in bytes (1..64).
	// Four bytes keeps names short but collides with ~50% probability
	// somewhere around 77,000 distinct devices.
	DigestSize int `yaml:"digest_size"`
}

// CredentialsConfig contains the operator-provisioned credential source.
type CredentialsConfig struct {
	// Directory holds <id>_username and <id>_password files.
	// Empty disables credential lookup.
	Directory string `yaml:"directory"`

	// MaxConcurrentLookups caps blocking filesystem reads in flight.
	MaxConcurrentLookups int `yaml:"max_concurrent_lookups"`
}

// ONVIFConfig contains settings for ONVIF asset provisioning.
type ONVIFConfig struct {
	AssetNamespace string `yaml:"asset_namespace"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DatabaseConfig contains SQLite settings for the reconciliation audit trail.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings for lifecycle events.
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
}

// InfluxDBConfig contains InfluxDB connection settings for decision telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MetricsConfig contains the Prometheus scrape listener settings.
// The listener is separate from the API so the API route table stays fixed.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DEVICESERVICE_SECTION_KEY
// For example: DEVICESERVICE_API_PORT, DEVICESERVICE_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadDefaults builds a configuration from defaults and environment
// variables only. Used when no configuration file is present, so the
// service runs in a container with nothing but its environment.
func LoadDefaults() (*Config, error) {
	return finish(defaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Kubernetes: KubernetesConfig{
			QPS:   20,
			Burst: 40,
		},
		Naming: NamingConfig{
			DigestSize: 4,
		},
		Credentials: CredentialsConfig{
			MaxConcurrentLookups: 16,
		},
		ONVIF: ONVIFConfig{
			AssetNamespace: "azure-iot-operations",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Database: DatabaseConfig{
			Path:        "./data/deviceservice.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "deviceservice",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Metrics: MetricsConfig{
			Address: ":9102",
			Path:    "/metrics",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DEVICESERVICE_SECTION_KEY
//
// ONVIF_SECRET_DIRECTORY and KUBECONFIG are honoured as well because the
// deployment manifests that mount credential secrets already set them.
func applyEnvOverrides(cfg *Config) {
	// API
	if v := os.Getenv("DEVICESERVICE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("DEVICESERVICE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Kubernetes
	if v := os.Getenv("KUBECONFIG"); v != "" {
		cfg.Kubernetes.Kubeconfig = v
	}
	if v := os.Getenv("DEVICESERVICE_KUBECONFIG"); v != "" {
		cfg.Kubernetes.Kubeconfig = v
	}

	// Credentials
	if v := os.Getenv("ONVIF_SECRET_DIRECTORY"); v != "" {
		cfg.Credentials.Directory = v
	}

	// ONVIF
	if v := os.Getenv("DEVICESERVICE_ONVIF_ASSET_NAMESPACE"); v != "" {
		cfg.ONVIF.AssetNamespace = v
	}

	// Logging
	if v := os.Getenv("DEVICESERVICE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Database
	if v := os.Getenv("DEVICESERVICE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("DEVICESERVICE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("DEVICESERVICE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("DEVICESERVICE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("DEVICESERVICE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Maximum BLAKE2b output width in bytes.
const maxDigestSize = 64

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.RequestTimeout < 0 {
		errs = append(errs, "api.request_timeout must not be negative")
	}
	if c.API.TLS.Enabled && (c.API.TLS.CertFile == "" || c.API.TLS.KeyFile == "") {
		errs = append(errs, "api.tls.cert_file and api.tls.key_file are required when TLS is enabled")
	}

	// Naming validation
	if c.Naming.DigestSize < 1 || c.Naming.DigestSize > maxDigestSize {
		errs = append(errs, "naming.digest_size must be between 1 and 64")
	}

	// Credentials validation
	if c.Credentials.MaxConcurrentLookups < 1 {
		errs = append(errs, "credentials.max_concurrent_lookups must be at least 1")
	}

	// ONVIF validation
	if c.ONVIF.AssetNamespace == "" {
		errs = append(errs, "onvif.asset_namespace is required")
	}

	// Optional sinks are only validated when enabled.
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the database is enabled")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when InfluxDB is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errs = append(errs, "metrics.address is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}

// GetRequestTimeout returns the per-request deadline, or zero when disabled.
func (c APIConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
