package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
api:
  host: "127.0.0.1"
  port: 9090
  request_timeout: 15
kubernetes:
  kubeconfig: "/etc/kube/config"
naming:
  digest_size: 8
credentials:
  directory: "/var/run/onvif"
onvif:
  asset_namespace: "assets"
database:
  enabled: true
  path: "/tmp/test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.API.GetRequestTimeout() != 15*time.Second {
		t.Errorf("GetRequestTimeout() = %v, want 15s", cfg.API.GetRequestTimeout())
	}
	if cfg.Naming.DigestSize != 8 {
		t.Errorf("Naming.DigestSize = %d, want 8", cfg.Naming.DigestSize)
	}
	if cfg.Credentials.Directory != "/var/run/onvif" {
		t.Errorf("Credentials.Directory = %q, want %q", cfg.Credentials.Directory, "/var/run/onvif")
	}
	if cfg.ONVIF.AssetNamespace != "assets" {
		t.Errorf("ONVIF.AssetNamespace = %q, want %q", cfg.ONVIF.AssetNamespace, "assets")
	}

	// Untouched sections keep their defaults.
	if cfg.Credentials.MaxConcurrentLookups != 16 {
		t.Errorf("Credentials.MaxConcurrentLookups = %d, want 16", cfg.Credentials.MaxConcurrentLookups)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
naming:
  digest_size: 0
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for zero digest size, got nil")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ONVIF_SECRET_DIRECTORY", "/secrets")
	t.Setenv("DEVICESERVICE_API_PORT", "8181")

	cfg, err := LoadDefaults()
	if err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}

	if cfg.Credentials.Directory != "/secrets" {
		t.Errorf("Credentials.Directory = %q, want /secrets", cfg.Credentials.Directory)
	}
	if cfg.API.Port != 8181 {
		t.Errorf("API.Port = %d, want 8181", cfg.API.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "negative request timeout",
			mutate:  func(c *Config) { c.API.RequestTimeout = -1 },
			wantErr: true,
		},
		{
			name:    "tls without cert",
			mutate:  func(c *Config) { c.API.TLS.Enabled = true },
			wantErr: true,
		},
		{
			name:    "digest too wide",
			mutate:  func(c *Config) { c.Naming.DigestSize = 65 },
			wantErr: true,
		},
		{
			name:    "zero lookup concurrency",
			mutate:  func(c *Config) { c.Credentials.MaxConcurrentLookups = 0 },
			wantErr: true,
		},
		{
			name:    "missing asset namespace",
			mutate:  func(c *Config) { c.ONVIF.AssetNamespace = "" },
			wantErr: true,
		},
		{
			name: "database enabled without path",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "database disabled without path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: false,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{
			name: "metrics enabled without address",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Address = ""
			},
			wantErr: true,
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

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.API.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.API.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.API.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}

	if got := cfg.API.GetRequestTimeout(); got != 0 {
		t.Errorf("GetRequestTimeout() = %v, want 0", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("DEVICESERVICE_API_HOST", "192.168.1.1")
	t.Setenv("DEVICESERVICE_API_PORT", "not-a-number")
	t.Setenv("KUBECONFIG", "/home/user/.kube/config")
	t.Setenv("DEVICESERVICE_KUBECONFIG", "/etc/deviceservice/kubeconfig")
	t.Setenv("ONVIF_SECRET_DIRECTORY", "/onvif")
	t.Setenv("DEVICESERVICE_ONVIF_ASSET_NAMESPACE", "edge")
	t.Setenv("DEVICESERVICE_LOG_LEVEL", "debug")
	t.Setenv("DEVICESERVICE_DATABASE_PATH", "/custom/path.db")
	t.Setenv("DEVICESERVICE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("DEVICESERVICE_MQTT_USERNAME", "testuser")
	t.Setenv("DEVICESERVICE_MQTT_PASSWORD", "testpass")
	t.Setenv("DEVICESERVICE_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want unparsable override ignored", cfg.API.Port)
	}
	if cfg.Kubernetes.Kubeconfig != "/etc/deviceservice/kubeconfig" {
		t.Errorf("Kubernetes.Kubeconfig = %q, want service-specific override to win", cfg.Kubernetes.Kubeconfig)
	}
	if cfg.Credentials.Directory != "/onvif" {
		t.Errorf("Credentials.Directory = %q, want %q", cfg.Credentials.Directory, "/onvif")
	}
	if cfg.ONVIF.AssetNamespace != "edge" {
		t.Errorf("ONVIF.AssetNamespace = %q, want %q", cfg.ONVIF.AssetNamespace, "edge")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Naming.DigestSize != 4 {
		t.Errorf("defaultConfig Naming.DigestSize = %d, want 4", cfg.Naming.DigestSize)
	}
	if cfg.ONVIF.AssetNamespace != "azure-iot-operations" {
		t.Errorf("defaultConfig ONVIF.AssetNamespace = %q, want azure-iot-operations", cfg.ONVIF.AssetNamespace)
	}
	if cfg.Credentials.Directory != "" {
		t.Errorf("defaultConfig Credentials.Directory = %q, want empty", cfg.Credentials.Directory)
	}
	if cfg.Database.Enabled || cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.Metrics.Enabled {
		t.Error("defaultConfig should leave optional sinks disabled")
	}
}
