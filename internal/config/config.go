package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CaptureConfig holds the live capture settings.
type CaptureConfig struct {
	Interface   string `yaml:"interface"`
	SnapshotLen int32  `yaml:"snapshot_len"`
	Promiscuous bool   `yaml:"promiscuous"`
	// Timeout bounds a single blocking read so the pipeline can observe a
	// stop request with sub-second latency.
	Timeout string `yaml:"timeout"`
}

// TrackerConfig holds the per-source state tracker settings.
type TrackerConfig struct {
	Window        string `yaml:"window"`
	SweepInterval string `yaml:"sweep_interval"`
	NumShards     uint32 `yaml:"num_shards"`
}

// ClassifierConfig holds the detection thresholds.
type ClassifierConfig struct {
	PortScanThreshold  int `yaml:"port_scan_threshold"`
	ICMPFloodThreshold int `yaml:"icmp_flood_threshold"`
}

// AlertsConfig holds the alert store settings.
type AlertsConfig struct {
	LogCapacity int `yaml:"log_capacity"`
}

// DistributorConfig holds the fan-out settings.
type DistributorConfig struct {
	QueueCapacity int `yaml:"queue_capacity"`
	MaxFailures   int `yaml:"max_failures"`
}

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// NATSConfig holds the settings for alert export and remote probe ingestion.
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	AlertSubject  string `yaml:"alert_subject"`
	PacketSubject string `yaml:"packet_subject"`
}

// ClickHouseConfig holds the alert archive settings.
type ClickHouseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Database      string `yaml:"database"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	FlushInterval string `yaml:"flush_interval"`
	BatchSize     int    `yaml:"batch_size"`
}

// SMTPConfig holds the email notification settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// WebhookConfig holds the chat webhook notification settings.
type WebhookConfig struct {
	URL string `yaml:"url"`
}

// NotifyConfig controls which alerts reach the notification channels.
type NotifyConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MinSeverity string `yaml:"min_severity"`
}

// AIConfig holds the settings for the incident analyzer.
type AIConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Capture     CaptureConfig     `yaml:"capture"`
	Tracker     TrackerConfig     `yaml:"tracker"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Alerts      AlertsConfig      `yaml:"alerts"`
	Distributor DistributorConfig `yaml:"distributor"`
	API         APIConfig         `yaml:"api"`
	NATS        NATSConfig        `yaml:"nats"`
	ClickHouse  ClickHouseConfig  `yaml:"clickhouse"`
	SMTP        SMTPConfig        `yaml:"smtp"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Notify      NotifyConfig      `yaml:"notify"`
	AI          AIConfig          `yaml:"ai"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in the documented defaults for anything the file left unset.
func (c *Config) applyDefaults() {
	if c.Capture.SnapshotLen <= 0 {
		c.Capture.SnapshotLen = 1600
	}
	if c.Capture.Timeout == "" {
		c.Capture.Timeout = "500ms"
	}
	if c.Tracker.Window == "" {
		c.Tracker.Window = "60s"
	}
	if c.Tracker.SweepInterval == "" {
		c.Tracker.SweepInterval = "30s"
	}
	if c.Tracker.NumShards == 0 {
		c.Tracker.NumShards = 64
	}
	if c.Classifier.PortScanThreshold <= 0 {
		c.Classifier.PortScanThreshold = 10
	}
	if c.Classifier.ICMPFloodThreshold <= 0 {
		c.Classifier.ICMPFloodThreshold = 100
	}
	if c.Alerts.LogCapacity <= 0 {
		c.Alerts.LogCapacity = 10000
	}
	if c.Distributor.QueueCapacity <= 0 {
		c.Distributor.QueueCapacity = 256
	}
	if c.Distributor.MaxFailures <= 0 {
		c.Distributor.MaxFailures = 5
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.NATS.AlertSubject == "" {
		c.NATS.AlertSubject = "netsentra.alerts"
	}
	if c.NATS.PacketSubject == "" {
		c.NATS.PacketSubject = "netsentra.packets"
	}
	if c.ClickHouse.FlushInterval == "" {
		c.ClickHouse.FlushInterval = "10s"
	}
	if c.ClickHouse.BatchSize <= 0 {
		c.ClickHouse.BatchSize = 500
	}
	if c.Notify.MinSeverity == "" {
		c.Notify.MinSeverity = "medium"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
}
