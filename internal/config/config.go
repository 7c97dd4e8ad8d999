package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Auth      AuthConfig       `mapstructure:"auth"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Etcd      EtcdConfig       `mapstructure:"etcd"`
	Recorder  RecorderConfig   `mapstructure:"recorder"`
	Queue     QueueConfig      `mapstructure:"queue"`
	Store     StoreConfig      `mapstructure:"store"`
	Scan      ScanConfig       `mapstructure:"scan"`
	Workbench WorkbenchConfig  `mapstructure:"workbench"`
	Databases []DatabaseConfig `mapstructure:"databases"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// EtcdConfig represents etcd configuration
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
}

// RecorderConfig selects where command executions are persisted.
type RecorderConfig struct {
	Backend     string `mapstructure:"backend"`     // etcd, memory
	Prefix      string `mapstructure:"prefix"`      // etcd key prefix
	Compression string `mapstructure:"compression"` // none, snappy
}

// QueueConfig represents message queue configuration for execution events
type QueueConfig struct {
	Type          string `mapstructure:"type"` // nats, redis, kafka, memory, none
	URL           string `mapstructure:"url"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	SubjectPrefix string `mapstructure:"subject_prefix"`

	RedisDB     int    `mapstructure:"redis_db"`
	RedisStream string `mapstructure:"redis_stream"` // stream name prefix
	RedisGroup  string `mapstructure:"redis_group"`

	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaGroupID string   `mapstructure:"kafka_group_id"`
}

// StoreConfig tunes connections to the key-value store nodes.
type StoreConfig struct {
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	PoolSize       int           `mapstructure:"pool_size"` // connections per node
}

// ScanConfig holds key-scan defaults.
type ScanConfig struct {
	DefaultCount int   `mapstructure:"default_count"`
	Threshold    int64 `mapstructure:"threshold"`
}

// WorkbenchConfig holds command execution settings.
type WorkbenchConfig struct {
	MaxHistory          int      `mapstructure:"max_history"`
	UnsupportedCommands []string `mapstructure:"unsupported_commands"`
	BlockingCommands    []string `mapstructure:"blocking_commands"`
}

// DatabaseConfig describes one store deployment reachable through the gateway.
type DatabaseConfig struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Cluster  bool   `mapstructure:"cluster"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := c.Recorder.Validate(); err != nil {
		return fmt.Errorf("recorder config: %w", err)
	}
	if c.Recorder.Backend == "etcd" {
		if err := c.Etcd.Validate(); err != nil {
			return fmt.Errorf("etcd config: %w", err)
		}
	}
	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	if err := c.Scan.Validate(); err != nil {
		return fmt.Errorf("scan config: %w", err)
	}
	if err := c.Workbench.Validate(); err != nil {
		return fmt.Errorf("workbench config: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Databases))
	for i := range c.Databases {
		db := &c.Databases[i]
		if err := db.Validate(); err != nil {
			return fmt.Errorf("databases[%d]: %w", i, err)
		}
		if _, dup := seen[db.ID]; dup {
			return fmt.Errorf("databases[%d]: duplicate id %q", i, db.ID)
		}
		seen[db.ID] = struct{}{}
	}
	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}
	return nil
}

// Validate validates etcd configuration
func (c *EtcdConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("etcd.endpoints is required")
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("etcd.dial_timeout must be positive")
	}
	return nil
}

// Validate validates recorder configuration
func (c *RecorderConfig) Validate() error {
	if c.Backend != "etcd" && c.Backend != "memory" {
		return fmt.Errorf("recorder.backend must be 'etcd' or 'memory'")
	}
	if c.Compression != "none" && c.Compression != "snappy" {
		return fmt.Errorf("recorder.compression must be 'none' or 'snappy'")
	}
	if c.Backend == "etcd" && !strings.HasPrefix(c.Prefix, "/") {
		return fmt.Errorf("recorder.prefix must start with '/'")
	}
	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "none", "memory":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 && c.URL == "" {
			return fmt.Errorf("queue.kafka_brokers or queue.url is required for kafka")
		}
	default:
		return fmt.Errorf("unsupported queue.type: %q", c.Type)
	}
	if c.SubjectPrefix == "" {
		return fmt.Errorf("queue.subject_prefix is required")
	}
	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return fmt.Errorf("store.dial_timeout must be positive")
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("store.command_timeout must be positive")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("store.pool_size must be at least 1")
	}
	return nil
}

// Validate validates scan configuration
func (c *ScanConfig) Validate() error {
	if c.DefaultCount < 1 {
		return fmt.Errorf("scan.default_count must be at least 1")
	}
	if c.Threshold < int64(c.DefaultCount) {
		return fmt.Errorf("scan.threshold must be at least scan.default_count")
	}
	return nil
}

// Validate validates workbench configuration
func (c *WorkbenchConfig) Validate() error {
	if c.MaxHistory < 1 {
		return fmt.Errorf("workbench.max_history must be at least 1")
	}
	return nil
}

// Validate validates a database entry
func (c *DatabaseConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Cluster && c.DB != 0 {
		return fmt.Errorf("cluster deployments only support db 0")
	}
	return nil
}
