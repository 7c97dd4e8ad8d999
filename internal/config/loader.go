package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keyscope/keyscope/internal/utils"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides (KEYSCOPE_SERVER_HTTP_PORT).
const EnvPrefix = "KEYSCOPE"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/keyscope")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)

	v.SetDefault("auth.enabled", d.Auth.Enabled)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)

	v.SetDefault("etcd.endpoints", d.Etcd.Endpoints)
	v.SetDefault("etcd.dial_timeout", d.Etcd.DialTimeout.String())

	v.SetDefault("recorder.backend", d.Recorder.Backend)
	v.SetDefault("recorder.prefix", d.Recorder.Prefix)
	v.SetDefault("recorder.compression", d.Recorder.Compression)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.subject_prefix", d.Queue.SubjectPrefix)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", d.Queue.KafkaGroupID)

	v.SetDefault("store.dial_timeout", d.Store.DialTimeout.String())
	v.SetDefault("store.command_timeout", d.Store.CommandTimeout.String())
	v.SetDefault("store.pool_size", d.Store.PoolSize)

	v.SetDefault("scan.default_count", d.Scan.DefaultCount)
	v.SetDefault("scan.threshold", d.Scan.Threshold)

	v.SetDefault("workbench.max_history", d.Workbench.MaxHistory)
	v.SetDefault("workbench.unsupported_commands", d.Workbench.UnsupportedCommands)
	v.SetDefault("workbench.blocking_commands", d.Workbench.BlockingCommands)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 5540,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
		Etcd: EtcdConfig{
			Endpoints:   []string{"http://localhost:2379"},
			DialTimeout: 5 * time.Second,
		},
		Recorder: RecorderConfig{
			Backend:     "memory",
			Prefix:      "/keyscope",
			Compression: "snappy",
		},
		Queue: QueueConfig{
			Type:          string(utils.QueueTypeNone),
			URL:           "nats://localhost:4222",
			SubjectPrefix: "keyscope",
			RedisStream:   "keyscope",
			RedisGroup:    "keyscope-group",
			KafkaGroupID:  "keyscope",
		},
		Store: StoreConfig{
			DialTimeout:    utils.StoreDialTimeout,
			CommandTimeout: utils.StoreCommandTimeout,
			PoolSize:       4,
		},
		Scan: ScanConfig{
			DefaultCount: utils.DefaultScanCount,
			Threshold:    utils.DefaultScanThreshold,
		},
		Workbench: WorkbenchConfig{
			MaxHistory: utils.DefaultMaxHistory,
		},
	}
}
