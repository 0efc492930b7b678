package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// OpenCelliD cell location lookup.
	OpenCellIDToken     string
	OpenCellIDEnabled   bool
	OpenCellIDTimeout   time.Duration
	OpenCellIDCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	openCellIDTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("OPENCELLID_TIMEOUT", "5s"))
	if err != nil || openCellIDTimeout <= 0 {
		return nil, errors.New("invalid OPENCELLID_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	openCellIDToken := os.Getenv("OPENCELLID_TOKEN")
	openCellIDEnabled := openCellIDToken != ""
	if v := os.Getenv("OPENCELLID_ENABLED"); v != "" {
		openCellIDEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-cell-observations"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "canonical-cell-records"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "cell-telemetry-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		OpenCellIDToken:     openCellIDToken,
		OpenCellIDEnabled:   openCellIDEnabled,
		OpenCellIDTimeout:   openCellIDTimeout,
		OpenCellIDCacheSize: parseOpenCellIDCacheSize(),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.OpenCellIDEnabled && cfg.OpenCellIDToken == "" {
		return nil, errors.New("OPENCELLID_ENABLED is true but OPENCELLID_TOKEN is not set")
	}

	return cfg, nil
}

func parseOpenCellIDCacheSize() int {
	if s := os.Getenv("OPENCELLID_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
