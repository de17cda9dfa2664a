package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// CSV source kinds.
const (
	SourceHTTP = "http"
	SourceFile = "file"
	SourceS3   = "s3"
)

// defaultFileBase mirrors the static web root the CSV is published under.
const defaultFileBase = "public"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Record loading.
	CSVSource    string
	BasePath     string
	CSVPath      string
	FetchTimeout time.Duration
	MarkerPolicy string

	// S3-compatible object storage, used when CSVSource is "s3".
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3Region    string
	S3Bucket    string

	// Kafka marker publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding variables already set. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "0s"))
	if err != nil || fetchTimeout < 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	source := strings.ToLower(sharedcfg.EnvOrDefault("CSV_SOURCE", SourceFile))
	basePath := os.Getenv("BASE_PATH")
	if basePath == "" && source == SourceFile {
		basePath = defaultFileBase
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CSVSource:    source,
		BasePath:     basePath,
		CSVPath:      sharedcfg.EnvOrDefault("CSV_PATH", "/data/od_deaths_detailed_2020_2021.csv"),
		FetchTimeout: fetchTimeout,
		MarkerPolicy: strings.ToLower(sharedcfg.EnvOrDefault("MARKER_POLICY", "all")),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3UseSSL:    os.Getenv("S3_USE_SSL") == "true",
		S3Region:    os.Getenv("S3_REGION"),
		S3Bucket:    os.Getenv("S3_BUCKET"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "overdose-case-markers"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CSVSource {
	case SourceHTTP:
		if c.BasePath == "" && !strings.Contains(c.CSVPath, "://") {
			return errors.New("BASE_PATH is required when CSV_SOURCE is http and CSV_PATH is relative")
		}
	case SourceFile:
	case SourceS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return errors.New("S3_ENDPOINT and S3_BUCKET are required when CSV_SOURCE is s3")
		}
	default:
		return fmt.Errorf("invalid CSV_SOURCE %q", c.CSVSource)
	}
	if c.CSVPath == "" {
		return errors.New("CSV_PATH is required")
	}
	if c.MarkerPolicy != "all" && c.MarkerPolicy != "fentanyl" {
		return fmt.Errorf("invalid MARKER_POLICY %q", c.MarkerPolicy)
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}
