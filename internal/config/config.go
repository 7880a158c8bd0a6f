package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Logging LoggingConfig `json:"logging"`
	Report  ReportConfig  `json:"report"`
	Storage StorageConfig `json:"storage"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// ReportConfig controls the page furniture of generated reports. Save
// directories follow the platform conventions and are not configurable.
type ReportConfig struct {
	ProductLabel string `json:"product_label"`
	Attribution  string `json:"attribution"`
	Compress     bool   `json:"compress"`
}

// StorageConfig enables archiving of generated reports when S3Bucket is set
type StorageConfig struct {
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3Prefix       string `json:"s3_prefix"`
	S3Endpoint     string `json:"s3_endpoint"`
	S3UsePathStyle bool   `json:"s3_use_path_style"`
	S3AccessKey    string `json:"-"`
	S3SecretKey    string `json:"-"`
}

// ArchiveEnabled reports whether generated reports are uploaded
func (c *StorageConfig) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig loads configuration from file and environment variables.
// A .env file in the working directory, when present, is loaded first.
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Report: ReportConfig{
			ProductLabel: "ACADEMIC ANALYTICS SUITE",
			Attribution:  "Powered by Karim Dev",
			Compress:     true,
		},
		Storage: StorageConfig{
			S3Region: "us-east-1",
			S3Prefix: "academic-reports",
		},
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if attribution := os.Getenv("REPORT_ATTRIBUTION"); attribution != "" {
		config.Report.Attribution = attribution
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.Storage.S3Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		config.Storage.S3Region = region
	}
	if prefix := os.Getenv("S3_PREFIX"); prefix != "" {
		config.Storage.S3Prefix = prefix
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.Storage.S3Endpoint = endpoint
	}
	if pathStyle := os.Getenv("S3_USE_PATH_STYLE"); pathStyle != "" {
		if v, err := strconv.ParseBool(pathStyle); err == nil {
			config.Storage.S3UsePathStyle = v
		}
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		config.Storage.S3AccessKey = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		config.Storage.S3SecretKey = secret
	}
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewLogger builds a development logger for the debug level and a
// production logger otherwise.
func (c *LoggingConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	if level == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
