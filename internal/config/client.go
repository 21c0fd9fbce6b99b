package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// Storage providers understood by the uploader.
const (
	ProviderMinIO = "minio"
	ProviderS3    = "s3"
)

// ClientConfig holds the uploader's settings.
//
// Sources are applied in order: defaults, the optional YAML file, then
// environment variables (a .env file is loaded into the environment first).
type ClientConfig struct {
	APIURL   string `yaml:"api_url"`
	Token    string `yaml:"token"`
	LogLevel string `yaml:"log_level"`

	Storage StorageConfig `yaml:"storage"`
	Record  RecordConfig  `yaml:"record"`
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	Provider   string `yaml:"provider"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"use_ssl"`
	PublicBase string `yaml:"public_base"` // browser-accessible base URL, e.g. "http://localhost:9000/uploads"
}

// RecordConfig tunes the metadata endpoint client.
type RecordConfig struct {
	RetryMax int           `yaml:"retry_max"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultClientConfig returns settings for a local MinIO and API server.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIURL:   "http://localhost:8080",
		LogLevel: "info",
		Storage: StorageConfig{
			Provider:   ProviderMinIO,
			Endpoint:   "localhost:9000",
			AccessKey:  "minioadmin",
			SecretKey:  "minioadmin",
			Bucket:     "uploads",
			Region:     "us-east-1",
			PublicBase: "http://localhost:9000/uploads",
		},
		// One attempt and no client-side timeout unless configured.
		Record: RecordConfig{
			RetryMax: 0,
			Timeout:  0,
		},
	}
}

// LoadClient builds a ClientConfig. path may be empty; a missing file at a
// non-empty path is an error.
func LoadClient(path string) (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultClientConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %q not found", path)
			}
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClientConfig) applyEnv() {
	c.APIURL = getEnv("UPLOADER_API_URL", c.APIURL)
	c.Token = getEnv("UPLOADER_TOKEN", c.Token)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Storage.Provider = getEnv("STORAGE_PROVIDER", c.Storage.Provider)
	c.Storage.Endpoint = getEnv("STORAGE_ENDPOINT", c.Storage.Endpoint)
	c.Storage.AccessKey = getEnv("STORAGE_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnv("STORAGE_SECRET_KEY", c.Storage.SecretKey)
	c.Storage.Bucket = getEnv("STORAGE_BUCKET", c.Storage.Bucket)
	c.Storage.Region = getEnv("STORAGE_REGION", c.Storage.Region)
	c.Storage.UseSSL = getEnvBool("STORAGE_USE_SSL", c.Storage.UseSSL)
	c.Storage.PublicBase = getEnv("STORAGE_PUBLIC_BASE", c.Storage.PublicBase)

	c.Record.RetryMax = getEnvInt("RECORD_RETRY_MAX", c.Record.RetryMax)
	c.Record.Timeout = getEnvDuration("RECORD_TIMEOUT", c.Record.Timeout)
}

// Validate reports settings the uploader cannot start with.
func (c *ClientConfig) Validate() error {
	if c.APIURL == "" {
		return errors.New("api url must not be empty")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage bucket must not be empty")
	}
	switch c.Storage.Provider {
	case ProviderMinIO:
		if c.Storage.Endpoint == "" {
			return errors.New("storage endpoint must not be empty for minio")
		}
	case ProviderS3:
		if c.Storage.Region == "" {
			return errors.New("storage region must not be empty for s3")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	if c.Record.RetryMax < 0 {
		return errors.New("record retry max must not be negative")
	}
	return nil
}
