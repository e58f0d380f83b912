package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type StoreConfig struct {
	Driver        string `yaml:"driver"         env:"STORE_DRIVER"`
	MongoURI      string `yaml:"mongo_uri"      env:"MONGO_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"MONGO_DATABASE"`
	PostgresDSN   string `yaml:"postgres_dsn"   env:"POSTGRES_DSN"`
}

type StorageConfig struct {
	Backend            string `yaml:"backend"              env:"STORAGE_BACKEND"`
	UploadDir          string `yaml:"upload_dir"           env:"UPLOAD_DIR"`
	PublicBaseURL      string `yaml:"public_base_url"      env:"PUBLIC_BASE_URL"`
	S3Region           string `yaml:"s3_region"            env:"S3_REGION"`
	S3Bucket           string `yaml:"s3_bucket"            env:"S3_BUCKET"`
	S3Prefix           string `yaml:"s3_prefix"            env:"S3_PREFIX"`
	GCSBucket          string `yaml:"gcs_bucket"           env:"GCS_BUCKET"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file" env:"GCS_CREDENTIALS_FILE"`
	ImageMaxWidth      int    `yaml:"image_max_width"      env:"IMAGE_MAX_WIDTH"`
	ImageMaxHeight     int    `yaml:"image_max_height"     env:"IMAGE_MAX_HEIGHT"`
}

type Config struct {
	HTTPAddr       string        `yaml:"http_addr"        env:"HTTP_ADDR"`
	GRPCAddr       string        `yaml:"grpc_addr"        env:"GRPC_ADDR"`
	GinMode        string        `yaml:"gin_mode"         env:"GIN_MODE"`
	LogLevel       string        `yaml:"log_level"        env:"LOG_LEVEL"`
	LogFormat      string        `yaml:"log_format"       env:"LOG_FORMAT"`
	CORSOrigins    string        `yaml:"cors_origins"     env:"CORS_ORIGINS"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"   env:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	Store          StoreConfig   `yaml:"store"`
	Storage        StorageConfig `yaml:"storage"`
}

// Defaults is the configuration used when neither a file nor the
// environment says otherwise.
func Defaults() Config {
	return Config{
		HTTPAddr:       ":8080",
		GRPCAddr:       ":50051",
		GinMode:        "release",
		LogLevel:       "info",
		LogFormat:      "json",
		CORSOrigins:    "*",
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		Store: StoreConfig{
			Driver:        "mongo",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "storefront",
		},
		Storage: StorageConfig{
			Backend:        "local",
			UploadDir:      "./uploads",
			PublicBaseURL:  "http://localhost:8080",
			S3Region:       "us-east-1",
			S3Prefix:       "products",
			ImageMaxWidth:  800,
			ImageMaxHeight: 800,
		},
	}
}

// Load layers defaults, the optional YAML file named by CONFIG_FILE and the
// environment (.env included), in that order.
func Load() (Config, error) {
	_ = godotenv.Load() // load .env if it exists

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return errors.New("mongo driver requires MONGO_URI and MONGO_DATABASE")
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return errors.New("postgres driver requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.UploadDir == "" {
			return errors.New("local storage requires UPLOAD_DIR")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("s3 storage requires S3_BUCKET")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return errors.New("gcs storage requires GCS_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Storage.ImageMaxWidth <= 0 || c.Storage.ImageMaxHeight <= 0 {
		return errors.New("image bounds must be positive")
	}
	return nil
}

// Origins splits CORSOrigins on commas.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
