package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Env    string       `yaml:"env" env:"ENV" env-default:"local"`
	API    APIConfig    `yaml:"api"`
	Upload UploadConfig `yaml:"upload"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Minio  MinioConfig  `yaml:"minio"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Retry  RetryConfig  `yaml:"retry"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8080/api"`
	Token   string        `yaml:"token" env:"API_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"30s"`
}

type UploadConfig struct {
	Concurrency   int           `yaml:"concurrency" env:"UPLOAD_CONCURRENCY" env-default:"3"`
	Attempts      int           `yaml:"attempts" env:"UPLOAD_ATTEMPTS" env-default:"1"`
	RetryDelay    time.Duration `yaml:"retry_delay" env:"UPLOAD_RETRY_DELAY" env-default:"500ms"`
	RetryBackoff  float64       `yaml:"retry_backoff" env:"UPLOAD_RETRY_BACKOFF" env-default:"2"`
	JPEGQuality   int           `yaml:"jpeg_quality" env:"UPLOAD_JPEG_QUALITY" env-default:"92"`
	PreviewSize   int           `yaml:"preview_size" env:"UPLOAD_PREVIEW_SIZE" env-default:"256"`
	PreviewDir    string        `yaml:"preview_dir" env:"UPLOAD_PREVIEW_DIR"`
	MaxUploadSize int64         `yaml:"max_upload_size" env:"UPLOAD_MAX_SIZE" env-default:"33554432"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10m"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:"8080"`
	PublicURL       string        `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DBConfig is optional. With an empty Host the dev backend keeps photos in memory.
type DBConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"cafes"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

type MinioConfig struct {
	Endpoint      string        `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey     string        `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey     string        `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket        string        `yaml:"bucket" env:"MINIO_BUCKET" env-default:"cafe-photos"`
	UseSSL        bool          `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	PublicURL     string        `yaml:"public_url" env:"MINIO_PUBLIC_URL"`
	PresignExpiry time.Duration `yaml:"presign_expiry" env:"MINIO_PRESIGN_EXPIRY" env-default:"15m"`
}

// KafkaConfig is optional. Without brokers photo events are only logged.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	EventsTopic string   `yaml:"events_topic" env:"KAFKA_EVENTS_TOPIC" env-default:"cafe-photo-events"`
	GroupID     string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"cafemedia-events"`
}

func (c *Config) UseKafka() bool {
	return len(c.Kafka.Brokers) > 0
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay" env:"RETRY_DELAY" env-default:"100ms"`
	Backoff  float64       `yaml:"backoff" env:"RETRY_BACKOFF" env-default:"2"`
}

// Load reads the YAML file named by CONFIG_PATH when it is set and
// falls back to the environment alone otherwise.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Upload.Concurrency < 1 {
		return fmt.Errorf("upload.concurrency must be positive, got %d", c.Upload.Concurrency)
	}
	if c.Upload.Attempts < 1 {
		return fmt.Errorf("upload.attempts must be positive, got %d", c.Upload.Attempts)
	}
	if c.Upload.JPEGQuality < 1 || c.Upload.JPEGQuality > 100 {
		return fmt.Errorf("upload.jpeg_quality must be within 1..100, got %d", c.Upload.JPEGQuality)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}

// UploadRetryStrategy applies to a whole item, so each attempt presigns again.
func (c *Config) UploadRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Upload.Attempts,
		Delay:    c.Upload.RetryDelay,
		Backoff:  c.Upload.RetryBackoff,
	}
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) UsePostgres() bool {
	return c.DB.Host != ""
}
