package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketBluff/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"5m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logger struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output     string `yaml:"output" default:"stdout"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"100"`
		MaxBackups int    `yaml:"max_backups" default:"7"`
		MaxAgeDays int    `yaml:"max_age_days" default:"30"`
	} `yaml:"logger"`
	MarketData struct {
		ChartURL          string        `yaml:"chart_url" default:"https://query1.finance.yahoo.com/v8/finance/chart" validate:"url"`
		QuoteURL          string        `yaml:"quote_url" default:"https://query1.finance.yahoo.com/v7/finance/quote" validate:"url"`
		UserAgent         string        `yaml:"user_agent" default:"Mozilla/5.0"`
		HistoryRange      string        `yaml:"history_range" default:"10y"`
		BenchmarkTicker   string        `yaml:"benchmark_ticker" default:"^GSPC"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"4" validate:"gt=0"`
		Burst             int           `yaml:"burst" default:"4" validate:"gt=0"`
		Timeout           time.Duration `yaml:"timeout" default:"20s"`
	} `yaml:"market_data"`
	Cache struct {
		Backend       string `yaml:"backend" default:"file" validate:"oneof=file redis layered memory"`
		Dir           string `yaml:"dir" default:"data/cache"`
		MemoryMaxSize int    `yaml:"memory_max_size" default:"2000"`
		Redis         struct {
			Host     string        `yaml:"host" default:"localhost"`
			Port     int           `yaml:"port" default:"6379"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db"`
			Prefix   string        `yaml:"prefix" default:"marketbluff"`
			TTL      time.Duration `yaml:"ttl"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Universe struct {
		Size         int    `yaml:"size" default:"300" validate:"gt=0"`
		ListingURL   string `yaml:"listing_url" default:"https://en.wikipedia.org/wiki/List_of_S%26P_500_companies" validate:"url"`
		SnapshotFile string `yaml:"snapshot_file" default:"data/universe/sp500_snapshot.csv"`
		SeedFile     string `yaml:"seed_file" default:"data/universe/seed.csv"`
	} `yaml:"universe"`
	Analysis struct {
		MaxWorkers       int           `yaml:"max_workers" default:"16" validate:"gt=0"`
		FetchTimeout     time.Duration `yaml:"fetch_timeout" default:"45s"`
		BetaLookbackDays int           `yaml:"beta_lookback_days" default:"730" validate:"gt=0"`
		MinBetaSamples   int           `yaml:"min_beta_samples" default:"60" validate:"gt=1"`
	} `yaml:"analysis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"marketbluff.summaries"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"10"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Schedule struct {
		UniverseWarmup string `yaml:"universe_warmup"`
	} `yaml:"schedule"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Fill zero-valued fields from struct tags
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads .env (if any), then config from YAML, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("UNIVERSE_SIZE"); v != "" {
		c.Universe.Size = util.ParseIntDefault(v, c.Universe.Size)
	}
	if v := os.Getenv("BETA_LOOKBACK_DAYS"); v != "" {
		c.Analysis.BetaLookbackDays = util.ParseIntDefault(v, c.Analysis.BetaLookbackDays)
	}
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitAndTrim(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka is enabled")
	}
	return nil
}
