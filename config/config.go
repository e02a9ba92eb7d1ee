package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Engine      EngineConfig      `yaml:"engine"`
	Derivatives DerivativesConfig `yaml:"derivatives"`
	Server      ServerConfig      `yaml:"server"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type EngineConfig struct {
	MinPrice int64 `yaml:"min_price"`
	MaxPrice int64 `yaml:"max_price"`
	MaxQty   int64 `yaml:"max_qty"`
}

type DerivativesConfig struct {
	EmaAlpha           float64 `yaml:"ema_alpha"`
	FundingIntervalSec uint64  `yaml:"funding_interval_sec"`
	FundingCap         float64 `yaml:"funding_cap"`
	MaintenanceMargin  float64 `yaml:"maintenance_margin"`
	InitialMargin      float64 `yaml:"initial_margin"`
	LiquidationPenalty float64 `yaml:"liquidation_penalty"`
	MaxLeverage        float64 `yaml:"max_leverage"`
	MinConfidence      float64 `yaml:"min_confidence"`
	InsuranceFund      float64 `yaml:"insurance_fund"`
}

type ServerConfig struct {
	GRPCPort       int           `yaml:"grpc_port"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	RateBurst      int           `yaml:"rate_burst"`
	OracleStart    float64       `yaml:"oracle_start"`
	OracleInterval time.Duration `yaml:"oracle_interval"`
}

type KafkaConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Brokers         []string      `yaml:"brokers"`
	TradeTopic      string        `yaml:"trade_topic"`
	MarketDataTopic string        `yaml:"market_data_topic"`
	FlushInterval   time.Duration `yaml:"flush_interval"`
}

type StorageConfig struct {
	WALDir           string        `yaml:"wal_dir"`
	WALSegmentSize   int64         `yaml:"wal_segment_size"`
	JournalDir       string        `yaml:"journal_dir"`
	SnapshotDir      string        `yaml:"snapshot_dir"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default is the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MinPrice: 1,
			MaxPrice: 1_000_000,
			MaxQty:   1_000_000,
		},
		Derivatives: DerivativesConfig{
			EmaAlpha:           0.1,
			FundingIntervalSec: 28800,
			FundingCap:         0.001,
			MaintenanceMargin:  0.005,
			InitialMargin:      0.01,
			LiquidationPenalty: 0.003,
			MaxLeverage:        100,
			MinConfidence:      0.5,
			InsuranceFund:      1_000_000,
		},
		Server: ServerConfig{
			GRPCPort:       50051,
			RatePerSecond:  5000,
			RateBurst:      1000,
			OracleStart:    1000,
			OracleInterval: time.Second,
		},
		Kafka: KafkaConfig{
			Enabled:         false,
			Brokers:         []string{"localhost:9092"},
			TradeTopic:      "kestrel.trades",
			MarketDataTopic: "kestrel.marketdata",
			FlushInterval:   250 * time.Millisecond,
		},
		Storage: StorageConfig{
			WALDir:           "./data/wal",
			WALSegmentSize:   2 * 1024 * 1024,
			JournalDir:       "./data/journal",
			SnapshotDir:      "./data/snapshots",
			SnapshotInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error. Configuration
// is immutable once loaded.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.GRPCPort = getEnvInt("KESTREL_GRPC_PORT", cfg.Server.GRPCPort)
	cfg.Logging.Level = getEnvString("KESTREL_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvString("KESTREL_LOG_FORMAT", cfg.Logging.Format)
	cfg.Kafka.Enabled = getEnvBool("KESTREL_KAFKA_ENABLED", cfg.Kafka.Enabled)
	cfg.Storage.WALDir = getEnvString("KESTREL_WAL_DIR", cfg.Storage.WALDir)
	cfg.Storage.JournalDir = getEnvString("KESTREL_JOURNAL_DIR", cfg.Storage.JournalDir)
	cfg.Storage.SnapshotDir = getEnvString("KESTREL_SNAPSHOT_DIR", cfg.Storage.SnapshotDir)
}

func (c *Config) Validate() error {
	if c.Engine.MinPrice <= 0 || c.Engine.MaxPrice <= c.Engine.MinPrice {
		return fmt.Errorf("config: invalid price bounds [%d, %d]", c.Engine.MinPrice, c.Engine.MaxPrice)
	}
	if c.Engine.MaxQty <= 0 {
		return fmt.Errorf("config: max_qty must be positive")
	}
	if c.Derivatives.EmaAlpha <= 0 || c.Derivatives.EmaAlpha > 1 {
		return fmt.Errorf("config: ema_alpha %f outside (0, 1]", c.Derivatives.EmaAlpha)
	}
	if c.Derivatives.FundingCap < 0 {
		return fmt.Errorf("config: funding_cap must not be negative")
	}
	if c.Derivatives.MaintenanceMargin <= 0 || c.Derivatives.MaintenanceMargin >= 1 {
		return fmt.Errorf("config: maintenance_margin %f outside (0, 1)", c.Derivatives.MaintenanceMargin)
	}
	if c.Derivatives.InitialMargin < c.Derivatives.MaintenanceMargin {
		return fmt.Errorf("config: initial_margin below maintenance_margin")
	}
	if c.Derivatives.MaxLeverage <= 0 {
		return fmt.Errorf("config: max_leverage must be positive")
	}
	return nil
}

// ---- env helpers ----

func getEnvString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
