package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Elastic ElasticConfig
	Indices IndicesConfig
	Bulk    BulkConfig
	Sweep   SweepConfig
	MongoDB MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// ElasticConfig contains connection settings for the document store.
type ElasticConfig struct {
	Endpoint       string
	APIKey         string
	RequestTimeout time.Duration
	BulkTimeout    time.Duration
	ElserModelID   string
}

// IndicesConfig names the document-store indices per entity kind.
type IndicesConfig struct {
	Customers    string
	Transactions string
	Inventory    string
	Stores       string
	Menu         string
}

// BulkConfig holds batch-write behavior knobs.
type BulkConfig struct {
	// FailureTolerance is the fraction of per-document failures a bulk
	// write may contain and still be reported as a success.
	FailureTolerance float64
}

// SweepConfig holds the scheduled inventory sweep settings.
type SweepConfig struct {
	CronSchedule string
	Timezone     string
	StoreIDs     []string
}

// MongoDBConfig holds optional snapshot-archive settings.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	tolerance, err := parseFloat("BULK_FAILURE_TOLERANCE", 0.10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Elastic: ElasticConfig{
			Endpoint:       getenvWithDefault("ELASTICSEARCH_ENDPOINT", "https://localhost:9200"),
			APIKey:         os.Getenv("ELASTICSEARCH_API_KEY"),
			RequestTimeout: 30 * time.Second,
			BulkTimeout:    60 * time.Second,
			ElserModelID:   getenvWithDefault("ELSER_MODEL_ID", ".elser_model_2_linux-x86_64"),
		},
		Indices: IndicesConfig{
			Customers:    getenvWithDefault("INDEX_CUSTOMERS", "beeloyalty-customers"),
			Transactions: getenvWithDefault("INDEX_TRANSACTIONS", "beeloyalty-transactions"),
			Inventory:    getenvWithDefault("INDEX_INVENTORY", "beeloyalty-inventory"),
			Stores:       getenvWithDefault("INDEX_STORES", "beeloyalty-stores"),
			Menu:         getenvWithDefault("INDEX_MENU", "beeloyalty-menu"),
		},
		Bulk: BulkConfig{
			FailureTolerance: tolerance,
		},
		Sweep: SweepConfig{
			CronSchedule: getenvWithDefault("SWEEP_CRON_SCHEDULE", "0 6 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Manila"),
			StoreIDs:     splitList(getenvWithDefault("SWEEP_STORE_IDS", "store_001")),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "beeloyalty"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Elastic.Endpoint == "":
		return errors.New("ELASTICSEARCH_ENDPOINT must be provided")
	case c.Elastic.APIKey == "":
		return errors.New("ELASTICSEARCH_API_KEY must be provided")
	}

	if c.Bulk.FailureTolerance < 0 || c.Bulk.FailureTolerance > 1 {
		return errors.New("BULK_FAILURE_TOLERANCE must be between 0 and 1")
	}

	if c.Sweep.CronSchedule == "" {
		return errors.New("SWEEP_CRON_SCHEDULE must be provided")
	}

	if c.Sweep.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
