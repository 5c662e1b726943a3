package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override, e.g. GOVERNANCE_STORE_BACKEND.
const EnvPrefix = "governance"

const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendLevelDB  = "leveldb"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string          `yaml:"serviceName" split_words:"true" validate:"required"`
	HTTPAddr    string          `yaml:"httpAddr"    envconfig:"HTTP_ADDR" validate:"required"`
	Store       StoreConfig     `yaml:"store"`
	Bootstrap   BootstrapConfig `yaml:"bootstrap"`
	Outbox      OutboxConfig    `yaml:"outbox"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory badger leveldb postgres sqlite"`
	// DataDir is used by badger and leveldb. Empty means in-memory.
	DataDir string `yaml:"dataDir" split_words:"true"`
	// DSN is the postgres connection string or the sqlite file path.
	DSN string `yaml:"dsn" envconfig:"DSN" validate:"required_if=Backend postgres"`
}

// BootstrapConfig instantiates governance on first start when Owner is set.
type BootstrapConfig struct {
	Owner  string   `yaml:"owner"`
	Admins []string `yaml:"admins" validate:"dive,required"`
}

type OutboxConfig struct {
	// Embedded runs the relay inside the api process. Disable it when a
	// separate worker process drains a shared postgres outbox.
	Embedded     bool          `yaml:"embedded"`
	PollInterval time.Duration `yaml:"pollInterval" split_words:"true" validate:"gt=0"`
	BatchSize    int           `yaml:"batchSize"    split_words:"true" validate:"min=1,max=10000"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Default() Config {
	return Config{
		ServiceName: "governance",
		HTTPAddr:    ":8080",
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Outbox: OutboxConfig{
			Embedded:     true,
			PollInterval: 2 * time.Second,
			BatchSize:    100,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load layers defaults, the optional YAML file at path, then GOVERNANCE_*
// environment variables, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("error processing environment: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.HTTPAddr = normalizeAddr(cfg.HTTPAddr)

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Config{}, fmt.Errorf("invalid config: %s", verrs.Error())
		}
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func normalizeAddr(addr string) string {
	value := strings.TrimSpace(addr)
	if value == "" || strings.Contains(value, ":") {
		return value
	}
	return ":" + value
}
