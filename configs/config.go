package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"pricedesk/pkg/log"
)

// Backend kinds
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Snapshot stores
const (
	SnapshotFile     = "file"
	SnapshotPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Backend     BackendConfig     `yaml:"backend"`
	Schema      SchemaConfig      `yaml:"schema"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Snapshot    SnapshotConfig    `yaml:"snapshot"`
	Database    DatabaseConfig    `yaml:"database"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT" env-default:"3000"`
	OpsPort     string `yaml:"ops_port" env:"OPS_PORT" env-default:"8081"`
	Env         string `yaml:"env" env:"APP_ENV" env-default:"development"`
	OpenBrowser bool   `yaml:"open_browser" env:"OPEN_BROWSER" env-default:"false"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"console"`
}

// BackendConfig selects and configures the listing backend
type BackendConfig struct {
	Kind      string        `yaml:"kind" env:"BACKEND_KIND" env-default:"local"`
	URL       string        `yaml:"url" env:"BACKEND_URL"`
	APIKey    string        `yaml:"api_key" env:"BACKEND_API_KEY"`
	Timeout   time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"15s"`
	EventsURL string        `yaml:"events_url" env:"BACKEND_EVENTS_URL"`
}

// SchemaConfig holds item schema source configuration
type SchemaConfig struct {
	SteamAPIKey string `yaml:"steam_api_key" env:"STEAM_API_KEY"`
	URL         string `yaml:"url" env:"STEAM_SCHEMA_URL" env-default:"https://api.steampowered.com/IEconItems_440/GetSchemaItems/v0001/"`
	RefreshCron string `yaml:"refresh_cron" env:"SCHEMA_REFRESH_CRON" env-default:"@daily"`
}

// MarketplaceConfig holds the accepted classifieds host
type MarketplaceConfig struct {
	Host string `yaml:"host" env:"MARKETPLACE_HOST" env-default:"backpack.tf"`
}

// SnapshotConfig holds listing snapshot persistence configuration
type SnapshotConfig struct {
	Store string `yaml:"store" env:"SNAPSHOT_STORE" env-default:"file"`
	Path  string `yaml:"path" env:"SNAPSHOT_PATH" env-default:"listings.json"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

// Load loads configuration from an optional YAML file and environment variables.
// A .env file in the working directory is applied first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using environment variables")
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the selected backend and stores are fully configured
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend.Kind {
	case BackendLocal:
	case BackendRemote:
		if c.Backend.URL == "" {
			errs = append(errs, errors.New("BACKEND_URL is required for the remote backend"))
		}
		if c.Backend.APIKey == "" {
			errs = append(errs, errors.New("BACKEND_API_KEY is required for the remote backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND_KIND %q (must be local or remote)", c.Backend.Kind))
	}

	switch c.Snapshot.Store {
	case SnapshotFile:
	case SnapshotPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres snapshot store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SNAPSHOT_STORE %q (must be file or postgres)", c.Snapshot.Store))
	}

	if c.Schema.SteamAPIKey == "" {
		errs = append(errs, errors.New("STEAM_API_KEY is required to load the item schema"))
	}

	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("BACKEND_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
