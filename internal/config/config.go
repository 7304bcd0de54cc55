package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Postgres   Postgres   `yaml:"postgres"`
	Server     Server     `yaml:"server" env-required:"true"`
	Workflow   Workflow   `yaml:"workflow"`
	Pagination Pagination `yaml:"pagination"`
	Catalog    Catalog    `yaml:"catalog"`
	Migrations Migrations `yaml:"migrations"`
}

type Postgres struct {
	Username        string        `yaml:"username" env:"POSTGRES_USER" env-required:"true"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-required:"true"`
	Port            string        `yaml:"port" env:"POSTGRES_PORT" env-required:"true"`
	Database        string        `yaml:"database" env:"POSTGRES_DB" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"50"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env-default:"1m"`
}

type Server struct {
	Host    string        `yaml:"host" env-default:"localhost"`
	Port    string        `yaml:"port" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// Workflow configures the external business-process engine that is notified of status changes.
type Workflow struct {
	Enabled    bool          `yaml:"enabled" env:"WORKFLOW_ENABLED" env-default:"true"`
	BaseURL    string        `yaml:"base_url" env:"WORKFLOW_BASE_URL" env-default:"http://localhost:8080/engine-rest"`
	ProcessKey string        `yaml:"process_key" env:"WORKFLOW_PROCESS_KEY" env-default:"request_process"`
	Timeout    time.Duration `yaml:"timeout" env-default:"3s"`
}

type Pagination struct {
	DefaultPageSize int `yaml:"default_page_size" env-default:"10"`
	MaxPageSize     int `yaml:"max_page_size" env-default:"100"`
}

type Catalog struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CATALOG_CACHE_TTL" env-default:"5m"`
}

// Migrations is read by cmd/migrator only.
type Migrations struct {
	Path  string `yaml:"path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	Table string `yaml:"table" env:"MIGRATIONS_TABLE" env-default:"schema_migrations"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}

// ConnString builds a postgres URL without query parameters.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		p.Username, p.Password, p.Host, p.Port, p.Database,
	)
}

// MigrateURL is the golang-migrate database URL with its own version table.
func (p Postgres) MigrateURL(table string) string {
	q := url.Values{}
	q.Set("sslmode", "disable")
	q.Set("x-migrations-table", table)

	return p.ConnString() + "?" + q.Encode()
}
