package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	RepositorySQLite   = "sqlite"
	RepositoryPostgres = "postgres"
	RepositoryInMemory = "inmemory"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Store      StoreConfig      `yaml:"store"`
	Worker     WorkerConfig     `yaml:"worker"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"TODO_SERVER_PORT" env-default:"8080"`
	Host            string        `yaml:"host" env:"TODO_SERVER_HOST"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"TODO_REQUEST_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TODO_SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimitRPM    int           `yaml:"rate_limit_rpm" env:"TODO_RATE_LIMIT_RPM" env-default:"120"` // отрицательное значение отключает лимит
	CORSOrigins     []string      `yaml:"cors_origins" env:"TODO_CORS_ORIGINS" env-separator:","`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url" env:"TODO_DATABASE_URL"`
	Path           string        `yaml:"path" env:"TODO_DATABASE_PATH" env-default:"todo.db"`
	MaxConnections int           `yaml:"max_connections" env:"TODO_DATABASE_MAX_CONNECTIONS" env-default:"10"`
	MinConnections int           `yaml:"min_connections" env:"TODO_DATABASE_MIN_CONNECTIONS" env-default:"1"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"TODO_DATABASE_IDLE_TIMEOUT" env-default:"5m"`
}

type LoggingConfig struct {
	Development bool `yaml:"development" env:"TODO_LOG_DEVELOPMENT"`
}

type RepositoryConfig struct {
	Type string `yaml:"type" env:"TODO_REPOSITORY_TYPE" env-default:"sqlite"` // sqlite, postgres или inmemory
}

type StoreConfig struct {
	NotFoundMode string `yaml:"not_found_mode" env:"TODO_NOT_FOUND_MODE" env-default:"strict"` // strict или silent
}

type WorkerConfig struct {
	Enabled  bool          `yaml:"enabled" env:"TODO_WORKER_ENABLED"`
	Interval time.Duration `yaml:"interval" env:"TODO_WORKER_INTERVAL" env-default:"1h"`
}

// Load читает YAML-файл, если он есть, затем накладывает переменные окружения.
// Значения по умолчанию заполняют только поля, не заданные ни файлом, ни окружением.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// без файла конфигурация берётся из окружения
		default:
			return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("чтение переменных окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Repository.Type = strings.ToLower(strings.TrimSpace(c.Repository.Type))
	switch c.Repository.Type {
	case RepositorySQLite:
		if c.Database.Path == "" {
			return errors.New("конфигурация: database.path обязателен для sqlite")
		}
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("конфигурация: database.url обязателен для postgres")
		}
	case RepositoryInMemory:
	default:
		return fmt.Errorf("конфигурация: неизвестный repository.type %q", c.Repository.Type)
	}

	c.Store.NotFoundMode = strings.ToLower(strings.TrimSpace(c.Store.NotFoundMode))
	if c.Store.NotFoundMode != "strict" && c.Store.NotFoundMode != "silent" {
		return fmt.Errorf("конфигурация: неизвестный store.not_found_mode %q", c.Store.NotFoundMode)
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("конфигурация: min_connections (%d) больше max_connections (%d)",
			c.Database.MinConnections, c.Database.MaxConnections)
	}
	if c.Worker.Enabled && c.Worker.Interval <= 0 {
		return errors.New("конфигурация: worker.interval должен быть положительным")
	}
	return nil
}

// Usage - описание переменных окружения для --help
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
