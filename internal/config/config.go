package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	QuorumCountAll      = "all"
	QuorumCountApproved = "approved"
)

// Config - настройки сервиса, читаются из окружения (и .env, если он есть).
type Config struct {
	Server   Server
	Postgres Postgres
	Log      Log
	Quorum   Quorum
	Metrics  Metrics
}

type Server struct {
	Address         string        `env:"SERVER_ADDRESS" env-default:"0.0.0.0:8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	MigrateOnStart  bool          `env:"MIGRATE_ON_START" env-default:"true"`
}

type Postgres struct {
	Conn     string `env:"POSTGRES_CONN"`
	Username string `env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
	Database string `env:"POSTGRES_DATABASE" env-default:"postgres"`
	SSLMode  string `env:"POSTGRES_SSLMODE" env-default:"disable"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

type Log struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`
	Format     string `env:"LOG_FORMAT" env-default:"json"`
	Output     string `env:"LOG_OUTPUT" env-default:"stdout"`
	FilePath   string `env:"LOG_FILE" env-default:"logs/tender-marketplace.log"`
	MaxSize    int    `env:"LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `env:"LOG_MAX_AGE" env-default:"7"`
	Compress   bool   `env:"LOG_COMPRESS" env-default:"false"`
}

// Quorum управляет закрытием тендера по решениям ответственных.
type Quorum struct {
	Cap       int    `env:"QUORUM_CAP" env-default:"3"`
	CountMode string `env:"QUORUM_COUNT_MODE" env-default:"all"`
}

type Metrics struct {
	Enabled   bool   `env:"METRICS_ENABLED" env-default:"true"`
	Namespace string `env:"METRICS_NAMESPACE" env-default:"tenders"`
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Quorum.Cap < 1 {
		return errors.New("QUORUM_CAP must be positive")
	}
	switch c.Quorum.CountMode {
	case QuorumCountAll, QuorumCountApproved:
	default:
		return fmt.Errorf("QUORUM_COUNT_MODE must be %q or %q, got %q",
			QuorumCountAll, QuorumCountApproved, c.Quorum.CountMode)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout":
	case "file":
		if c.Log.FilePath == "" {
			return errors.New("LOG_FILE is required when LOG_OUTPUT=file")
		}
	default:
		return fmt.Errorf("LOG_OUTPUT must be stdout or file, got %q", c.Log.Output)
	}
	return nil
}

// DSN возвращает POSTGRES_CONN либо собирает строку подключения из частей.
func (p Postgres) DSN() string {
	if p.Conn != "" {
		return p.Conn
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	} else {
		u.User = url.User(p.Username)
	}
	return u.String()
}
