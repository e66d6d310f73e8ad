// Package config loads process configuration from the environment (and an
// optional .env file) into a typed struct.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const minSecretLength = 32

type Config struct {
	Port string `env:"PORT,default=8080"`

	// DBDriver selects the gorm dialector: "postgres" or "sqlite".
	DBDriver    string `env:"DB_DRIVER,default=postgres"`
	DatabaseURL string `env:"DATABASE_URL,default=host=localhost user=postgres password=postgres dbname=blogapi port=5432 sslmode=disable"`
	SQLitePath  string `env:"SQLITE_PATH,default=data/blog.db"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER,default=blogapi"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=24h"`

	UploadDir      string `env:"UPLOAD_DIR,default=uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES,default=10485760"`

	// StrictAuth closes the unauthenticated comment and notification routes.
	StrictAuth bool `env:"STRICT_AUTH,default=false"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT,default=30s"`
}

// Load reads .env (if present) and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET: must be at least %d bytes", minSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL: must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES: must be positive")
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
