package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string        `env:"PORT"`
	JWTSecret string        `env:"JWT_SECRET,required=true"`
	JWTTTL    time.Duration `env:"JWT_TTL"`

	DBHost     string `env:"DB_HOST"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBPort     string `env:"DB_PORT"`
	DBSSLMode  string `env:"DB_SSLMODE"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	MaxMessageLength  int     `env:"MAX_MESSAGE_LENGTH"`
	WSEventsPerSecond float64 `env:"WS_EVENTS_PER_SECOND"`
	WSEventBurst      int     `env:"WS_EVENT_BURST"`
	WSDebug           bool    `env:"WS_DEBUG"`

	LogLevel string `env:"LOG_LEVEL"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.applyDefaults()
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.JWTTTL <= 0 {
		c.JWTTTL = 7 * 24 * time.Hour
	}
	if c.DBPort == "" {
		c.DBPort = "5432"
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "disable"
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.AdminPassword == "" {
		c.AdminPassword = "admin123"
	}
	if c.MaxMessageLength < 1 {
		c.MaxMessageLength = 4000
	}
	if c.WSEventsPerSecond <= 0 {
		c.WSEventsPerSecond = 20
	}
	if c.WSEventBurst <= 0 {
		c.WSEventBurst = 40
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DSN builds the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
