package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Store          string        `mapstructure:"STORE"`
	DBDSN          string        `mapstructure:"DB_DSN"`
	Environment    string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	TelegramToken  string        `mapstructure:"TELEGRAM_TOKEN"`
	HTTPPort       string        `mapstructure:"HTTP_PORT"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	JWTSigningKey  string        `mapstructure:"JWT_SIGNING_KEY"`
	JWTIssuer      string        `mapstructure:"JWT_ISSUER"`
	TeacherID      string        `mapstructure:"TEACHER_ID"`
	DefaultRate    float64       `mapstructure:"DEFAULT_RATE"`
	RescheduleLead time.Duration `mapstructure:"RESCHEDULE_LEAD"`
	RateLimit      int           `mapstructure:"RATE_LIMIT_PER_MIN"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	Location       *time.Location
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из произвольного источника переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Store:         withDefault(getenv("STORE"), StorePostgres),
		DBDSN:         getenv("DB_DSN"),
		Environment:   withDefault(getenv("ENV"), "development"),
		LogLevel:      getenv("LOG_LEVEL"),
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		HTTPPort:      withDefault(getenv("HTTP_PORT"), "8080"),
		RedisAddr:     getenv("REDIS_ADDR"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY"),
		JWTIssuer:     withDefault(getenv("JWT_ISSUER"), "lesson-scheduler"),
		TeacherID:     getenv("TEACHER_ID"),
		Timezone:      withDefault(getenv("TIMEZONE"), "Local"),
		CORSOrigins:   parseList(getenv("CORS_ORIGINS")),
	}

	var err error
	if cfg.DefaultRate, err = parseFloat(getenv("DEFAULT_RATE"), 60); err != nil {
		return nil, fmt.Errorf("DEFAULT_RATE: %w", err)
	}
	if cfg.RescheduleLead, err = parseDuration(getenv("RESCHEDULE_LEAD"), 7*24*time.Hour); err != nil {
		return nil, fmt.Errorf("RESCHEDULE_LEAD: %w", err)
	}
	if cfg.RateLimit, err = parseInt(getenv("RATE_LIMIT_PER_MIN"), 120); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MIN: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	// Проверяем обязательные поля
	switch cfg.Store {
	case StorePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
	if cfg.JWTSigningKey == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SIGNING_KEY is required in production")
		}
		cfg.JWTSigningKey = "dev-signing-key"
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseFloat(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func parseInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

// parseList разбирает список через запятую, пустые элементы пропускаются
func parseList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
