package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string `mapstructure:"DB_DSN"`
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	TelegramToken string  `mapstructure:"TELEGRAM_TOKEN"`
	AdminIDs      []int64 `mapstructure:"ADMIN_TELEGRAM_IDS"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	LockTTL       time.Duration `mapstructure:"LOCK_TTL"`

	MetricsAddr string `mapstructure:"METRICS_ADDR"`

	StandingWeeksAhead int           `mapstructure:"STANDING_WEEKS_AHEAD"`
	StandingInterval   time.Duration `mapstructure:"STANDING_INTERVAL"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Файл .env необязателен, переменные могут прийти из окружения
	_ = godotenv.Load(".env")

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из произвольного источника переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDSN:         getenv("DB_DSN"),
		Environment:   getenv("ENV"),
		LogLevel:      getenv("LOG_LEVEL"),
		TelegramToken: getenv("TELEGRAM_TOKEN"),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		MetricsAddr:   getenv("METRICS_ADDR"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	var err error
	if cfg.RedisDB, err = intVar(getenv, "REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.StandingWeeksAhead, err = intVar(getenv, "STANDING_WEEKS_AHEAD", 4); err != nil {
		return nil, err
	}
	if cfg.StandingWeeksAhead < 0 {
		return nil, fmt.Errorf("STANDING_WEEKS_AHEAD must not be negative")
	}
	if cfg.LockTTL, err = durationVar(getenv, "LOCK_TTL", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.StandingInterval, err = durationVar(getenv, "STANDING_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AdminIDs, err = idList(getenv("ADMIN_TELEGRAM_IDS")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// BotEnabled бот запускается только при наличии токена
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// RedisEnabled блокировки через Redis включаются только при наличии адреса
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func durationVar(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return v, nil
}

func idList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_IDS: invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
