package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	DBDSN             string
	DBConnectAttempts int
	ServerPort        string
	SessionSecret     string

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRPS   float64
	RateLimitBurst int

	SeedFrameworks bool
}

// Load reads .env (if present) and the environment. DB_DSN is required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_CONNECT_ATTEMPTS", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("SEED_FRAMEWORKS", true)

	cfg := &Config{
		DBDSN:             v.GetString("DB_DSN"),
		DBConnectAttempts: v.GetInt("DB_CONNECT_ATTEMPTS"),
		ServerPort:        v.GetString("SERVER_PORT"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		RateLimitRPS:      v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:    v.GetInt("RATE_LIMIT_BURST"),
		SeedFrameworks:    v.GetBool("SEED_FRAMEWORKS"),
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg.DBConnectAttempts < 1 {
		cfg.DBConnectAttempts = 1
	}
	return cfg, nil
}
