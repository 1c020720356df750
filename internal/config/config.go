package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv               string        `mapstructure:"APP_ENV"`
	Port                 string        `mapstructure:"PORT"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	MigrationsPath       string        `mapstructure:"MIGRATIONS_PATH"`
	SecretKey            string        `mapstructure:"SECRET_KEY"`
	JWTSecretKey         string        `mapstructure:"JWT_SECRET_KEY"`
	AccessTokenTTL       time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL      time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	RedisURL             string        `mapstructure:"REDIS_URL"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	CacheTTL             time.Duration `mapstructure:"CACHE_TTL"`
	ShortCodeMaxAttempts int           `mapstructure:"SHORT_CODE_MAX_ATTEMPTS"`
	RateLimitRPS         float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int           `mapstructure:"RATE_LIMIT_BURST"`
	PublicBaseURL        string        `mapstructure:"PUBLIC_BASE_URL"`
	GeoIPDBPath          string        `mapstructure:"GEOIP_DB_PATH"`
}

func LoadConfig() (config Config, err error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "sqlite://bookmarks.db")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("SHORT_CODE_MAX_ATTEMPTS", 64)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("PUBLIC_BASE_URL", "")
	v.SetDefault("GEOIP_DB_PATH", "")

	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	if config.JWTSecretKey == "" {
		config.JWTSecretKey = config.SecretKey
	}

	return
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	if c.JWTSecretKey == "" && c.AppEnv != "local" && c.AppEnv != "test" {
		return errors.New("JWT_SECRET_KEY or SECRET_KEY must be set")
	}
	if c.ShortCodeMaxAttempts < 1 {
		return errors.New("SHORT_CODE_MAX_ATTEMPTS must be positive")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}
