package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"TOKENAUTH_APP_"`
	Server       ServerConfig       `envPrefix:"TOKENAUTH_SERVER_"`
	Log          LogConfig          `envPrefix:"TOKENAUTH_LOG_"`
	Database     DatabaseConfig     `envPrefix:"TOKENAUTH_DATABASE_"`
	JWT          JWTConfig          `envPrefix:"TOKENAUTH_JWT_"`
	RefreshToken RefreshTokenConfig `envPrefix:"TOKENAUTH_REFRESH_"`
	Blacklist    BlacklistConfig    `envPrefix:"TOKENAUTH_BLACKLIST_"`
	Directory    DirectoryConfig    `envPrefix:"TOKENAUTH_DIRECTORY_"`
	RateLimit    RateLimitConfig    `envPrefix:"TOKENAUTH_RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"tokenauth"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"tokenauth.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY,required"`
	Issuer       string        `env:"ISSUER" envDefault:"tokenauth"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
}

type RefreshTokenConfig struct {
	TokenLength     int           `env:"TOKEN_LENGTH" envDefault:"32"`
	Expiry          time.Duration `env:"EXPIRY" envDefault:"720h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

type BlacklistConfig struct {
	Store         string        `env:"STORE" envDefault:"memory"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"500ms"`
}

type DirectoryConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8081"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"3s"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Rate    int           `env:"RATE" envDefault:"10"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
	Store   string        `env:"STORE" envDefault:"memory"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
