package testutils

import (
	"time"

	"github.com/campuskit/tokenauth/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "tokenauth-test",
		},
		JWT: config.JWTConfig{
			SecretKey:    "test-secret-key-32-chars-long!!",
			Issuer:       "test-issuer",
			AccessExpiry: 15 * time.Minute,
		},
		RefreshToken: config.RefreshTokenConfig{
			TokenLength:     32,
			Expiry:          24 * time.Hour,
			CleanupInterval: time.Hour,
			StoreTimeout:    5 * time.Second,
		},
		Blacklist: config.BlacklistConfig{
			Store:   "memory",
			Timeout: 500 * time.Millisecond,
		},
		Directory: config.DirectoryConfig{
			BaseURL: "http://localhost:8081",
			Timeout: 3 * time.Second,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}

// MustHashSecret produces a bcrypt hash at minimum cost for fixtures.
func MustHashSecret(secret string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
