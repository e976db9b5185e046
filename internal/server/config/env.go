package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	EndpointAddrGRPC      string        `env:"GOPHAUTH_GRPC_ADDR"`
	MetricsAddr           string        `env:"GOPHAUTH_METRICS_ADDR"`
	StorageBackend        string        `env:"GOPHAUTH_STORAGE"`
	DatabaseDSN           string        `env:"GOPHAUTH_DATABASE_DSN"`
	SQLitePath            string        `env:"GOPHAUTH_SQLITE_PATH"`
	SecretKey             string        `env:"GOPHAUTH_SECRET_KEY"`
	TokenIssuer           string        `env:"GOPHAUTH_TOKEN_ISSUER"`
	TokenValidityDuration time.Duration `env:"GOPHAUTH_TOKEN_TTL"`
	PasswordHashAlgorithm string        `env:"GOPHAUTH_HASH_ALGORITHM"`
	BcryptCost            int           `env:"GOPHAUTH_BCRYPT_COST"`
	LogLevel              string        `env:"GOPHAUTH_LOG_LEVEL"`
}

// parseEnv overlays GOPHAUTH_* variables. A nil environ reads the process
// environment.
func parseEnv(config *Config, environ map[string]string) error {
	var e envConfig

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.MetricsAddr, e.MetricsAddr)
	setString(&config.StorageBackend, e.StorageBackend)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SQLitePath, e.SQLitePath)
	setString(&config.SecretKey, e.SecretKey)
	setString(&config.TokenIssuer, e.TokenIssuer)
	setString(&config.PasswordHashAlgorithm, e.PasswordHashAlgorithm)
	setString(&config.LogLevel, e.LogLevel)
	if e.TokenValidityDuration != 0 {
		config.TokenValidityDuration = e.TokenValidityDuration
	}
	if e.BcryptCost != 0 {
		config.BcryptCost = e.BcryptCost
	}
	return nil
}
