package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Billing BillingConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BillingConfig struct {
	StrictInvoiceStatus bool          `env:"STRICT_INVOICE_STATUS, default=false"`
	IdempotencyTTL      time.Duration `env:"IDEMPOTENCY_TTL,       default=24h"`
	InvoiceIssuer       string        `env:"INVOICE_ISSUER"`
	CurrencySymbol      string        `env:"CURRENCY_SYMBOL"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=hourbook"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED, default=true"`
	Addr     string `env:"REDIS_ADDR,    default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,      default=0"`
}

// IsProduction reports whether the service runs with production defaults
// (JSON logs, no request dumps).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env.local and .env when present, then the process environment.
// Variables already set in the environment win over the files.
func Load(ctx context.Context) (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration from an explicit lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
