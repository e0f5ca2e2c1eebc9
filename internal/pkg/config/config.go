package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (pricing constants, timeouts, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Pricing PricingConfig
	Stripe  StripeConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	Seed     bool   `envconfig:"DB_SEED" default:"false"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type JWTConfig struct {
	Secret               string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenDuration  string `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration string `envconfig:"JWT_REFRESH_TOKEN_DURATION" default:"168h"`
}

// PricingConfig carries the redemption pricing constants. They are injected
// configuration rather than package-level constants so tests and per-
// environment tuning can vary them without code changes.
type PricingConfig struct {
	CreditUnitValue     decimal.Decimal `envconfig:"PRICING_CREDIT_UNIT_VALUE" default:"0.03"`
	MaxDiscountFraction decimal.Decimal `envconfig:"PRICING_MAX_DISCOUNT_FRACTION" default:"0.60"`
	FlatShipping        decimal.Decimal `envconfig:"PRICING_FLAT_SHIPPING" default:"5.99"`
	TaxRate             decimal.Decimal `envconfig:"PRICING_TAX_RATE" default:"0.08"`
}

type StripeConfig struct {
	SecretKey string        `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	Currency  string        `envconfig:"STRIPE_CURRENCY" default:"usd"`
	Timeout   time.Duration `envconfig:"STRIPE_TIMEOUT" default:"10s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level: "error", // Error level only for tests
		},
		JWT: JWTConfig{
			Secret:               "test-secret",
			AccessTokenDuration:  "15m",
			RefreshTokenDuration: "168h",
		},
		Pricing: PricingConfig{
			CreditUnitValue:     decimal.RequireFromString("0.03"),
			MaxDiscountFraction: decimal.RequireFromString("0.60"),
			FlatShipping:        decimal.RequireFromString("5.99"),
			TaxRate:             decimal.RequireFromString("0.08"),
		},
		Stripe: StripeConfig{
			SecretKey: "sk_test_dummy",
			Currency:  "usd",
			Timeout:   10 * time.Second,
		},
	}
}
