package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars and an optional config file.
type Config struct {
	Port              string
	StoreDriver       string
	MongoURI          string
	DatabaseName      string
	DatabaseURL       string
	StoreTransactions bool
	JWTSecret         string
	JWTIssuer         string
	JWTTTL            time.Duration
	StripeSecretKey   string
	PaymentCurrency   string
	CORSOrigins       []string
}

// Load reads configuration from the environment, overlaid on the file at path when it is non-empty,
// and performs minimal validation.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "5000")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("DB_NAME", "Industico")
	v.SetDefault("STORE_TRANSACTIONS", true)
	v.SetDefault("JWT_ISSUER", "industico-backend")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Port:              trimmed(v, "PORT"),
		StoreDriver:       strings.ToLower(trimmed(v, "STORE_DRIVER")),
		MongoURI:          trimmed(v, "MONGODB_URI"),
		DatabaseName:      trimmed(v, "DB_NAME"),
		DatabaseURL:       trimmed(v, "DATABASE_URL"),
		StoreTransactions: v.GetBool("STORE_TRANSACTIONS"),
		JWTSecret:         trimmed(v, "ACCESS_TOKEN_SECRET"),
		JWTIssuer:         trimmed(v, "JWT_ISSUER"),
		StripeSecretKey:   trimmed(v, "STRIPE_SECURE_KEY"),
		PaymentCurrency:   strings.ToLower(trimmed(v, "PAYMENT_CURRENCY")),
		CORSOrigins:       parseCSV(trimmed(v, "CORS_ALLOWED_ORIGINS")),
	}

	if ttl := v.GetDuration("JWT_TTL"); ttl > 0 {
		cfg.JWTTTL = ttl
	} else {
		cfg.JWTTTL = 24 * time.Hour
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = atlasURI(trimmed(v, "DB_USER"), trimmed(v, "DB_PASS"), trimmed(v, "DB_CLUSTER"))
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("ACCESS_TOKEN_SECRET is required")
	}
	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGODB_URI or DB_USER, DB_PASS and DB_CLUSTER are required")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// atlasURI builds an Atlas SRV connection string from split credentials; it returns "" when any part is missing.
func atlasURI(user, pass, cluster string) string {
	if user == "" || pass == "" || cluster == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     cluster,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
