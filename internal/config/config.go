package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Listings  ListingsConfig
	Payment   PaymentConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	MigrationsDir  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	MaxConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

// ListingsConfig points at the third-party car listings provider.
type ListingsConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// PaymentConfig tunes the simulated payment gateway.
type PaymentConfig struct {
	Mode        string // "simulated", "approve" or "decline"
	SuccessRate float64
	Latency     time.Duration
}

type SessionConfig struct {
	Store         string // "redis" or "memory"
	TTL           time.Duration
	RememberMeTTL time.Duration
	CookieName    string
	SecureCookie  bool
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func Load() *Config {
	// godotenv only fills variables that are not already set in the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("LISTINGS_BASE_URL", "https://auto.dev/api")
	viper.SetDefault("LISTINGS_TIMEOUT", "15s")
	viper.SetDefault("PAYMENT_MODE", "simulated")
	viper.SetDefault("PAYMENT_SUCCESS_RATE", 0.7)
	viper.SetDefault("PAYMENT_LATENCY", "2s")
	viper.SetDefault("SESSION_STORE", "redis")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("SESSION_REMEMBER_ME_TTL", "720h")
	viper.SetDefault("SESSION_COOKIE_NAME", "carmine_session")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	env := viper.GetString("SERVER_ENV")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            env,
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			MigrationsDir:  viper.GetString("MIGRATIONS_DIR"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
			MaxConns: viper.GetInt("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Listings: ListingsConfig{
			BaseURL: strings.TrimRight(viper.GetString("LISTINGS_BASE_URL"), "/"),
			APIKey:  viper.GetString("LISTINGS_API_KEY"),
			Timeout: viper.GetDuration("LISTINGS_TIMEOUT"),
		},
		Payment: PaymentConfig{
			Mode:        viper.GetString("PAYMENT_MODE"),
			SuccessRate: viper.GetFloat64("PAYMENT_SUCCESS_RATE"),
			Latency:     viper.GetDuration("PAYMENT_LATENCY"),
		},
		Session: SessionConfig{
			Store:         viper.GetString("SESSION_STORE"),
			TTL:           viper.GetDuration("SESSION_TTL"),
			RememberMeTTL: viper.GetDuration("SESSION_REMEMBER_ME_TTL"),
			CookieName:    viper.GetString("SESSION_COOKIE_NAME"),
			SecureCookie:  env == "production",
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
