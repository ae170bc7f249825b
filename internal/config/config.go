package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetInt64Env returns an int64 environment variable or a default value.
func GetInt64Env(key string, defaultVal int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
	BodyLimit   int
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN renders the key/value connection string understood by the pgx driver.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.Name, p.Port, p.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MongoConfig struct {
	URI      string
	Database string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type GatewayConfig struct {
	Provider      string // "razorpay" or "stripe"
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
	RatePerSecond int
}

type UploadConfig struct {
	MaxSize int64
}

type WalletConfig struct {
	WithdrawMin        int64
	WithdrawDailyLimit int64
}

type JobsConfig struct {
	Enabled                  bool
	EscrowReleaseInterval    time.Duration
	EscrowAutoReleaseAfter   time.Duration
	InvitationExpiryInterval time.Duration
}

// Config is the typed view of the environment used to wire the server.
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Upload   UploadConfig
	Wallet   WalletConfig
	Jobs     JobsConfig
}

// Load reads the configuration from the environment. Call LoadEnv first to
// pick up a .env file.
func Load() *Config {
	return &Config{
		Env:      GetEnv("ENV", "development"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:        GetEnv("PORT", "3000"),
			CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
			BodyLimit:   GetIntEnv("BODY_LIMIT", 8*1024*1024),
		},
		Postgres: PostgresConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "eventflex"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		Mongo: MongoConfig{
			URI:      GetEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGO_DB", "eventflex"),
		},
		JWT: JWTConfig{
			AccessSecret:  GetEnv("JWT_SECRET", ""),
			RefreshSecret: GetEnv("REFRESH_SECRET", ""),
			AccessTTL:     GetDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    GetDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:        GetEnv("JWT_ISSUER", "eventflex-api"),
		},
		Gateway: GatewayConfig{
			Provider:      strings.ToLower(GetEnv("PAYMENT_GATEWAY", "razorpay")),
			KeyID:         GetEnv("GATEWAY_KEY_ID", ""),
			KeySecret:     GetEnv("GATEWAY_KEY_SECRET", ""),
			WebhookSecret: GetEnv("GATEWAY_WEBHOOK_SECRET", ""),
			Currency:      GetEnv("GATEWAY_CURRENCY", "INR"),
			RatePerSecond: GetIntEnv("GATEWAY_RATE_PER_SECOND", 10),
		},
		Upload: UploadConfig{
			MaxSize: GetInt64Env("UPLOAD_MAX_SIZE", 5*1024*1024),
		},
		Wallet: WalletConfig{
			WithdrawMin:        GetInt64Env("WITHDRAW_MIN", 10000),
			WithdrawDailyLimit: GetInt64Env("WITHDRAW_DAILY_LIMIT", 5000000),
		},
		Jobs: JobsConfig{
			Enabled:                  GetEnv("JOBS_ENABLED", "true") == "true",
			EscrowReleaseInterval:    GetDurationEnv("ESCROW_RELEASE_INTERVAL", time.Hour),
			EscrowAutoReleaseAfter:   GetDurationEnv("ESCROW_AUTO_RELEASE_AFTER", 72*time.Hour),
			InvitationExpiryInterval: GetDurationEnv("INVITATION_EXPIRY_INTERVAL", 15*time.Minute),
		},
	}
}

// Validate reports configuration that would make the server unsafe or unable to start.
func (c *Config) Validate() error {
	var errs []error
	if c.Env == "production" {
		if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET and REFRESH_SECRET are required in production"))
		}
		if c.Gateway.KeySecret == "" {
			errs = append(errs, errors.New("GATEWAY_KEY_SECRET is required in production"))
		}
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_SECRET must differ"))
	}
	switch c.Gateway.Provider {
	case "razorpay", "stripe":
	default:
		errs = append(errs, fmt.Errorf("unknown PAYMENT_GATEWAY %q", c.Gateway.Provider))
	}
	if c.Upload.MaxSize <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_SIZE must be positive"))
	}
	if c.Wallet.WithdrawMin <= 0 || c.Wallet.WithdrawDailyLimit < c.Wallet.WithdrawMin {
		errs = append(errs, errors.New("WITHDRAW_MIN must be positive and not exceed WITHDRAW_DAILY_LIMIT"))
	}
	if c.Jobs.EscrowReleaseInterval <= 0 || c.Jobs.InvitationExpiryInterval <= 0 {
		errs = append(errs, errors.New("job intervals must be positive"))
	}
	return errors.Join(errs...)
}

// ApplyDevDefaults fills secrets that may be left empty outside production.
func (c *Config) ApplyDevDefaults() {
	if c.Env == "production" {
		return
	}
	if c.JWT.AccessSecret == "" {
		c.JWT.AccessSecret = "eventflex-dev-access"
	}
	if c.JWT.RefreshSecret == "" {
		c.JWT.RefreshSecret = "eventflex-dev-refresh"
	}
}
