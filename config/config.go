package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StorageDriver   string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL     string `mapstructure:"DB_URL"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	PersistMaxRetry uint64 `mapstructure:"PERSIST_MAX_RETRY"`

	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	JWTExpiryHours int      `mapstructure:"JWT_EXPIRY_HOURS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`

	TwilioAccountSID     string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber    string `mapstructure:"TWILIO_PHONE_NUMBER"`
	TwilioWhatsAppNumber string `mapstructure:"TWILIO_WHATSAPP_NUMBER"`

	ReminderCron    string        `mapstructure:"REMINDER_CRON"`
	NotificationTTL time.Duration `mapstructure:"NOTIFICATION_TTL"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"STORAGE_DRIVER", "DB_URL", "SQLITE_PATH", "REDIS_URL", "PERSIST_MAX_RETRY",
	"JWT_SECRET", "JWT_EXPIRY_HOURS", "CORS_ORIGINS",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER", "TWILIO_WHATSAPP_NUMBER",
	"REMINDER_CRON", "NOTIFICATION_TTL",
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "cabinet.db")
	v.SetDefault("PERSIST_MAX_RETRY", 3)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REMINDER_CRON", "0 * * * *")
	v.SetDefault("NOTIFICATION_TTL", "4s")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}
	return cfg, cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_URL is required when STORAGE_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORAGE_DRIVER is %q", DriverSQLite)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q, %q or %q, got %q", DriverPostgres, DriverSQLite, DriverMemory, c.StorageDriver)
	}
	if c.JWTSecret == "" && !c.IsDev() {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.JWTExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive")
	}
	return nil
}
