package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string
	ServerAddr string

	DBDriver   string
	DBURL      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	NaverDeveloperID     string
	NaverDeveloperSecret string
	NaverCloudID         string
	NaverCloudSecret     string
	NaverTimeout         time.Duration

	DistanceUnit        string
	MaxDistanceKM       float64
	RestaurantCooldown  time.Duration
	BugPageSize         int
	CORSOrigins         string
	RateLimitMax        int
	RateLimitExpiration time.Duration

	LogDir        string
	LogMaxSizeMB  int
	LogMaxAgeDays int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	AppURL       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", ":8000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "winoreat")
	v.SetDefault("NAVER_TIMEOUT", "5s")
	v.SetDefault("LANDMARK_DISTANCE_UNIT", "m")
	v.SetDefault("MAX_DISTANCE_KM", 20)
	v.SetDefault("RESTAURANT_COOLDOWN", "72h")
	v.SetDefault("BUG_PAGE_SIZE", 1000)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_MAX", 60)
	v.SetDefault("RATE_LIMIT_EXPIRATION", "1m")
	v.SetDefault("LOG_DIR", "./logs")
	v.SetDefault("LOG_MAX_SIZE_MB", 10)
	v.SetDefault("LOG_MAX_AGE_DAYS", 7)
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("MAIL_FROM", "no-reply@winoreat.com")
	v.SetDefault("APP_URL", "http://localhost:3000")
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

// FromViper builds a Config out of an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:        v.GetString("ENV"),
		ServerAddr: v.GetString("PORT"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBURL:      v.GetString("DATABASE_URL"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASS"),
		DBName:     v.GetString("DB_NAME"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		NaverDeveloperID:     v.GetString("NAVER_DEVELOPER_PLATFORM_CLIENT_ID"),
		NaverDeveloperSecret: v.GetString("NAVER_DEVELOPER_PLATFORM_CLIENT_SECRET"),
		NaverCloudID:         v.GetString("NAVER_CLOUD_PLATFORM_CLIENT_ID"),
		NaverCloudSecret:     v.GetString("NAVER_CLOUD_PLATFORM_CLIENT_SECRET"),
		NaverTimeout:         v.GetDuration("NAVER_TIMEOUT"),

		DistanceUnit:        strings.ToLower(v.GetString("LANDMARK_DISTANCE_UNIT")),
		MaxDistanceKM:       v.GetFloat64("MAX_DISTANCE_KM"),
		RestaurantCooldown:  v.GetDuration("RESTAURANT_COOLDOWN"),
		BugPageSize:         v.GetInt("BUG_PAGE_SIZE"),
		CORSOrigins:         v.GetString("CORS_ORIGINS"),
		RateLimitMax:        v.GetInt("RATE_LIMIT_MAX"),
		RateLimitExpiration: v.GetDuration("RATE_LIMIT_EXPIRATION"),

		LogDir:        v.GetString("LOG_DIR"),
		LogMaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		MailFrom:     v.GetString("MAIL_FROM"),
		AppURL:       v.GetString("APP_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.DistanceUnit {
	case "m", "km":
	default:
		return fmt.Errorf("unsupported LANDMARK_DISTANCE_UNIT %q", c.DistanceUnit)
	}
	if c.MaxDistanceKM < 0 {
		return fmt.Errorf("MAX_DISTANCE_KM must not be negative")
	}
	if c.BugPageSize <= 0 {
		return fmt.Errorf("BUG_PAGE_SIZE must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
// DATABASE_URL wins over the discrete DB_* settings.
func (c *Config) DSN() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
