package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, limits, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Booking  BookingConfig
	WhatsApp WhatsAppConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
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
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Jakarta"`
}

type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	// Settings read-through cache lifetime. Booking state is never cached.
	SettingsTTL time.Duration `envconfig:"REDIS_SETTINGS_TTL" default:"5m"`
}

type StorageConfig struct {
	// "local" or "s3"
	Backend   string `envconfig:"STORAGE_BACKEND" default:"local"`
	LocalDir  string `envconfig:"STORAGE_LOCAL_DIR" default:"uploads"`
	PublicURL string `envconfig:"STORAGE_PUBLIC_URL" default:"/uploads"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT" default:""`
	S3Region    string `envconfig:"S3_REGION" default:""`
	S3Bucket    string `envconfig:"S3_BUCKET" default:""`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" default:""`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" default:""`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"true"`
}

// BookingConfig holds the fallback booking-window rules. Runtime values come
// from the settings store; these apply when a setting row is absent.
type BookingConfig struct {
	MinNoticeDays int `envconfig:"BOOKING_MIN_NOTICE_DAYS" default:"1"`
	MaxAheadDays  int `envconfig:"BOOKING_MAX_AHEAD_DAYS" default:"90"`
}

type WhatsAppConfig struct {
	// Country code prepended when normalizing local numbers (leading zero).
	DefaultCountryCode string `envconfig:"WHATSAPP_COUNTRY_CODE" default:"62"`
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
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Jakarta"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"25200"` // 7*60*60
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Booking.MinNoticeDays < 0 {
		return fmt.Errorf("BOOKING_MIN_NOTICE_DAYS cannot be negative")
	}
	if c.Booking.MaxAheadDays < c.Booking.MinNoticeDays {
		return fmt.Errorf("BOOKING_MAX_AHEAD_DAYS cannot be below BOOKING_MIN_NOTICE_DAYS")
	}
	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.S3Endpoint == "" || c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Jakarta",
		},
		Storage: StorageConfig{
			Backend:   "local",
			LocalDir:  "uploads",
			PublicURL: "/uploads",
		},
		Booking: BookingConfig{
			MinNoticeDays: 1,
			MaxAheadDays:  90,
		},
		WhatsApp: WhatsAppConfig{
			DefaultCountryCode: "62",
		},
		Log: LogConfig{
			Level:          "error",
			TimeZone:       "Asia/Jakarta",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 25200,
		},
	}
}
