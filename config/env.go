package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingBackendConfig = errors.New("SUPABASE_URL and SUPABASE_ANON_KEY must be set")

type Config struct {
	AppEnv string
	Port   string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	StorageBucket     string

	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	ProductCacheTTL time.Duration

	LocalStorePath string
	FlushInterval  time.Duration
	CartIdleTTL    time.Duration
	CheckoutDelay  time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	RateLimitRPS   float64
	RateLimitBurst int

	OTLPEndpoint string
	OriginURL    string
}

var AppConfig *Config

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using system environment variables")
	}

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("APP_PORT", getEnv("PORT", "8082")),

		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		StorageBucket:     getEnv("STORAGE_BUCKET", "product-images"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "ooru_foods"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "database/migration"),

		RedisURL:        os.Getenv("REDIS_URL"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 5*time.Minute),

		LocalStorePath: getEnv("LOCAL_STORE_PATH", "./data/cart.db"),
		FlushInterval:  getDuration("FLUSH_INTERVAL", 30*time.Second),
		CartIdleTTL:    getDuration("CART_IDLE_TTL", 30*time.Minute),
		CheckoutDelay:  getDuration("CHECKOUT_DELAY", 2*time.Second),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "orders@oorufoods.in"),

		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 20),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OriginURL:    os.Getenv("ORIGIN_URL"),
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		return nil, ErrMissingBackendConfig
	}

	AppConfig = cfg

	slog.Info("Configuration loaded successfully", "environment", cfg.AppEnv, "port", cfg.Port)
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryURL != "" ||
		(c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v < 0 {
		return defaultValue
	}
	return v
}
