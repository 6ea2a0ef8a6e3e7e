package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Auth configuration
	JWTSecret          string
	JWTTTL             time.Duration
	GoogleClientID     string
	GoogleTokenInfoURL string

	// Avatar storage
	S3Bucket string
	S3Region string

	CORSOrigins        []string
	RateLimitPerMinute int
	StatsCacheTTL      time.Duration
	LogLevel           string
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env == Development {
		// .env is optional in development
		_ = godotenv.Load()
	}

	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := &Config{Environment: env}
	loadCommon(cfg, v)

	// Sensitive values come from a different source per environment
	switch env {
	case CI:
		loadCIConfig(cfg, v)
	case Development, Test:
		loadDevConfig(cfg, v)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "mealtrack")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "mealtrack.db")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("STATS_CACHE_TTL", "5m")
	v.SetDefault("LOG_LEVEL", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func loadCommon(cfg *Config, v *viper.Viper) {
	cfg.ServerPort = v.GetString("SERVER_PORT")
	cfg.ServerHost = v.GetString("SERVER_HOST")
	cfg.DBDriver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DBHost = v.GetString("DB_HOST")
	cfg.DBPort = v.GetString("DB_PORT")
	cfg.DBName = v.GetString("DB_NAME")
	cfg.DBSSLMode = v.GetString("DB_SSL_MODE")
	cfg.SQLitePath = v.GetString("SQLITE_PATH")
	cfg.RedisHost = v.GetString("REDIS_HOST")
	cfg.RedisPort = v.GetString("REDIS_PORT")
	cfg.RedisDB = v.GetInt("REDIS_DB")
	cfg.RedisURL = v.GetString("REDIS_URL")
	cfg.JWTTTL = v.GetDuration("JWT_TTL")
	cfg.GoogleClientID = v.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleTokenInfoURL = v.GetString("GOOGLE_TOKENINFO_URL")
	cfg.S3Bucket = v.GetString("S3_BUCKET_NAME")
	cfg.S3Region = v.GetString("AWS_REGION")
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.RateLimitPerMinute = v.GetInt("RATE_LIMIT_PER_MINUTE")
	cfg.StatsCacheTTL = v.GetDuration("STATS_CACHE_TTL")
	cfg.LogLevel = v.GetString("LOG_LEVEL")
}

// loadCIConfig reads sensitive values from the environment only
func loadCIConfig(cfg *Config, v *viper.Viper) {
	cfg.DBUser = v.GetString("DB_USER")
	cfg.DBPassword = v.GetString("DB_PASSWORD")
	cfg.JWTSecret = v.GetString("JWT_SECRET")
	cfg.RedisPassword = v.GetString("REDIS_PASSWORD")
}

// loadDevConfig prefers Docker secrets and falls back to the environment
func loadDevConfig(cfg *Config, v *viper.Viper) {
	cfg.DBUser = secretOrEnv(v, "db_user")
	cfg.DBPassword = secretOrEnv(v, "db_password")
	cfg.JWTSecret = secretOrEnv(v, "jwt_secret")
	cfg.RedisPassword = secretOrEnv(v, "redis_password")
}

// loadProdConfig reads sensitive values using ONLY Docker secrets
func loadProdConfig(cfg *Config) {
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
}

func secretOrEnv(v *viper.Viper, name string) string {
	if s := readSecret(name); s != "" {
		return s
	}
	return v.GetString(strings.ToUpper(name))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
