package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "FOODSHARE"

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Upload    UploadConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database configuration.
// URL is either postgres://... or sqlite://<path>
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
	PostTTL time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// UploadConfig selects and configures the image upload collaborator
type UploadConfig struct {
	Provider  string // "cdn" or "memory"
	Endpoint  string
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	MaxBytes  int
}

// AuthConfig holds credential and token settings
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// RateLimitConfig limits claim submissions per client
type RateLimitConfig struct {
	ClaimsPerSecond float64
	ClaimBurst      int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	Format   string // "json" or "text"
	FlatJSON bool   // one flat JSON object per entry
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Load loads configuration from a .env file, environment variables and config file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.foodshare")
	viper.AddConfigPath("/etc/foodshare")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; env vars and defaults are enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL: getString("database_url", "sqlite://foodshare.db"),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
			PostTTL: getDuration("redis_post_ttl", 5*time.Minute),
		},
		Server: ServerConfig{
			Port:           getInt("http_server_port", 8080),
			Host:           getString("http_server_host", "0.0.0.0"),
			AllowedOrigins: splitList(getString("allowed_origins", "http://localhost:3000")),
			ReadTimeout:    getDuration("http_read_timeout", 15*time.Second),
			WriteTimeout:   getDuration("http_write_timeout", 30*time.Second),
		},
		Upload: UploadConfig{
			Provider:  getString("upload_provider", "memory"),
			Endpoint:  getString("upload_endpoint", "https://api.cloudinary.com"),
			CloudName: getString("upload_cloud_name", ""),
			APIKey:    getString("upload_api_key", ""),
			APISecret: getString("upload_api_secret", ""),
			Folder:    getString("upload_folder", "foodshare"),
			MaxBytes:  getInt("upload_max_bytes", 10<<20),
		},
		Auth: AuthConfig{
			JWTSecret:  getString("jwt_secret", ""),
			Issuer:     getString("jwt_issuer", "foodshare"),
			TokenTTL:   getDuration("jwt_ttl", 24*time.Hour),
			BcryptCost: getInt("bcrypt_cost", 12),
		},
		RateLimit: RateLimitConfig{
			ClaimsPerSecond: getFloat("claim_rate_per_second", 0.5),
			ClaimBurst:      getInt("claim_rate_burst", 3),
		},
		Logging: LoggingConfig{
			Level:    getString("log_level", "INFO"),
			Format:   getString("log_format", "json"),
			FlatJSON: getBool("log_flat_json", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", ""),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "foodshare"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_url", "sqlite://foodshare.db")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("upload_provider", "memory")
	viper.SetDefault("upload_folder", "foodshare")
	viper.SetDefault("jwt_issuer", "foodshare")
	viper.SetDefault("bcrypt_cost", 12)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "foodshare")
}

// envValue reads FOODSHARE_<KEY> directly. viper.IsSet does not see
// AutomaticEnv values for keys without a default.
func envValue(key string) string {
	return os.Getenv(envPrefix + "_" + strings.ToUpper(key))
}

func getString(key, defaultValue string) string {
	if val := envValue(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if val := envValue(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if val := envValue(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if val := envValue(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if val := envValue(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return defaultValue
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

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database_url is required")
	}
	if !strings.HasPrefix(c.Database.URL, "postgres://") &&
		!strings.HasPrefix(c.Database.URL, "postgresql://") &&
		!strings.HasPrefix(c.Database.URL, "sqlite://") {
		return fmt.Errorf("database_url must start with postgres:// or sqlite://")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("http_server_port must be between 1 and 65535")
	}
	switch c.Upload.Provider {
	case "memory":
	case "cdn":
		if c.Upload.CloudName == "" || c.Upload.APIKey == "" || c.Upload.APISecret == "" {
			return fmt.Errorf("upload_cloud_name, upload_api_key and upload_api_secret are required for the cdn provider")
		}
	default:
		return fmt.Errorf("upload_provider must be cdn or memory, got %q", c.Upload.Provider)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31")
	}
	if c.Telemetry.PrometheusPort < 0 || c.Telemetry.PrometheusPort > 65535 {
		return fmt.Errorf("prometheus_port must be between 0 and 65535")
	}
	if c.RateLimit.ClaimsPerSecond <= 0 || c.RateLimit.ClaimBurst <= 0 {
		return fmt.Errorf("claim rate limit must be positive")
	}
	return nil
}
