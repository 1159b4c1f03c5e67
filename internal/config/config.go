package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	CORS     CORSConfig     `mapstructure:"cors"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Env          string        `mapstructure:"env"` // local, dev or prod
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether photo storage is configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// GeminiConfig configures the generative text API. An empty APIKey disables
// AI calls and every request takes the deterministic path.
type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RedisConfig enables the shared throttle and event fan-out when URL is set.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type NotifyConfig struct {
	Interval      time.Duration `mapstructure:"interval"` // minimum gap per (user, field)
	SubscriberBuf int           `mapstructure:"subscriber_buffer"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AppConfig struct {
	Timezone      string `mapstructure:"timezone"`
	MealTablePath string `mapstructure:"meal_table_path"` // optional override of the embedded table
}

// Location resolves the configured timezone.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LoadConfig reads configuration from file or environment variables.
// Nested keys map to upper-case env names, e.g. gemini.api_key -> GEMINI_API_KEY.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// defaults and env only
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.env", "local")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "90s") // AI calls run inside the request
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "diet_tracker")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "720h")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/")
	v.SetDefault("gemini.api_version", "v1beta")
	v.SetDefault("gemini.timeout", "30s")

	v.SetDefault("redis.url", "")

	v.SetDefault("notify.interval", "30s")
	v.SetDefault("notify.subscriber_buffer", 16)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.meal_table_path", "")
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("config: jwt.expiration must be positive")
	}
	if c.Notify.Interval <= 0 {
		return errors.New("config: notify.interval must be positive")
	}
	if c.Gemini.APIKey != "" && c.Gemini.Model == "" {
		return errors.New("config: gemini.model is required when gemini.api_key is set")
	}
	if _, err := c.App.Location(); err != nil {
		return fmt.Errorf("config: app.timezone: %w", err)
	}
	return nil
}
