package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MaxConns          int32  `mapstructure:"maxConns"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Providers struct {
		Expedia      ExpediaConfig      `mapstructure:"expedia"`
		GooglePlaces GooglePlacesConfig `mapstructure:"googlePlaces"`
	} `mapstructure:"providers"`
	Generation GenerationConfig `mapstructure:"generation"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
}

type ExpediaConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"baseURL"`
	APIKey     string        `mapstructure:"apiKey"`
	APISecret  string        `mapstructure:"apiSecret"`
	CustomerIP string        `mapstructure:"customerIP"`
	Currency   string        `mapstructure:"currency"`
	Language   string        `mapstructure:"language"`
	Country    string        `mapstructure:"countryCode"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type GooglePlacesConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"baseURL"`
	APIKey         string        `mapstructure:"apiKey"`
	LodgingRadiusM int           `mapstructure:"lodgingRadiusM"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type GenerationConfig struct {
	Provider    string        `mapstructure:"provider"` // "together" or "gemini"
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"baseURL"`
	APIKey      string        `mapstructure:"apiKey"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`

	GeminiModel  string `mapstructure:"geminiModel"`
	GeminiAPIKey string `mapstructure:"geminiAPIKey"`
}

type AggregatorConfig struct {
	MaxPlacesPerInterest int `mapstructure:"maxPlacesPerInterest"`
	MaxHotels            int `mapstructure:"maxHotels"`
	Concurrency          int `mapstructure:"concurrency"`
}

// secrets are never committed to config.yml.
var envBindings = map[string]string{
	"repositories.postgres.password": "POSTGRES_PASSWORD",
	"providers.expedia.apiKey":       "EXPEDIA_API_KEY",
	"providers.expedia.apiSecret":    "EXPEDIA_API_SECRET",
	"providers.googlePlaces.apiKey":  "GOOGLE_PLACES_API_KEY",
	"generation.apiKey":              "TOGETHER_AI_API_KEY",
	"generation.geminiAPIKey":        "GOOGLE_GEMINI_API_KEY",
	"generation.provider":            "GENERATION_PROVIDER",
	"mode":                           "APP_ENV",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.applyDefaults()
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = 90 * time.Second
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "go-travel-planner"
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = "together"
	}
	if c.Generation.GeminiModel == "" {
		c.Generation.GeminiModel = "gemini-2.0-flash"
	}
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = 60 * time.Second
	}
	if c.Providers.Expedia.Timeout <= 0 {
		c.Providers.Expedia.Timeout = 15 * time.Second
	}
	if c.Providers.GooglePlaces.Timeout <= 0 {
		c.Providers.GooglePlaces.Timeout = 10 * time.Second
	}
	if c.Aggregator.MaxPlacesPerInterest <= 0 {
		c.Aggregator.MaxPlacesPerInterest = 5
	}
	if c.Aggregator.MaxHotels <= 0 {
		c.Aggregator.MaxHotels = 5
	}
	if c.Aggregator.Concurrency <= 0 {
		c.Aggregator.Concurrency = 4
	}
}
