package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Search provider configuration
	Search SearchConfig `mapstructure:"search"`

	// Crawler configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Classifier keyword sets
	Classifier ClassifierConfig `mapstructure:"classifier"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// SearchConfig holds the custom search API settings
type SearchConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	EngineID          string  `mapstructure:"engine_id"`
	Endpoint          string  `mapstructure:"endpoint"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// CrawlerConfig holds fetch dispatcher settings
type CrawlerConfig struct {
	UserAgent          string        `mapstructure:"user_agent"`
	UseRandomUserAgent bool          `mapstructure:"use_random_user_agent"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Parallelism        int           `mapstructure:"parallelism"`
	MaxBodySize        int           `mapstructure:"max_body_size"`
	FollowRobotsTxt    bool          `mapstructure:"follow_robots_txt"`
}

// ClassifierConfig holds the token sets used to spot discussion areas.
// Empty slices mean the built-in defaults.
type ClassifierConfig struct {
	FormTokens      []string `mapstructure:"form_tokens"`
	ContainerTokens []string `mapstructure:"container_tokens"`
}

// OutputConfig holds the CSV sink settings
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "console"
	OutputPath string `mapstructure:"output_path"`
}

// Environment variables holding the search credentials.
const (
	EnvAPIKey   = "GOOGLE_API_KEY"
	EnvEngineID = "CUSTOM_SEARCH_ENGINE_ID"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Load loads configuration from file and environment.
// A .env file in the working directory is read first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.linkscout")
	}

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Search defaults
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.endpoint", "")
	v.SetDefault("search.requests_per_second", 1.0)

	// Crawler defaults
	v.SetDefault("crawler.user_agent", "linkscout/1.0")
	v.SetDefault("crawler.use_random_user_agent", true)
	v.SetDefault("crawler.timeout", "20s")
	v.SetDefault("crawler.parallelism", 8)
	v.SetDefault("crawler.max_body_size", 10*1024*1024)
	v.SetDefault("crawler.follow_robots_txt", false)

	// Classifier defaults (empty means built-in token sets)
	v.SetDefault("classifier.form_tokens", []string{})
	v.SetDefault("classifier.container_tokens", []string{})

	// Output defaults
	v.SetDefault("output.path", "dofollow_links.csv")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", "stderr")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) error {
	v.SetEnvPrefix("LINKSCOUT")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.BindEnv("search.api_key", EnvAPIKey, "LINKSCOUT_SEARCH_API_KEY"); err != nil {
		return fmt.Errorf("bind %s: %w", EnvAPIKey, err)
	}
	if err := v.BindEnv("search.engine_id", EnvEngineID, "LINKSCOUT_SEARCH_ENGINE_ID"); err != nil {
		return fmt.Errorf("bind %s: %w", EnvEngineID, err)
	}
	return nil
}

// Validate validates the configuration. Search credentials are not
// checked here; a missing key surfaces on the first search request.
func (c *Config) Validate() error {
	if c.Search.RequestsPerSecond <= 0 {
		return fmt.Errorf("search.requests_per_second must be positive")
	}
	if c.Crawler.Parallelism <= 0 {
		return fmt.Errorf("crawler.parallelism must be positive")
	}
	if c.Crawler.Timeout <= 0 {
		return fmt.Errorf("crawler.timeout must be positive")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must not be empty")
	}
	return nil
}
