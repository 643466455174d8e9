package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/s0up4200/omdbfilm/omdb"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. OMDBFILM_OMDB_API_KEY
const EnvPrefix = "OMDBFILM"

// Load loads the configuration from file and environment. A missing config
// file is only an error when configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("omdb.api_key", EnvPrefix+"_OMDB_API_KEY", "OMDB_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".omdbfilm"))
		}

		v.AddConfigPath("/etc/omdbfilm/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// OMDb defaults
	v.SetDefault("omdb.url", omdb.DefaultBaseURL)
	v.SetDefault("omdb.timeout", omdb.DefaultTimeout)
	v.SetDefault("omdb.user_agent", "")

	// Search defaults
	v.SetDefault("search.mode", omdb.SearchModeStructured.String())
	v.SetDefault("search.concurrency", 1)

	// Filter defaults
	v.SetDefault("filter.default", "")
	v.SetDefault("filter.presets", map[string]string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// normalize lowercases preset names. viper lowercases map keys when reading,
// so filter.presets only ever holds lowercase names.
func normalize(cfg *Config) {
	cfg.Filter.Default = strings.ToLower(cfg.Filter.Default)
	if len(cfg.Filter.Presets) == 0 {
		return
	}
	presets := make(map[string]string, len(cfg.Filter.Presets))
	for name, expression := range cfg.Filter.Presets {
		presets[strings.ToLower(name)] = expression
	}
	cfg.Filter.Presets = presets
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.OMDb.APIKey == "" || cfg.OMDb.APIKey == "your-api-key-here" {
		return fmt.Errorf("omdb.api_key must be set to a valid API key (or OMDB_API_KEY)")
	}

	if cfg.OMDb.Timeout <= 0 {
		return fmt.Errorf("omdb.timeout must be positive, got %s", cfg.OMDb.Timeout)
	}

	if _, err := omdb.ParseSearchMode(cfg.Search.Mode); err != nil {
		return fmt.Errorf("invalid search.mode: %w", err)
	}

	if cfg.Search.Concurrency < 1 || cfg.Search.Concurrency > omdb.MaxConcurrency {
		return fmt.Errorf("search.concurrency must be between 1 and %d, got %d", omdb.MaxConcurrency, cfg.Search.Concurrency)
	}

	if cfg.Filter.Default != "" {
		if _, ok := cfg.Filter.Presets[cfg.Filter.Default]; !ok {
			return fmt.Errorf("filter.default refers to unknown preset: %s", cfg.Filter.Default)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
