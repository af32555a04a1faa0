package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete configuration for lacquer.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Fonts   FontsConfig   `mapstructure:"fonts" yaml:"fonts"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`

	// ManifestPath optionally overrides the embedded built-in skin
	// manifest with an external JSON file.
	ManifestPath string `mapstructure:"manifest_path" yaml:"manifest_path"`

	// SettingsWatchPath is the desktop settings file watched for live
	// color scheme changes. Empty disables the watcher.
	SettingsWatchPath string `mapstructure:"settings_watch_path" yaml:"settings_watch_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StorageConfig holds the paths of the two candidate stores.
type StorageConfig struct {
	DBPath   string `mapstructure:"db_path" yaml:"db_path"`
	FilePath string `mapstructure:"file_path" yaml:"file_path"`
}

// CatalogConfig holds remote installable-skin catalog configuration.
type CatalogConfig struct {
	URL string        `mapstructure:"url" yaml:"url"`
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// FontsConfig holds remote font loading configuration.
type FontsConfig struct {
	// HostURL is the css2-style font host queried for hosted families.
	HostURL string `mapstructure:"host_url" yaml:"host_url"`
	// BatchWindow coalesces families requested close together into one
	// combined request.
	BatchWindow time.Duration `mapstructure:"batch_window" yaml:"batch_window"`
}

// EngineConfig holds switching engine tunables.
type EngineConfig struct {
	// DebounceWindow coalesces rapid selection writes into one persisted
	// write of the latest value.
	DebounceWindow time.Duration `mapstructure:"debounce_window" yaml:"debounce_window"`
	// PopularSkins is the fixed set warmed in both modes after init.
	PopularSkins []string `mapstructure:"popular_skins" yaml:"popular_skins"`
}

const (
	defaultCatalogURL  = "https://skins.lacquer.dev/catalog.json"
	defaultFontHostURL = "https://fonts.googleapis.com/css2"
)

// Load reads configuration from the XDG config file (config.yaml) and
// LACQUER_* environment variables, over built-in defaults. A missing config
// file is not an error.
func Load() (*Config, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directories: %w", err)
	}

	dbPath, err := GetDatabaseFile()
	if err != nil {
		return nil, err
	}
	filePath, err := GetFallbackStoreFile()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dirs.ConfigHome)

	v.SetEnvPrefix("LACQUER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("storage.db_path", dbPath)
	v.SetDefault("storage.file_path", filePath)
	v.SetDefault("catalog.url", defaultCatalogURL)
	v.SetDefault("catalog.ttl", 24*time.Hour)
	v.SetDefault("fonts.host_url", defaultFontHostURL)
	v.SetDefault("fonts.batch_window", 30*time.Millisecond)
	v.SetDefault("engine.debounce_window", 500*time.Millisecond)
	v.SetDefault("engine.popular_skins", []string{"default", "nord", "gruvbox"})
	v.SetDefault("manifest_path", "")
	v.SetDefault("settings_watch_path", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" && c.Storage.FilePath == "" {
		return errors.New("storage: at least one of db_path or file_path must be set")
	}
	if c.Catalog.TTL <= 0 {
		return errors.New("catalog: ttl must be positive")
	}
	if c.Engine.DebounceWindow < 0 {
		return errors.New("engine: debounce_window cannot be negative")
	}
	if c.ManifestPath != "" && !filepath.IsAbs(c.ManifestPath) {
		return fmt.Errorf("manifest_path must be absolute, got %q", c.ManifestPath)
	}
	return nil
}
