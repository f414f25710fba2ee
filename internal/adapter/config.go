package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/ytdown/internal/adapter/youtube"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	Player   PlayerConfig   `mapstructure:"player"`
	Search   SearchConfig   `mapstructure:"search"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SettingsConfig locates the user settings file
type SettingsConfig struct {
	File string `mapstructure:"file"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	Volume  int      `mapstructure:"volume"`
}

// SearchConfig holds search provider configuration
type SearchConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds search cache configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Path    string        `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// APIKeyEnv is the environment variable holding the YouTube Data API key.
const APIKeyEnv = "YT_API_KEY"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			File: defaultSettingsPath(),
		},
		Player: PlayerConfig{
			Command: "mpv",
			Args:    []string{},
			Volume:  70,
		},
		Search: SearchConfig{
			BaseURL: youtube.DefaultBaseURL,
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     6 * time.Hour,
			Path:    defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ytdown", "ytdown.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "ytdown", "ytdown.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ytdown")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "ytdown")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "ytdown", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "ytdown", "cache")
	}
}

// defaultSettingsPath is where user settings have always lived
func defaultSettingsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ytdownloader", "settings.yaml")
}

// LoadConfig loads configuration from file and environment.
// dir overrides the config search path when non-empty.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. YTDOWN_LOGGING_LEVEL
	v.SetEnvPrefix("YTDOWN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = loadAPIKey(".")
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal even when the config file does not mention it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("settings.file", cfg.Settings.File)
	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("player.volume", cfg.Player.Volume)
	v.SetDefault("search.api_key", cfg.Search.APIKey)
	v.SetDefault("search.base_url", cfg.Search.BaseURL)
	v.SetDefault("search.timeout", cfg.Search.Timeout)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.path", cfg.Cache.Path)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// loadAPIKey reads YT_API_KEY from the process environment, falling back to
// a .env file in dir.
func loadAPIKey(dir string) string {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ".env"))
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return strings.TrimSpace(v.GetString(APIKeyEnv))
}
