package adapter

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/spf13/viper"
)

// SettingsStore persists user settings and hands out immutable snapshots.
// Readers call Current at the point of use; Save replaces the snapshot.
type SettingsStore struct {
	path    string
	current atomic.Pointer[domain.Settings]
	logger  *slog.Logger
}

// DefaultSettings returns the settings used when nothing is persisted.
// The download path is resolved against the working directory.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		DownloadPath:     absPath(domain.DefaultDownloadDir),
		AudioQuality:     domain.QualityBest,
		MaxSearchResults: domain.DefaultSearchResults,
	}
}

// LoadSettings reads the settings file at path and merges it over the
// defaults. A missing file is not an error. Fields that fail validation
// fall back to their default individually.
func LoadSettings(path string, logger *slog.Logger) (*SettingsStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path, err := expandHome(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve settings path")
	}

	s := NewSettingsStore(path, DefaultSettings(), logger)
	loaded, err := s.read()
	if err != nil {
		return nil, err
	}
	s.current.Store(&loaded)
	return s, nil
}

// NewSettingsStore creates a store holding initial without reading from disk.
func NewSettingsStore(path string, initial domain.Settings, logger *slog.Logger) *SettingsStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SettingsStore{path: path, logger: logger}
	s.current.Store(&initial)
	return s
}

func (s *SettingsStore) read() (domain.Settings, error) {
	settings := DefaultSettings()

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	v.SetDefault("download_path", settings.DownloadPath)
	v.SetDefault("audio_quality", string(settings.AudioQuality))
	v.SetDefault("max_search_results", settings.MaxSearchResults)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return settings, goerr.Wrap(err, "failed to read settings", goerr.V("path", s.path))
		}
		return settings, nil
	}

	var loaded domain.Settings
	if err := v.Unmarshal(&loaded); err != nil {
		s.logger.Warn("settings file unreadable, using defaults", "path", s.path, "error", err)
		return settings, nil
	}

	return mergeSettings(settings, loaded, s.logger), nil
}

// mergeSettings keeps each loaded field that is individually valid.
func mergeSettings(defaults, loaded domain.Settings, logger *slog.Logger) domain.Settings {
	merged := defaults

	if loaded.DownloadPath != "" {
		merged.DownloadPath = absPath(loaded.DownloadPath)
	}
	if loaded.AudioQuality.Valid() {
		merged.AudioQuality = loaded.AudioQuality
	} else {
		logger.Warn("ignoring invalid audio quality", "value", loaded.AudioQuality)
	}
	if loaded.MaxSearchResults >= domain.MinSearchResults && loaded.MaxSearchResults <= domain.MaxSearchResultsCeiling {
		merged.MaxSearchResults = loaded.MaxSearchResults
	} else {
		logger.Warn("ignoring out of range result count", "value", loaded.MaxSearchResults)
	}
	return merged
}

// Current returns the active settings snapshot.
func (s *SettingsStore) Current() domain.Settings {
	return *s.current.Load()
}

// Path returns the settings file location.
func (s *SettingsStore) Path() string {
	return s.path
}

// Save validates settings, writes the whole file and replaces the snapshot.
// The snapshot is left untouched when writing fails.
func (s *SettingsStore) Save(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	settings.DownloadPath = absPath(settings.DownloadPath)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return goerr.Wrap(err, "failed to create settings directory", goerr.V("path", s.path))
	}

	v := viper.New()
	v.Set("download_path", settings.DownloadPath)
	v.Set("audio_quality", string(settings.AudioQuality))
	v.Set("max_search_results", settings.MaxSearchResults)
	if err := v.WriteConfigAs(s.path); err != nil {
		return goerr.Wrap(err, "failed to write settings", goerr.V("path", s.path))
	}

	s.current.Store(&settings)
	s.logger.Info("settings saved",
		"path", s.path,
		"download_path", settings.DownloadPath,
		"audio_quality", settings.AudioQuality,
		"max_search_results", settings.MaxSearchResults)
	return nil
}

func absPath(p string) string {
	expanded, err := expandHome(p)
	if err != nil {
		expanded = p
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return expanded
	}
	return abs
}
