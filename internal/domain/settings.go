package domain

import (
	"fmt"
	"strings"
)

// AudioQuality is the yt-dlp --audio-quality value. "0" is best.
type AudioQuality string

const (
	QualityBest   AudioQuality = "0"
	QualityHigh   AudioQuality = "192"
	QualityMedium AudioQuality = "128"
	QualityLow    AudioQuality = "64"
)

// AudioQualities lists the selectable tiers, best first.
var AudioQualities = []AudioQuality{QualityBest, QualityHigh, QualityMedium, QualityLow}

// Label returns the human-readable tier name.
func (q AudioQuality) Label() string {
	switch q {
	case QualityBest:
		return "Best Quality"
	case QualityHigh:
		return "High Quality"
	case QualityMedium:
		return "Medium Quality"
	case QualityLow:
		return "Low Quality"
	default:
		return string(q)
	}
}

// Valid reports whether q is one of the four supported tiers.
func (q AudioQuality) Valid() bool {
	for _, v := range AudioQualities {
		if q == v {
			return true
		}
	}
	return false
}

// Settings bounds and defaults.
const (
	MinSearchResults     = 1
	DefaultSearchResults = 10
	DefaultDownloadDir   = "./downloads"
)

// SearchResultChoices are the result counts offered in the settings screen.
var SearchResultChoices = []int{5, 10, 15, 20, 25}

// Settings are the user preferences persisted between runs.
// A Settings value is never mutated once shared; replace it instead.
type Settings struct {
	DownloadPath     string       `mapstructure:"download_path"`
	AudioQuality     AudioQuality `mapstructure:"audio_quality"`
	MaxSearchResults int          `mapstructure:"max_search_results"`
}

// Validate checks field ranges.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.DownloadPath) == "" {
		return &ValidationError{Field: "download_path", Message: "download path cannot be empty"}
	}
	if !s.AudioQuality.Valid() {
		return &ValidationError{Field: "audio_quality", Message: fmt.Sprintf("unsupported audio quality %q", s.AudioQuality)}
	}
	if s.MaxSearchResults < MinSearchResults || s.MaxSearchResults > MaxSearchResultsCeiling {
		return &ValidationError{
			Field:   "max_search_results",
			Message: fmt.Sprintf("max search results must be between %d and %d", MinSearchResults, MaxSearchResultsCeiling),
		}
	}
	return nil
}

// EffectiveResultCount returns the configured count capped at the provider ceiling.
func (s Settings) EffectiveResultCount() int {
	n := s.MaxSearchResults
	if n < MinSearchResults {
		n = DefaultSearchResults
	}
	if n > MaxSearchResultsCeiling {
		n = MaxSearchResultsCeiling
	}
	return n
}
