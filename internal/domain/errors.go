package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrDownloadInProgress indicates another download already holds the guard
	ErrDownloadInProgress = errors.New("a download is already in progress")

	// ErrMissingCredential indicates the search provider API key is not set
	ErrMissingCredential = errors.New("YT_API_KEY not found")

	// ErrEngineUnavailable indicates the playback engine could not be started
	ErrEngineUnavailable = errors.New("playback engine is not available")

	// ErrIndexOutOfRange indicates a track index outside the library
	ErrIndexOutOfRange = errors.New("track index out of range")
)

// ValidationError is a locally correctable input problem (empty query,
// malformed settings). It is never surfaced as a crash.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderError is a network or API-level failure of the search provider.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DownloadTimeoutError reports that the download engine exceeded its timeout.
type DownloadTimeoutError struct {
	Err error
}

func (e *DownloadTimeoutError) Error() string {
	return "timed out, check network connectivity"
}

func (e *DownloadTimeoutError) Unwrap() error {
	return e.Err
}

// DownloadFailure reports a non-zero exit of the download engine.
// Diagnostic carries the engine's stderr text.
type DownloadFailure struct {
	Diagnostic string
	Err        error
}

func (e *DownloadFailure) Error() string {
	if e.Diagnostic != "" {
		return "download failed: " + e.Diagnostic
	}
	if e.Err != nil {
		return "download failed: " + e.Err.Error()
	}
	return "download failed"
}

func (e *DownloadFailure) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing credential, missing tool or unusable
// settings. It disables the affected screen but never ends the process.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
