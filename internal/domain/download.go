package domain

import (
	"context"
	"time"
)

// DownloadTimeout caps a single download engine invocation.
const DownloadTimeout = 300 * time.Second

// AudioFormat is the container every download is transcoded to.
const AudioFormat = "mp3"

// DownloadOutcome is produced once per download job and consumed immediately.
type DownloadOutcome struct {
	Succeeded       bool
	OutputDirectory string // empty unless Succeeded
	Message         string
}

// DownloadRequest describes one invocation of the download engine.
type DownloadRequest struct {
	SourceURL string
	OutputDir string
	Quality   AudioQuality
}

// DownloadEngine runs the external download tool.
// A non-nil error is returned for non-zero exits and timeouts.
type DownloadEngine interface {
	Download(ctx context.Context, req DownloadRequest) error
}
