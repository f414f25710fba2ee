package adapter

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
)

// YTDLP implements domain.DownloadEngine by running yt-dlp.
type YTDLP struct {
	logger *slog.Logger
}

// NewYTDLP creates a yt-dlp backed download engine
func NewYTDLP(logger *slog.Logger) *YTDLP {
	if logger == nil {
		logger = slog.Default()
	}
	return &YTDLP{logger: logger}
}

// CheckInstalled runs yt-dlp --version and returns the reported version.
// A missing or broken binary yields a ConfigurationError.
func (y *YTDLP) CheckInstalled(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := ytdlp.New().Version(ctx)
	if err != nil {
		y.logger.Warn("yt-dlp preflight failed", "error", err)
		return "", &domain.ConfigurationError{
			Message: "yt-dlp not found. Install it with `pip install yt-dlp` and make sure it is on PATH.",
			Err:     goerr.Wrap(err, "yt-dlp --version failed"),
		}
	}
	version := strings.TrimSpace(res.Stdout)
	y.logger.Info("yt-dlp available", "version", version)
	return version, nil
}

// Download extracts the audio of req.SourceURL into req.OutputDir as mp3.
func (y *YTDLP) Download(ctx context.Context, req domain.DownloadRequest) error {
	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat(domain.AudioFormat).
		AudioQuality(string(req.Quality)).
		Output(filepath.Join(req.OutputDir, "%(title)s.%(ext)s")).
		EmbedMetadata().
		NoPlaylist().
		NoWarnings()

	dl.ProgressFunc(time.Second, func(update ytdlp.ProgressUpdate) {
		y.logger.Debug("download progress",
			"url", req.SourceURL,
			"downloaded", update.DownloadedBytes,
			"total", update.TotalBytes)
	})

	y.logger.Info("starting download",
		"url", req.SourceURL,
		"dir", req.OutputDir,
		"quality", req.Quality)

	res, err := dl.Run(ctx, req.SourceURL)
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.DownloadTimeoutError{Err: goerr.Wrap(err, "yt-dlp timed out", goerr.V("url", req.SourceURL))}
	}

	diagnostic := ""
	if res != nil {
		diagnostic = lastLine(res.Stderr)
	}
	y.logger.Error("yt-dlp failed", "url", req.SourceURL, "error", err, "stderr", diagnostic)
	return &domain.DownloadFailure{
		Diagnostic: diagnostic,
		Err:        goerr.Wrap(err, "yt-dlp exited with error", goerr.V("url", req.SourceURL)),
	}
}

// lastLine returns the last non-empty line of s, which is where yt-dlp
// prints its ERROR: summary.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
