package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/ytdown/internal/adapter"
	"github.com/mmcdole/ytdown/internal/adapter/youtube"
	"github.com/mmcdole/ytdown/internal/domain"
	"github.com/mmcdole/ytdown/internal/jobs"
	"github.com/mmcdole/ytdown/internal/service"
	"github.com/mmcdole/ytdown/internal/store"
	"github.com/mmcdole/ytdown/internal/tui"
	"github.com/mmcdole/ytdown/internal/tui/styles"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

type options struct {
	configDir    string
	settingsFile string
	logLevel     string
	clearCache   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "ytdown",
		Short:         "Search YouTube, download audio as MP3 and play your library",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configDir, "config-dir", "", "directory containing config.yaml and .env")
	cmd.Flags().StringVar(&opts.settingsFile, "settings", "", "settings file (default ~/.ytdownloader/settings.yaml)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().BoolVar(&opts.clearCache, "clear-cache", false, "drop cached search results before starting")
	return cmd
}

func run(ctx context.Context, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("ytdown must be run in an interactive terminal")
	}

	// Load configuration
	cfg, err := adapter.LoadConfig(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.settingsFile != "" {
		cfg.Settings.File = opts.settingsFile
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting ytdown", "version", Version)

	settings, err := adapter.LoadSettings(cfg.Settings.File, logger)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	var notices []tui.NotifyMsg

	// Search result cache (optional)
	var cache *store.Store
	if cfg.Cache.Enabled {
		cache, err = store.Open(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", "error", err)
			cache = nil
		}
	}
	if cache != nil {
		defer cache.Close()
		if opts.clearCache {
			cache.ClearSearches()
			logger.Info("search cache cleared")
		}
	}

	// Search provider
	var provider domain.SearchProvider
	client, err := youtube.NewClient(cfg.Search.BaseURL, cfg.Search.APIKey, cfg.Search.Timeout, logger)
	if err != nil {
		logger.Warn("search disabled", "error", err)
		notices = append(notices, tui.NotifyMsg{Message: err.Error(), IsError: true})
	} else {
		provider = client
	}

	// Download engine with preflight
	ytdlp := adapter.NewYTDLP(logger)
	downloadSvc := service.NewDownloadService(ytdlp, settings, logger)
	if err := checkDownloaderWithSpinner(ctx, ytdlp); err != nil {
		downloadSvc.SetUnavailable(err)
		notices = append(notices, tui.NotifyMsg{Message: err.Error(), IsError: true})
	}

	// Playback engine, started lazily on first use
	mpv := adapter.NewMPV(cfg.Player, logger)
	defer func() {
		if err := mpv.Close(); err != nil {
			logger.Warn("failed to close player", "error", err)
		}
	}()

	// Create services; a nil *store.Store must not reach them as an interface
	var searchSvc *service.SearchService
	var librarySvc *service.LibraryService
	prober := adapter.NewFFProbe(logger)
	if cache != nil {
		searchSvc = service.NewSearchService(provider, cache, logger)
		librarySvc = service.NewLibraryService(prober, cache, settings, logger)
	} else {
		searchSvc = service.NewSearchService(provider, nil, logger)
		librarySvc = service.NewLibraryService(prober, nil, settings, logger)
	}
	playback := service.NewPlaybackController(mpv, cfg.Player.Volume, logger)

	// Create TUI model
	model := tui.NewModel(tui.Deps{
		Settings:  settings,
		Search:    searchSvc,
		Downloads: downloadSvc,
		Library:   librarySvc,
		Player:    playback,
		Runner:    jobs.NewRunner(logger),
		Logger:    logger,
	})
	for _, n := range notices {
		model = model.WithStartupNotice(n.Message, n.IsError)
	}

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// checkDownloaderWithSpinner runs the yt-dlp preflight with a visual spinner
func checkDownloaderWithSpinner(ctx context.Context, y *adapter.YTDLP) error {
	type result struct {
		version string
		err     error
	}
	resultCh := make(chan result, 1)

	go func() {
		version, err := y.CheckInstalled(ctx)
		resultCh <- result{version, err}
	}()

	frame := 0
	fmt.Printf("\r%s Checking yt-dlp...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return res.err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking yt-dlp...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
		}
	}
}
