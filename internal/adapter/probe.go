package adapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mmcdole/ytdown/internal/domain"
)

const probeTimeout = 15 * time.Second

// FFProbe implements domain.MediaProber. Duration comes from ffprobe and
// title/artist from the file's embedded tags.
type FFProbe struct {
	command string
	logger  *slog.Logger
}

// NewFFProbe creates a prober running the ffprobe binary on PATH
func NewFFProbe(logger *slog.Logger) *FFProbe {
	if logger == nil {
		logger = slog.Default()
	}
	return &FFProbe{command: "ffprobe", logger: logger}
}

type probeResult struct {
	Format probeFormat `json:"format"`
}

type probeFormat struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
}

// Probe returns the duration and tags of path. A file ffprobe cannot read
// is an error; missing tags are not.
func (p *FFProbe) Probe(path string) (domain.MediaProbe, error) {
	seconds, err := p.duration(path)
	if err != nil {
		return domain.MediaProbe{}, err
	}

	probe := domain.MediaProbe{DurationSeconds: seconds}
	title, artist := readTags(path)
	probe.Title = title
	probe.Artist = artist
	return probe, nil
}

func (p *FFProbe) duration(path string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		p.command,
		"-loglevel", "fatal",
		"-print_format", "json",
		"-show_format", path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to run ffprobe", goerr.V("path", path))
	}

	var result probeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return 0, goerr.Wrap(err, "failed to parse ffprobe JSON", goerr.V("path", path))
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(result.Format.Duration), 64)
	if err != nil {
		return 0, goerr.Wrap(err, "ffprobe reported no duration", goerr.V("path", path))
	}
	return int(math.Round(d)), nil
}

// readTags returns embedded title and artist, or empty strings.
func readTags(path string) (title, artist string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(m.Title()), strings.TrimSpace(m.Artist())
}
