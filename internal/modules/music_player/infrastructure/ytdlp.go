package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// videoInfoTemplate is the yt-dlp --print template parsed by parseVideoInfo.
const videoInfoTemplate = "%(id)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(thumbnail)s\t%(is_live)s"

// YTDLP wraps the yt-dlp executable.
type YTDLP struct {
	executable string
}

// NewYTDLP creates a YTDLP using the given executable path.
// An empty path uses the yt-dlp found on PATH.
func NewYTDLP(executable string) *YTDLP {
	return &YTDLP{executable: executable}
}

func (y *YTDLP) command() *ytdlp.Command {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig().
		NoPlaylist()

	if y.executable != "" {
		cmd.SetExecutable(y.executable)
	}
	return cmd
}

// StreamURL returns a direct URL of the best audio format for a video page URL.
func (y *YTDLP) StreamURL(ctx context.Context, url string) (string, error) {
	res, err := y.command().
		Format("bestaudio/best").
		Print("urls").
		Run(ctx, url)
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed to resolve stream url: %w", err)
	}

	for line := range strings.Lines(res.Stdout) {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", errors.New("yt-dlp returned no stream url")
}

// VideoInfo returns the metadata of a single video as a track.
func (y *YTDLP) VideoInfo(ctx context.Context, url string) (*domain.Track, error) {
	res, err := y.command().
		SkipDownload().
		Print(videoInfoTemplate).
		Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp failed to fetch video info: %w", err)
	}

	track, ok := parseVideoInfo(res.Stdout)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return track, nil
}

// parseVideoInfo parses the first complete line printed with videoInfoTemplate.
func parseVideoInfo(output string) (*domain.Track, bool) {
	for line := range strings.Lines(output) {
		fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		if len(fields) < 6 || fields[0] == "" {
			continue
		}

		track := &domain.Track{
			Title:  fields[1],
			URL:    domain.YouTubeWatchURL(fields[0]),
			Author: naToEmpty(fields[2]),
			IsLive: fields[5] == "True",
			Source: domain.TrackSourceYouTube,
		}
		if seconds, err := strconv.ParseFloat(fields[3], 64); err == nil {
			track.Duration = time.Duration(seconds * float64(time.Second))
		}
		track.ThumbnailURL = naToEmpty(fields[4])

		return track, true
	}
	return nil, false
}

// naToEmpty maps yt-dlp's placeholder for missing fields to "".
func naToEmpty(s string) string {
	if s == "NA" {
		return ""
	}
	return s
}
