package infrastructure

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"layeh.com/gopus"
)

// PCM parameters expected by Discord's opus encoder.
const (
	sampleRate  = 48000
	channels    = 2
	frameSize   = 960
	maxOpusSize = frameSize * channels * 2
)

// opusSendTimeout bounds how long a single frame may wait on the voice connection.
const opusSendTimeout = 5 * time.Second

// ErrStreamNotFound is returned by Pause and Resume when the guild has no active stream.
var ErrStreamNotFound = fmt.Errorf("%w for guild", ports.ErrNoActiveStream)

// Ensure FFmpegTransport implements ports.AudioTransport.
var _ ports.AudioTransport = (*FFmpegTransport)(nil)

// VoiceConnections looks up a guild's open voice connection.
type VoiceConnections interface {
	Connection(guildID snowflake.ID) (*discordgo.VoiceConnection, error)
}

// StreamURLResolver turns a page URL into a directly readable media URL.
type StreamURLResolver interface {
	StreamURL(ctx context.Context, url string) (string, error)
}

// frameEncoder encodes one frame of interleaved PCM into opus.
type frameEncoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// FFmpegTransport decodes audio with ffmpeg, encodes it with opus and sends
// it over the guild's discordgo voice connection. One stream runs per guild.
type FFmpegTransport struct {
	ctx      context.Context
	voice    VoiceConnections
	resolver StreamURLResolver
	ffmpeg   string

	mu      sync.Mutex
	streams map[snowflake.ID]*audioStream
}

// NewFFmpegTransport creates a new FFmpegTransport. Streams are bound to ctx
// and end when it is cancelled.
func NewFFmpegTransport(
	ctx context.Context,
	voice VoiceConnections,
	resolver StreamURLResolver,
	ffmpegPath string,
) *FFmpegTransport {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegTransport{
		ctx:      ctx,
		voice:    voice,
		resolver: resolver,
		ffmpeg:   ffmpegPath,
		streams:  make(map[snowflake.ID]*audioStream),
	}
}

// Play replaces the guild's current stream with url. It does not wait for
// the replaced stream to wind down.
func (t *FFmpegTransport) Play(
	_ context.Context,
	guildID snowflake.ID,
	url string,
	onDone func(error),
) error {
	vc, err := t.voice.Connection(guildID)
	if err != nil {
		return err
	}
	if vc.OpusSend == nil {
		return fmt.Errorf("voice connection for guild %d is not ready", guildID)
	}

	ctx, cancel := context.WithCancel(t.ctx)
	stream := newAudioStream(cancel)

	t.mu.Lock()
	if old, ok := t.streams[guildID]; ok {
		old.cancel()
	}
	t.streams[guildID] = stream
	t.mu.Unlock()

	go t.run(ctx, guildID, stream, vc, url, onDone)

	return nil
}

// Stop cancels the guild's current stream, if any.
func (t *FFmpegTransport) Stop(_ context.Context, guildID snowflake.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if stream, ok := t.streams[guildID]; ok {
		stream.cancel()
		delete(t.streams, guildID)
	}
	return nil
}

// Pause holds the guild's stream at the current frame.
func (t *FFmpegTransport) Pause(_ context.Context, guildID snowflake.ID) error {
	stream, err := t.stream(guildID)
	if err != nil {
		return err
	}
	stream.setPaused(true)
	return nil
}

// Resume continues a paused stream.
func (t *FFmpegTransport) Resume(_ context.Context, guildID snowflake.ID) error {
	stream, err := t.stream(guildID)
	if err != nil {
		return err
	}
	stream.setPaused(false)
	return nil
}

func (t *FFmpegTransport) stream(guildID snowflake.ID) (*audioStream, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stream, ok := t.streams[guildID]
	if !ok {
		return nil, ErrStreamNotFound
	}
	return stream, nil
}

// release forgets stream unless it has already been replaced.
func (t *FFmpegTransport) release(guildID snowflake.ID, stream *audioStream) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.streams[guildID] == stream {
		delete(t.streams, guildID)
	}
}

func (t *FFmpegTransport) run(
	ctx context.Context,
	guildID snowflake.ID,
	stream *audioStream,
	vc *discordgo.VoiceConnection,
	url string,
	onDone func(error),
) {
	err := t.pipeline(ctx, stream, vc, url)

	// Stopped or replaced streams end without error. Checked before our own
	// cancel below, which would otherwise mark every stream as stopped.
	if ctx.Err() != nil {
		err = nil
	}

	stream.cancel()
	t.release(guildID, stream)

	if err != nil {
		slog.Warn("audio stream failed", "guild", guildID, "url", url, "error", err)
	} else {
		slog.Debug("audio stream ended", "guild", guildID, "url", url)
	}

	onDone(err)
}

// pipeline runs one yt-dlp → ffmpeg → opus pipeline until the media ends.
func (t *FFmpegTransport) pipeline(
	ctx context.Context,
	stream *audioStream,
	vc *discordgo.VoiceConnection,
	url string,
) error {
	mediaURL, err := t.resolver.StreamURL(ctx, url)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, t.ffmpeg, ffmpegArgs(mediaURL)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("failed to create opus encoder: %w", err)
	}

	if err := vc.Speaking(true); err != nil {
		slog.Debug("failed to set speaking state", "error", err)
	}
	defer func() { _ = vc.Speaking(false) }()

	pumpErr := pumpFrames(ctx, stdout, encoder, vc.OpusSend, stream)
	if pumpErr != nil {
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	if pumpErr != nil {
		return pumpErr
	}
	if waitErr != nil {
		return fmt.Errorf("ffmpeg exited: %w", waitErr)
	}
	return nil
}

// ffmpegArgs decodes mediaURL into raw 48 kHz stereo PCM on stdout.
func ffmpegArgs(mediaURL string) []string {
	return []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", mediaURL,
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-loglevel", "warning",
		"pipe:1",
	}
}

// pumpFrames reads PCM frames from r, encodes them and sends them to out
// until r is exhausted. A trailing partial frame is dropped.
func pumpFrames(
	ctx context.Context,
	r io.Reader,
	encoder frameEncoder,
	out chan<- []byte,
	stream *audioStream,
) error {
	pcmBuf := make([]byte, frameSize*channels*2)
	samples := make([]int16, frameSize*channels)

	for {
		if err := stream.waitIfPaused(ctx); err != nil {
			return err
		}

		if _, err := io.ReadFull(r, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("failed to read pcm: %w", err)
		}

		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2:]))
		}

		frame, err := encoder.Encode(samples, frameSize, maxOpusSize)
		if err != nil {
			return fmt.Errorf("failed to encode opus frame: %w", err)
		}

		select {
		case out <- frame:
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opusSendTimeout):
			return errors.New("timed out sending opus frame")
		}
	}
}

// audioStream is the control handle of one running stream.
type audioStream struct {
	cancel context.CancelFunc

	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
}

func newAudioStream(cancel context.CancelFunc) *audioStream {
	return &audioStream{cancel: cancel}
}

func (s *audioStream) setPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused == paused {
		return
	}
	s.paused = paused
	if paused {
		s.resumed = make(chan struct{})
	} else {
		close(s.resumed)
	}
}

// waitIfPaused blocks while the stream is paused.
func (s *audioStream) waitIfPaused(ctx context.Context) error {
	s.mu.Lock()
	if !s.paused {
		s.mu.Unlock()
		return ctx.Err()
	}
	resumed := s.resumed
	s.mu.Unlock()

	select {
	case <-resumed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
