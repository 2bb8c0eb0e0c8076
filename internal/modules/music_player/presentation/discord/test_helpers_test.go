package discord

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

const (
	testGuildID        snowflake.ID = 1
	testUserID         snowflake.ID = 2
	testTextChannelID  snowflake.ID = 3
	testVoiceChannelID snowflake.ID = 4
)

func newCommand(name string, options map[string]string) *bot.Command {
	c := bot.NewCommand(
		name,
		testGuildID.String(),
		testTextChannelID.String(),
		testUserID.String(),
		options,
	)
	c.Prefix = "!"
	return c
}

func videoTrack(id string) *domain.Track {
	return &domain.Track{
		Title:    "Track " + id,
		URL:      "https://www.youtube.com/watch?v=" + id,
		Author:   "Artist",
		Duration: 3 * time.Minute,
		Source:   domain.TrackSourceYouTube,
	}
}

type stubRepository struct {
	mu     sync.Mutex
	states map[snowflake.ID]*domain.GuildState
}

func (s *stubRepository) Get(guildID snowflake.ID) *domain.GuildState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[guildID]
}

func (s *stubRepository) GetOrCreate(guildID snowflake.ID) *domain.GuildState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[guildID]; ok {
		return state
	}
	state := domain.NewGuildState(guildID)
	s.states[guildID] = state
	return state
}

type stubTransport struct {
	mu    sync.Mutex
	plays []string
}

func (s *stubTransport) Play(_ context.Context, _ snowflake.ID, url string, _ func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays = append(s.plays, url)
	return nil
}

func (s *stubTransport) Stop(context.Context, snowflake.ID) error   { return nil }
func (s *stubTransport) Pause(context.Context, snowflake.ID) error  { return nil }
func (s *stubTransport) Resume(context.Context, snowflake.ID) error { return nil }

type stubVoiceConnection struct{}

func (stubVoiceConnection) JoinChannel(context.Context, snowflake.ID, snowflake.ID) error {
	return nil
}

func (stubVoiceConnection) LeaveChannel(context.Context, snowflake.ID) error { return nil }

type stubVoiceState struct {
	channels map[snowflake.ID]snowflake.ID
}

func (s *stubVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	return s.channels[userID], nil
}

type stubVideoCatalog struct {
	videos  map[string]*domain.Track
	results []*domain.Track
	err     error
}

func (s *stubVideoCatalog) Search(_ context.Context, _ string, limit int) ([]*domain.Track, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results[:min(limit, len(s.results))], nil
}

func (s *stubVideoCatalog) Video(_ context.Context, url string) (*domain.Track, error) {
	if s.err != nil {
		return nil, s.err
	}
	track, ok := s.videos[url]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copied := *track
	return &copied, nil
}

func (s *stubVideoCatalog) Playlist(context.Context, string) (*domain.Playlist, error) {
	return nil, ports.ErrNotFound
}

func (s *stubVideoCatalog) ResolveQuery(context.Context, string) (string, error) {
	return "", ports.ErrNotFound
}

type stubMusicCatalog struct {
	err error
}

func (s *stubMusicCatalog) Track(context.Context, string) (*domain.Track, error) {
	return nil, s.err
}

func (s *stubMusicCatalog) Playlist(context.Context, string) (*domain.Playlist, error) {
	return nil, s.err
}

type stubPublisher struct{}

func (stubPublisher) PublishTrackEnded(domain.TrackEndedEvent)             {}
func (stubPublisher) PublishPlaybackStarted(domain.PlaybackStartedEvent)   {}
func (stubPublisher) PublishPlaybackFinished(domain.PlaybackFinishedEvent) {}

// testHandlers wires real use cases over stubbed ports.
type testHandlers struct {
	repo       *stubRepository
	transport  *stubTransport
	videos     *stubVideoCatalog
	music      *stubMusicCatalog
	voiceState *stubVoiceState
	voice      *usecases.VoiceChannelService
	queue      *usecases.QueueService
	handlers   *CommandHandlers
}

func newTestHandlers() *testHandlers {
	th := &testHandlers{
		repo:       &stubRepository{states: make(map[snowflake.ID]*domain.GuildState)},
		transport:  &stubTransport{},
		videos:     &stubVideoCatalog{videos: make(map[string]*domain.Track)},
		music:      &stubMusicCatalog{},
		voiceState: &stubVoiceState{channels: map[snowflake.ID]snowflake.ID{testUserID: testVoiceChannelID}},
	}

	playback := usecases.NewPlaybackService(th.repo, th.transport, th.videos, stubPublisher{}, 0)
	th.queue = usecases.NewQueueService(th.repo, playback)
	th.voice = usecases.NewVoiceChannelService(th.repo, stubVoiceConnection{}, th.voiceState, playback)
	loader := usecases.NewTrackLoaderService(th.videos, th.music)
	notification := usecases.NewNotificationChannelService(th.repo)

	th.handlers = NewCommandHandlers(th.voice, playback, th.queue, loader, notification, time.Second)
	return th
}

func (th *testHandlers) snapshot() []domain.Track {
	tracks, _ := th.queue.Snapshot(testGuildID)
	return tracks
}

// addVideo makes a video URL resolvable and returns its track.
func (th *testHandlers) addVideo(id string) *domain.Track {
	track := videoTrack(id)
	th.videos.videos[domain.YouTubeWatchURL(id)] = track
	return track
}

// run invokes handler and returns the responder holding its reply.
func run(
	t *testing.T,
	handler bot.CommandHandler,
	name string,
	options map[string]string,
) *bot.MockResponder {
	t.Helper()
	r := &bot.MockResponder{}
	if err := handler(nil, newCommand(name, options), r); err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	if len(r.Embeds) != 1 {
		t.Fatalf("%s: expected exactly one reply, got %d", name, len(r.Embeds))
	}
	return r
}
