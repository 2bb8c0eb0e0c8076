package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

var errMock = errors.New("mock error")

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		Title:    "Track " + id,
		URL:      "https://www.youtube.com/watch?v=" + id,
		Author:   "Artist",
		Duration: 3 * time.Minute,
		Source:   domain.TrackSourceYouTube,
	}
}

func mockDeferredTrack(id string) *domain.Track {
	return &domain.Track{
		Title:       "Track " + id,
		SearchQuery: "Track " + id + " Artist",
		Author:      "Artist",
		Duration:    3 * time.Minute,
		Source:      domain.TrackSourceSpotify,
	}
}

type mockRepository struct {
	mu     sync.Mutex
	states map[snowflake.ID]*domain.GuildState
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		states: make(map[snowflake.ID]*domain.GuildState),
	}
}

func (m *mockRepository) Get(guildID snowflake.ID) *domain.GuildState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[guildID]
}

func (m *mockRepository) GetOrCreate(guildID snowflake.ID) *domain.GuildState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[guildID]; ok {
		return state
	}
	state := domain.NewGuildState(guildID)
	m.states[guildID] = state
	return state
}

// createConnectedState creates a GuildState connected to voiceChannelID.
// Returns the state for further modification (e.g., adding tracks).
func (m *mockRepository) createConnectedState(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) *domain.GuildState {
	state := m.GetOrCreate(guildID)
	state.SetVoiceChannelID(voiceChannelID)
	state.SetNotificationChannelID(notificationChannelID)
	return state
}

type playCall struct {
	guildID snowflake.ID
	url     string
	onDone  func(error)
}

type mockAudioTransport struct {
	mu        sync.Mutex
	plays     []playCall
	stops     int
	pauses    int
	resumes   int
	failURLs  map[string]bool
	playErr   error
	stopErr   error
	pauseErr  error
	resumeErr error
}

func newMockAudioTransport() *mockAudioTransport {
	return &mockAudioTransport{failURLs: make(map[string]bool)}
}

func (m *mockAudioTransport) Play(
	_ context.Context,
	guildID snowflake.ID,
	url string,
	onDone func(error),
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	if m.failURLs[url] {
		return errMock
	}
	m.plays = append(m.plays, playCall{guildID: guildID, url: url, onDone: onDone})
	return nil
}

func (m *mockAudioTransport) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return m.stopErr
}

func (m *mockAudioTransport) Pause(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
	return m.pauseErr
}

func (m *mockAudioTransport) Resume(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes++
	return m.resumeErr
}

func (m *mockAudioTransport) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plays)
}

func (m *mockAudioTransport) lastPlay() playCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays[len(m.plays)-1]
}

type mockVoiceConnection struct {
	joinErr  error
	leaveErr error
	joined   []snowflake.ID
	left     int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.left++
	return m.leaveErr
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{channels: make(map[snowflake.ID]snowflake.ID)}
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockVideoCatalog struct {
	mu            sync.Mutex
	searchResults []*domain.Track
	searchErr     error
	searchLimits  []int
	video         *domain.Track
	videoErr      error
	playlist      *domain.Playlist
	playlistErr   error
	resolved      map[string]string // query -> url; missing means ErrNotFound
	resolveCalls  []string
	onResolve     func(query string) // runs while the engine has released the guild lock
	stalled       map[string]bool    // queries that only return once the context ends
}

func newMockVideoCatalog() *mockVideoCatalog {
	return &mockVideoCatalog{resolved: make(map[string]string)}
}

func (m *mockVideoCatalog) Search(_ context.Context, _ string, limit int) ([]*domain.Track, error) {
	m.searchLimits = append(m.searchLimits, limit)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func (m *mockVideoCatalog) Video(_ context.Context, _ string) (*domain.Track, error) {
	if m.videoErr != nil {
		return nil, m.videoErr
	}
	return m.video, nil
}

func (m *mockVideoCatalog) Playlist(_ context.Context, _ string) (*domain.Playlist, error) {
	if m.playlistErr != nil {
		return nil, m.playlistErr
	}
	return m.playlist, nil
}

func (m *mockVideoCatalog) ResolveQuery(ctx context.Context, query string) (string, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, query)
	url, ok := m.resolved[query]
	hook := m.onResolve
	stalled := m.stalled[query]
	m.mu.Unlock()

	if hook != nil {
		hook(query)
	}
	if stalled {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if !ok {
		return "", ports.ErrNotFound
	}
	return url, nil
}

type mockMusicCatalog struct {
	track       *domain.Track
	trackErr    error
	playlist    *domain.Playlist
	playlistErr error
}

func (m *mockMusicCatalog) Track(_ context.Context, _ string) (*domain.Track, error) {
	if m.trackErr != nil {
		return nil, m.trackErr
	}
	return m.track, nil
}

func (m *mockMusicCatalog) Playlist(_ context.Context, _ string) (*domain.Playlist, error) {
	if m.playlistErr != nil {
		return nil, m.playlistErr
	}
	return m.playlist, nil
}

type mockEventPublisher struct {
	mu               sync.Mutex
	trackEnded       []domain.TrackEndedEvent
	playbackStarted  []domain.PlaybackStartedEvent
	playbackFinished []domain.PlaybackFinishedEvent
}

func (m *mockEventPublisher) PublishTrackEnded(event domain.TrackEndedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackEnded = append(m.trackEnded, event)
}

func (m *mockEventPublisher) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playbackStarted = append(m.playbackStarted, event)
}

func (m *mockEventPublisher) PublishPlaybackFinished(event domain.PlaybackFinishedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playbackFinished = append(m.playbackFinished, event)
}

// testEngine wires the use cases the way the module does.
type testEngine struct {
	repo       *mockRepository
	transport  *mockAudioTransport
	videos     *mockVideoCatalog
	music      *mockMusicCatalog
	publisher  *mockEventPublisher
	connection *mockVoiceConnection
	voiceState *mockVoiceStateProvider

	playback *PlaybackService
	queue    *QueueService
	voice    *VoiceChannelService
	loader   *TrackLoaderService
}

func newTestEngine() *testEngine {
	e := &testEngine{
		repo:       newMockRepository(),
		transport:  newMockAudioTransport(),
		videos:     newMockVideoCatalog(),
		music:      &mockMusicCatalog{},
		publisher:  &mockEventPublisher{},
		connection: &mockVoiceConnection{},
		voiceState: newMockVoiceStateProvider(),
	}
	e.playback = NewPlaybackService(e.repo, e.transport, e.videos, e.publisher, 0)
	e.queue = NewQueueService(e.repo, e.playback)
	e.voice = NewVoiceChannelService(e.repo, e.connection, e.voiceState, e.playback)
	e.loader = NewTrackLoaderService(e.videos, e.music)
	return e
}

// finishCurrent simulates the transport reporting the end of the last started stream
// and feeds the resulting event back into the engine, as the event bus would.
func (e *testEngine) finishCurrent(err error) {
	e.transport.lastPlay().onDone(err)

	e.publisher.mu.Lock()
	event := e.publisher.trackEnded[len(e.publisher.trackEnded)-1]
	e.publisher.mu.Unlock()

	e.playback.HandleTrackEnded(context.Background(), event)
}

func titles(tracks []domain.Track) []string {
	result := make([]string, len(tracks))
	for i, t := range tracks {
		result[i] = t.Title
	}
	return result
}
