package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestChannelEventBus_DeliversEvents(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var mu sync.Mutex
	var ended []domain.TrackEndedEvent
	var started []domain.PlaybackStartedEvent
	var finished []domain.PlaybackFinishedEvent

	bus.OnTrackEnded(func(_ context.Context, e domain.TrackEndedEvent) {
		mu.Lock()
		defer mu.Unlock()
		ended = append(ended, e)
	})
	bus.OnPlaybackStarted(func(_ context.Context, e domain.PlaybackStartedEvent) {
		mu.Lock()
		defer mu.Unlock()
		started = append(started, e)
	})
	bus.OnPlaybackFinished(func(_ context.Context, e domain.PlaybackFinishedEvent) {
		mu.Lock()
		defer mu.Unlock()
		finished = append(finished, e)
	})

	track := &domain.Track{Title: "Song"}
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, Track: track})
	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: 2, Track: *track})
	bus.PublishPlaybackFinished(domain.PlaybackFinishedEvent{GuildID: 3})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ended) == 1 && len(started) == 1 && len(finished) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if ended[0].GuildID != 1 || ended[0].Track != track {
		t.Errorf("unexpected TrackEndedEvent %+v", ended[0])
	}
	if started[0].GuildID != 2 {
		t.Errorf("unexpected PlaybackStartedEvent %+v", started[0])
	}
	if finished[0].GuildID != 3 {
		t.Errorf("unexpected PlaybackFinishedEvent %+v", finished[0])
	}
}

func TestChannelEventBus_PreservesOrderPerGuild(t *testing.T) {
	bus := NewChannelEventBus(100)
	defer bus.Close()

	var mu sync.Mutex
	got := make(map[snowflake.ID][]int)
	bus.OnTrackEnded(func(_ context.Context, e domain.TrackEndedEvent) {
		mu.Lock()
		defer mu.Unlock()
		got[e.GuildID] = append(got[e.GuildID], int(e.Track.Duration))
	})

	const n = 50
	for i := range n {
		for _, guildID := range []snowflake.ID{1, 2} {
			bus.PublishTrackEnded(domain.TrackEndedEvent{
				GuildID: guildID,
				Track:   &domain.Track{Duration: time.Duration(i)},
			})
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got[1]) == n && len(got[2]) == n
	})

	mu.Lock()
	defer mu.Unlock()
	for guildID, seq := range got {
		for i, v := range seq {
			if v != i {
				t.Fatalf("guild %d: event %d out of order, got %d", guildID, i, v)
			}
		}
	}
}

func TestChannelEventBus_SlowGuildDoesNotBlockOthers(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	release := make(chan struct{})
	defer close(release)

	handled := make(chan snowflake.ID, 10)
	bus.OnTrackEnded(func(_ context.Context, e domain.TrackEndedEvent) {
		if e.GuildID == 1 {
			<-release
		}
		handled <- e.GuildID
	})

	// Guild 1's handler is stuck and its lane is full.
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})

	published := make(chan struct{})
	go func() {
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 2})
		close(published)
	}()

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("expected publish for another guild not to block")
	}

	select {
	case id := <-handled:
		if id != 2 {
			t.Errorf("expected guild 2 to be handled first, got %d", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected guild 2 to be handled while guild 1 is stuck")
	}
}

func TestChannelEventBus_TrackEndedBlocksInsteadOfDropping(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	release := make(chan struct{})
	var mu sync.Mutex
	count := 0
	bus.OnTrackEnded(func(_ context.Context, _ domain.TrackEndedEvent) {
		<-release
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	const n = 5
	done := make(chan struct{})
	go func() {
		for range n {
			bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected publisher to block on a full buffer")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == n
	})
}

func TestChannelEventBus_PlaybackStartedDropsWhenFull(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	release := make(chan struct{})
	bus.OnPlaybackStarted(func(_ context.Context, _ domain.PlaybackStartedEvent) {
		<-release
	})

	done := make(chan struct{})
	go func() {
		for range 10 {
			bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected non-blocking publish")
	}
	close(release)
}

func TestChannelEventBus_Close(t *testing.T) {
	bus := NewChannelEventBus(10)

	called := false
	bus.OnPlaybackFinished(func(_ context.Context, _ domain.PlaybackFinishedEvent) {
		called = true
	})

	bus.Close()
	// Second close is a no-op
	bus.Close()

	// Publishing after close must neither panic nor block
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: 1})
	bus.PublishPlaybackFinished(domain.PlaybackFinishedEvent{GuildID: 1})

	time.Sleep(20 * time.Millisecond)
	if called {
		t.Error("expected no delivery after close")
	}
}

func TestChannelEventBus_CloseReleasesBlockedPublisher(t *testing.T) {
	bus := NewChannelEventBus(1)

	block := make(chan struct{})
	defer close(block)
	bus.OnTrackEnded(func(_ context.Context, _ domain.TrackEndedEvent) {
		<-block
	})

	done := make(chan struct{})
	go func() {
		for range 5 {
			bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
		}
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		bus.cancel()
		close(closed)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected blocked publisher to be released by cancellation")
	}
	<-closed
}
