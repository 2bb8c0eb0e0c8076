package domain

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestNewGuildState(t *testing.T) {
	guildID := snowflake.ID(1)
	state := NewGuildState(guildID)

	if state.GuildID() != guildID {
		t.Errorf("expected GuildID %d, got %d", guildID, state.GuildID())
	}
	if state.IsConnected() {
		t.Error("expected new state to be disconnected")
	}
	if !state.IsIdle() {
		t.Error("expected new state to be idle")
	}
	if state.IsPlaying() || state.IsPaused() {
		t.Error("expected new state to be neither playing nor paused")
	}
	if len(state.Snapshot()) != 0 {
		t.Error("expected empty snapshot")
	}
}

func TestGuildState_Advance(t *testing.T) {
	state := NewGuildState(1)
	track1 := &Track{Title: "Song 1"}
	track2 := &Track{Title: "Song 2"}
	state.Pending.Push(track1, track2)
	state.SetPaused(true)

	if got := state.Advance(); got != track1 {
		t.Fatalf("expected first track, got %v", got)
	}
	if state.NowPlaying() != track1 {
		t.Error("expected first track to be now playing")
	}
	if !state.IsPlaying() {
		t.Error("expected Advance to clear paused state")
	}
	if state.Pending.Len() != 1 {
		t.Errorf("expected 1 pending track, got %d", state.Pending.Len())
	}

	if got := state.Advance(); got != track2 {
		t.Fatalf("expected second track, got %v", got)
	}
	if got := state.Advance(); got != nil {
		t.Fatalf("expected nil on empty pending, got %v", got)
	}
	if !state.IsIdle() {
		t.Error("expected state to be idle after draining")
	}
}

func TestGuildState_PausedRequiresNowPlaying(t *testing.T) {
	state := NewGuildState(1)

	state.SetPaused(true)
	if state.IsPaused() {
		t.Error("expected IsPaused to be false without a now-playing track")
	}

	state.Pending.Push(&Track{Title: "Song"})
	state.Advance()
	state.SetPaused(true)

	if !state.IsPaused() {
		t.Error("expected IsPaused to be true")
	}
	if state.IsPlaying() {
		t.Error("expected IsPlaying to be false while paused")
	}
}

func TestGuildState_Reset(t *testing.T) {
	state := NewGuildState(1)
	state.SetVoiceChannelID(200)
	state.Pending.Push(&Track{Title: "Song 1"}, &Track{Title: "Song 2"})
	state.Advance()
	state.SetPaused(true)

	state.Reset()

	if !state.IsIdle() {
		t.Error("expected idle after Reset")
	}
	if !state.Pending.IsEmpty() {
		t.Error("expected empty pending after Reset")
	}
	if state.IsPaused() || state.IsPlaying() {
		t.Error("expected neither playing nor paused after Reset")
	}
	if !state.IsConnected() {
		t.Error("expected Reset to keep the voice connection")
	}
}

func TestGuildState_Snapshot(t *testing.T) {
	state := NewGuildState(1)
	state.Pending.Push(&Track{Title: "Song 1"}, &Track{Title: "Song 2"}, &Track{Title: "Song 3"})
	state.Advance()

	snapshot := state.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(snapshot))
	}
	for i, title := range []string{"Song 1", "Song 2", "Song 3"} {
		if snapshot[i].Title != title {
			t.Errorf("snapshot[%d]: expected %q, got %q", i, title, snapshot[i].Title)
		}
	}

	// Snapshot entries are copies
	snapshot[0].Title = "changed"
	if state.NowPlaying().Title != "Song 1" {
		t.Error("expected Snapshot to return copies")
	}
}

func TestGuildState_NowPlayingMessage(t *testing.T) {
	state := NewGuildState(1)

	if state.NowPlayingMessage() != nil {
		t.Error("expected nil message initially")
	}

	state.SetNowPlayingMessage(&NowPlayingMessage{ChannelID: 10, MessageID: 20})
	msg := state.NowPlayingMessage()
	if msg == nil || msg.ChannelID != 10 || msg.MessageID != 20 {
		t.Fatalf("unexpected message %+v", msg)
	}

	msg.MessageID = 99
	if state.NowPlayingMessage().MessageID != 20 {
		t.Error("expected NowPlayingMessage to return a copy")
	}

	state.ClearNowPlayingMessage()
	if state.NowPlayingMessage() != nil {
		t.Error("expected nil message after clear")
	}
}
