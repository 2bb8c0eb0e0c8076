package usecases

import "errors"

// Errors surfaced to the command layer by the music player use cases.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrConnectionFailed wraps failures of the voice transport while joining.
	ErrConnectionFailed = errors.New("failed to connect to the voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when trying to pause while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNoResults is returned when a search or lookup yields no tracks.
	ErrNoResults = errors.New("no results found")

	// ErrUnsupportedURL is returned for links that no catalog understands.
	ErrUnsupportedURL = errors.New("unsupported URL")

	// ErrLoadFailed is returned when loading tracks fails.
	ErrLoadFailed = errors.New("failed to load track")
)
