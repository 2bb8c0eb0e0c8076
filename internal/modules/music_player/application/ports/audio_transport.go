package ports

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

// ErrNoActiveStream is returned by Pause and Resume when the guild's stream
// already ended, e.g. between a natural end and the completion being handled.
var ErrNoActiveStream = errors.New("no active stream")

// AudioTransport streams audio from a network URL into a guild's voice connection.
type AudioTransport interface {
	// Play starts streaming url into the guild's voice connection and returns
	// once the stream has been handed off. A stream already running for the
	// guild is replaced. onDone is invoked exactly once, from the transport's
	// own goroutine, when the stream ends naturally, fails, or is stopped.
	Play(ctx context.Context, guildID snowflake.ID, url string, onDone func(error)) error

	// Stop stops the current stream, if any.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current stream.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused stream.
	Resume(ctx context.Context, guildID snowflake.ID) error
}
