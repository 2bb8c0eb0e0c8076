package infrastructure

import (
	"context"
	"fmt"

	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"golang.org/x/time/rate"
)

// Gate holds a catalog client that is either enabled or disabled for a
// recorded reason. Get is the only way to reach the client.
type Gate[T any] struct {
	client  T
	enabled bool
	reason  string
}

// Enabled returns a gate that hands out client.
func Enabled[T any](client T) Gate[T] {
	return Gate[T]{client: client, enabled: true}
}

// Disabled returns a gate that refuses every request with reason.
func Disabled[T any](reason string) Gate[T] {
	return Gate[T]{reason: reason}
}

// IsEnabled reports whether the client is available.
func (g Gate[T]) IsEnabled() bool {
	return g.enabled
}

// Get returns the client, or an error wrapping ports.ErrCatalogDisabled.
func (g Gate[T]) Get() (T, error) {
	if !g.enabled {
		var zero T
		return zero, fmt.Errorf("%w: %s", ports.ErrCatalogDisabled, g.reason)
	}
	return g.client, nil
}

// wait blocks on limiter, if any, before an outgoing API request.
func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// NewCatalogLimiter returns a limiter allowing perSecond requests with a
// burst of the same size. A non-positive rate disables limiting.
func NewCatalogLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := max(int(perSecond), 1)
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
