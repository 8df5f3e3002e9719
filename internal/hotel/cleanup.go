package hotel

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunCleanup periodically removes rooms with no members. It blocks
// until ctx is cancelled; run it in its own goroutine for the lifetime
// of the process.
func (l *Lobby) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "hotel.cleanup").Msg("cleanup worker stopped")
			return
		case <-ticker.C:
			removed := l.RemoveRooms(func(r *Room) bool { return r.MemberCount() == 0 })
			log.Info().Str("module", "hotel.cleanup").Int("removed", len(removed)).Msg("cleanup sweep finished")
		}
	}
}
