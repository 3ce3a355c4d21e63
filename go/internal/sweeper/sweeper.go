// Package sweeper closes past-deadline auctions and fans out the outcome
// notifications.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auctionhouse/go/internal/auction"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is how often the sweep runs. The 100 ms granularity is a
// design tolerance, not a client-visible guarantee.
const DefaultInterval = 100 * time.Millisecond

// Notifier defines what the sweeper needs for best-effort delivery of
// outcome lines.
type Notifier interface {
	Notify(id uuid.UUID, line string)
}

// Sweeper periodically asks the catalogue for due items and notifies the
// owner and winner of each. It is the sole writer of the closed transition.
type Sweeper struct {
	catalogue *auction.Catalogue
	notifier  Notifier
	clock     clockwork.Clock
	interval  time.Duration
}

// NewSweeper creates a sweeper over the given catalogue and notifier.
func NewSweeper(catalogue *auction.Catalogue, notifier Notifier, clock clockwork.Clock, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{catalogue: catalogue, notifier: notifier, clock: clock, interval: interval}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("expiry sweeper started")

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiry sweeper stopped")
			return
		case <-ticker.Chan():
			s.sweep()
		}
	}
}

// sweep closes everything due and delivers outcomes. The catalogue decides
// the events under its lock; the line writes happen out here.
func (s *Sweeper) sweep() {
	events := s.catalogue.ExpireDue(s.clock.Now())
	for _, ev := range events {
		if ev.Winner != uuid.Nil {
			s.notifier.Notify(ev.Owner, fmt.Sprintf(":sold %s %d", ev.Item, ev.Amount))
			s.notifier.Notify(ev.Winner, fmt.Sprintf(":won %s %d", ev.Item, ev.Amount))
			log.Info().
				Str("item", ev.Item).
				Int("amount", ev.Amount).
				Str("winner", ev.Winner.String()).
				Msg("auction sold")
		} else {
			s.notifier.Notify(ev.Owner, fmt.Sprintf(":unsold %s", ev.Item))
			log.Info().Str("item", ev.Item).Msg("auction closed unsold")
		}
	}
}
