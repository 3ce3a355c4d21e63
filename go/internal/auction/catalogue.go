package auction

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Catalogue owns every item ever listed and the request counters. All access
// to item state goes through its methods, which serialize on one mutex; item
// counts are small and every operation is a linear scan anyway, so a single
// coarse lock keeps partial state unobservable without any lock ordering.
type Catalogue struct {
	mu    sync.Mutex
	items []*Item
	stats Stats
	clock clockwork.Clock
}

// NewCatalogue creates an empty catalogue reading time from clock.
func NewCatalogue(clock clockwork.Clock) *Catalogue {
	return &Catalogue{clock: clock}
}

// CountSellRequest bumps the sell-request counter. Called on every dispatch of
// the sell command, before any validation.
func (c *Catalogue) CountSellRequest() {
	c.mu.Lock()
	c.stats.SellRequests++
	c.mu.Unlock()
}

// CountBidReceived bumps the bid-received counter. Called on every dispatch of
// the bid command, before any validation.
func (c *Catalogue) CountBidReceived() {
	c.mu.Lock()
	c.stats.BidsReceived++
	c.mu.Unlock()
}

// Sell lists a new item. The name collision check runs before the positivity
// check, so a duplicate live name is rejected even when the numbers are bad.
// Item names are only unique among live items; a closed item's name is free
// for reuse.
func (c *Catalogue) Sell(name string, reserve, durationSeconds int, owner uuid.UUID) (*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if !it.Closed && it.Name == name {
			return nil, ErrRejected
		}
	}
	if reserve < 1 || durationSeconds < 1 {
		return nil, ErrInvalid
	}

	item := &Item{
		Name:     name,
		Reserve:  reserve,
		Owner:    owner,
		Deadline: c.clock.Now().Add(time.Duration(durationSeconds) * time.Second),
	}
	c.items = append(c.items, item)
	c.stats.SellAccepted++

	log.Debug().
		Str("item", name).
		Int("reserve", reserve).
		Int("duration_sec", durationSeconds).
		Str("owner", owner.String()).
		Msg("item listed")
	return item, nil
}

// Bid places amount on the named live item for bidder. On success the
// returned OutbidNote (nil when there was no previous leader) names the
// bidder to notify; the caller delivers it after this method returns so slow
// sockets never hold the catalogue lock.
func (c *Catalogue) Bid(name string, amount int, bidder uuid.UUID) (*OutbidNote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if it.Closed || it.Name != name {
			continue
		}
		if amount < it.Reserve || bidder == it.Owner || bidder == it.HighestBidder || amount <= it.HighestBid {
			return nil, ErrRejected
		}

		var note *OutbidNote
		if it.HighestBidder != uuid.Nil {
			note = &OutbidNote{Bidder: it.HighestBidder, Item: it.Name, Amount: amount}
		}
		it.HighestBid = amount
		it.HighestBidder = bidder
		c.stats.BidsAccepted++

		log.Debug().
			Str("item", name).
			Int("amount", amount).
			Str("bidder", bidder.String()).
			Msg("bid accepted")
		return note, nil
	}
	return nil, ErrRejected
}

// List snapshots every live item in insertion order. An empty slice means the
// caller renders a bare list response.
func (c *Catalogue) List() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	var out []Snapshot
	for _, it := range c.items {
		if it.Closed {
			continue
		}
		// Round up so a freshly listed 60s item shows 60, not 59.
		remaining := int64((it.Deadline.Sub(now) + time.Second - 1) / time.Second)
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, Snapshot{
			Name:             it.Name,
			Reserve:          it.Reserve,
			HighestBid:       it.HighestBid,
			RemainingSeconds: remaining,
		})
	}
	return out
}

// ExpireDue closes every live item whose deadline has passed and returns one
// event per item closed. The Closed flag makes the sweep idempotent: a second
// call with the same or a later now emits nothing for already-swept items.
func (c *Catalogue) ExpireDue(now time.Time) []ExpiryEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var events []ExpiryEvent
	for _, it := range c.items {
		if it.Closed || it.Deadline.After(now) {
			continue
		}
		it.Closed = true
		events = append(events, ExpiryEvent{
			Item:   it.Name,
			Owner:  it.Owner,
			Winner: it.HighestBidder,
			Amount: it.HighestBid,
		})
	}
	return events
}

// LiveCount reports how many items are currently open for bidding.
func (c *Catalogue) LiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items {
		if !it.Closed {
			n++
		}
	}
	return n
}

// Stats returns a point-in-time copy of the counters.
func (c *Catalogue) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
