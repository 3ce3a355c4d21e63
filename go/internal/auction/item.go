package auction

import (
	"time"

	"github.com/google/uuid"
)

// Item represents one listed item and its mutable bidding state. Items are
// never deleted; once swept they stay in the catalogue with Closed set so the
// stats surface can still count them.
type Item struct {
	Name          string
	Reserve       int
	HighestBid    int
	HighestBidder uuid.UUID
	Owner         uuid.UUID
	Deadline      time.Time
	Closed        bool
}

// Snapshot is a read-only view of a live item as rendered by list.
type Snapshot struct {
	Name       string
	Reserve    int
	HighestBid int
	// RemainingSeconds until the deadline, clamped at zero.
	RemainingSeconds int64
}

// OutbidNote tells the caller which previous leader to notify after a
// successful bid. Delivery happens outside the catalogue lock.
type OutbidNote struct {
	Bidder uuid.UUID
	Item   string
	Amount int
}

// ExpiryEvent is the outcome of sweeping one past-deadline item. Winner is
// uuid.Nil when the item closed without a bid.
type ExpiryEvent struct {
	Item   string
	Owner  uuid.UUID
	Winner uuid.UUID
	Amount int
}

// Stats are the four request counters, incremented under the catalogue lock.
type Stats struct {
	SellRequests uint64
	SellAccepted uint64
	BidsReceived uint64
	BidsAccepted uint64
}
