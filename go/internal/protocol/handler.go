// Package protocol translates one received command line into a catalogue
// operation and exactly one response line.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionhouse/go/internal/auction"
)

const (
	replyInvalid  = ":invalid"
	replyRejected = ":rejected"
	replyList     = ":list"
)

// maxFields is the most whitespace-separated fields any command may carry.
const maxFields = 4

// Notifier defines what the handler needs for best-effort delivery of outbid
// lines to other connections.
type Notifier interface {
	Notify(id uuid.UUID, line string)
}

// Handler dispatches command lines against the catalogue on behalf of one
// caller identity at a time. It is stateless and safe for concurrent use.
type Handler struct {
	catalogue *auction.Catalogue
	notifier  Notifier
}

// NewHandler creates a handler over the given catalogue and notifier.
func NewHandler(catalogue *auction.Catalogue, notifier Notifier) *Handler {
	return &Handler{catalogue: catalogue, notifier: notifier}
}

// Handle processes one command line from the client identified by caller and
// returns the single response line to write back. It never returns an empty
// string.
func (h *Handler) Handle(caller uuid.UUID, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields) > maxFields {
		return replyInvalid
	}

	switch fields[0] {
	case "sell":
		return h.sell(caller, fields)
	case "bid":
		return h.bid(caller, fields)
	case "list":
		if len(fields) != 1 {
			return replyInvalid
		}
		return renderList(h.catalogue.List())
	default:
		return replyInvalid
	}
}

func (h *Handler) sell(caller uuid.UUID, fields []string) string {
	h.catalogue.CountSellRequest()
	if len(fields) != 4 {
		return replyInvalid
	}
	reserve, ok := parseDigits(fields[2])
	if !ok {
		return replyInvalid
	}
	duration, ok := parseDigits(fields[3])
	if !ok {
		return replyInvalid
	}

	item, err := h.catalogue.Sell(fields[1], reserve, duration, caller)
	if err != nil {
		return renderErr(err)
	}
	return fmt.Sprintf(":listed %s", item.Name)
}

func (h *Handler) bid(caller uuid.UUID, fields []string) string {
	h.catalogue.CountBidReceived()
	if len(fields) != 3 {
		return replyInvalid
	}
	amount, ok := parseDigits(fields[2])
	if !ok || amount < 1 {
		return replyInvalid
	}

	note, err := h.catalogue.Bid(fields[1], amount, caller)
	if err != nil {
		return renderErr(err)
	}
	if note != nil {
		// The catalogue lock is already released here.
		h.notifier.Notify(note.Bidder, fmt.Sprintf(":outbid %s %d", note.Item, note.Amount))
	}
	return fmt.Sprintf(":bid %s", fields[1])
}

func renderErr(err error) string {
	if errors.Is(err, auction.ErrRejected) {
		return replyRejected
	}
	return replyInvalid
}

// renderList formats the list response: one pipe-terminated segment per live
// item, or the bare reply when nothing is live.
func renderList(items []auction.Snapshot) string {
	if len(items) == 0 {
		return replyList
	}
	var b strings.Builder
	b.WriteString(replyList)
	b.WriteByte(' ')
	for _, it := range items {
		fmt.Fprintf(&b, "%s %d %d %d|", it.Name, it.Reserve, it.HighestBid, it.RemainingSeconds)
	}
	return b.String()
}

// parseDigits parses a field that must consist solely of ASCII digits. Signs,
// spaces and anything non-numeric are malformed rather than rejected.
func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
