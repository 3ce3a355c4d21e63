package protocol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/auctionhouse/go/internal/auction"
)

// spyNotifier records best-effort notification lines per target.
type spyNotifier struct {
	sent map[uuid.UUID][]string
}

func newSpyNotifier() *spyNotifier {
	return &spyNotifier{sent: make(map[uuid.UUID][]string)}
}

func (s *spyNotifier) Notify(id uuid.UUID, line string) {
	s.sent[id] = append(s.sent[id], line)
}

func newTestHandler() (*Handler, *auction.Catalogue, *spyNotifier) {
	catalogue := auction.NewCatalogue(clockwork.NewFakeClock())
	notifier := newSpyNotifier()
	return NewHandler(catalogue, notifier), catalogue, notifier
}

func TestHandleCommandForms(t *testing.T) {
	caller := uuid.New()

	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "empty line", line: "", want: ":invalid"},
		{name: "whitespace only", line: "   ", want: ":invalid"},
		{name: "unknown command", line: "buy widget 10", want: ":invalid"},
		{name: "too many fields", line: "sell widget 10 5 extra", want: ":invalid"},
		{name: "sell ok", line: "sell widget 10 5", want: ":listed widget"},
		{name: "sell extra whitespace", line: "  sell   gadget  10  5 ", want: ":listed gadget"},
		{name: "sell missing field", line: "sell widget 10", want: ":invalid"},
		{name: "sell non-numeric reserve", line: "sell thing abc 5", want: ":invalid"},
		{name: "sell negative reserve", line: "sell thing -1 5", want: ":invalid"},
		{name: "sell zero reserve", line: "sell thing 0 5", want: ":invalid"},
		{name: "sell zero duration", line: "sell thing 10 0", want: ":invalid"},
		{name: "sell duplicate live name", line: "sell widget 10 5", want: ":rejected"},
		{name: "bid ok", line: "bid widget 15", want: ":rejected"}, // caller owns widget
		{name: "bid missing amount", line: "bid widget", want: ":invalid"},
		{name: "bid non-numeric amount", line: "bid widget ten", want: ":invalid"},
		{name: "bid zero amount", line: "bid widget 0", want: ":invalid"},
		{name: "bid unknown item", line: "bid nosuch 10", want: ":rejected"},
		{name: "list with arguments", line: "list widget", want: ":invalid"},
	}

	h, _, _ := newTestHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Handle(caller, tt.line))
		})
	}
}

func TestHandleBidAndOutbid(t *testing.T) {
	h, _, notifier := newTestHandler()
	seller := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	require.Equal(t, ":listed gadget", h.Handle(seller, "sell gadget 10 60"))

	assert.Equal(t, ":bid gadget", h.Handle(alice, "bid gadget 20"))
	assert.Empty(t, notifier.sent, "first bid notifies no one")

	assert.Equal(t, ":bid gadget", h.Handle(bob, "bid gadget 30"))
	assert.Equal(t, []string{":outbid gadget 30"}, notifier.sent[alice])
	assert.Empty(t, notifier.sent[bob])
}

func TestHandleList(t *testing.T) {
	h, _, _ := newTestHandler()
	seller := uuid.New()
	bidder := uuid.New()

	assert.Equal(t, ":list", h.Handle(seller, "list"), "no items yet")

	require.Equal(t, ":listed widget", h.Handle(seller, "sell widget 10 5"))
	require.Equal(t, ":listed gadget", h.Handle(seller, "sell gadget 3 60"))
	require.Equal(t, ":bid gadget", h.Handle(bidder, "bid gadget 7"))

	assert.Equal(t, ":list widget 10 0 5|gadget 3 7 60|", h.Handle(seller, "list"))
}

func TestHandleCountsRequests(t *testing.T) {
	h, catalogue, _ := newTestHandler()
	caller := uuid.New()

	h.Handle(caller, "sell widget 10 5") // accepted
	h.Handle(caller, "sell bad 0 5")     // invalid
	h.Handle(caller, "sell nope")        // wrong arity, still counted
	h.Handle(caller, "bid widget 1")     // rejected (self-bid on own item)
	h.Handle(caller, "bid widget x")     // invalid, still counted
	h.Handle(caller, "list")             // not a sell or bid

	stats := catalogue.Stats()
	assert.Equal(t, uint64(3), stats.SellRequests)
	assert.Equal(t, uint64(1), stats.SellAccepted)
	assert.Equal(t, uint64(2), stats.BidsReceived)
	assert.Equal(t, uint64(0), stats.BidsAccepted)
}
