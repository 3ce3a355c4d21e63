package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcdev12/auctionhouse/go/internal/auction"
	"github.com/mcdev12/auctionhouse/go/internal/registry"
)

// watchStats dumps a point-in-time snapshot of the server counters to stderr
// every time the process receives SIGHUP.
func watchStats(catalogue *auction.Catalogue, reg *registry.Registry) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for range sigCh {
			stats := catalogue.Stats()
			fmt.Fprintf(os.Stderr, "Connected clients: %d\n", reg.Active())
			fmt.Fprintf(os.Stderr, "Completed clients: %d\n", reg.Completed())
			fmt.Fprintf(os.Stderr, "Active auctions: %d\n", catalogue.LiveCount())
			fmt.Fprintf(os.Stderr, "Total sell requests: %d\n", stats.SellRequests)
			fmt.Fprintf(os.Stderr, "Successful sell requests: %d\n", stats.SellAccepted)
			fmt.Fprintf(os.Stderr, "Total bid requests: %d\n", stats.BidsReceived)
			fmt.Fprintf(os.Stderr, "Successful bid requests: %d\n", stats.BidsAccepted)
		}
	}()
}
