// Package client implements the interactive auction client: it forwards
// stdin lines to the server, echoes server lines to stdout and refuses to
// quit while any auction it participates in is still live.
package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

// Exit codes surfaced by Run and ReadServer.
const (
	ExitOK               = 0
	ExitServerClosed     = 18
	ExitAuctionInterrupt = 9
)

const (
	auctionsInProgress = "Auction(s) in progress - can not exit yet"
	exitWithAuctions   = "Exiting with auction still in progress"
	serverClosed       = "auctionclient: server connection closed"
)

// Session tracks how many auctions this client is still involved in: every
// :listed or :bid acknowledgement opens one, every terminal notification
// (:outbid, :won, :sold, :unsold) closes one.
type Session struct {
	live atomic.Int32
}

// LiveDelta maps one server line to its effect on the live-auction count.
func LiveDelta(line string) int32 {
	switch {
	case strings.HasPrefix(line, ":listed"), strings.HasPrefix(line, ":bid"):
		return 1
	case strings.HasPrefix(line, ":outbid"),
		strings.HasPrefix(line, ":won"),
		strings.HasPrefix(line, ":sold"),
		strings.HasPrefix(line, ":unsold"):
		return -1
	default:
		return 0
	}
}

// LiveAuctions reports the current live-auction count.
func (s *Session) LiveAuctions() int32 {
	return s.live.Load()
}

// ReadServer echoes every server line to out while maintaining the
// live-auction count. It returns ExitServerClosed when the server ends the
// stream; the message goes to errOut.
func (s *Session) ReadServer(from io.Reader, out, errOut io.Writer) int {
	scanner := bufio.NewScanner(from)
	for scanner.Scan() {
		line := scanner.Text()
		s.live.Add(LiveDelta(line))
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(errOut, serverClosed)
	return ExitServerClosed
}

// Run reads commands from in and forwards them to the server. Blank lines
// and #-comments are skipped; quit exits only when no auction is live. The
// returned code is the process exit status.
func (s *Session) Run(in io.Reader, to io.Writer, out, errOut io.Writer) int {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "quit":
			if s.LiveAuctions() > 0 {
				fmt.Fprintln(out, auctionsInProgress)
				continue
			}
			return ExitOK
		case line == "" || strings.HasPrefix(line, "#"):
			// comment or blank, not forwarded
		default:
			fmt.Fprintf(to, "%s\n", line)
		}
	}

	if s.LiveAuctions() > 0 {
		fmt.Fprintln(errOut, exitWithAuctions)
		return ExitAuctionInterrupt
	}
	return ExitOK
}
