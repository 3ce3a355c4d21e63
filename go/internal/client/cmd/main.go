package main

import (
	"fmt"
	"net"
	"os"

	"github.com/mcdev12/auctionhouse/go/internal/client"
)

const (
	exitUsage   = 20
	exitConnect = 13
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: auctionclient portno")
		os.Exit(exitUsage)
	}
	port := os.Args[1]

	conn, err := net.Dial("tcp", net.JoinHostPort("localhost", port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "auctionclient: cannot connect to port %s\n", port)
		os.Exit(exitConnect)
	}

	session := &client.Session{}
	go func() {
		os.Exit(session.ReadServer(conn, os.Stdout, os.Stderr))
	}()

	os.Exit(session.Run(os.Stdin, conn, os.Stdout, os.Stderr))
}
