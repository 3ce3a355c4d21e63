package main

import (
	"errors"
	"strconv"
)

const usageLine = "Usage: auctionhouse [--max connections] [--listenon portno] [--wslisten addr]"

var errUsage = errors.New(usageLine)

// parseArgs applies the command-line flags on top of config. Flags come in
// pairs, may not repeat, and their values are validated here: the port must
// be 0 (ephemeral) or in 1024-65535, the connection cap must be numeric.
func parseArgs(args []string, config *Config) error {
	var setMax, setPort, setWS bool

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--listenon":
			if i+1 >= len(args) || setPort {
				return errUsage
			}
			port, ok := parseDigits(args[i+1])
			if !ok {
				return errUsage
			}
			if port != 0 && (port < 1024 || port > 65535) {
				return errUsage
			}
			config.ListenPort = port
			setPort = true
			i++
		case "--max":
			if i+1 >= len(args) || setMax {
				return errUsage
			}
			max, ok := parseDigits(args[i+1])
			if !ok {
				return errUsage
			}
			config.MaxConnections = max
			setMax = true
			i++
		case "--wslisten":
			if i+1 >= len(args) || setWS {
				return errUsage
			}
			config.WSAddr = args[i+1]
			setWS = true
			i++
		default:
			return errUsage
		}
	}
	return nil
}

// parseDigits accepts only unsigned decimal integers, so "-1" and "1x" are
// usage errors rather than surprising zero values.
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
