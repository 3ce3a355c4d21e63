package auction

import "errors"

var (
	// ErrRejected marks a well-formed request that violates a business rule
	// (duplicate live name, reserve not met, self-bid, not strictly higher,
	// unknown or closed item).
	ErrRejected = errors.New("rejected")

	// ErrInvalid marks a malformed request (non-positive numeric field).
	ErrInvalid = errors.New("invalid")
)
