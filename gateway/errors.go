package gateway

import (
	"fmt"

	"github.com/cardflow/paygate/gateway/bank"
)

var (
	ErrNotFound    = fmt.Errorf("not found")
	ErrDuplicateID = fmt.Errorf("duplicate payment id")

	// ErrAuthorizationUnavailable means the bank gave no decision. Nothing was stored.
	ErrAuthorizationUnavailable = bank.ErrUnavailable
)

// Caller-facing messages. Internal detail never goes into these.
const (
	msgUnavailable   = "Payment authorization is temporarily unavailable. Please try again later."
	msgUnexpected    = "An unexpected error occurred."
	msgMalformedBody = "Malformed request body."
)
