// Package bank talks to the external authorizer. Every failure to obtain a
// decision is reported as ErrUnavailable, never as a decline.
package bank

import "fmt"

var ErrUnavailable = fmt.Errorf("bank authorization unavailable")

const (
	ProtocolHTTP    = "http"
	ProtocolISO8583 = "iso8583"
)
