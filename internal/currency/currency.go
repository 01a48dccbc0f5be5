package currency

import (
	"fmt"
	"strings"
)

// Code is one of the currencies the gateway accepts.
type Code string

const (
	EUR Code = "EUR"
	GBP Code = "GBP"
	USD Code = "USD"
)

var ErrNotSupported = fmt.Errorf("currency not supported")

// ISO 4217 numeric codes, used on the ISO 8583 wire.
var numeric = map[Code]string{
	EUR: "978",
	GBP: "826",
	USD: "840",
}

// Supported returns the closed set of accepted codes.
func Supported() []Code {
	return []Code{EUR, GBP, USD}
}

// Resolve trims and upper-cases code and matches it against the supported set.
func Resolve(code string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := numeric[c]; !ok {
		return "", fmt.Errorf("%q: %w", code, ErrNotSupported)
	}
	return c, nil
}

func (c Code) String() string { return string(c) }

// Numeric returns the ISO 4217 numeric code, or "" for an unknown code.
func (c Code) Numeric() string {
	return numeric[c]
}
