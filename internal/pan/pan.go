package pan

import (
	"strings"
	"unicode/utf8"
)

// Card number length bounds accepted by the gateway.
const (
	MinLength = 14
	MaxLength = 19
)

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// LastN returns the trailing n characters of s, or s itself when it is shorter.
func LastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// LastFour is the only part of a PAN that may outlive validation.
func LastFour(pan string) string {
	return LastN(pan, 4)
}

// ValidLength reports whether the PAN length is within MinLength..MaxLength.
func ValidLength(pan string) bool {
	n := utf8.RuneCountInString(pan)
	return n >= MinLength && n <= MaxLength
}

// Mask keeps the BIN and last four digits for log output.
func Mask(pan string) string {
	r := []rune(pan)
	n := len(r)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	if n < 10 {
		return strings.Repeat("*", n-4) + string(r[n-4:])
	}
	return string(r[:6]) + strings.Repeat("*", n-10) + string(r[n-4:])
}
