package expiry

import (
	"fmt"
	"time"
)

// ValidMonth reports whether month is within 1..12.
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// Expired reports whether (month, year) lies strictly before the month containing
// 'at' in loc. The current month is not expired. A nil loc means UTC.
func Expired(month, year int, at time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	t := at.In(loc)
	if year != t.Year() {
		return year < t.Year()
	}
	return month < int(t.Month())
}

// MMYYYY renders expiry as "MM/YYYY", the bank authorizer's format.
func MMYYYY(month, year int) string {
	return fmt.Sprintf("%02d/%04d", month, year)
}

// YYMM renders expiry as ISO 8583 DE14.
func YYMM(month, year int) string {
	return fmt.Sprintf("%02d%02d", year%100, month)
}
