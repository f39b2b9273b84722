package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage format for all dates (trade, expiration,
// transaction and effective dates).
const DateLayout = "2006-01-02"

// ParseDate parses a stored YYYY-MM-DD date
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// DaysBetween returns the whole days from start to end (both YYYY-MM-DD)
func DaysBetween(start, end string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s).Hours() / 24), nil
}

// FormatExpiration renders a date as DD-MMM-YY upper case ("17-JAN-25"),
// the format ledger descriptions use.
func FormatExpiration(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return strings.ToUpper(t.Format("02-Jan-06"))
}

// Today returns the current date in storage format
func Today() string {
	return time.Now().Format(DateLayout)
}
