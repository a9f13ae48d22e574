package register

import (
	"fmt"
	"time"
)

// dateKeyLayout is the canonical bucket key form, YYYY-MM-DD.
const dateKeyLayout = "2006-01-02"

// DateKey canonicalizes a timestamp to its local calendar date. Using the
// local date rather than UTC keeps marks near midnight on the day the user
// actually saw.
func DateKey(t time.Time) string {
	return t.Local().Format(dateKeyLayout)
}

// ParseDateKey validates a canonical date key and returns the local midnight
// it names. Non-canonical spellings (wrong padding, extra text) are rejected.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	if t.Format(dateKeyLayout) != key {
		return time.Time{}, fmt.Errorf("invalid date key %q: not canonical YYYY-MM-DD", key)
	}
	return t, nil
}

// IsWeekday reports whether the key names a Monday through Friday. The store
// itself accepts any date; weekday enforcement is presentation-layer input
// policy.
func IsWeekday(key string) bool {
	t, err := ParseDateKey(key)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
