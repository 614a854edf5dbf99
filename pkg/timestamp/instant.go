package timestamp

import (
	"strings"
	"time"
)

// Instant is a UTC time that remembers how many fractional-second digits its source carried.
type Instant struct {
	Time   time.Time
	Digits int
}

func (i Instant) String() string {
	layout := "2006-01-02T15:04:05"
	if i.Digits > 0 {
		layout += "." + strings.Repeat("0", i.Digits)
	}
	return i.Time.UTC().Format(layout + "Z07:00")
}

func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}
