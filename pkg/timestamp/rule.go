package timestamp

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrOutOfRange      = errors.New("timestamp too large to represent")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

type Encoding string

const (
	DateTimeTicks        Encoding = "DateTime ticks"
	WindowsFileTime      Encoding = "Windows FileTime"
	WebKit               Encoding = "WebKit"
	EpochMicroseconds    Encoding = "Epoch microseconds"
	EpochTenMicroseconds Encoding = "Epoch ten-microsecond increments"
	EpochMilliseconds    Encoding = "Epoch milliseconds"
	EpochCentiseconds    Encoding = "Epoch centiseconds"
	EpochSeconds         Encoding = "Epoch seconds"
)

const (
	// 1601-01-01 (FileTime/WebKit origin) precedes the Unix epoch by this many seconds
	windowsEpochSeconds = 11644473600
	// 0001-01-01 (DateTime origin) precedes the Unix epoch by this many 100 ns ticks
	dateTimeEpochTicks = 621355968000000000
)

// Rule describes one timestamp encoding: the candidate window used to recognize it
// and the unit/origin needed to turn it into an instant.
type Rule struct {
	Encoding Encoding
	Slug     string
	Low      int64
	High     int64
	// UnitsPerSecond always divides 1e9
	UnitsPerSecond int64
	// OriginOffset is the distance from the rule's origin to 1970-01-01, in rule units
	OriginOffset int64
	// Digits is the number of fractional-second digits the unit can carry
	Digits int

	bounded bool
}

var classification = []Rule{
	{
		Encoding: DateTimeTicks, Slug: "datetime-ticks",
		Low: 635556672000000000, High: 638712864000000000, bounded: true,
		UnitsPerSecond: 10_000_000, OriginOffset: dateTimeEpochTicks, Digits: 7,
	},
	{
		Encoding: WindowsFileTime, Slug: "windows-filetime",
		Low: 130645440000000000, High: 133801632000000000, bounded: true,
		UnitsPerSecond: 10_000_000, OriginOffset: windowsEpochSeconds * 10_000_000, Digits: 7,
	},
	{
		Encoding: WebKit, Slug: "webkit",
		Low: 13064544000000000, High: 13380163200000000, bounded: true,
		UnitsPerSecond: 1_000_000, OriginOffset: windowsEpochSeconds * 1_000_000, Digits: 6,
	},
	{
		Encoding: EpochMicroseconds, Slug: "epoch-microseconds",
		Low: 1400070400000000, High: 1735689600000000, bounded: true,
		UnitsPerSecond: 1_000_000, Digits: 6,
	},
	{
		Encoding: EpochTenMicroseconds, Slug: "epoch-ten-microseconds",
		Low: 140007040000000, High: 173568960000000, bounded: true,
		UnitsPerSecond: 100_000, Digits: 5,
	},
	{
		Encoding: EpochMilliseconds, Slug: "epoch-milliseconds",
		Low: 1000070400000, High: 1735689600000, bounded: true,
		UnitsPerSecond: 1_000, Digits: 3,
	},
	fallback,
}

var fallback = Rule{Encoding: EpochSeconds, Slug: "epoch-seconds", UnitsPerSecond: 1}

// Only reachable through an explicit hint.
var hintOnly = []Rule{
	{Encoding: EpochCentiseconds, Slug: "epoch-centiseconds", UnitsPerSecond: 100, Digits: 2},
}

// Rules returns the classification table in priority order. The last entry is the
// unbounded Epoch seconds fallback.
func Rules() []Rule {
	return append([]Rule(nil), classification...)
}

// ParseEncoding resolves a display name ("Epoch milliseconds") or slug ("epoch-milliseconds").
func ParseEncoding(name string) (Rule, error) {
	name = strings.TrimSpace(name)
	for _, r := range append(Rules(), hintOnly...) {
		if strings.EqualFold(name, r.Slug) || strings.EqualFold(name, string(r.Encoding)) {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// Bounded reports whether the rule takes part in range classification.
func (r Rule) Bounded() bool {
	return r.bounded
}

// Contains reports whether the candidate lies inside the rule's inclusive window.
func (r Rule) Contains(candidate *big.Int) bool {
	if !r.bounded {
		return false
	}
	return candidate.Cmp(big.NewInt(r.Low)) >= 0 && candidate.Cmp(big.NewInt(r.High)) <= 0
}
