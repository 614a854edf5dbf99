package timestamp

import (
	"fmt"
	"math/big"
	"time"
)

var (
	// 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z in Unix seconds
	minUnixSeconds = big.NewInt(-62135596800)
	maxUnixSeconds = big.NewInt(253402300799)
)

type Result struct {
	Instant  Instant  `json:"instant"`
	Encoding Encoding `json:"encoding"`
	// Guessed is set when the encoding came from range classification rather than a hint
	Guessed bool `json:"guessed"`
}

// Classify scans the table top to bottom and returns the first rule whose window
// contains the candidate, or the Epoch seconds fallback.
func Classify(candidate *big.Int) Rule {
	for _, r := range classification {
		if r.Contains(candidate) {
			return r
		}
	}
	return fallback
}

// Decode converts an epoch-adjusted candidate into an instant. A non-empty hint
// selects the encoding unconditionally; otherwise the candidate is classified.
func Decode(candidate *big.Int, hint Encoding) (Result, error) {
	rule := Classify(candidate)
	guessed := true
	if hint != "" {
		r, err := ParseEncoding(string(hint))
		if err != nil {
			return Result{}, err
		}
		rule, guessed = r, false
	}

	instant, err := rule.Convert(candidate)
	if err != nil {
		return Result{Encoding: rule.Encoding, Guessed: guessed}, err
	}

	return Result{Instant: instant, Encoding: rule.Encoding, Guessed: guessed}, nil
}

// Convert applies the rule's unit and origin to the candidate using integer arithmetic only.
func (r Rule) Convert(candidate *big.Int) (Instant, error) {
	units := big.NewInt(r.UnitsPerSecond)
	sinceUnix := new(big.Int).Sub(candidate, big.NewInt(r.OriginOffset))

	// Euclidean division keeps the remainder non-negative for instants before 1970
	seconds, rem := new(big.Int).DivMod(sinceUnix, units, new(big.Int))
	if seconds.Cmp(minUnixSeconds) < 0 || seconds.Cmp(maxUnixSeconds) > 0 {
		return Instant{}, fmt.Errorf("%w: %s as %s", ErrOutOfRange, candidate, r.Encoding)
	}

	nanos := rem.Int64() * (int64(time.Second) / r.UnitsPerSecond)
	return Instant{
		Time:   time.Unix(seconds.Int64(), nanos).UTC(),
		Digits: r.Digits,
	}, nil
}
