package snowflake

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// DefaultBits is the width assumed for identifiers given as decimal literals.
const DefaultBits = 64

type Identifier struct {
	Value   *big.Int
	Bits    int
	Encoded bool
}

// ParseIdentifier normalizes a textual identifier into an integer of known width.
// Decimal literals are tried first. Anything else must be URL-safe base64, in which
// case the decoded bytes are read as a big-endian unsigned integer.
func ParseIdentifier(text string) (Identifier, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Identifier{}, fmt.Errorf("%w: empty input", ErrMalformedIdentifier)
	}

	if v, ok := new(big.Int).SetString(text, 10); ok {
		if v.Sign() < 0 {
			return Identifier{}, fmt.Errorf("%w: %q is negative", ErrMalformedIdentifier, text)
		}
		return Identifier{Value: v, Bits: DefaultBits}, nil
	}

	// Padding is optional on input, so drop whatever is there and decode raw
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(text, "="))
	if err != nil || len(raw) == 0 {
		return Identifier{}, fmt.Errorf("%w: %q is neither a decimal integer nor url-safe base64", ErrMalformedIdentifier, text)
	}

	return Identifier{
		Value:   new(big.Int).SetBytes(raw),
		Bits:    len(raw) * 8,
		Encoded: true,
	}, nil
}

// Source describes how the identifier was written, e.g. "decimal" or "base64url, 8 bytes".
func (id Identifier) Source() string {
	if !id.Encoded {
		return "decimal"
	}
	return fmt.Sprintf("base64url, %d bytes", id.Bits/8)
}

// WithBits returns a copy of the identifier with an explicit total width.
func (id Identifier) WithBits(bits int) Identifier {
	id.Bits = bits
	return id
}
