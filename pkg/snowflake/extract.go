package snowflake

import (
	"fmt"
	"math/big"
	"strings"
)

// Extraction holds every intermediate value of pulling the timestamp field out of an identifier.
type Extraction struct {
	Value         *big.Int
	TotalBits     int
	TimestampBits int
	Offset        int64

	// Raw is the upper TimestampBits bits of Value
	Raw *big.Int
	// Candidate is Raw plus Offset, still ambiguous in unit
	Candidate *big.Int
}

// Extract takes the most significant tsBits of a totalBits wide value and adds the epoch offset.
func Extract(value *big.Int, totalBits, tsBits int, offset int64) (Extraction, error) {
	if totalBits <= 0 || tsBits <= 0 {
		return Extraction{}, fmt.Errorf("%w: widths must be positive, got total=%d timestamp=%d", ErrInvalidWidth, totalBits, tsBits)
	}
	if tsBits > totalBits {
		return Extraction{}, fmt.Errorf("%w: timestamp width %d exceeds total width %d", ErrInvalidWidth, tsBits, totalBits)
	}
	if value == nil || value.Sign() < 0 {
		return Extraction{}, fmt.Errorf("%w: value must be a non-negative integer", ErrMalformedIdentifier)
	}
	if value.BitLen() > totalBits {
		return Extraction{}, fmt.Errorf("%w: value needs %d bits but total width is %d", ErrInvalidWidth, value.BitLen(), totalBits)
	}

	raw := new(big.Int).Rsh(value, uint(totalBits-tsBits))

	return Extraction{
		Value:         new(big.Int).Set(value),
		TotalBits:     totalBits,
		TimestampBits: tsBits,
		Offset:        offset,
		Raw:           raw,
		Candidate:     new(big.Int).Add(raw, big.NewInt(offset)),
	}, nil
}

// SplitOffset is the number of low bits discarded by the extraction.
func (e Extraction) SplitOffset() int {
	return e.TotalBits - e.TimestampBits
}

func (e Extraction) ValueBinary() string {
	return paddedBinary(e.Value, e.TotalBits)
}

func (e Extraction) RawBinary() string {
	return paddedBinary(e.Raw, e.TimestampBits)
}

func paddedBinary(v *big.Int, width int) string {
	s := v.Text(2)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
