package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gmauleon.org/snowdissect/pkg/dissect"
	"gmauleon.org/snowdissect/pkg/timestamp"
)

const (
	DefaultWidth   = 70
	outOfRangeText = "timestamp too large to represent"
)

// Console draws the extraction step by step, centered on a fixed-width terminal. Lines after
// the bit split are shifted so the timestamp field stays under the bits it came from.
type Console struct {
	w     io.Writer
	width int
}

func NewConsole(w io.Writer, width int) *Console {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Console{w: w, width: width}
}

func (c *Console) Render(r *dissect.Report) error {
	var b strings.Builder

	if !r.Extracted() {
		fmt.Fprintf(&b, "snowflake type: %s\n\n", orNotSpecified(r.Scheme))
		b.WriteString(c.center(r.Input) + "\n")
		b.WriteString(c.center(fmt.Sprintf("✗ %v", r.Err)) + "\n\n")
		_, err := io.WriteString(c.w, b.String())
		return err
	}

	e := r.Extraction
	split := e.SplitOffset()

	fmt.Fprintf(&b, "snowflake type: %s | # of total bits: %d | # of timestamp bits: %d | epoch offset: %d | input: %s\n\n",
		orNotSpecified(r.Scheme), e.TotalBits, e.TimestampBits, e.Offset, r.Identifier.Source())

	b.WriteString(c.center(r.Input) + "\n")
	b.WriteString(c.arrow("↓ to binary", 0) + "\n")
	b.WriteString(c.center(e.ValueBinary()) + "\n")
	b.WriteString(c.arrow(fmt.Sprintf("↓ taking upper %d bits", e.TimestampBits), split) + "\n")
	b.WriteString(c.shifted(e.RawBinary(), split) + "\n")
	b.WriteString(c.arrow("↓ to decimal", split) + "\n")
	b.WriteString(c.shifted(e.Raw.String(), split) + "\n")
	b.WriteString(c.arrow(fmt.Sprintf("↓ add epoch offset (%d)", e.Offset), split) + "\n")
	b.WriteString(c.shifted(e.Candidate.String(), split) + "\n")
	b.WriteString(c.arrow("↓ to timestamp", split) + "\n")

	switch {
	case r.Result != nil:
		b.WriteString(c.shifted(describe(r.Result), split) + "\n")
	case errors.Is(r.Err, timestamp.ErrOutOfRange):
		b.WriteString(c.shifted(outOfRangeText, split) + "\n")
	default:
		b.WriteString(c.shifted(fmt.Sprintf("✗ %v", r.Err), split) + "\n")
	}

	if r.Reference != nil {
		b.WriteString(c.shifted(fmt.Sprintf("(discordgo: %s)", r.Reference.Format("2006-01-02T15:04:05.000Z07:00")), split) + "\n")
	}
	b.WriteString("\n")

	_, err := io.WriteString(c.w, b.String())
	return err
}

func describe(res *timestamp.Result) string {
	s := fmt.Sprintf("%s (%s)", res.Instant, res.Encoding)
	if !res.Guessed {
		s += " [hint]"
	}
	return s
}

func (c *Console) center(line string) string {
	pad := c.width - utf8.RuneCountInString(line)
	if pad <= 0 {
		return line
	}
	left := pad / 2
	return strings.Repeat(" ", left) + line + strings.Repeat(" ", pad-left)
}

func (c *Console) shifted(line string, offset int) string {
	return c.center(line + strings.Repeat(" ", offset))
}

// Arrows hang under the start of the shifted value, so their own length eats into the offset.
func (c *Console) arrow(line string, offset int) string {
	return c.shifted(line, max(offset-utf8.RuneCountInString(line), 0))
}

func orNotSpecified(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}
