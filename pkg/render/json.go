package render

import (
	"encoding/json"
	"io"

	"gmauleon.org/snowdissect/pkg/dissect"
	"gmauleon.org/snowdissect/pkg/timestamp"
)

type jsonReport struct {
	Input         string            `json:"input"`
	Scheme        string            `json:"scheme,omitempty"`
	InputSource   string            `json:"input_source,omitempty"`
	TotalBits     int               `json:"total_bits,omitempty"`
	TimestampBits int               `json:"timestamp_bits,omitempty"`
	EpochOffset   int64             `json:"epoch_offset,omitempty"`
	Binary        string            `json:"binary,omitempty"`
	Raw           string            `json:"raw,omitempty"`
	Candidate     string            `json:"candidate,omitempty"`
	Result        *timestamp.Result `json:"result,omitempty"`
	Reference     string            `json:"reference,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// JSON writes the reports as an indented array, in order.
func JSON(w io.Writer, reports []*dissect.Report) error {
	out := make([]jsonReport, 0, len(reports))
	for _, r := range reports {
		jr := jsonReport{
			Input:  r.Input,
			Scheme: r.Scheme,
			Result: r.Result,
		}
		if r.Extracted() {
			e := r.Extraction
			jr.InputSource = r.Identifier.Source()
			jr.TotalBits = e.TotalBits
			jr.TimestampBits = e.TimestampBits
			jr.EpochOffset = e.Offset
			jr.Binary = e.ValueBinary()
			jr.Raw = e.Raw.String()
			jr.Candidate = e.Candidate.String()
		}
		if r.Reference != nil {
			jr.Reference = r.Reference.Format("2006-01-02T15:04:05.000Z07:00")
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
