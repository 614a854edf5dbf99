package dissect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"gmauleon.org/snowdissect/pkg/scheme"
	"gmauleon.org/snowdissect/pkg/snowflake"
	"gmauleon.org/snowdissect/pkg/timestamp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type Request struct {
	Input   string
	Profile scheme.Profile
	// Hint forces an encoding, it takes precedence over the profile's default
	Hint timestamp.Encoding
	// TotalBits overrides both the profile and the width inferred from the input
	TotalBits int
}

type Report struct {
	Input      string
	Scheme     string
	Identifier snowflake.Identifier
	Extraction snowflake.Extraction
	Result     *timestamp.Result
	// Reference is discordgo's reading of the id, only set for the discord scheme
	Reference *time.Time
	Err       error
}

// Extracted reports whether the pipeline got as far as the bit extraction.
func (r *Report) Extracted() bool {
	return r.Extraction.Candidate != nil
}

type Dissector struct {
	logger  *zap.Logger
	workers int
}

type Option func(*Dissector)

func WithWorkers(n int) Option {
	return func(d *Dissector) {
		if n > 0 {
			d.workers = n
		}
	}
}

func New(logger *zap.Logger, opts ...Option) *Dissector {
	d := &Dissector{
		logger:  logger,
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dissect runs one identifier through normalization, extraction and decoding.
// When only the decode step fails, the partial report is returned with the error.
func (d *Dissector) Dissect(req Request) (*Report, error) {
	id, err := snowflake.ParseIdentifier(req.Input)
	if err != nil {
		return nil, err
	}

	switch {
	case req.TotalBits > 0:
		id = id.WithBits(req.TotalBits)
	case req.Profile.TotalBits > 0:
		id = id.WithBits(req.Profile.TotalBits)
	}

	extraction, err := snowflake.Extract(id.Value, id.Bits, req.Profile.TimestampBits, req.Profile.EpochOffset)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Input:      req.Input,
		Scheme:     req.Profile.Name,
		Identifier: id,
		Extraction: extraction,
	}

	hint := req.Hint
	if hint == "" {
		hint = timestamp.Encoding(req.Profile.Encoding)
	}

	result, err := timestamp.Decode(extraction.Candidate, hint)
	if err != nil {
		report.Err = err
		return report, err
	}
	report.Result = &result

	if req.Profile.Name == scheme.Discord.Name && id.Bits == snowflake.DefaultBits {
		if ref, err := scheme.DiscordTimestamp(id.Value.String()); err == nil {
			report.Reference = &ref
		} else {
			d.logger.Debug("discord reference unavailable", zap.String("input", req.Input), zap.Error(err))
		}
	}

	d.logger.Debug("dissected identifier",
		zap.String("input", req.Input),
		zap.String("scheme", req.Profile.Name),
		zap.Stringer("candidate", extraction.Candidate),
		zap.String("encoding", string(result.Encoding)),
		zap.Bool("guessed", result.Guessed),
	)

	return report, nil
}

// DissectAll decodes a batch in parallel. Reports keep the order of reqs and are never nil;
// a failed entry carries its error in Err. Every failure is collected, none stops the batch.
func (d *Dissector) DissectAll(ctx context.Context, reqs []Request) ([]*Report, error) {
	reports := make([]*Report, len(reqs))
	errs := make([]error, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, req := range reqs {
		if ctx.Err() != nil {
			reports[i] = &Report{Input: req.Input, Scheme: req.Profile.Name, Err: ctx.Err()}
			errs[i] = fmt.Errorf("%s: %w", req.Input, ctx.Err())
			continue
		}

		g.Go(func() error {
			report, err := d.Dissect(req)
			if err != nil {
				d.logger.Warn("failed to dissect identifier", zap.String("input", req.Input), zap.Error(err))
				errs[i] = fmt.Errorf("%s: %w", req.Input, err)
				if report == nil {
					report = &Report{Input: req.Input, Scheme: req.Profile.Name, Err: err}
				}
			}
			reports[i] = report
			return nil
		})
	}

	_ = g.Wait()

	var batchErr error
	for _, err := range errs {
		if err != nil {
			batchErr = multierror.Append(batchErr, err)
		}
	}
	return reports, batchErr
}

// IsDecodeFailure reports whether err came from the decode step, in which case Dissect
// also returned a partial report holding the identifier and the extraction.
func IsDecodeFailure(err error) bool {
	return errors.Is(err, timestamp.ErrOutOfRange) || errors.Is(err, timestamp.ErrUnknownEncoding)
}
