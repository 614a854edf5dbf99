package scheme

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gmauleon.org/snowdissect/pkg/snowflake"
	"gmauleon.org/snowdissect/pkg/timestamp"
)

const Manual = "manual"

var ErrUnknownScheme = errors.New("unknown scheme")

// Profile describes where a snowflake scheme keeps its timestamp and which epoch it counts from.
type Profile struct {
	Name          string `mapstructure:"name" json:"name"`
	TimestampBits int    `mapstructure:"ts_bits" json:"ts_bits"`
	EpochOffset   int64  `mapstructure:"offset" json:"offset"`
	// TotalBits overrides the identifier width when set
	TotalBits int `mapstructure:"total_bits" json:"total_bits,omitempty"`
	// Encoding is the default hint for the scheme, empty means classify
	Encoding string `mapstructure:"encoding" json:"encoding,omitempty"`
}

var (
	Twitter  = Profile{Name: "twitter", TimestampBits: 42, EpochOffset: 1288834974657}
	LinkedIn = Profile{Name: "linkedin", TimestampBits: 42, EpochOffset: 0}
	Discord  = Profile{Name: "discord", TimestampBits: 42, EpochOffset: 1420070400000}
	TikTok   = Profile{Name: "tiktok", TimestampBits: 32, EpochOffset: 0}
	// Sign bit plus 39 bits of 10 ms units since 2014-09-01 UTC
	Sonyflake = Profile{
		Name:          "sonyflake",
		TimestampBits: 40,
		EpochOffset:   140952960000,
		Encoding:      string(timestamp.EpochCentiseconds),
	}
)

func Builtins() []Profile {
	return []Profile{Twitter, LinkedIn, Discord, TikTok, Sonyflake}
}

func BuiltinNames() []string {
	var names []string
	for _, p := range Builtins() {
		names = append(names, p.Name)
	}
	return names
}

type Registry struct {
	profiles map[string]Profile
	names    []string
}

// NewRegistry returns the built-in profiles plus the custom ones. A custom profile
// with the name of a built-in replaces it.
func NewRegistry(custom ...Profile) (*Registry, error) {
	r := &Registry{profiles: map[string]Profile{}}
	for _, p := range Builtins() {
		r.add(p)
	}

	var errs error
	for i, p := range custom {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if err := p.Validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("scheme #%d: %w", i, err))
			continue
		}
		r.add(p)
	}

	if errs != nil {
		return nil, errs
	}
	return r, nil
}

func (r *Registry) add(p Profile) {
	if _, ok := r.profiles[p.Name]; !ok {
		r.names = append(r.names, p.Name)
	}
	r.profiles[p.Name] = p
}

// All returns the registered profiles in registration order.
func (r *Registry) All() []Profile {
	profiles := make([]Profile, 0, len(r.names))
	for _, name := range r.names {
		profiles = append(profiles, r.profiles[name])
	}
	return profiles
}

func (r *Registry) Lookup(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == Manual {
		return Profile{}, fmt.Errorf("%w: %s requires explicit timestamp bits", snowflake.ErrInvalidWidth, Manual)
	}
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownScheme, name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Manual builds the pseudo-scheme for a caller-supplied layout. tsBits has no default.
func (r *Registry) Manual(tsBits int, offset int64) (Profile, error) {
	p := Profile{Name: Manual, TimestampBits: tsBits, EpochOffset: offset}
	if tsBits <= 0 {
		return Profile{}, fmt.Errorf("%w: %s scheme requires --ts-bits", snowflake.ErrInvalidWidth, Manual)
	}
	return p, nil
}

// Names lists the registered schemes in registration order, followed by manual.
func (r *Registry) Names() []string {
	return append(slices.Clone(r.names), Manual)
}

func (p Profile) Validate() error {
	var errs error
	if p.Name == "" {
		errs = multierror.Append(errs, errors.New("name is required"))
	}
	if p.Name == Manual {
		errs = multierror.Append(errs, fmt.Errorf("%q is reserved", Manual))
	}
	if p.TimestampBits <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: ts_bits must be positive", snowflake.ErrInvalidWidth))
	}
	if p.TotalBits < 0 || (p.TotalBits > 0 && p.TimestampBits > p.TotalBits) {
		errs = multierror.Append(errs, fmt.Errorf("%w: total_bits %d cannot hold ts_bits %d", snowflake.ErrInvalidWidth, p.TotalBits, p.TimestampBits))
	}
	if p.Encoding != "" {
		if _, err := timestamp.ParseEncoding(p.Encoding); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}
