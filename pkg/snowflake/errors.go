package snowflake

import "errors"

var (
	ErrMalformedIdentifier = errors.New("malformed identifier")
	ErrInvalidWidth        = errors.New("invalid width")
)
