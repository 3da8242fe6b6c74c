package alarm

import "errors"

var (
	// ErrInvalidArgument reports malformed or out-of-range input such as "24:00".
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfiguration reports unusable settings such as an unknown time zone.
	ErrConfiguration = errors.New("configuration error")
)
