package report

import "errors"

var (
	// ErrNotFound: the requested property id does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument: a request token or value could not be interpreted
	ErrInvalidArgument = errors.New("invalid argument")
)
