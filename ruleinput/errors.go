package ruleinput

import "errors"

var (
	// ErrInvalidRange indicates a range's lower bound exceeds its upper bound.
	ErrInvalidRange = errors.New("invalid range")
	// ErrUnparsable indicates a raw value could not be parsed for its column's data type.
	ErrUnparsable = errors.New("unparsable value")
)
