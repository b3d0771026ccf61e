package mines

import "errors"

var (
	ErrBadParams   = errors.New("invalid game params")
	ErrOutOfBounds = errors.New("cell position out of bounds")
)
