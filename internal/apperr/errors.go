package apperr

import "errors"

var (
	ErrEmptyContent       = errors.New("empty content")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrNoHandoff          = errors.New("no handoff value")
	ErrUnavailable        = errors.New("remote unavailable")
)
