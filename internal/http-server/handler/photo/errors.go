package photo

import "errors"

var (
	ErrInvalidBody = errors.New("invalid request body")
	ErrMissingKind = errors.New("kind is required")
)
