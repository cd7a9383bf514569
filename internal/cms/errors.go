package cms

import "errors"

var (
	ErrNotFound      = errors.New("cms: not found")
	ErrAlreadyExists = errors.New("cms: already exists")
	ErrInvalidInput  = errors.New("cms: invalid input")
)
