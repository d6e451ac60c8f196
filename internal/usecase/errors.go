package usecase

import "errors"

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrEmptyDocument = errors.New("document contains no text")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternal      = errors.New("internal error")
)
