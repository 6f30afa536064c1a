package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoLogDirectory   = errors.New("no log directory")
	ErrCatalogFormat    = errors.New("malformed content catalog")
	ErrPropertiesFormat = errors.New("malformed session properties")
	ErrNoTalkingBookID  = errors.New("no talking book id")
)
