package domain

import "errors"

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrInvalidURL       = errors.New("bookmark url is invalid")
)
