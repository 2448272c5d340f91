package domain

import "errors"

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrTitleRequired = errors.New("note title is required")
)
