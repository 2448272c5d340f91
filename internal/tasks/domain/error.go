package domain

import "errors"

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleRequired = errors.New("task title is required")
)
