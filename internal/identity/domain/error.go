package domain

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailRequired = errors.New("email required")
	ErrInvalidToken  = errors.New("invalid identity token")
)
