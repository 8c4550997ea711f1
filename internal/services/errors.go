package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyReviewed    = errors.New("already reviewed")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidComment     = errors.New("comment must be between 10 and 500 characters")
	ErrInvalidUsername    = errors.New("username must be between 2 and 20 characters")
	ErrUsernameTaken      = errors.New("username taken")
	ErrEmailTaken         = errors.New("email taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
