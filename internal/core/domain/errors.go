package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrEmailTaken         = errors.New("email already taken, please use a different one or login instead")
	ErrUsernameTaken      = errors.New("username already taken, please use a different one")
	ErrInvalidCredentials = errors.New("invalid credentials, could not log you in")
	ErrForbidden          = errors.New("not allowed to modify this resource")
	ErrInvalidUpdate      = errors.New("invalid update field(s)")
	ErrNoImages           = errors.New("no images provided")
	ErrTooManyImages      = errors.New("too many images, at most 4 per upload")
)
