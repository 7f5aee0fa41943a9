package service

import "errors"

// Layer-level errors the handlers map onto HTTP status codes.
var (
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBoardNotFound      = errors.New("board not found")
	ErrNoAccess           = errors.New("no access to board")
	ErrForbidden          = errors.New("insufficient role")
)
