package storage

import "errors"

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrEmptySessionID      = errors.New("empty session id")
)
