package service

import "errors"

// Errors shared by the session and config managers so transports can map them
// without importing the implementations.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrConfigNotFound       = errors.New("configuration not found")
)
