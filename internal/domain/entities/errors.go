package entities

import "errors"

// Common errors
var (
	ErrProfileNotFound     = errors.New("style profile not found")
	ErrPresetNotFound      = errors.New("group preset not found")
	ErrInvalidPageGeometry = errors.New("invalid page geometry")
	ErrInvalidPayload      = errors.New("invalid schedule payload")
	ErrCacheMiss           = errors.New("cache miss")
)
