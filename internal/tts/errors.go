package tts

import "errors"

// Common errors for the synthesis layer.
var (
	ErrEmptyText     = errors.New("text cannot be empty")
	ErrTextTooLong   = errors.New("text exceeds maximum length")
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")
	ErrUnknownEngine = errors.New("unknown TTS engine")
)
