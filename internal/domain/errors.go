package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoAPIKey          = errors.New("generation api key not configured")
	ErrNothingToGenerate = errors.New("nothing to generate")
	ErrProviderFailure   = errors.New("provider failure")
)
