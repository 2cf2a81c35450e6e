package ai

import "errors"

// ErrEmptyInput is returned when a single-text embedding is requested for
// empty or whitespace-only input.
var ErrEmptyInput = errors.New("embedding input is empty")
