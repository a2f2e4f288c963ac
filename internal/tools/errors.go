package tools

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidInput is matched by every InputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownTool is returned for names missing from the registry.
	ErrUnknownTool = errors.New("unknown tool")
)

// InputError reports arguments rejected before any side effect.
type InputError struct {
	Problems []string
}

func (e *InputError) Error() string {
	if len(e.Problems) == 0 {
		return ErrInvalidInput.Error()
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
