package index

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration is returned when an index cannot be created with
	// the given parameters or distance adapter.
	ErrInvalidConfiguration = errors.New("invalid index configuration")

	// ErrInvalidID is returned for point ids outside the index.
	ErrInvalidID = errors.New("invalid point id")
)

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	// Scope names what was being configured, usually an algorithm name or
	// "search".
	Scope  string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	parts := []string{ErrInvalidConfiguration.Error()}
	if e.Scope != "" {
		parts = append(parts, e.Scope)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Reason)
	return strings.Join(parts, ": ")
}

// Unwrap allows errors.Is(err, ErrInvalidConfiguration).
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewConfigError returns a ConfigError scoped to an algorithm.
func NewConfigError(a Algorithm, field, reason string) *ConfigError {
	return &ConfigError{Scope: a.String(), Field: field, Reason: reason}
}

// InvalidIDError returns an error for an id outside [0, n).
func InvalidIDError(id, n int) error {
	return fmt.Errorf("%w: %d (have %d)", ErrInvalidID, id, n)
}
