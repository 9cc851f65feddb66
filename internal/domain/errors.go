// Package domain defines domain-specific errors.
// These errors represent player logic failures and are independent of the UI or media backend.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrEmptyPlaylist is returned when navigation is attempted on an empty filtered view.
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrIndexOutOfRange is returned when an index is invalid for the current filtered view.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidSeek is returned when a seek fraction is outside [0,1] or no duration is known.
	ErrInvalidSeek = errors.New("invalid seek")

	// ErrNoTrackLoaded is returned when a media operation needs a loaded track.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrDurationUnknown is returned when the media backend has not reported a duration yet.
	ErrDurationUnknown = errors.New("duration unknown")

	// ErrStaleHandle is returned when a media handle no longer refers to the loaded source.
	ErrStaleHandle = errors.New("stale media handle")

	// ErrInvalidCatalog is returned when a catalog source cannot be parsed or validated.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrMediaUnavailable is returned when no media output is available on this platform.
	ErrMediaUnavailable = errors.New("media output unavailable")

	// ErrUnsupportedFormat is returned when a media file format cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported media format")
)

// MediaError represents an error from the media backend.
// This wraps decoder, speaker, or browser errors with additional context.
type MediaError struct {
	Op      string // Operation that failed (e.g., "load", "play", "seek")
	URL     string // Media URL (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("media %s failed for '%s': %s", e.Op, e.URL, e.Message)
	}
	return fmt.Sprintf("media %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *MediaError) Unwrap() error {
	return e.Err
}

// NewMediaError creates a new MediaError.
func NewMediaError(op, url, message string, err error) *MediaError {
	return &MediaError{
		Op:      op,
		URL:     url,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a preferences repository.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load")
	Type    string // Repository type (e.g., "preferences")
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error on a catalog entry or config field.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlayerController", "CatalogService")
	Op      string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
