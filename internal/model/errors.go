package model

import (
	"errors"
	"sort"
	"strings"
)

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound       = errors.New("account not found")
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNotActivated          = errors.New("account is not activated")
	ErrAlreadyActivated      = errors.New("account is already activated")
	ErrInvalidActivationHash = errors.New("invalid activation hash")

	// Access errors
	ErrForbidden = errors.New("forbidden")

	// Catalog errors
	ErrGameNotFound    = errors.New("game not found")
	ErrDuplicateName   = errors.New("game name already exists")
	ErrInvalidCategory = errors.New("invalid category")

	// Purchase errors
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyOwned     = errors.New("game is already owned")
	ErrNotPurchasable   = errors.New("game is not purchasable")
	ErrBadRequest       = errors.New("bad request")
	ErrIntegrity        = errors.New("payment checksum mismatch")
	ErrAlreadyProcessed = errors.New("order has already been processed")

	// Progress errors
	ErrSaveNotFound = errors.New("save state not found")
)

// ValidationError reports malformed input, keyed by form field
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError with a single field message
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors returns true if any field failed
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e if it has errors, nil otherwise
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// Error implements error
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
