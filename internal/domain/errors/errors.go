// Package errors defines domain-specific error types.
// Using typed errors (instead of strings) allows the HTTP layer to map
// specific failures to specific status codes without string matching.
//
// Pattern: Sentinel Errors + Custom Error Types
package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors for domain validation
var (
	// Entity lookup errors
	ErrEntityNotFound = errors.New("entity not found")

	// User errors
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Ledger posting errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
	ErrCurrencyMismatch  = errors.New("currency mismatch between accounts")
	ErrInsufficientFunds = errors.New("insufficient available balance")
	ErrAccountNotActive  = errors.New("account is not active")
	ErrReferenceConflict = errors.New("transaction reference already used")

	// Idempotency errors
	ErrMissingIdempotencyKey = errors.New("Idempotency-Key header required")
	ErrIdempotencyConflict   = errors.New("idempotency key reuse with different payload")
)

// DomainError wraps errors with a machine-readable code and extra context
// while maintaining the error chain.
type DomainError struct {
	Code    string // Machine-readable code (e.g., "INSUFFICIENT_FUNDS")
	Message string // Human-readable message
	Err     error  // Underlying error (for error chains)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a request-shape failure with field-level detail.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // What went wrong
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ConcurrencyError represents a lost optimistic-locking race. The
// coordinator retries these a bounded number of times before surfacing a
// conflict to the client.
type ConcurrencyError struct {
	EntityType string // e.g., "Account"
	EntityID   string
	Message    string
}

// Error implements the error interface.
func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrency error on %s [%s]: %s", e.EntityType, e.EntityID, e.Message)
}

// NewConcurrencyError creates a new concurrency error.
func NewConcurrencyError(entityType, entityID, message string) *ConcurrencyError {
	return &ConcurrencyError{
		EntityType: entityType,
		EntityID:   entityID,
		Message:    message,
	}
}

// Helper functions for common error checking

// IsNotFound checks for an "entity not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsValidation checks for a ValidationError anywhere in the chain.
func IsValidation(err error) bool {
	var valErr ValidationError
	return errors.As(err, &valErr)
}

// IsConcurrency checks for a ConcurrencyError anywhere in the chain.
func IsConcurrency(err error) bool {
	var ce *ConcurrencyError
	return errors.As(err, &ce)
}

// IsIdempotencyConflict checks for an idempotency key/payload conflict.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyConflict)
}

// IsUniqueViolation checks for uniqueness failures surfaced as domain errors
// (email reuse, transaction reference collision).
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrReferenceConflict)
}

// IsPostingRejection checks for the validation-class posting failures that
// map to 400: bad amount, same account, currency mismatch, insufficient
// funds, inactive account.
func IsPostingRejection(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrCurrencyMismatch) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAccountNotActive)
}
