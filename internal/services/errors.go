package services

import (
	"errors"
	"fmt"

	apperrors "github.com/bhoraniaarshadali/exam-portal-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Exam specific errors
	ErrExamNotFound = errors.New("exam not found")

	// Session specific errors
	ErrOutsideWindow           = errors.New("exam is not open at this time")
	ErrUnknownQuestion         = errors.New("answer refers to an unknown question")
	ErrAttemptAlreadyFinalized = errors.New("attempt already finalized")
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptLimitExceeded    = errors.New("maximum attempts exceeded")

	// Store errors. Any backend read/write failure wraps this sentinel so
	// callers surface a retryable message instead of string-matching.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Authorization errors. A plain denial is distinct from a backend
	// permission failure, which indicates a configuration problem.
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// AuthorizationError wraps a backend failure during an authorization
// check. It must never be mistaken for a legitimate denial: it is
// reported to an operator, not to the caller as "access denied".
type AuthorizationError struct {
	Cause error
}

func (ae *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization check failed: %v", ae.Cause)
}

func (ae *AuthorizationError) Unwrap() error {
	return ae.Cause
}

// DeniedError carries the reason a caller was denied a role. Callers must
// abort the in-progress operation and force re-authentication.
type DeniedError struct {
	UID    string
	Role   string
	Reason string
}

func (de *DeniedError) Error() string {
	return fmt.Sprintf("access denied: %s is not a verified %s - %s", de.UID, de.Role, de.Reason)
}

func (de *DeniedError) Is(target error) bool {
	return target == ErrAuthorizationDenied
}

// ===== SHARED VALIDATION ERRORS =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

func NewDeniedError(uid, role, reason string) *DeniedError {
	return &DeniedError{UID: uid, Role: role, Reason: reason}
}

func NewAuthorizationError(cause error) *AuthorizationError {
	return &AuthorizationError{Cause: cause}
}

func NewStoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsDenied checks if error represents a legitimate authorization denial
func IsDenied(err error) bool {
	return errors.Is(err, ErrAuthorizationDenied)
}

// IsAuthorizationError checks if error is a backend authorization failure,
// distinct from a denial
func IsAuthorizationError(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsStoreUnavailable checks if error represents a backend read/write failure
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
