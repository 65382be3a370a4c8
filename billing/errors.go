/*
errors.go - Centralized error types for the billing engine and its callers

PURPOSE:
  All sentinel errors in one place. The engine itself has no fatal error
  path - bad rows become Diagnostics - so these errors belong to the
  boundaries around it: record validation, payment workflow, storage.

USAGE:
  if errors.Is(err, billing.ErrCustomerNotFound) { ... }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCustomerNotFound is returned by repositories for unknown IDs.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrConcurrentModification is returned when an optimistic version check
	// fails on save. Callers should reload and retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrZeroQuantity is returned when a transaction with quantity zero is
	// appended. Zero-quantity events are meaningless and are rejected at the
	// boundary, never inside the accrual walk.
	ErrZeroQuantity = errors.New("transaction quantity must not be zero")

	// ErrPaymentNotFound is returned when an approval targets an unknown
	// payment ID.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidStatusTransition is returned when a payment is approved or
	// rejected from a state other than pending.
	ErrInvalidStatusTransition = errors.New("invalid payment status transition")

	// ErrNonPositiveAmount is returned when a submitted payment amount is
	// zero or negative.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StatusTransitionError reports an attempted payment transition that the
// pending -> {approved, rejected} state machine forbids.
type StatusTransitionError struct {
	PaymentID string
	From      PaymentStatus
	To        PaymentStatus
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("payment %s: cannot move from %q to %q", e.PaymentID, e.From, e.To)
}

func (e *StatusTransitionError) Unwrap() error { return ErrInvalidStatusTransition }

// VersionConflictError reports a stale save.
type VersionConflictError struct {
	CustomerID string
	Expected   int64
	Actual     int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("customer %s: save with version %d but store has %d", e.CustomerID, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error { return ErrConcurrentModification }

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrZeroQuantity) ||
		errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrNonPositiveAmount)
}
