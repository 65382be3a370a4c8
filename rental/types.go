// Package rental layers the surrounding application's domain semantics over
// the billing engine: the payment approval workflow, append-only record
// mutations, statement assembly for bill rendering, and dashboard status
// classification.
package rental

import (
	"github.com/plank/rental-engine/billing"
)

// =============================================================================
// PAYMENT METHODS
// =============================================================================

// Payment methods accepted by the application. Free-form strings are allowed
// on legacy records; these are the ones the UI offers.
const (
	MethodCash         = "Cash"
	MethodUPI          = "UPI"
	MethodBankTransfer = "Bank Transfer"
	MethodCheque       = "Cheque"
)

// =============================================================================
// CUSTOMER STATUS - dashboard classification
// =============================================================================

type CustomerStatus string

const (
	StatusPaid    CustomerStatus = "paid"
	StatusPartial CustomerStatus = "partial"
	StatusUnpaid  CustomerStatus = "unpaid"
)

// ClassifyCustomer buckets a customer for dashboard filters using the live
// display-due figure. The classification consumes DisplayDue deliberately:
// a customer holding an advance shows as paid, not as a negative due.
func ClassifyCustomer(record billing.CustomerRecord, policy billing.PaymentPolicy, asOf billing.Date) CustomerStatus {
	return ClassifyBalance(billing.Calculate(record, billing.Options{
		Mode:   billing.ModeLive,
		Policy: policy,
		AsOf:   asOf,
	}))
}

// ClassifyBalance buckets an already-computed balance. Callers that have a
// fresh result in hand use this instead of recomputing per row.
func ClassifyBalance(result billing.BalanceResult) CustomerStatus {
	if result.DisplayDue.IsZero() {
		return StatusPaid
	}
	if result.PaymentsSum.IsPositive() {
		return StatusPartial
	}
	return StatusUnpaid
}
