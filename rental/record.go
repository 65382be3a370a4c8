/*
record.go - Append-only mutations of a customer record

PURPOSE:
  The billing engine only ever reads an immutable snapshot. All writes go
  through this file, which enforces the boundary invariants the engine
  assumes:
  - transaction quantity is never zero
  - payments enter with a positive amount and a valid initial status
  - the approval state machine is pending -> {approved, rejected}, terminal

  Functions mutate the record in place; persistence (and the optimistic
  version check) is the repository's concern.
*/
package rental

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plank/rental-engine/billing"
)

// =============================================================================
// RECORD CONSTRUCTION
// =============================================================================

// NewCustomer creates a record with empty logs. ID is generated when empty.
func NewCustomer(id, name, mobile, address string, previousBalance decimal.Decimal) billing.CustomerRecord {
	if id == "" {
		id = uuid.NewString()
	}
	return billing.CustomerRecord{
		ID:              id,
		Name:            name,
		Mobile:          mobile,
		Address:         address,
		PreviousBalance: previousBalance,
	}
}

// AddItem registers or reprices a rentable item. Items are unique by name.
func AddItem(record *billing.CustomerRecord, name string, dailyRate decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("item name must not be empty")
	}
	if dailyRate.IsNegative() {
		return fmt.Errorf("daily rate must not be negative")
	}
	for i, item := range record.Items {
		if item.Name == name {
			record.Items[i].DailyRate = dailyRate
			return nil
		}
	}
	record.Items = append(record.Items, billing.Item{Name: name, DailyRate: dailyRate})
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// AddTransaction appends a rent/return event. Zero quantities are rejected
// here, at the boundary, so the accrual walk never sees them. The event is
// appended, not inserted: recorded order is what makes same-day replay
// deterministic.
func AddTransaction(record *billing.CustomerRecord, date billing.Date, itemName string, qty int) error {
	if qty == 0 {
		return billing.ErrZeroQuantity
	}
	if date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	record.Transactions = append(record.Transactions, billing.TransactionEvent{
		Date: date,
		Item: itemName,
		Qty:  qty,
	})
	return nil
}

// =============================================================================
// PAYMENT WORKFLOW - pending -> {approved, rejected}
// =============================================================================

// SubmitPayment appends a customer-submitted payment in pending status.
// It does not affect the approval-gated balance until approved.
func SubmitPayment(record *billing.CustomerRecord, date billing.Date, amount decimal.Decimal, method, reference, notes string) (billing.Payment, error) {
	return appendPayment(record, date, amount, method, reference, notes, billing.StatusPending)
}

// RecordPayment appends an operator-recorded payment that is approved
// immediately (counter payments need no second approval).
func RecordPayment(record *billing.CustomerRecord, date billing.Date, amount decimal.Decimal, method, reference, notes string) (billing.Payment, error) {
	return appendPayment(record, date, amount, method, reference, notes, billing.StatusApproved)
}

func appendPayment(record *billing.CustomerRecord, date billing.Date, amount decimal.Decimal, method, reference, notes string, status billing.PaymentStatus) (billing.Payment, error) {
	if !amount.IsPositive() {
		return billing.Payment{}, billing.ErrNonPositiveAmount
	}
	if date.IsZero() {
		date = billing.Today()
	}
	payment := billing.Payment{
		ID:        uuid.NewString(),
		Date:      date,
		Amount:    amount,
		Method:    method,
		Reference: reference,
		Notes:     notes,
		Status:    status,
	}
	record.PaymentHistory = append(record.PaymentHistory, payment)
	return payment, nil
}

// ApprovePayment moves a pending payment to approved. Approved and rejected
// are terminal; legacy payments without a status cannot be transitioned.
func ApprovePayment(record *billing.CustomerRecord, paymentID string) error {
	return transitionPayment(record, paymentID, billing.StatusApproved)
}

// RejectPayment moves a pending payment to rejected.
func RejectPayment(record *billing.CustomerRecord, paymentID string) error {
	return transitionPayment(record, paymentID, billing.StatusRejected)
}

func transitionPayment(record *billing.CustomerRecord, paymentID string, to billing.PaymentStatus) error {
	for i, p := range record.PaymentHistory {
		if p.ID != paymentID {
			continue
		}
		if p.Status != billing.StatusPending {
			return &billing.StatusTransitionError{PaymentID: paymentID, From: p.Status, To: to}
		}
		record.PaymentHistory[i].Status = to
		return nil
	}
	return billing.ErrPaymentNotFound
}

// PendingPayments returns the payments awaiting approval, in recorded order.
func PendingPayments(record billing.CustomerRecord) []billing.Payment {
	var out []billing.Payment
	for _, p := range record.PaymentHistory {
		if p.Status == billing.StatusPending {
			out = append(out, p)
		}
	}
	return out
}
