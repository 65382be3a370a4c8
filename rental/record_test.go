package rental_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
)

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) billing.Date { return billing.NewDate(y, m, d) }

// =============================================================================
// TRANSACTION BOUNDARY VALIDATION
// =============================================================================

func TestAddTransaction_RejectsZeroQuantity(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", decimal.Zero)

	err := rental.AddTransaction(&record, date(2024, time.January, 1), "Plate", 0)

	assert.ErrorIs(t, err, billing.ErrZeroQuantity)
	assert.Empty(t, record.Transactions)
}

func TestAddTransaction_AppendsInRecordedOrder(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", decimal.Zero)
	day := date(2024, time.May, 1)

	require.NoError(t, rental.AddTransaction(&record, day, "Plate", 3))
	require.NoError(t, rental.AddTransaction(&record, day, "Plate", -1))

	require.Len(t, record.Transactions, 2)
	assert.Equal(t, 3, record.Transactions[0].Qty)
	assert.Equal(t, -1, record.Transactions[1].Qty)
}

func TestAddItem_RepricesExistingItem(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", decimal.Zero)

	require.NoError(t, rental.AddItem(&record, "Plate", money("50")))
	require.NoError(t, rental.AddItem(&record, "Plate", money("60")))

	require.Len(t, record.Items, 1)
	assert.True(t, record.Items[0].DailyRate.Equal(money("60")))
}

// =============================================================================
// PAYMENT STATE MACHINE
// =============================================================================

func TestPaymentWorkflow_SubmitApprove(t *testing.T) {
	// GIVEN: a customer-submitted payment (pending)
	// WHEN: an admin approves it
	// THEN: it starts counting under the approved-only policy

	record := rental.NewCustomer("", "Ravi", "", "", money("1000"))

	payment, err := rental.SubmitPayment(&record, date(2024, time.June, 1), money("400"), rental.MethodUPI, "txn-1", "")
	require.NoError(t, err)
	require.Equal(t, billing.StatusPending, payment.Status)

	before := billing.Calculate(record, billing.Options{Policy: billing.ApprovedOnly})
	assert.True(t, before.SignedBalance.Equal(money("1000")), "pending must not reduce balance")

	require.NoError(t, rental.ApprovePayment(&record, payment.ID))

	after := billing.Calculate(record, billing.Options{Policy: billing.ApprovedOnly})
	assert.True(t, after.SignedBalance.Equal(money("600")), "got %s", after.SignedBalance)
}

func TestPaymentWorkflow_RejectIsTerminal(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", money("500"))

	payment, err := rental.SubmitPayment(&record, billing.Date{}, money("500"), rental.MethodCash, "", "")
	require.NoError(t, err)
	require.NoError(t, rental.RejectPayment(&record, payment.ID))

	// Rejected is terminal: no approval afterwards.
	err = rental.ApprovePayment(&record, payment.ID)
	assert.ErrorIs(t, err, billing.ErrInvalidStatusTransition)

	result := billing.Calculate(record, billing.Options{Policy: billing.ApprovedOnly})
	assert.True(t, result.SignedBalance.Equal(money("500")))
}

func TestPaymentWorkflow_ApproveTwiceFails(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", money("100"))
	payment, _ := rental.SubmitPayment(&record, billing.Date{}, money("100"), rental.MethodCash, "", "")

	require.NoError(t, rental.ApprovePayment(&record, payment.ID))
	err := rental.ApprovePayment(&record, payment.ID)

	var transition *billing.StatusTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, billing.StatusApproved, transition.From)
}

func TestPaymentWorkflow_UnknownPaymentID(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", decimal.Zero)

	err := rental.ApprovePayment(&record, "nope")

	assert.ErrorIs(t, err, billing.ErrPaymentNotFound)
}

func TestSubmitPayment_RejectsNonPositiveAmount(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", decimal.Zero)

	_, err := rental.SubmitPayment(&record, billing.Date{}, money("0"), rental.MethodCash, "", "")

	assert.ErrorIs(t, err, billing.ErrNonPositiveAmount)
}

func TestRecordPayment_IsImmediatelyApproved(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", money("300"))

	payment, err := rental.RecordPayment(&record, billing.Date{}, money("300"), rental.MethodCash, "", "counter")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusApproved, payment.Status)

	result := billing.Calculate(record, billing.Options{Policy: billing.ApprovedOnly})
	assert.True(t, result.SignedBalance.IsZero())
}

func TestPendingPayments_FiltersByStatus(t *testing.T) {
	record := rental.NewCustomer("", "Ravi", "", "", decimal.Zero)
	p1, _ := rental.SubmitPayment(&record, billing.Date{}, money("10"), rental.MethodCash, "", "")
	_, _ = rental.RecordPayment(&record, billing.Date{}, money("20"), rental.MethodCash, "", "")
	p3, _ := rental.SubmitPayment(&record, billing.Date{}, money("30"), rental.MethodUPI, "", "")

	pending := rental.PendingPayments(record)

	require.Len(t, pending, 2)
	assert.Equal(t, p1.ID, pending[0].ID)
	assert.Equal(t, p3.ID, pending[1].ID)
}

// =============================================================================
// STATUS CLASSIFICATION
// =============================================================================

func TestClassifyCustomer(t *testing.T) {
	asOf := date(2024, time.June, 1)

	unpaid := rental.NewCustomer("", "A", "", "", money("100"))
	assert.Equal(t, rental.StatusUnpaid, rental.ClassifyCustomer(unpaid, billing.ApprovedOnly, asOf))

	partial := rental.NewCustomer("", "B", "", "", money("100"))
	_, err := rental.RecordPayment(&partial, asOf, money("40"), rental.MethodCash, "", "")
	require.NoError(t, err)
	assert.Equal(t, rental.StatusPartial, rental.ClassifyCustomer(partial, billing.ApprovedOnly, asOf))

	paid := rental.NewCustomer("", "C", "", "", money("100"))
	_, err = rental.RecordPayment(&paid, asOf, money("100"), rental.MethodCash, "", "")
	require.NoError(t, err)
	assert.Equal(t, rental.StatusPaid, rental.ClassifyCustomer(paid, billing.ApprovedOnly, asOf))

	// Advance shows as paid, never as a negative due.
	advance := rental.NewCustomer("", "D", "", "", money("100"))
	_, err = rental.RecordPayment(&advance, asOf, money("250"), rental.MethodCash, "", "")
	require.NoError(t, err)
	assert.Equal(t, rental.StatusPaid, rental.ClassifyCustomer(advance, billing.ApprovedOnly, asOf))
}

func TestClassifyBalance_MatchesClassifyCustomer(t *testing.T) {
	// Dashboard rows classify a result they already computed; both paths
	// must bucket identically.

	asOf := date(2024, time.June, 1)
	record := rental.NewCustomer("", "Ravi", "", "", money("100"))
	_, err := rental.RecordPayment(&record, asOf, money("40"), rental.MethodCash, "", "")
	require.NoError(t, err)

	result := billing.Calculate(record, billing.Options{
		Mode:   billing.ModeLive,
		Policy: billing.ApprovedOnly,
		AsOf:   asOf,
	})

	assert.Equal(t,
		rental.ClassifyCustomer(record, billing.ApprovedOnly, asOf),
		rental.ClassifyBalance(result))
	assert.Equal(t, rental.StatusPartial, rental.ClassifyBalance(result))
}
