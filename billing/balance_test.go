package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plank/rental-engine/billing"
)

// =============================================================================
// BALANCE COMPOSITION
// =============================================================================

func TestCalculate_NoTransactions_BalanceIsPreviousMinusPayments(t *testing.T) {
	// GIVEN: previousBalance 1000, payments [500 approved, 200 pending],
	//        no transactions
	// WHEN: calculating with ApprovedOnly
	// THEN: balance = 1000 - 500 = 500

	record := billing.CustomerRecord{
		ID:              "cust-1",
		PreviousBalance: money("1000"),
		PaymentHistory: []billing.Payment{
			{ID: "p1", Amount: money("500"), Status: billing.StatusApproved},
			{ID: "p2", Amount: money("200"), Status: billing.StatusPending},
		},
	}

	result := billing.Calculate(record, billing.Options{
		Mode:   billing.ModeLive,
		Policy: billing.ApprovedOnly,
		AsOf:   date(2024, time.June, 1),
	})

	assert.True(t, result.AccruedRent.IsZero())
	assert.True(t, result.SignedBalance.Equal(money("500")), "got %s", result.SignedBalance)
}

func TestCalculate_IncludeAll_CountsPendingAndUnstatused(t *testing.T) {
	// GIVEN: the same history under the offline-ledger policy
	// WHEN: calculating with IncludeAll
	// THEN: pending and legacy (no status) payments also reduce the balance

	record := billing.CustomerRecord{
		PreviousBalance: money("1000"),
		PaymentHistory: []billing.Payment{
			{ID: "p1", Amount: money("500"), Status: billing.StatusApproved},
			{ID: "p2", Amount: money("200"), Status: billing.StatusPending},
			{ID: "p3", Amount: money("100")}, // legacy, no status
		},
	}

	result := billing.Calculate(record, billing.Options{Policy: billing.IncludeAll})

	assert.True(t, result.SignedBalance.Equal(money("200")), "got %s", result.SignedBalance)
}

func TestCalculate_RejectedPayments_NeverCountUnderApprovedOnly(t *testing.T) {
	record := billing.CustomerRecord{
		PreviousBalance: money("300"),
		PaymentHistory: []billing.Payment{
			{ID: "p1", Amount: money("300"), Status: billing.StatusRejected},
		},
	}

	result := billing.Calculate(record, billing.Options{Policy: billing.ApprovedOnly})

	assert.True(t, result.SignedBalance.Equal(money("300")), "got %s", result.SignedBalance)
}

func TestCalculate_Idempotent(t *testing.T) {
	// GIVEN: one snapshot and a fixed as-of date
	// WHEN: calculating twice
	// THEN: results are identical and the record is untouched

	record := billing.CustomerRecord{
		PreviousBalance: money("100"),
		Items:           []billing.Item{{Name: "Plate", DailyRate: money("50")}},
		Transactions: []billing.TransactionEvent{
			{Date: date(2024, time.January, 1), Item: "Plate", Qty: 2},
		},
		PaymentHistory: []billing.Payment{
			{ID: "p1", Amount: money("150"), Status: billing.StatusApproved},
		},
	}
	opts := billing.Options{
		Mode:          billing.ModeLive,
		Policy:        billing.ApprovedOnly,
		AsOf:          date(2024, time.January, 11),
		WithBreakdown: true,
	}

	first := billing.Calculate(record, opts)
	second := billing.Calculate(record, opts)

	assert.True(t, first.SignedBalance.Equal(second.SignedBalance))
	assert.True(t, first.AccruedRent.Equal(second.AccruedRent))
	assert.Equal(t, len(first.Breakdown), len(second.Breakdown))
	assert.Len(t, record.Transactions, 1, "snapshot must not be mutated")

	// 100 + 10*2*50 - 150 = 950
	assert.True(t, first.SignedBalance.Equal(money("950")), "got %s", first.SignedBalance)
}

// =============================================================================
// SIGNED BALANCE VS DISPLAY CLAMP
// =============================================================================

func TestCalculate_Overpayment_SignedNegativeDisplayZero(t *testing.T) {
	// GIVEN: payments exceeding everything owed
	// WHEN: calculating
	// THEN: SignedBalance is negative (customer advance) while DisplayDue
	//       clamps to zero; the clamp never leaks into the signed figure

	record := billing.CustomerRecord{
		PreviousBalance: money("100"),
		PaymentHistory: []billing.Payment{
			{ID: "p1", Amount: money("400"), Status: billing.StatusApproved},
		},
	}

	result := billing.Calculate(record, billing.Options{Policy: billing.ApprovedOnly})

	assert.True(t, result.SignedBalance.Equal(money("-300")), "got %s", result.SignedBalance)
	assert.True(t, result.DisplayDue.IsZero(), "got %s", result.DisplayDue)
}

func TestCalculate_SettledBalance_BothZero(t *testing.T) {
	record := billing.CustomerRecord{
		PreviousBalance: money("250"),
		PaymentHistory: []billing.Payment{
			{ID: "p1", Amount: money("250"), Status: billing.StatusApproved},
		},
	}

	result := billing.Calculate(record, billing.Options{Policy: billing.ApprovedOnly})

	assert.True(t, result.SignedBalance.IsZero())
	assert.True(t, result.DisplayDue.IsZero())
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestCalculate_ZeroOptions_DefaultToLiveApprovedToday(t *testing.T) {
	// GIVEN: an item still held with no explicit options
	// WHEN: calculating with the zero Options value
	// THEN: live mode projects to today under the approved-only policy

	record := billing.CustomerRecord{
		Items: []billing.Item{{Name: "Plate", DailyRate: money("10")}},
		Transactions: []billing.TransactionEvent{
			{Date: billing.Today().AddDays(-3), Item: "Plate", Qty: 1},
		},
	}

	result := billing.Calculate(record, billing.Options{})

	require.Equal(t, billing.ModeLive, result.Mode)
	require.Equal(t, billing.ApprovedOnly, result.Policy)
	assert.True(t, result.AccruedRent.Equal(money("30")), "got %s", result.AccruedRent)
}
