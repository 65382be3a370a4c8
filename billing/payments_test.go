package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plank/rental-engine/billing"
)

func TestSumPayments_ApprovedOnly(t *testing.T) {
	payments := []billing.Payment{
		{ID: "p1", Amount: money("500"), Status: billing.StatusApproved},
		{ID: "p2", Amount: money("200"), Status: billing.StatusPending},
		{ID: "p3", Amount: money("50"), Status: billing.StatusRejected},
		{ID: "p4", Amount: money("25")}, // legacy, counts under every policy
	}

	total, diags := billing.SumPayments(payments, billing.ApprovedOnly)

	assert.True(t, total.Equal(money("525")), "got %s", total)
	assert.Empty(t, diags)
}

func TestSumPayments_IncludeAll(t *testing.T) {
	payments := []billing.Payment{
		{ID: "p1", Amount: money("500"), Status: billing.StatusApproved},
		{ID: "p2", Amount: money("200"), Status: billing.StatusPending},
		{ID: "p3", Amount: money("50"), Status: billing.StatusRejected},
	}

	total, _ := billing.SumPayments(payments, billing.IncludeAll)

	assert.True(t, total.Equal(money("750")), "got %s", total)
}

func TestSumPayments_NonPositiveAmounts_SkippedWithDiagnostic(t *testing.T) {
	// Malformed amounts decode to zero; they must be skipped, not fatal.
	payments := []billing.Payment{
		{ID: "p1", Amount: money("100"), Status: billing.StatusApproved},
		{ID: "p2", Amount: money("0"), Status: billing.StatusApproved},
		{ID: "p3", Amount: money("-40"), Status: billing.StatusApproved},
	}

	total, diags := billing.SumPayments(payments, billing.ApprovedOnly)

	assert.True(t, total.Equal(money("100")), "got %s", total)
	assert.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, billing.DiagMalformedAmount, d.Code)
	}
}

func TestSumPayments_Empty(t *testing.T) {
	total, diags := billing.SumPayments(nil, billing.ApprovedOnly)
	assert.True(t, total.IsZero())
	assert.Empty(t, diags)
}
