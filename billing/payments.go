package billing

import "github.com/shopspring/decimal"

// =============================================================================
// PAYMENT AGGREGATOR - sum a payment history under an inclusion policy
// =============================================================================

// PaymentPolicy selects which payments reduce the balance.
type PaymentPolicy string

const (
	// IncludeAll counts every payment regardless of (or absent) status.
	// This is the offline-ledger behavior, where no approval workflow
	// exists.
	IncludeAll PaymentPolicy = "all"

	// ApprovedOnly counts only payments explicitly marked approved.
	// Pending and rejected payments must not reduce the balance until an
	// administrator approves them.
	ApprovedOnly PaymentPolicy = "approved_only"
)

// Counts reports whether a payment with the given status is included under
// the policy. A payment recorded without any status predates the approval
// workflow and counts unconditionally.
func (p PaymentPolicy) Counts(status PaymentStatus) bool {
	if status == StatusNone {
		return true
	}
	if p == ApprovedOnly {
		return status == StatusApproved
	}
	return true
}

// SumPayments totals the payments admitted by the policy. Non-positive
// amounts are data-quality noise (malformed rows decode to zero) and are
// skipped with a diagnostic rather than failing the computation.
func SumPayments(payments []Payment, policy PaymentPolicy) (decimal.Decimal, []Diagnostic) {
	total := decimal.Zero
	var diags []Diagnostic
	for _, p := range payments {
		if !policy.Counts(p.Status) {
			continue
		}
		if !p.Amount.IsPositive() {
			diags = append(diags, diagf(DiagMalformedAmount, "payment %q has non-positive amount %s; skipped", p.ID, p.Amount))
			continue
		}
		total = total.Add(p.Amount)
	}
	return total, diags
}
