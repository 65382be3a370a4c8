/*
balance.go - Balance composition

PURPOSE:
  Composes the rate table, accrual walk, payment aggregation, and previous
  balance into the final amount owed. This is the single entry point the
  surrounding application calls; both the offline-desktop and the
  approval-gated web behaviors of the original system are reachable through
  the two orthogonal strategy parameters (AccrualMode, PaymentPolicy) instead
  of divergent reimplementations.

SIGNED VS DISPLAY:
  SignedBalance is the financial truth: positive = owed, negative = customer
  credit/advance, zero = settled. DisplayDue = max(signed, 0) exists only for
  UI surfaces that show "amount due" and must never feed bill totals or
  payment-suggestion logic. The two are separate fields so UI clamping cannot
  leak into financial math.

SEE ALSO:
  - accrual.go: the accrual walk
  - payments.go: inclusion policies
*/
package billing

import "github.com/shopspring/decimal"

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options selects the computation strategy. The caller chooses; the engine
// never hard-codes a mode or policy.
type Options struct {
	Mode   AccrualMode
	Policy PaymentPolicy

	// AsOf bounds live-mode projection. Zero value means today.
	AsOf Date

	// WithBreakdown requests the per-item accrual lines for rendering.
	WithBreakdown bool
}

func (o Options) normalized() Options {
	if o.Mode == "" {
		o.Mode = ModeLive
	}
	if o.Policy == "" {
		o.Policy = ApprovedOnly
	}
	if o.AsOf.IsZero() {
		o.AsOf = Today()
	}
	return o
}

// BalanceResult is the engine's output contract.
type BalanceResult struct {
	// SignedBalance is the raw financial balance. Negative means the
	// customer holds a credit/advance.
	SignedBalance decimal.Decimal `json:"signed_balance"`

	// DisplayDue is max(SignedBalance, 0). UI-only.
	DisplayDue decimal.Decimal `json:"display_due"`

	AccruedRent  decimal.Decimal `json:"accrued_rent"`
	PaymentsSum  decimal.Decimal `json:"payments_sum"`
	Breakdown    []ItemAccrual   `json:"per_item_breakdown,omitempty"`
	Holdings     map[string]int  `json:"holdings,omitempty"`
	Diagnostics  []Diagnostic    `json:"diagnostics,omitempty"`
	Mode         AccrualMode     `json:"mode"`
	Policy       PaymentPolicy   `json:"policy"`
	AsOf         Date            `json:"as_of"`
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculate computes the balance for a customer snapshot:
//
//	signed = previousBalance + accruedRent - paymentsSum(policy)
//
// It is a pure function: the same snapshot, options, and as-of date always
// produce the same result, and the record is never mutated.
func Calculate(record CustomerRecord, opts Options) BalanceResult {
	opts = opts.normalized()

	engine := AccrualEngine{Rates: NewRateTable(record.Items)}
	accrual := engine.Accrue(record.Transactions, opts.Mode, opts.AsOf)

	paid, payDiags := SumPayments(record.PaymentHistory, opts.Policy)

	signed := record.PreviousBalance.Add(accrual.Total).Sub(paid)

	result := BalanceResult{
		SignedBalance: signed,
		DisplayDue:    clampDue(signed),
		AccruedRent:   accrual.Total,
		PaymentsSum:   paid,
		Holdings:      accrual.Holdings,
		Diagnostics:   append(accrual.Diagnostics, payDiags...),
		Mode:          opts.Mode,
		Policy:        opts.Policy,
		AsOf:          opts.AsOf,
	}
	if opts.WithBreakdown {
		result.Breakdown = accrual.Breakdown
	}
	return result
}

// clampDue floors a signed balance at zero for display surfaces.
func clampDue(signed decimal.Decimal) decimal.Decimal {
	if signed.IsNegative() {
		return decimal.Zero
	}
	return signed
}
