/*
statement.go - Finalized bill assembly

PURPOSE:
  Builds the data a bill renderer (PDF, print, share) consumes. Rendering
  itself is a collaborator's concern; this file decides the numbers.

CLOSED LEDGER, BY DESIGN:
  Statements accrue in closed mode: a finalized bill reflects recorded
  activity only and never charges for the open span after the last event.
  Dashboards use live mode instead, so the on-screen balance and a bill
  printed the same day can legitimately differ once items stay out past the
  last recorded transaction. That divergence is intentional and documented;
  the signed AmountDue on the statement is the financial figure, never the
  display clamp.
*/
package rental

import (
	"github.com/shopspring/decimal"

	"github.com/plank/rental-engine/billing"
)

// =============================================================================
// STATEMENT TYPES
// =============================================================================

// StatementLine is one chronological rent/return row.
type StatementLine struct {
	Date   billing.Date    `json:"date"`
	Item   string          `json:"item"`
	Qty    int             `json:"qty"` // absolute quantity, action carries the sign
	Action string          `json:"action"`
	Rate   decimal.Decimal `json:"daily_rate"`
}

// Statement is the finalized bill document data.
type Statement struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Mobile       string          `json:"mobile,omitempty"`
	Address      string          `json:"address,omitempty"`
	GeneratedOn  billing.Date    `json:"generated_on"`

	Lines     []StatementLine       `json:"lines"`
	Breakdown []billing.ItemAccrual `json:"breakdown"`

	PreviousBalance  decimal.Decimal `json:"previous_balance"`
	RentalCharges    decimal.Decimal `json:"rental_charges"`
	PaymentsReceived decimal.Decimal `json:"payments_received"`

	// AmountDue is signed: negative means the customer holds an advance.
	AmountDue decimal.Decimal `json:"amount_due"`

	// AdvanceHeld is the positive advance when AmountDue is negative,
	// zero otherwise. Renderers show one of the two.
	AdvanceHeld decimal.Decimal `json:"advance_held"`

	Diagnostics []billing.Diagnostic `json:"diagnostics,omitempty"`
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// BuildStatement assembles a finalized bill for the record as of the given
// date. The payment policy follows the caller: web statements net only
// approved payments, offline ledgers net everything.
func BuildStatement(record billing.CustomerRecord, policy billing.PaymentPolicy, generatedOn billing.Date) Statement {
	if generatedOn.IsZero() {
		generatedOn = billing.Today()
	}

	result := billing.Calculate(record, billing.Options{
		Mode:          billing.ModeClosed,
		Policy:        policy,
		AsOf:          generatedOn,
		WithBreakdown: true,
	})

	rates := billing.NewRateTable(record.Items)
	lines := make([]StatementLine, 0, len(record.Transactions))
	for _, event := range billing.Normalize(record.Transactions) {
		qty := event.Qty
		if qty < 0 {
			qty = -qty
		}
		lines = append(lines, StatementLine{
			Date:   event.Date,
			Item:   event.Item,
			Qty:    qty,
			Action: event.Action(),
			Rate:   rates.Rate(event.Item),
		})
	}

	st := Statement{
		CustomerID:       record.ID,
		CustomerName:     record.Name,
		Mobile:           record.Mobile,
		Address:          record.Address,
		GeneratedOn:      generatedOn,
		Lines:            lines,
		Breakdown:        result.Breakdown,
		PreviousBalance:  record.PreviousBalance,
		RentalCharges:    result.AccruedRent,
		PaymentsReceived: result.PaymentsSum,
		AmountDue:        result.SignedBalance,
		AdvanceHeld:      decimal.Zero,
		Diagnostics:      result.Diagnostics,
	}
	if st.AmountDue.IsNegative() {
		st.AdvanceHeld = st.AmountDue.Neg()
	}
	return st
}
