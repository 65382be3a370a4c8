/*
accrual.go - The day-span accrual walk

PURPOSE:
  Computes rent accrued by replaying the normalized event sequence against a
  possession tracker. Rent for a span is days * heldQuantity * dailyRate,
  summed per item, for every span where the held quantity is positive.

TWO MODES:
  ModeClosed: accrue strictly between recorded events. No projection past the
              last event. Used for finalized bill documents - a printed bill
              never charges for days after the last recorded activity.
  ModeLive:   additionally project the open span from the last event to an
              explicit as-of date. Used for "current balance" dashboards and
              payment-suggestion defaults.

  The mode is selected by the caller per computation. It is never hard-coded.

EDGE BEHAVIOR:
  - Empty event list: accrued rent is zero.
  - Unknown items: contribute nothing, reported once per item as a diagnostic.
  - Negative day spans (out-of-order input that bypassed normalization, or an
    as-of date before the last event): clamped to zero days, never negative
    rent.
  - Negative held quantity: excluded from accrual, reported as a diagnostic,
    passed through for debugging.

SEE ALSO:
  - normalize.go: the ordering guarantee this walk depends on
  - possession.go: the running quantity state
  - balance.go: composition with payments and previous balance
*/
package billing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCRUAL MODE
// =============================================================================

type AccrualMode string

const (
	// ModeClosed accrues only between recorded events.
	ModeClosed AccrualMode = "closed"
	// ModeLive also accrues the open span from the last event to the
	// as-of date.
	ModeLive AccrualMode = "live"
)

// =============================================================================
// RESULTS
// =============================================================================

// ItemAccrual is the per-item breakdown line rendered on bills.
// DaysInWindow counts calendar days in spans where the item was held;
// Subtotal is the quantity-weighted rent and is the authoritative figure.
type ItemAccrual struct {
	Item         string          `json:"item"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	DaysInWindow int             `json:"days_in_window"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// AccrualResult is the output of one accrual computation.
type AccrualResult struct {
	Total       decimal.Decimal `json:"total"`
	Breakdown   []ItemAccrual   `json:"breakdown"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`

	// Holdings is the per-item quantity after the last event, useful for
	// "currently held" displays. Negative values are passed through.
	Holdings map[string]int `json:"holdings,omitempty"`
}

// =============================================================================
// ACCRUAL ENGINE
// =============================================================================

// AccrualEngine walks a normalized event sequence and accrues rent per item.
type AccrualEngine struct {
	Rates RateTable
}

// Accrue computes rent for the given events.
//
// Algorithm:
//  1. Normalize events (stable sort by date).
//  2. Replay each event into the possession tracker.
//  3. After event i, accrue days * qty * rate for every positively-held item
//     over the span to event i+1 - or, in live mode, over the open span from
//     the last event to asOf (clamped at zero).
func (e AccrualEngine) Accrue(events []TransactionEvent, mode AccrualMode, asOf Date) AccrualResult {
	result := AccrualResult{Total: decimal.Zero}

	normalized := Normalize(events)
	if len(normalized) == 0 {
		return result
	}

	tracker := NewPossessionTracker(e.Rates)
	totals := make(map[string]*ItemAccrual)
	unknownSeen := make(map[string]bool)

	for i, event := range normalized {
		if !e.Rates.Knows(event.Item) && !unknownSeen[event.Item] {
			unknownSeen[event.Item] = true
			result.Diagnostics = append(result.Diagnostics,
				diagf(DiagUnknownItem, "item %q has no configured rate; its transactions accrue no rent", event.Item))
		}

		tracker.Apply(event)

		var days int
		switch {
		case i < len(normalized)-1:
			days = event.Date.DaysUntil(normalized[i+1].Date)
		case mode == ModeLive:
			days = event.Date.DaysUntil(asOf)
		default:
			continue
		}

		if days < 0 {
			// Normalization makes this impossible between events; an as-of
			// date before the last event lands here too. Never subtract rent.
			result.Diagnostics = append(result.Diagnostics,
				diagf(DiagNegativeSpan, "clamped negative %d-day span after %s to zero", days, event.Date))
			continue
		}
		if days == 0 {
			continue
		}

		for item, qty := range tracker.Holdings() {
			if qty <= 0 {
				continue
			}
			rate := e.Rates.Rate(item)
			line := totals[item]
			if line == nil {
				line = &ItemAccrual{Item: item, DailyRate: rate, Subtotal: decimal.Zero}
				totals[item] = line
			}
			line.DaysInWindow += days
			line.Subtotal = line.Subtotal.Add(rate.Mul(decimal.NewFromInt(int64(days * qty))))
		}
	}

	result.Holdings = tracker.Holdings()
	for item, qty := range result.Holdings {
		if qty < 0 {
			result.Diagnostics = append(result.Diagnostics,
				diagf(DiagNegativeHolding, "item %q nets to %d after replay; returns exceed recorded rentals", item, qty))
		}
	}

	items := make([]string, 0, len(totals))
	for item := range totals {
		items = append(items, item)
	}
	sort.Strings(items)
	for _, item := range items {
		line := totals[item]
		result.Breakdown = append(result.Breakdown, *line)
		result.Total = result.Total.Add(line.Subtotal)
	}

	return result
}
