package billing

// =============================================================================
// POSSESSION TRACKER - signed running quantity held per item
// =============================================================================

// PossessionTracker replays transaction deltas to maintain the net quantity
// of each rated item currently in the customer's possession. Quantities start
// at zero for every item in the rate table; events for unrated items are
// no-ops.
//
// Quantity may legitimately go negative when recorded returns exceed recorded
// rentals (upstream data-quality issue). The tracker passes the negative
// value through unchanged for transparency; the accrual walk simply treats it
// as "not currently held".
type PossessionTracker struct {
	rates RateTable
	held  map[string]int
}

func NewPossessionTracker(rates RateTable) *PossessionTracker {
	held := make(map[string]int, rates.Len())
	for _, name := range rates.Names() {
		held[name] = 0
	}
	return &PossessionTracker{rates: rates, held: held}
}

// Apply adds the event's quantity delta to the running count.
// Events for items not in the rate table are ignored.
func (pt *PossessionTracker) Apply(event TransactionEvent) {
	if !pt.rates.Knows(event.Item) {
		return
	}
	pt.held[event.Item] += event.Qty
}

// Held returns the signed quantity currently held for the item.
func (pt *PossessionTracker) Held(itemName string) int {
	return pt.held[itemName]
}

// Holdings returns a copy of the current per-item quantities.
func (pt *PossessionTracker) Holdings() map[string]int {
	out := make(map[string]int, len(pt.held))
	for name, qty := range pt.held {
		out[name] = qty
	}
	return out
}
