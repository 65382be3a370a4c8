package billing

import "sort"

// =============================================================================
// TRANSACTION NORMALIZER - deterministic chronological ordering
// =============================================================================

// Normalize returns the events sorted ascending by date. The sort is stable:
// events sharing a date keep their recorded relative order. Same-day actions
// must replay in the order they were recorded, because a later same-day
// return depends on the earlier same-day rent for a correct running quantity.
// This determinism is the load-bearing correctness property of the engine.
//
// The input slice is not modified.
func Normalize(events []TransactionEvent) []TransactionEvent {
	out := append([]TransactionEvent(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
