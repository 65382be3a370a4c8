package billing

import "github.com/shopspring/decimal"

// =============================================================================
// RATE TABLE - item name to daily rental rate
// =============================================================================

// RateTable maps item names to daily rental rates. Lookups never error:
// unknown items rate at zero, so a transaction referencing an item absent
// from the customer's item list contributes nothing to accrual.
type RateTable struct {
	rates map[string]decimal.Decimal
}

func NewRateTable(items []Item) RateTable {
	rates := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		if item.DailyRate.IsNegative() {
			// Invalid rate is treated as no rate.
			rates[item.Name] = decimal.Zero
			continue
		}
		rates[item.Name] = item.DailyRate
	}
	return RateTable{rates: rates}
}

// Rate returns the configured daily rate, or zero for unknown items.
func (rt RateTable) Rate(itemName string) decimal.Decimal {
	return rt.rates[itemName]
}

// Knows reports whether the item is priced in this table.
func (rt RateTable) Knows(itemName string) bool {
	_, ok := rt.rates[itemName]
	return ok
}

// Names returns all priced item names. Order is unspecified.
func (rt RateTable) Names() []string {
	names := make([]string, 0, len(rt.rates))
	for name := range rt.rates {
		names = append(names, name)
	}
	return names
}

func (rt RateTable) Len() int { return len(rt.rates) }
