/*
Package billing implements the rent accrual and balance computation engine.

PURPOSE:
  Given an item rate table, a chronological list of rent/return events, a
  prior balance, and a payment history, compute the amount a customer
  currently owes. The engine is a pure function over an immutable
  CustomerRecord snapshot plus an as-of date: no global state, no lifecycle,
  no suspension points. Surrounding collaborators (storage, HTTP, rendering)
  feed it snapshots and consume its output.

KEY CONCEPTS IN THIS FILE (types.go):
  - Item: a rentable item with a daily rate
  - TransactionEvent: signed quantity delta on a date (positive = rented out,
    negative = returned)
  - Payment: a payment with an optional approval status
  - CustomerRecord: the full snapshot the engine consumes
  - Diagnostic: non-fatal data-quality report (engine never aborts on bad rows)

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money, floats only at DTO edges
  2. Derived balance: balance is always recomputed from the logs, never stored
  3. Tolerance: malformed rows are skipped with diagnostics, not errors

SEE ALSO:
  - accrual.go: the day-span accrual walk
  - balance.go: final balance composition
  - payments.go: payment aggregation policies
*/
package billing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ITEMS AND EVENTS
// =============================================================================

// Item is a rentable item with its configured daily rate.
// Unique by name within a customer.
type Item struct {
	Name      string          `json:"name"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}

// TransactionEvent records items moving in or out of a customer's possession.
// Qty > 0 means rented out ("Rent"), Qty < 0 means returned ("Return").
// Qty is never zero; zero-quantity events are rejected at the boundary.
type TransactionEvent struct {
	Date Date   `json:"date"`
	Item string `json:"item"`
	Qty  int    `json:"qty"`
}

// Action returns the human label used on statements.
func (e TransactionEvent) Action() string {
	if e.Qty < 0 {
		return "Return"
	}
	return "Rent"
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentStatus string

const (
	// StatusNone marks legacy payments recorded without an approval
	// workflow. They count unconditionally under every policy.
	StatusNone     PaymentStatus = ""
	StatusPending  PaymentStatus = "pending"
	StatusApproved PaymentStatus = "approved"
	StatusRejected PaymentStatus = "rejected"
)

type Payment struct {
	ID        string          `json:"id"`
	Date      Date            `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Status    PaymentStatus   `json:"status,omitempty"`
}

// =============================================================================
// CUSTOMER RECORD - The immutable snapshot the engine consumes
// =============================================================================

// CustomerRecord is the engine's input. Transactions and PaymentHistory are
// append-only logs from the engine's point of view; any edit/delete concern
// belongs to the surrounding application.
type CustomerRecord struct {
	ID              string             `json:"customer_id"`
	Name            string             `json:"name"`
	Mobile          string             `json:"mobile,omitempty"`
	Address         string             `json:"address,omitempty"`
	PreviousBalance decimal.Decimal    `json:"previous_balance"`
	Items           []Item             `json:"items"`
	Transactions    []TransactionEvent `json:"transactions"`
	PaymentHistory  []Payment          `json:"payment_history"`

	// Version supports optimistic concurrency in the repository layer.
	// The engine itself ignores it.
	Version int64 `json:"version,omitempty"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// snapshot a computation is reading.
func (c CustomerRecord) Clone() CustomerRecord {
	out := c
	out.Items = append([]Item(nil), c.Items...)
	out.Transactions = append([]TransactionEvent(nil), c.Transactions...)
	out.PaymentHistory = append([]Payment(nil), c.PaymentHistory...)
	return out
}

// =============================================================================
// DIAGNOSTICS - Non-fatal data-quality reports
// =============================================================================

type DiagnosticCode string

const (
	DiagMalformedDate   DiagnosticCode = "malformed_date"
	DiagMalformedAmount DiagnosticCode = "malformed_amount"
	DiagUnknownItem     DiagnosticCode = "unknown_item"
	DiagNegativeSpan    DiagnosticCode = "negative_span"
	DiagNegativeHolding DiagnosticCode = "negative_holding"
)

// Diagnostic reports a skipped or suspicious row. The computation that
// produced it still completed; diagnostics are for the caller's logs and UI.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Message string         `json:"message"`
}

func diagf(code DiagnosticCode, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// TOLERANT DECODING - Wire format to CustomerRecord
// =============================================================================

// rawCustomer mirrors the wire contract with loosely-typed rows so one bad
// transaction or payment cannot fail the whole record.
type rawCustomer struct {
	ID              string            `json:"customer_id"`
	Name            string            `json:"name"`
	Mobile          string            `json:"mobile"`
	Address         string            `json:"address"`
	PreviousBalance json.RawMessage   `json:"previous_balance"`
	RawItems        []json.RawMessage `json:"items"`
	Transactions    []json.RawMessage `json:"transactions"`
	PaymentHistory  []json.RawMessage `json:"payment_history"`
	Version         int64             `json:"version"`
}

type rawTransaction struct {
	Date string          `json:"date"`
	Item string          `json:"item"`
	Qty  json.RawMessage `json:"qty"`
}

type rawPayment struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	Amount    json.RawMessage `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	Status    string          `json:"status"`
}

// DecodeCustomer maps raw JSON to a CustomerRecord, skipping malformed
// transactions and payments with diagnostics. A hard error is returned only
// when the envelope itself is not valid JSON.
func DecodeCustomer(data []byte) (CustomerRecord, []Diagnostic, error) {
	var raw rawCustomer
	if err := json.Unmarshal(data, &raw); err != nil {
		return CustomerRecord{}, nil, fmt.Errorf("decode customer: %w", err)
	}

	var diags []Diagnostic
	rec := CustomerRecord{
		ID:              raw.ID,
		Name:            raw.Name,
		Mobile:          raw.Mobile,
		Address:         raw.Address,
		PreviousBalance: lenientDecimal(raw.PreviousBalance),
		Version:         raw.Version,
	}

	for _, ri := range raw.RawItems {
		item, ok := decodeItem(ri)
		if !ok {
			diags = append(diags, diagf(DiagMalformedAmount, "skipping malformed item row %s", compact(ri)))
			continue
		}
		rec.Items = append(rec.Items, item)
	}

	for _, rt := range raw.Transactions {
		var tx rawTransaction
		if err := json.Unmarshal(rt, &tx); err != nil {
			diags = append(diags, diagf(DiagMalformedDate, "skipping unreadable transaction %s", compact(rt)))
			continue
		}
		date, err := ParseDate(tx.Date)
		if err != nil {
			diags = append(diags, diagf(DiagMalformedDate, "skipping transaction with bad date %q for item %q", tx.Date, tx.Item))
			continue
		}
		qty, ok := lenientInt(tx.Qty)
		if !ok {
			diags = append(diags, diagf(DiagMalformedAmount, "skipping transaction with bad quantity for item %q on %s", tx.Item, date))
			continue
		}
		rec.Transactions = append(rec.Transactions, TransactionEvent{Date: date, Item: tx.Item, Qty: qty})
	}

	for _, rp := range raw.PaymentHistory {
		var p rawPayment
		if err := json.Unmarshal(rp, &p); err != nil {
			diags = append(diags, diagf(DiagMalformedAmount, "skipping unreadable payment %s", compact(rp)))
			continue
		}
		amount, err := decimal.NewFromString(strDecimal(p.Amount))
		if err != nil {
			diags = append(diags, diagf(DiagMalformedAmount, "skipping payment %q with bad amount", p.ID))
			continue
		}
		payment := Payment{
			ID:        p.ID,
			Amount:    amount,
			Method:    p.Method,
			Reference: p.Reference,
			Notes:     p.Notes,
			Status:    PaymentStatus(p.Status),
		}
		if p.Date != "" {
			if date, err := ParseDate(p.Date); err == nil {
				payment.Date = date
			} else {
				// Payment dates are informational; amount is what counts.
				diags = append(diags, diagf(DiagMalformedDate, "payment %q has bad date %q", p.ID, p.Date))
			}
		}
		rec.PaymentHistory = append(rec.PaymentHistory, payment)
	}

	return rec, diags, nil
}

// decodeItem accepts both {"name": ..., "daily_rate": ...} objects and the
// legacy ["name", rate] pair encoding.
func decodeItem(data json.RawMessage) (Item, bool) {
	var obj struct {
		Name      string          `json:"name"`
		DailyRate json.RawMessage `json:"daily_rate"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Name != "" {
		return Item{Name: obj.Name, DailyRate: lenientDecimal(obj.DailyRate)}, true
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) < 2 {
		return Item{}, false
	}
	var name string
	if err := json.Unmarshal(pair[0], &name); err != nil || name == "" {
		return Item{}, false
	}
	return Item{Name: name, DailyRate: lenientDecimal(pair[1])}, true
}

// lenientDecimal parses a JSON number or numeric string, zero on failure.
func lenientDecimal(data json.RawMessage) decimal.Decimal {
	d, err := decimal.NewFromString(strDecimal(data))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func lenientInt(data json.RawMessage) (int, bool) {
	d, err := decimal.NewFromString(strDecimal(data))
	if err != nil {
		return 0, false
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// strDecimal strips surrounding quotes so "12.5" and 12.5 parse alike.
func strDecimal(data json.RawMessage) string {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

func compact(data json.RawMessage) string {
	if len(data) > 80 {
		return string(data[:80]) + "..."
	}
	return string(data)
}
