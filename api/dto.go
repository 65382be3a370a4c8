/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the domain model from the API contract.
  Money crosses the wire as float64 here and only here; everything behind
  the handlers stays decimal.

NAMING CONVENTION:
  - *DTO: response types
  - *Request: request body types
*/
package api

import (
	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
)

// =============================================================================
// CUSTOMERS
// =============================================================================

// CustomerSummaryDTO is the dashboard row.
type CustomerSummaryDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Mobile     string  `json:"mobile,omitempty"`
	DisplayDue float64 `json:"display_due"`
	Status     string  `json:"status"`
}

// CustomerDTO is the full record view.
type CustomerDTO struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Mobile          string           `json:"mobile,omitempty"`
	Address         string           `json:"address,omitempty"`
	PreviousBalance float64          `json:"previous_balance"`
	Items           []ItemDTO        `json:"items"`
	Transactions    []TransactionDTO `json:"transactions"`
	PaymentHistory  []PaymentDTO     `json:"payment_history"`
	Version         int64            `json:"version"`
}

type ItemDTO struct {
	Name      string  `json:"name"`
	DailyRate float64 `json:"daily_rate"`
}

type TransactionDTO struct {
	Date   string `json:"date"`
	Item   string `json:"item"`
	Qty    int    `json:"qty"`
	Action string `json:"action"`
}

type PaymentDTO struct {
	ID        string  `json:"id"`
	Date      string  `json:"date,omitempty"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method,omitempty"`
	Reference string  `json:"reference,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// PendingPaymentDTO is a queue row for the admin approval screen.
type PendingPaymentDTO struct {
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	Payment      PaymentDTO `json:"payment"`
}

type CreateCustomerRequest struct {
	ID              string    `json:"id,omitempty"`
	Name            string    `json:"name"`
	Mobile          string    `json:"mobile,omitempty"`
	Address         string    `json:"address,omitempty"`
	PreviousBalance float64   `json:"previous_balance,omitempty"`
	Items           []ItemDTO `json:"items,omitempty"`
}

type AddTransactionRequest struct {
	Date string `json:"date"`
	Item string `json:"item"`
	Qty  int    `json:"qty"`
}

type SubmitPaymentRequest struct {
	Date      string  `json:"date,omitempty"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method,omitempty"`
	Reference string  `json:"reference,omitempty"`
	Notes     string  `json:"notes,omitempty"`

	// Approved marks an operator-recorded payment that needs no approval.
	// Customer submissions leave it false and enter the pending queue.
	Approved bool `json:"approved,omitempty"`
}

// =============================================================================
// BALANCE AND STATEMENT
// =============================================================================

type BalanceDTO struct {
	CustomerID    string           `json:"customer_id"`
	SignedBalance float64          `json:"signed_balance"`
	DisplayDue    float64          `json:"display_due"`
	AccruedRent   float64          `json:"accrued_rent"`
	PaymentsSum   float64          `json:"payments_sum"`
	Breakdown     []BreakdownDTO   `json:"per_item_breakdown,omitempty"`
	Holdings      map[string]int   `json:"holdings,omitempty"`
	Diagnostics   []DiagnosticDTO  `json:"diagnostics,omitempty"`
	Mode          string           `json:"mode"`
	Policy        string           `json:"policy"`
	AsOf          string           `json:"as_of"`
}

type BreakdownDTO struct {
	Item         string  `json:"item"`
	DailyRate    float64 `json:"daily_rate"`
	DaysInWindow int     `json:"days_in_window"`
	Subtotal     float64 `json:"subtotal"`
}

type DiagnosticDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatementDTO struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Mobile       string  `json:"mobile,omitempty"`
	Address      string  `json:"address,omitempty"`
	GeneratedOn  string  `json:"generated_on"`

	Lines     []StatementLineDTO `json:"lines"`
	Breakdown []BreakdownDTO     `json:"breakdown"`

	PreviousBalance  float64 `json:"previous_balance"`
	RentalCharges    float64 `json:"rental_charges"`
	PaymentsReceived float64 `json:"payments_received"`
	AmountDue        float64 `json:"amount_due"`
	AdvanceHeld      float64 `json:"advance_held"`
}

type StatementLineDTO struct {
	Date   string  `json:"date"`
	Item   string  `json:"item"`
	Qty    int     `json:"qty"`
	Action string  `json:"action"`
	Rate   float64 `json:"daily_rate"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCustomerDTO(record billing.CustomerRecord) CustomerDTO {
	dto := CustomerDTO{
		ID:              record.ID,
		Name:            record.Name,
		Mobile:          record.Mobile,
		Address:         record.Address,
		PreviousBalance: toFloat(record.PreviousBalance),
		Items:           []ItemDTO{},
		Transactions:    []TransactionDTO{},
		PaymentHistory:  []PaymentDTO{},
		Version:         record.Version,
	}
	for _, item := range record.Items {
		dto.Items = append(dto.Items, ItemDTO{Name: item.Name, DailyRate: toFloat(item.DailyRate)})
	}
	for _, event := range record.Transactions {
		dto.Transactions = append(dto.Transactions, TransactionDTO{
			Date:   event.Date.String(),
			Item:   event.Item,
			Qty:    event.Qty,
			Action: event.Action(),
		})
	}
	for _, p := range record.PaymentHistory {
		dto.PaymentHistory = append(dto.PaymentHistory, toPaymentDTO(p))
	}
	return dto
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:        p.ID,
		Amount:    toFloat(p.Amount),
		Method:    p.Method,
		Reference: p.Reference,
		Notes:     p.Notes,
		Status:    string(p.Status),
	}
	if !p.Date.IsZero() {
		dto.Date = p.Date.String()
	}
	return dto
}

func toBalanceDTO(customerID string, result billing.BalanceResult) BalanceDTO {
	dto := BalanceDTO{
		CustomerID:    customerID,
		SignedBalance: toFloat(result.SignedBalance),
		DisplayDue:    toFloat(result.DisplayDue),
		AccruedRent:   toFloat(result.AccruedRent),
		PaymentsSum:   toFloat(result.PaymentsSum),
		Holdings:      result.Holdings,
		Mode:          string(result.Mode),
		Policy:        string(result.Policy),
		AsOf:          result.AsOf.String(),
	}
	for _, line := range result.Breakdown {
		dto.Breakdown = append(dto.Breakdown, toBreakdownDTO(line))
	}
	for _, d := range result.Diagnostics {
		dto.Diagnostics = append(dto.Diagnostics, DiagnosticDTO{Code: string(d.Code), Message: d.Message})
	}
	return dto
}

func toBreakdownDTO(line billing.ItemAccrual) BreakdownDTO {
	return BreakdownDTO{
		Item:         line.Item,
		DailyRate:    toFloat(line.DailyRate),
		DaysInWindow: line.DaysInWindow,
		Subtotal:     toFloat(line.Subtotal),
	}
}

func toStatementDTO(st rental.Statement) StatementDTO {
	dto := StatementDTO{
		CustomerID:       st.CustomerID,
		CustomerName:     st.CustomerName,
		Mobile:           st.Mobile,
		Address:          st.Address,
		GeneratedOn:      st.GeneratedOn.String(),
		Lines:            []StatementLineDTO{},
		PreviousBalance:  toFloat(st.PreviousBalance),
		RentalCharges:    toFloat(st.RentalCharges),
		PaymentsReceived: toFloat(st.PaymentsReceived),
		AmountDue:        toFloat(st.AmountDue),
		AdvanceHeld:      toFloat(st.AdvanceHeld),
	}
	for _, line := range st.Lines {
		dto.Lines = append(dto.Lines, StatementLineDTO{
			Date:   line.Date.String(),
			Item:   line.Item,
			Qty:    line.Qty,
			Action: line.Action,
			Rate:   toFloat(line.Rate),
		})
	}
	for _, line := range st.Breakdown {
		dto.Breakdown = append(dto.Breakdown, toBreakdownDTO(line))
	}
	return dto
}
