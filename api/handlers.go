/*
handlers.go - HTTP handlers over the billing engine

PURPOSE:
  Translates HTTP into engine calls: load a snapshot from the repository,
  compute or mutate, save, render DTOs. Handlers validate input; the engine
  assumes validated snapshots.

COMPUTATION SELECTION:
  Balance endpoints accept ?mode=live|closed, ?policy=all|approved and
  ?as_of=YYYY-MM-DD so every caller states which of the two ledger behaviors
  it wants. Omitted values fall back to live mode, the configured default
  policy, and today.

SEE ALSO:
  - server.go: routing and middleware
  - dto.go: wire types
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
)

// saveAttempts bounds optimistic-lock retries per mutating request.
const saveAttempts = 3

type Handler struct {
	repo          rental.Repository
	defaultPolicy billing.PaymentPolicy
	log           *slog.Logger
}

func NewHandler(repo rental.Repository, defaultPolicy billing.PaymentPolicy, logger *slog.Logger) *Handler {
	if defaultPolicy == "" {
		defaultPolicy = billing.ApprovedOnly
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{repo: repo, defaultPolicy: defaultPolicy, log: logger}
}

// =============================================================================
// CUSTOMERS
// =============================================================================

// ListCustomers returns the dashboard rows with live display-due figures.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.serverError(w, "list customers", err)
		return
	}

	asOf := billing.Today()
	rows := make([]CustomerSummaryDTO, 0, len(records))
	for _, record := range records {
		result := billing.Calculate(record, billing.Options{
			Mode:   billing.ModeLive,
			Policy: h.defaultPolicy,
			AsOf:   asOf,
		})
		balanceComputations.WithLabelValues(string(billing.ModeLive)).Inc()
		rows = append(rows, CustomerSummaryDTO{
			ID:         record.ID,
			Name:       record.Name,
			Mobile:     record.Mobile,
			DisplayDue: toFloat(result.DisplayDue),
			Status:     string(rental.ClassifyBalance(result)),
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "customer name is required")
		return
	}

	record := rental.NewCustomer(req.ID, req.Name, req.Mobile, req.Address,
		decimal.NewFromFloat(req.PreviousBalance))
	for _, item := range req.Items {
		if err := rental.AddItem(&record, item.Name, decimal.NewFromFloat(item.DailyRate)); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_item", err.Error())
			return
		}
	}

	if err := h.repo.Save(r.Context(), &record); err != nil {
		h.serverError(w, "create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(record))
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	record, ok := h.loadCustomer(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(record))
}

// =============================================================================
// BALANCE AND STATEMENT
// =============================================================================

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	record, ok := h.loadCustomer(w, r)
	if !ok {
		return
	}

	opts, ok := h.balanceOptions(w, r)
	if !ok {
		return
	}
	opts.WithBreakdown = true

	result := billing.Calculate(record, opts)
	balanceComputations.WithLabelValues(string(result.Mode)).Inc()
	writeJSON(w, http.StatusOK, toBalanceDTO(record.ID, result))
}

func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	record, ok := h.loadCustomer(w, r)
	if !ok {
		return
	}

	policy, ok := h.paymentPolicy(w, r)
	if !ok {
		return
	}
	asOf, ok := asOfDate(w, r)
	if !ok {
		return
	}

	st := rental.BuildStatement(record, policy, asOf)
	balanceComputations.WithLabelValues(string(billing.ModeClosed)).Inc()
	writeJSON(w, http.StatusOK, toStatementDTO(st))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}
	date, err := billing.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	record, err := rental.Update(r.Context(), h.repo, id, saveAttempts, func(rec *billing.CustomerRecord) error {
		return rental.AddTransaction(rec, date, req.Item, req.Qty)
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(record))
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	var date billing.Date
	if req.Date != "" {
		parsed, err := billing.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		date = parsed
	}
	amount := decimal.NewFromFloat(req.Amount)

	var payment billing.Payment
	_, err := rental.Update(r.Context(), h.repo, id, saveAttempts, func(rec *billing.CustomerRecord) error {
		var err error
		if req.Approved {
			payment, err = rental.RecordPayment(rec, date, amount, req.Method, req.Reference, req.Notes)
		} else {
			payment, err = rental.SubmitPayment(rec, date, amount, req.Method, req.Reference, req.Notes)
		}
		return err
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

func (h *Handler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	h.transitionPayment(w, r, rental.ApprovePayment)
}

func (h *Handler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	h.transitionPayment(w, r, rental.RejectPayment)
}

func (h *Handler) transitionPayment(w http.ResponseWriter, r *http.Request, fn func(*billing.CustomerRecord, string) error) {
	id := chi.URLParam(r, "id")
	paymentID := chi.URLParam(r, "paymentID")

	record, err := rental.Update(r.Context(), h.repo, id, saveAttempts, func(rec *billing.CustomerRecord) error {
		return fn(rec, paymentID)
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(record))
}

// ListPendingPayments returns the approval queue across all customers.
func (h *Handler) ListPendingPayments(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		h.serverError(w, "list customers", err)
		return
	}

	queue := make([]PendingPaymentDTO, 0)
	for _, record := range records {
		for _, p := range rental.PendingPayments(record) {
			queue = append(queue, PendingPaymentDTO{
				CustomerID:   record.ID,
				CustomerName: record.Name,
				Payment:      toPaymentDTO(p),
			})
		}
	}
	writeJSON(w, http.StatusOK, queue)
}

// =============================================================================
// REQUEST PARSING HELPERS
// =============================================================================

func (h *Handler) loadCustomer(w http.ResponseWriter, r *http.Request) (billing.CustomerRecord, bool) {
	id := chi.URLParam(r, "id")
	record, err := h.repo.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, billing.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "customer not found")
		} else {
			h.serverError(w, "load customer", err)
		}
		return billing.CustomerRecord{}, false
	}
	return record, true
}

func (h *Handler) balanceOptions(w http.ResponseWriter, r *http.Request) (billing.Options, bool) {
	opts := billing.Options{Mode: billing.ModeLive, Policy: h.defaultPolicy}

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "live":
		opts.Mode = billing.ModeLive
	case "closed":
		opts.Mode = billing.ModeClosed
	default:
		writeError(w, http.StatusBadRequest, "invalid_mode", "mode must be live or closed")
		return billing.Options{}, false
	}

	policy, ok := h.paymentPolicy(w, r)
	if !ok {
		return billing.Options{}, false
	}
	opts.Policy = policy

	asOf, ok := asOfDate(w, r)
	if !ok {
		return billing.Options{}, false
	}
	opts.AsOf = asOf

	return opts, true
}

func (h *Handler) paymentPolicy(w http.ResponseWriter, r *http.Request) (billing.PaymentPolicy, bool) {
	switch policy := r.URL.Query().Get("policy"); policy {
	case "":
		return h.defaultPolicy, true
	case "all":
		return billing.IncludeAll, true
	case "approved":
		return billing.ApprovedOnly, true
	default:
		writeError(w, http.StatusBadRequest, "invalid_policy", "policy must be all or approved")
		return "", false
	}
}

func asOfDate(w http.ResponseWriter, r *http.Request) (billing.Date, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return billing.Today(), true
	}
	date, err := billing.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_as_of", err.Error())
		return billing.Date{}, false
	}
	return date, true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "not_found", "customer not found")
	case errors.Is(err, billing.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, "payment_not_found", "payment not found")
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case billing.IsRetryable(err):
		writeError(w, http.StatusConflict, "conflict", "record was modified concurrently, retry")
	default:
		h.serverError(w, "mutate record", err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
