package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/report"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/service"
)

type ExpenseHandler struct {
	Repo  repository.ExpenseRepository
	Clock service.Clock
}

func (h ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/expenses", h.list)
	r.Get("/expenses/export", h.export)
	r.Post("/expenses", h.create)
	r.Get("/expenses/{id}", h.get)
	r.Put("/expenses/{id}", h.update)
	r.Delete("/expenses/{id}", h.delete)
}

type expenseRequest struct {
	Date          string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Category      string          `json:"category" validate:"required,max=100"`
	Description   string          `json:"description" validate:"max=500"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" validate:"max=50"`
	Notes         string          `json:"notes"`
}

func (h ExpenseHandler) toExpense(w http.ResponseWriter, req expenseRequest) (domain.Expense, bool) {
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be greater than zero")
		return domain.Expense{}, false
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = "cash"
	}
	return domain.Expense{
		Date:          dateOr(req.Date, h.Clock.Today()),
		Category:      strings.TrimSpace(req.Category),
		Description:   req.Description,
		Amount:        req.Amount,
		PaymentMethod: method,
		Notes:         req.Notes,
	}, true
}

func (h ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, err := parseListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.Repo.List(r.Context(), user.OwnerID, p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(page.Items))
	for _, e := range page.Items {
		resp = append(resp, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, pageResponse(resp, page.Total, p))
}

// export downloads expenses between startDate and endDate, defaulting to the year so far.
func (h ExpenseHandler) export(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}
	today := h.Clock.Today()
	if startDate == nil {
		jan1 := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		startDate = &jan1
	}
	if endDate == nil {
		endDate = &today
	}
	if startDate.After(*endDate) {
		writeError(w, http.StatusBadRequest, "startDate must be before endDate")
		return
	}

	items, err := h.Repo.ExpensesBetween(r.Context(), user.OwnerID, *startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	name := fmt.Sprintf("expenses_%s_%s", startDate.Format("20060102"), endDate.Format("20060102"))
	writeTable(w, report.ExpenseTable(items), r.URL.Query().Get("format"), name)
}

func (h ExpenseHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	e, err := h.Repo.Get(r.Context(), user.OwnerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(*e))
}

func (h ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, ok := h.toExpense(w, req)
	if !ok {
		return
	}
	saved, err := h.Repo.Create(r.Context(), user.OwnerID, e)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(*saved))
}

func (h ExpenseHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, ok := h.toExpense(w, req)
	if !ok {
		return
	}
	e.ID = id
	saved, err := h.Repo.Update(r.Context(), user.OwnerID, e)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(*saved))
}

func (h ExpenseHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), user.OwnerID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func toExpenseResponse(e domain.Expense) map[string]any {
	return map[string]any{
		"id":            e.ID,
		"date":          e.Date.Format(dateLayout),
		"category":      e.Category,
		"description":   e.Description,
		"amount":        money(e.Amount),
		"paymentMethod": e.PaymentMethod,
		"notes":         e.Notes,
	}
}
