package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/service"
)

// CollectionHandler reads the append-only payment log. Payments are written through receivables.
type CollectionHandler struct {
	Repo  repository.CollectionRepository
	Clock service.Clock
}

func (h CollectionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/collections", h.list)
	r.Get("/collections/summary", h.summary)
}

func (h CollectionHandler) list(w http.ResponseWriter, r *http.Request) {
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
	for _, c := range page.Items {
		resp = append(resp, toCollectionResponse(c))
	}
	writeJSON(w, http.StatusOK, pageResponse(resp, page.Total, p))
}

// summary totals one day's collections per payment method (default today).
func (h CollectionHandler) summary(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	day, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	if day == nil {
		today := h.Clock.Today()
		day = &today
	}
	methods, err := h.Repo.SummaryByMethod(r.Context(), user.OwnerID, *day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	total := decimal.Zero
	var count int64
	resp := make([]map[string]any, 0, len(methods))
	for _, m := range methods {
		total = total.Add(m.Total)
		count += m.Count
		resp = append(resp, map[string]any{
			"method": m.Method,
			"total":  money(m.Total),
			"count":  m.Count,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    day.Format(dateLayout),
		"total":   money(total),
		"count":   count,
		"methods": resp,
	})
}

func toCollectionResponse(c domain.Collection) map[string]any {
	return map[string]any{
		"id":            c.ID,
		"receiptNo":     c.ReceiptNo,
		"date":          c.Date.Format(dateLayout),
		"customerId":    c.CustomerID,
		"customerName":  c.CustomerName,
		"amount":        money(c.Amount),
		"paymentMethod": c.PaymentMethod,
		"notes":         c.Notes,
		"createdAt":     c.CreatedAt.Format(time.RFC3339),
	}
}
