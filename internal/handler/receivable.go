package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/service"
)

type ReceivableHandler struct {
	Service service.ReceivableService
}

func (h ReceivableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/receivables", h.list)
	r.Post("/receivables/payments", h.applyPayment)
}

func (h ReceivableHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.List(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	total := decimal.Zero
	resp := make([]map[string]any, 0, len(rows))
	for _, rc := range rows {
		total = total.Add(rc.TotalOutstanding)
		resp = append(resp, map[string]any{
			"key":              rc.Key.String(),
			"customerId":       rc.Key.ID,
			"customerName":     rc.CustomerName,
			"phone":            rc.Phone,
			"totalOutstanding": money(rc.TotalOutstanding),
			"openSales":        rc.OpenSales,
			"lastSaleDate":     rc.LastSaleDate.Format(dateLayout),
			"daysSinceSale":    rc.DaysSinceSale,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": resp,
		"total": money(total),
	})
}

// applyPayment records a collection and spreads it over the customer's open sales, oldest first.
func (h ReceivableHandler) applyPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		CustomerID    *int64          `json:"customerId" validate:"omitempty,gt=0"`
		CustomerName  string          `json:"customerName" validate:"required_without=CustomerID,max=200"`
		Amount        decimal.Decimal `json:"amount"`
		PaymentMethod string          `json:"paymentMethod" validate:"max=50"`
		Date          string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
		Notes         string          `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	in := service.PaymentInput{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		Amount:        req.Amount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Notes:         req.Notes,
	}
	if d, _ := parseDateField(req.Date); d != nil {
		in.Date = *d
	}
	res, err := h.Service.ApplyPayment(r.Context(), actorOf(user), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	allocs := make([]map[string]any, 0, len(res.Allocations))
	for _, a := range res.Allocations {
		allocs = append(allocs, map[string]any{
			"saleId": a.SaleID,
			"jobId":  a.JobID,
			"amount": money(a.Amount),
		})
	}
	jobs := make([]map[string]any, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		jobs = append(jobs, toJobResponse(j))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"collection":  toCollectionResponse(res.Collection),
		"allocations": allocs,
		"jobs":        jobs,
		"remaining":   money(res.Remaining),
	})
}
