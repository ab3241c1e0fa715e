package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/service"
)

type SaleHandler struct {
	Repo      repository.SaleRepository
	Customers repository.CustomerRepository
	Clock     service.Clock
}

func (h SaleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.list)
	r.Post("/sales", h.create)
	r.Get("/sales/{id}", h.get)
	r.Put("/sales/{id}", h.update)
	r.Delete("/sales/{id}", h.delete)
}

type saleRequest struct {
	Date         string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Type         string           `json:"type" validate:"required,oneof=Sewing Fabric Other"`
	CustomerID   *int64           `json:"customerId" validate:"omitempty,gt=0"`
	CustomerName string           `json:"customerName" validate:"required_without=CustomerID,max=200"`
	TotalAmount  decimal.Decimal  `json:"totalAmount"`
	AmountPaid   *decimal.Decimal `json:"amountPaid"`
	CostAmount   *decimal.Decimal `json:"costAmount"`
	Notes        string           `json:"notes"`
}

func (h SaleHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, err := parseListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Type != "" && !domain.SaleType(p.Type).Valid() {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	page, err := h.Repo.List(r.Context(), user.OwnerID, p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(page.Items))
	for _, s := range page.Items {
		resp = append(resp, toSaleResponse(s))
	}
	writeJSON(w, http.StatusOK, pageResponse(resp, page.Total, p))
}

func (h SaleHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s, err := h.Repo.Get(r.Context(), user.OwnerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(*s))
}

// create records a sale outside the job flow, e.g. fabric sold over the counter.
func (h SaleHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req saleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, ok := h.toSale(w, r, user.OwnerID, req)
	if !ok {
		return
	}
	saved, err := h.Repo.Create(r.Context(), user.OwnerID, s)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaleResponse(*saved))
}

func (h SaleHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req saleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, ok := h.toSale(w, r, user.OwnerID, req)
	if !ok {
		return
	}
	s.ID = id
	saved, err := h.Repo.Update(r.Context(), user.OwnerID, s)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleResponse(*saved))
}

func (h SaleHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h SaleHandler) toSale(w http.ResponseWriter, r *http.Request, ownerID int64, req saleRequest) (domain.Sale, bool) {
	paid := decimalOrZero(req.AmountPaid)
	cost := decimalOrZero(req.CostAmount)
	if req.TotalAmount.IsNegative() || paid.IsNegative() || cost.IsNegative() {
		writeError(w, http.StatusBadRequest, "amounts must not be negative")
		return domain.Sale{}, false
	}
	name, ok := resolveCustomerName(w, r, h.Customers, ownerID, req.CustomerID, strings.TrimSpace(req.CustomerName))
	if !ok {
		return domain.Sale{}, false
	}
	return domain.Sale{
		Date:         dateOr(req.Date, h.Clock.Today()),
		Type:         domain.SaleType(req.Type),
		CustomerID:   req.CustomerID,
		CustomerName: name,
		TotalAmount:  req.TotalAmount,
		AmountPaid:   paid,
		CostAmount:   cost,
		Notes:        req.Notes,
	}, true
}

func toSaleResponse(s domain.Sale) map[string]any {
	return map[string]any{
		"id":           s.ID,
		"date":         s.Date.Format(dateLayout),
		"type":         string(s.Type),
		"customerId":   s.CustomerID,
		"customerName": s.CustomerName,
		"totalAmount":  money(s.TotalAmount),
		"amountPaid":   money(s.AmountPaid),
		"balance":      money(s.Balance),
		"costAmount":   money(s.CostAmount),
		"jobId":        s.JobID,
		"notes":        s.Notes,
	}
}
