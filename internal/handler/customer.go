package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
)

type CustomerHandler struct {
	Repo        repository.CustomerRepository
	Jobs        repository.JobRepository
	Sales       repository.SaleRepository
	PhoneRegion string
}

func (h CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/customers", h.list)
	r.Post("/customers", h.create)
	r.Get("/customers/{id}", h.get)
	r.Put("/customers/{id}", h.update)
	r.Delete("/customers/{id}", h.delete)
}

type customerRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Phone       string `json:"phone" validate:"max=40"`
	Address     string `json:"address" validate:"max=500"`
	Preferences string `json:"preferences"`
}

func (h CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
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
		resp = append(resp, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, pageResponse(resp, page.Total, p))
}

// get returns the customer with their jobs and sales.
func (h CustomerHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.Repo.Get(r.Context(), user.OwnerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jobs, err := h.Jobs.ListByCustomer(r.Context(), user.OwnerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sales, err := h.Sales.ListByCustomer(r.Context(), user.OwnerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := toCustomerResponse(*c)
	jobResp := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		jobResp = append(jobResp, toJobResponse(j))
	}
	saleResp := make([]map[string]any, 0, len(sales))
	outstanding := domain.TotalBalance(sales)
	for _, s := range sales {
		saleResp = append(saleResp, toSaleResponse(s))
	}
	resp["jobs"] = jobResp
	resp["sales"] = saleResp
	resp["outstanding"] = money(outstanding)
	writeJSON(w, http.StatusOK, resp)
}

func (h CustomerHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, ok := h.toCustomer(w, req)
	if !ok {
		return
	}
	saved, err := h.Repo.Create(r.Context(), user.OwnerID, c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(*saved))
}

func (h CustomerHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, ok := h.toCustomer(w, req)
	if !ok {
		return
	}
	c.ID = id
	saved, err := h.Repo.Update(r.Context(), user.OwnerID, c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(*saved))
}

// delete removes the customer only; their jobs and sales keep the stored name.
func (h CustomerHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h CustomerHandler) toCustomer(w http.ResponseWriter, req customerRequest) (domain.Customer, bool) {
	phone, err := normalizePhone(req.Phone, h.PhoneRegion)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Customer{}, false
	}
	return domain.Customer{
		Name:        strings.TrimSpace(req.Name),
		Phone:       phone,
		Address:     req.Address,
		Preferences: req.Preferences,
	}, true
}

func toCustomerResponse(c domain.Customer) map[string]any {
	return map[string]any{
		"id":             c.ID,
		"name":           c.Name,
		"phone":          c.Phone,
		"address":        c.Address,
		"preferences":    c.Preferences,
		"firstOrderDate": formatDate(c.FirstOrderDate),
		"lastOrderDate":  formatDate(c.LastOrderDate),
		"createdAt":      c.CreatedAt.Format(time.RFC3339),
	}
}

// resolveCustomerName checks that a referenced customer exists and falls back to its stored name.
func resolveCustomerName(w http.ResponseWriter, r *http.Request, repo repository.CustomerRepository, ownerID int64, id *int64, name string) (string, bool) {
	if id == nil {
		return name, true
	}
	c, err := repo.Get(r.Context(), ownerID, *id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "customer not found")
		return name, false
	}
	if err != nil {
		writeServiceError(w, err)
		return name, false
	}
	if name == "" {
		name = c.Name
	}
	return name, true
}
