package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/service"
)

type JobHandler struct {
	Service   service.JobService
	Repo      repository.JobRepository
	Customers repository.CustomerRepository
}

func (h JobHandler) RegisterRoutes(r chi.Router) {
	r.Get("/jobs", h.list)
	r.Get("/jobs/due", h.due)
	r.Post("/jobs", h.create)
	r.Get("/jobs/{id}", h.get)
	r.Put("/jobs/{id}", h.update)
	r.Post("/jobs/{id}/complete", h.complete)
	r.Delete("/jobs/{id}", h.delete)
}

type jobRequest struct {
	Date                 string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
	CustomerID           *int64           `json:"customerId" validate:"omitempty,gt=0"`
	CustomerName         string           `json:"customerName" validate:"required_without=CustomerID,max=200"`
	FabricSource         string           `json:"fabricSource"`
	InventoryItemID      *int64           `json:"inventoryItemId" validate:"omitempty,gt=0"`
	Item                 string           `json:"item" validate:"max=200"`
	MaterialCost         *decimal.Decimal `json:"materialCost"`
	LabourCharge         *decimal.Decimal `json:"labourCharge"`
	AmountPaid           *decimal.Decimal `json:"amountPaid"`
	DeliveryDateExpected string           `json:"deliveryDateExpected" validate:"omitempty,datetime=2006-01-02"`
	DeliveryDateActual   string           `json:"deliveryDateActual" validate:"omitempty,datetime=2006-01-02"`
	FittingDate          string           `json:"fittingDate" validate:"omitempty,datetime=2006-01-02"`
	Notes                string           `json:"notes"`
}

func (h JobHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, err := parseListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Status != "" && !domain.JobStatus(p.Status).Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	page, err := h.Repo.List(r.Context(), user.OwnerID, p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(page.Items))
	for _, j := range page.Items {
		resp = append(resp, toJobResponse(j))
	}
	writeJSON(w, http.StatusOK, pageResponse(resp, page.Total, p))
}

// due lists unfinished deliveries expected within the next days (default 7).
func (h JobHandler) due(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 365 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = parsed
	}
	until := h.Service.Clock.Today().AddDate(0, 0, days)
	jobs, err := h.Repo.DueForDelivery(r.Context(), user.OwnerID, until)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, toJobResponse(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h JobHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	j, err := h.Repo.Get(r.Context(), user.OwnerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(*j))
}

func (h JobHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req jobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := h.toInput(w, r, user.OwnerID, req)
	if !ok {
		return
	}
	res, err := h.Service.Create(r.Context(), actorOf(user), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobResultResponse(res))
}

func (h JobHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req jobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := h.toInput(w, r, user.OwnerID, req)
	if !ok {
		return
	}
	res, err := h.Service.Update(r.Context(), actorOf(user), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResultResponse(res))
}

// complete marks the job fully paid.
func (h JobHandler) complete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	res, err := h.Service.Complete(r.Context(), actorOf(user), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResultResponse(res))
}

func (h JobHandler) delete(w http.ResponseWriter, r *http.Request) {
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

// toInput converts the request, filling the customer name from the customer record when only an id is sent.
func (h JobHandler) toInput(w http.ResponseWriter, r *http.Request, ownerID int64, req jobRequest) (service.JobInput, bool) {
	in := service.JobInput{
		CustomerID:      req.CustomerID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		FabricSource:    domain.FabricSource(req.FabricSource),
		InventoryItemID: req.InventoryItemID,
		Item:            req.Item,
		MaterialCost:    decimalOrZero(req.MaterialCost),
		LabourCharge:    decimalOrZero(req.LabourCharge),
		AmountPaid:      decimalOrZero(req.AmountPaid),
		Notes:           req.Notes,
	}
	in.Date = dateOr(req.Date, time.Time{})
	in.DeliveryDateExpected, _ = parseDateField(req.DeliveryDateExpected)
	in.DeliveryDateActual, _ = parseDateField(req.DeliveryDateActual)
	in.FittingDate, _ = parseDateField(req.FittingDate)

	name, ok := resolveCustomerName(w, r, h.Customers, ownerID, req.CustomerID, in.CustomerName)
	in.CustomerName = name
	return in, ok
}

func toJobResponse(j domain.SewingJob) map[string]any {
	return map[string]any{
		"id":                   j.ID,
		"date":                 j.Date.Format(dateLayout),
		"customerId":           j.CustomerID,
		"customerName":         j.CustomerName,
		"fabricSource":         string(j.FabricSource),
		"inventoryItemId":      j.InventoryItemID,
		"item":                 j.Item,
		"materialCost":         money(j.MaterialCost),
		"labourCharge":         money(j.LabourCharge),
		"totalCharged":         money(j.TotalCharged),
		"amountPaid":           money(j.AmountPaid),
		"balance":              money(j.Balance),
		"profit":               money(j.Profit),
		"status":               string(j.Status),
		"deliveryDateExpected": formatDate(j.DeliveryDateExpected),
		"deliveryDateActual":   formatDate(j.DeliveryDateActual),
		"fittingDate":          formatDate(j.FittingDate),
		"notes":                j.Notes,
	}
}

func toJobResultResponse(res *service.JobResult) map[string]any {
	out := map[string]any{"job": toJobResponse(res.Job)}
	if res.SewingSale != nil {
		out["sewingSale"] = toSaleResponse(*res.SewingSale)
	}
	if res.FabricSale != nil {
		out["fabricSale"] = toSaleResponse(*res.FabricSale)
	}
	if res.Inventory != nil {
		out["inventory"] = toInventoryResponse(*res.Inventory)
	}
	return out
}
