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
)

type InventoryHandler struct {
	Repo repository.InventoryRepository
}

// RegisterRoutes exposes the read side of inventory.
func (h InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.list)
	r.Get("/inventory/low-stock", h.lowStock)
	r.Get("/inventory/{id}", h.get)
	r.Get("/inventory/{id}/movements", h.movements)
}

// RegisterAdminRoutes exposes inventory writes.
func (h InventoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/inventory", h.create)
	r.Put("/inventory/{id}", h.update)
	r.Delete("/inventory/{id}", h.delete)
	r.Post("/inventory/{id}/adjust", h.adjust)
}

type inventoryRequest struct {
	ItemName       string           `json:"itemName" validate:"required,max=200"`
	Category       string           `json:"category" validate:"max=100"`
	QuantityBought *decimal.Decimal `json:"quantityBought"`
	UnitCost       *decimal.Decimal `json:"unitCost"`
	ReorderLevel   *decimal.Decimal `json:"reorderLevel"`
	Supplier       string           `json:"supplier" validate:"max=200"`
	Notes          string           `json:"notes"`
}

func (req inventoryRequest) toItem() (domain.InventoryItem, string) {
	it := domain.InventoryItem{
		ItemName:       strings.TrimSpace(req.ItemName),
		Category:       req.Category,
		QuantityBought: decimalOrZero(req.QuantityBought),
		UnitCost:       decimalOrZero(req.UnitCost),
		ReorderLevel:   decimalOrZero(req.ReorderLevel),
		Supplier:       req.Supplier,
		Notes:          req.Notes,
	}
	if it.QuantityBought.IsNegative() || it.UnitCost.IsNegative() || it.ReorderLevel.IsNegative() {
		return it, "quantities and costs must not be negative"
	}
	return it, ""
}

func (h InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
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
	for _, it := range page.Items {
		resp = append(resp, toInventoryResponse(it))
	}
	writeJSON(w, http.StatusOK, pageResponse(resp, page.Total, p))
}

func (h InventoryHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.Repo.LowStock(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, it := range items {
		resp = append(resp, toInventoryResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InventoryHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	it, err := h.Repo.Get(r.Context(), user.OwnerID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(*it))
}

func (h InventoryHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req inventoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, msg := req.toItem()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	saved, err := h.Repo.Create(r.Context(), user.OwnerID, item)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventoryResponse(*saved))
}

// update edits descriptive fields and prices; quantityBought is ignored here.
func (h InventoryHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req inventoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, msg := req.toItem()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	item.ID = id
	saved, err := h.Repo.Update(r.Context(), user.OwnerID, item)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(*saved))
}

func (h InventoryHandler) delete(w http.ResponseWriter, r *http.Request) {
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

// adjust restocks, consumes, or records a recount of what is left.
func (h InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req struct {
		Type     string          `json:"type" validate:"required,oneof=restock consume adjust"`
		Quantity decimal.Decimal `json:"quantity"`
		Note     string          `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity.IsNegative() || (req.Type != string(domain.MovementAdjust) && req.Quantity.IsZero()) {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	it, err := h.Repo.Adjust(r.Context(), user.OwnerID, repository.AdjustInventoryInput{
		ItemID:   id,
		Type:     domain.MovementType(req.Type),
		Quantity: req.Quantity,
		Note:     req.Note,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(*it))
}

func (h InventoryHandler) movements(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.Movements(r.Context(), user.OwnerID, id, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, m := range items {
		resp = append(resp, map[string]any{
			"id":        m.ID,
			"change":    m.Change.String(),
			"remaining": m.Remaining.String(),
			"type":      string(m.Type),
			"reference": m.Reference,
			"note":      m.Note,
			"createdAt": m.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func toInventoryResponse(it domain.InventoryItem) map[string]any {
	return map[string]any{
		"id":             it.ID,
		"itemName":       it.ItemName,
		"category":       it.Category,
		"quantityBought": it.QuantityBought.String(),
		"quantityUsed":   it.QuantityUsed.String(),
		"quantityLeft":   it.QuantityLeft.String(),
		"unitCost":       money(it.UnitCost),
		"totalCost":      money(it.TotalCost),
		"reorderLevel":   it.ReorderLevel.String(),
		"lowStock":       it.LowStock(),
		"supplier":       it.Supplier,
		"notes":          it.Notes,
	}
}
