package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/service"
)

type SettingsHandler struct {
	Service service.SettingsService
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.get)
	r.Put("/settings", h.save)
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	s, err := h.Service.Get(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// save overlays the sent fields on the current settings.
func (h SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		BusinessName         *string `json:"businessName" validate:"omitempty,max=200"`
		BusinessAddress      *string `json:"businessAddress" validate:"omitempty,max=500"`
		BusinessPhone        *string `json:"businessPhone" validate:"omitempty,max=40"`
		CurrencyCode         *string `json:"currencyCode"`
		ReceiptFooter        *string `json:"receiptFooter"`
		ReportingYear        *int    `json:"reportingYear"`
		LowStockAlerts       *bool   `json:"lowStockAlerts"`
		DefaultPaymentMethod *string `json:"defaultPaymentMethod" validate:"omitempty,max=50"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	current, err := h.Service.Get(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	next := current
	setIf(&next.BusinessName, req.BusinessName)
	setIf(&next.BusinessAddress, req.BusinessAddress)
	setIf(&next.BusinessPhone, req.BusinessPhone)
	setIf(&next.CurrencyCode, req.CurrencyCode)
	setIf(&next.ReceiptFooter, req.ReceiptFooter)
	setIf(&next.ReportingYear, req.ReportingYear)
	setIf(&next.LowStockAlerts, req.LowStockAlerts)
	setIf(&next.DefaultPaymentMethod, req.DefaultPaymentMethod)

	saved, err := h.Service.Save(r.Context(), user.OwnerID, next)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(saved))
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func toSettingsResponse(s domain.BusinessSettings) map[string]any {
	return map[string]any{
		"businessName":         s.BusinessName,
		"businessAddress":      s.BusinessAddress,
		"businessPhone":        s.BusinessPhone,
		"currencyCode":         s.CurrencyCode,
		"receiptFooter":        s.ReceiptFooter,
		"reportingYear":        s.ReportingYear,
		"lowStockAlerts":       s.LowStockAlerts,
		"defaultPaymentMethod": s.DefaultPaymentMethod,
	}
}
