package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailorbooks-backend/internal/service"
)

type DashboardHandler struct {
	Service  service.DashboardService
	Settings service.SettingsService
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	settings, err := h.Settings.Get(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data, err := h.Service.Summary(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	topItems := make([]map[string]any, 0, len(data.TopItems))
	for _, it := range data.TopItems {
		topItems = append(topItems, map[string]any{
			"name":   it.Name,
			"amount": money(it.Amount),
			"count":  it.Count,
		})
	}
	series := make([]map[string]any, 0, len(data.SalesSeries))
	for _, p := range data.SalesSeries {
		series = append(series, map[string]any{
			"label":  p.Label,
			"amount": money(p.Amount),
		})
	}
	resp := map[string]any{
		"businessName":   settings.BusinessName,
		"currency":       settings.CurrencyCode,
		"customers":      data.Customers,
		"openJobs":       data.OpenJobs,
		"dueForDelivery": data.DueForDelivery,
		"receivables":    money(data.Receivables),
		"monthToDate": map[string]any{
			"sales":       money(data.MonthToDate.Sales),
			"collections": money(data.MonthToDate.Collections),
			"expenses":    money(data.MonthToDate.Expenses),
		},
		"topItems":    topItems,
		"salesSeries": series,
	}
	if settings.LowStockAlerts {
		resp["lowStock"] = data.LowStock
	}
	writeJSON(w, http.StatusOK, resp)
}
