package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"tailorbooks-backend/internal/report"
	"tailorbooks-backend/internal/server/authctx"
	"tailorbooks-backend/internal/service"
)

type ReportHandler struct {
	Service  service.ReportService
	Settings service.SettingsService
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/monthly", h.monthly)
	r.Get("/reports/monthly/export", h.export)
}

func (h ReportHandler) monthly(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	m, currency, ok := h.build(w, r, user)
	if !ok {
		return
	}
	rows := make([]map[string]any, 0, len(m.Rows))
	for _, row := range m.Rows {
		rows = append(rows, toMonthResponse(row.Label(), row))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":     m.Year,
		"currency": currency,
		"rows":     rows,
		"totals":   toMonthResponse("Total", m.Totals),
	})
}

func (h ReportHandler) export(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	m, _, ok := h.build(w, r, user)
	if !ok {
		return
	}
	writeTable(w, report.MonthlyTable(m), r.URL.Query().Get("format"), fmt.Sprintf("monthly_report_%d", m.Year))
}

// build runs the report for ?year=, falling back to the configured reporting year.
func (h ReportHandler) build(w http.ResponseWriter, r *http.Request, user *authctx.CurrentUser) (report.Monthly, string, bool) {
	settings, err := h.Settings.Get(r.Context(), user.OwnerID)
	if err != nil {
		writeServiceError(w, err)
		return report.Monthly{}, "", false
	}
	year := settings.ReportingYear
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return report.Monthly{}, "", false
		}
	}
	m, err := h.Service.Monthly(r.Context(), user.OwnerID, year)
	if err != nil {
		writeServiceError(w, err)
		return report.Monthly{}, "", false
	}
	return m, settings.CurrencyCode, true
}

func toMonthResponse(label string, r report.MonthRow) map[string]any {
	return map[string]any{
		"month":        label,
		"totalSales":   money(r.TotalSales),
		"collected":    money(r.Collected),
		"outstanding":  money(r.Outstanding),
		"materialCost": money(r.MaterialCost),
		"expenses":     money(r.Expenses),
		"sewingProfit": money(r.SewingProfit),
		"fabricProfit": money(r.FabricProfit),
		"totalProfit":  money(r.TotalProfit),
		"netProfit":    money(r.NetProfit),
	}
}
