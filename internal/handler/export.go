package handler

import (
	"fmt"
	"net/http"

	"tailorbooks-backend/internal/report"
)

// writeTable streams t as a csv or xlsx download named <name>.<ext>.
func writeTable(w http.ResponseWriter, t report.Table, format, name string) {
	switch format {
	case "", "csv":
		data, err := t.CSV()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := t.XLSX()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}
