package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"tailorbooks-backend/internal/domain"
)

// Table is a sheet of rows ready to be written as CSV or XLSX.
type Table struct {
	Sheet  string
	Header []string
	Widths []float64
	Rows   [][]any
}

// CSV writes the header and rows with values formatted as text.
func (t Table) CSV() ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellText(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// XLSX writes a single-sheet workbook with a bold shaded header row.
func (t Table) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(t.Sheet)
	if err != nil {
		return nil, err
	}
	if t.Sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}
	f.SetActiveSheet(index)

	for c, v := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(t.Sheet, cell, v); err != nil {
			return nil, err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if d, ok := v.(decimal.Decimal); ok {
				v = d.InexactFloat64()
			}
			if err := f.SetCellValue(t.Sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	for c, width := range t.Widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(t.Sheet, col, col, width)
	}

	if len(t.Header) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
		})
		if err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
		_ = f.SetCellStyle(t.Sheet, "A1", last, style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.StringFixed(2)
	default:
		return fmt.Sprint(x)
	}
}

// MonthlyTable lays out a monthly report with its totals as the last row.
func MonthlyTable(m Monthly) Table {
	t := Table{
		Sheet: fmt.Sprintf("Report %d", m.Year),
		Header: []string{
			"Month", "Total Sales", "Collected", "Outstanding", "Material Cost", "Expenses",
			"Sewing Profit", "Fabric Profit", "Total Profit", "Net Profit",
		},
		Widths: []float64{12, 14, 14, 14, 14, 14, 14, 14, 14, 14},
	}
	for _, r := range m.Rows {
		t.Rows = append(t.Rows, monthValues(r.Label(), r))
	}
	t.Rows = append(t.Rows, monthValues("Total", m.Totals))
	return t
}

func monthValues(label string, r MonthRow) []any {
	return []any{
		label, r.TotalSales, r.Collected, r.Outstanding, r.MaterialCost, r.Expenses,
		r.SewingProfit, r.FabricProfit, r.TotalProfit, r.NetProfit,
	}
}

// ExpenseTable lays out expenses one per row.
func ExpenseTable(items []domain.Expense) Table {
	t := Table{
		Sheet:  "Expenses",
		Header: []string{"ID", "Date", "Category", "Description", "Amount", "Payment Method", "Notes"},
		Widths: []float64{8, 12, 18, 32, 14, 16, 32},
	}
	for _, e := range items {
		t.Rows = append(t.Rows, []any{
			e.ID, e.Date.Format("2006-01-02"), e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes,
		})
	}
	return t
}
