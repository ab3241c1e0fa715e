package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
)

// MonthRow is one calendar month of the business's books.
type MonthRow struct {
	Year         int
	Month        time.Month
	TotalSales   decimal.Decimal
	Collected    decimal.Decimal
	Outstanding  decimal.Decimal
	MaterialCost decimal.Decimal
	Expenses     decimal.Decimal
	SewingProfit decimal.Decimal
	FabricProfit decimal.Decimal
	TotalProfit  decimal.Decimal
	NetProfit    decimal.Decimal
}

// Label renders the month as "2024-03".
func (r MonthRow) Label() string {
	return time.Date(r.Year, r.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

type Monthly struct {
	Year   int
	Rows   []MonthRow
	Totals MonthRow
}

func newRow(year int, month time.Month) MonthRow {
	return MonthRow{
		Year:         year,
		Month:        month,
		TotalSales:   decimal.Zero,
		Collected:    decimal.Zero,
		Outstanding:  decimal.Zero,
		MaterialCost: decimal.Zero,
		Expenses:     decimal.Zero,
		SewingProfit: decimal.Zero,
		FabricProfit: decimal.Zero,
		TotalProfit:  decimal.Zero,
		NetProfit:    decimal.Zero,
	}
}

// BuildMonthly folds a year's sales, expenses and jobs into month rows, newest first.
// The current year stops at now's month; a future year has no rows.
// Rows outside year are ignored.
func BuildMonthly(year int, now time.Time, sales []domain.Sale, expenses []domain.Expense, jobs []domain.SewingJob) Monthly {
	out := Monthly{Year: year, Totals: newRow(year, 0)}
	last := time.December
	switch {
	case year > now.Year():
		return out
	case year == now.Year():
		last = now.Month()
	}

	rows := make(map[time.Month]*MonthRow, int(last))
	for m := time.January; m <= last; m++ {
		r := newRow(year, m)
		rows[m] = &r
	}
	bucket := func(t time.Time) *MonthRow {
		if t.Year() != year {
			return nil
		}
		return rows[t.Month()]
	}

	for _, s := range sales {
		r := bucket(s.Date)
		if r == nil {
			continue
		}
		r.TotalSales = r.TotalSales.Add(s.TotalAmount)
		r.Collected = r.Collected.Add(s.AmountPaid)
		r.Outstanding = r.Outstanding.Add(s.TotalAmount.Sub(s.AmountPaid))
		if s.Type != domain.SaleSewing {
			r.FabricProfit = r.FabricProfit.Add(s.AmountPaid.Sub(s.CostAmount))
		}
	}
	for _, e := range expenses {
		if r := bucket(e.Date); r != nil {
			r.Expenses = r.Expenses.Add(e.Amount)
		}
	}
	for _, j := range jobs {
		r := bucket(j.Date)
		if r == nil {
			continue
		}
		r.MaterialCost = r.MaterialCost.Add(j.MaterialCost)
		r.SewingProfit = r.SewingProfit.Add(j.AmountPaid.Sub(j.MaterialCost))
	}

	for m := time.January; m <= last; m++ {
		r := rows[m]
		r.TotalProfit = r.SewingProfit.Add(r.FabricProfit)
		r.NetProfit = r.TotalProfit.Sub(r.Expenses)
		out.Rows = append(out.Rows, *r)
		out.Totals = addRow(out.Totals, *r)
	}
	sort.SliceStable(out.Rows, func(i, k int) bool { return out.Rows[i].Month > out.Rows[k].Month })
	return out
}

func addRow(a, b MonthRow) MonthRow {
	a.TotalSales = a.TotalSales.Add(b.TotalSales)
	a.Collected = a.Collected.Add(b.Collected)
	a.Outstanding = a.Outstanding.Add(b.Outstanding)
	a.MaterialCost = a.MaterialCost.Add(b.MaterialCost)
	a.Expenses = a.Expenses.Add(b.Expenses)
	a.SewingProfit = a.SewingProfit.Add(b.SewingProfit)
	a.FabricProfit = a.FabricProfit.Add(b.FabricProfit)
	a.TotalProfit = a.TotalProfit.Add(b.TotalProfit)
	a.NetProfit = a.NetProfit.Add(b.NetProfit)
	return a
}
