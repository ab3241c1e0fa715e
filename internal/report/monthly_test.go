package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"tailorbooks-backend/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestBuildMonthlyCurrentYearTruncates(t *testing.T) {
	now := day(2024, time.March, 15)
	sales := []domain.Sale{
		{Date: day(2024, time.January, 5), Type: domain.SaleSewing, TotalAmount: d("5000"), AmountPaid: d("3000"), CostAmount: d("2000")},
		{Date: day(2024, time.March, 2), Type: domain.SaleFabric, TotalAmount: d("1200"), AmountPaid: d("1200"), CostAmount: d("800")},
		{Date: day(2023, time.March, 2), Type: domain.SaleOther, TotalAmount: d("999"), AmountPaid: d("999")},
	}
	expenses := []domain.Expense{
		{Date: day(2024, time.March, 3), Amount: d("500")},
	}
	jobs := []domain.SewingJob{
		{Date: day(2024, time.January, 5), MaterialCost: d("2000"), LabourCharge: d("3000"), AmountPaid: d("3000")},
	}

	m := BuildMonthly(2024, now, sales, expenses, jobs)

	require.Len(t, m.Rows, 3)
	assert.Equal(t, time.March, m.Rows[0].Month)
	assert.Equal(t, time.January, m.Rows[2].Month)

	mar := m.Rows[0]
	assert.True(t, mar.TotalSales.Equal(d("1200")))
	assert.True(t, mar.FabricProfit.Equal(d("400")))
	assert.True(t, mar.Expenses.Equal(d("500")))
	assert.True(t, mar.TotalProfit.Equal(d("400")))
	assert.True(t, mar.NetProfit.Equal(d("-100")))

	jan := m.Rows[2]
	assert.True(t, jan.TotalSales.Equal(d("5000")))
	assert.True(t, jan.Collected.Equal(d("3000")))
	assert.True(t, jan.Outstanding.Equal(d("2000")))
	assert.True(t, jan.MaterialCost.Equal(d("2000")))
	assert.True(t, jan.SewingProfit.Equal(d("1000")))
	assert.True(t, jan.FabricProfit.IsZero())
	assert.Equal(t, "2024-01", jan.Label())

	feb := m.Rows[1]
	assert.True(t, feb.TotalSales.IsZero())

	assert.True(t, m.Totals.TotalSales.Equal(d("6200")))
	assert.True(t, m.Totals.NetProfit.Equal(d("900")))
}

func TestBuildMonthlyPastYearHasTwelveMonths(t *testing.T) {
	m := BuildMonthly(2022, day(2024, time.June, 1), nil, nil, nil)
	require.Len(t, m.Rows, 12)
	assert.Equal(t, time.December, m.Rows[0].Month)
	assert.True(t, m.Totals.TotalSales.IsZero())
}

func TestBuildMonthlyFutureYearIsEmpty(t *testing.T) {
	m := BuildMonthly(2030, day(2024, time.June, 1), []domain.Sale{{Date: day(2030, time.January, 1), TotalAmount: d("1")}}, nil, nil)
	assert.Empty(t, m.Rows)
	assert.True(t, m.Totals.TotalSales.IsZero())
}

func TestMonthlyTableCSV(t *testing.T) {
	m := BuildMonthly(2024, day(2024, time.February, 10), []domain.Sale{
		{Date: day(2024, time.February, 1), Type: domain.SaleOther, TotalAmount: d("100"), AmountPaid: d("40")},
	}, nil, nil)

	data, err := MonthlyTable(m).CSV()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Month,Total Sales"))
	assert.Equal(t, "2024-02,100.00,40.00,60.00,0.00,0.00,0.00,40.00,40.00,40.00", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "Total,100.00"))
}

func TestTableXLSX(t *testing.T) {
	tbl := Table{
		Sheet:  "Expenses",
		Header: []string{"Date", "Amount"},
		Widths: []float64{12, 14},
		Rows:   [][]any{{"2024-01-02", d("12.50")}},
	}
	data, err := tbl.XLSX()
	require.NoError(t, err)

	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Expenses", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", v)
	v, err = f.GetCellValue("Expenses", "B2")
	require.NoError(t, err)
	assert.Equal(t, "12.5", v)
	assert.Equal(t, []string{"Expenses"}, f.GetSheetList())
}
