package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSale(id int64, date string, balance string) Sale {
	dt, _ := time.Parse("2006-01-02", date)
	s := Sale{ID: id, Date: dt, TotalAmount: d(balance), AmountPaid: decimal.Zero}
	s.Recompute()
	return s
}

func TestAllocateFIFOOldestFirst(t *testing.T) {
	sales := []Sale{
		openSale(2, "2024-03-10", "5000"),
		openSale(1, "2024-03-01", "3000"),
	}

	allocs, rest := AllocateFIFO(d("4000"), sales)

	require.Len(t, allocs, 2)
	assert.Equal(t, int64(1), allocs[0].SaleID)
	assert.True(t, allocs[0].Amount.Equal(d("3000")))
	assert.Equal(t, int64(2), allocs[1].SaleID)
	assert.True(t, allocs[1].Amount.Equal(d("1000")))
	assert.True(t, rest.IsZero())

	// input order is left untouched
	assert.Equal(t, int64(2), sales[0].ID)
}

func TestAllocateFIFOSameDateUsesID(t *testing.T) {
	sales := []Sale{
		openSale(9, "2024-03-01", "100"),
		openSale(4, "2024-03-01", "100"),
	}
	allocs, _ := AllocateFIFO(d("150"), sales)

	require.Len(t, allocs, 2)
	assert.Equal(t, int64(4), allocs[0].SaleID)
	assert.True(t, allocs[1].Amount.Equal(d("50")))
}

func TestAllocateFIFOSkipsSettledAndReportsRemainder(t *testing.T) {
	settled := openSale(1, "2024-01-01", "100")
	settled.AmountPaid = d("100")
	settled.Recompute()
	sales := []Sale{settled, openSale(2, "2024-02-01", "250")}

	allocs, rest := AllocateFIFO(d("300"), sales)

	require.Len(t, allocs, 1)
	assert.Equal(t, int64(2), allocs[0].SaleID)
	assert.True(t, rest.Equal(d("50")))
}

func TestAllocateFIFOConservesAmount(t *testing.T) {
	sales := []Sale{
		openSale(1, "2024-01-01", "120.50"),
		openSale(2, "2024-01-02", "80.25"),
		openSale(3, "2024-01-03", "300"),
	}
	amount := d("250")
	allocs, rest := AllocateFIFO(amount, sales)

	sum := decimal.Zero
	for _, a := range allocs {
		sum = sum.Add(a.Amount)
	}
	assert.True(t, sum.Add(rest).Equal(amount))
	assert.True(t, TotalBalance(sales).Equal(d("500.75")))
}
