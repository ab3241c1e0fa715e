package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupReceivables(t *testing.T) {
	ada := int64(1)
	bola := int64(2)
	today := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

	sales := []Sale{
		{ID: 1, CustomerID: &ada, CustomerName: "Ada", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Balance: d("3000")},
		{ID: 2, CustomerID: &ada, CustomerName: "Ada", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Balance: d("5000")},
		{ID: 3, CustomerID: &bola, CustomerName: "Bola", Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Balance: d("9000")},
		{ID: 4, CustomerName: " walk-in ", Date: time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), Balance: d("100")},
		{ID: 5, CustomerName: "Walk-In", Date: time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), Balance: d("50")},
		{ID: 6, CustomerID: &bola, CustomerName: "Bola", Date: time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC), Balance: d("0")},
	}
	phones := map[int64]string{ada: "+2348012345678"}

	rows := GroupReceivables(sales, phones, today)

	require.Len(t, rows, 3)
	assert.Equal(t, "Bola", rows[0].CustomerName)
	assert.True(t, rows[0].TotalOutstanding.Equal(d("9000")))
	assert.Equal(t, 1, rows[0].OpenSales)
	assert.Equal(t, 5, rows[0].DaysSinceSale)

	assert.Equal(t, "Ada", rows[1].CustomerName)
	assert.True(t, rows[1].TotalOutstanding.Equal(d("8000")))
	assert.Equal(t, 2, rows[1].OpenSales)
	assert.Equal(t, "+2348012345678", rows[1].Phone)
	assert.Equal(t, 10, rows[1].DaysSinceSale)

	assert.True(t, rows[2].TotalOutstanding.Equal(d("150")))
	assert.Equal(t, "Walk-In", rows[2].CustomerName)
	assert.Empty(t, rows[2].Phone)
}

func TestCustomerKey(t *testing.T) {
	id := int64(3)
	assert.Equal(t, "id:3", CustomerKey{ID: &id, Name: "x"}.String())
	assert.Equal(t, "name:ada", CustomerKey{Name: "  ADA "}.String())
	assert.True(t, CustomerKey{Name: " "}.Empty())
	assert.True(t, CustomerKey{Name: "ada"}.Matches(Sale{CustomerName: "Ada"}))
	assert.False(t, CustomerKey{ID: &id}.Matches(Sale{CustomerName: "Ada"}))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 2, 28, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, 0, DaysBetween(b, b))
}

func TestDaysBetweenWestOfUTC(t *testing.T) {
	saleDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	newYork := time.FixedZone("EST", -5*3600)

	assert.Equal(t, 0, DaysBetween(saleDate, time.Date(2024, 3, 10, 0, 0, 0, 0, newYork)))
	assert.Equal(t, 0, DaysBetween(saleDate, time.Date(2024, 3, 10, 23, 30, 0, 0, newYork)))
	assert.Equal(t, 1, DaysBetween(saleDate, time.Date(2024, 3, 11, 0, 5, 0, 0, newYork)))

	rows := GroupReceivables([]Sale{{ID: 1, CustomerName: "Ada", Date: saleDate, Balance: d("200")}}, nil, time.Date(2024, 3, 10, 9, 0, 0, 0, newYork))
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].DaysSinceSale)
}
