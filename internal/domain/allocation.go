package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Allocation is the share of a payment applied to one sale.
type Allocation struct {
	SaleID int64
	JobID  *int64
	Amount decimal.Decimal
}

// SortOldestFirst orders sales by date, then id, in place.
func SortOldestFirst(sales []Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		if !sales[i].Date.Equal(sales[j].Date) {
			return sales[i].Date.Before(sales[j].Date)
		}
		return sales[i].ID < sales[j].ID
	})
}

// AllocateFIFO spreads amount over the unpaid sales oldest first, never exceeding a sale's balance.
// It returns the allocations in application order and whatever could not be placed.
func AllocateFIFO(amount decimal.Decimal, sales []Sale) ([]Allocation, decimal.Decimal) {
	ordered := make([]Sale, len(sales))
	copy(ordered, sales)
	SortOldestFirst(ordered)

	remaining := amount
	var out []Allocation
	for _, s := range ordered {
		if !remaining.IsPositive() {
			break
		}
		if !s.Balance.IsPositive() {
			continue
		}
		portion := decimal.Min(remaining, s.Balance)
		out = append(out, Allocation{SaleID: s.ID, JobID: s.JobID, Amount: portion})
		remaining = remaining.Sub(portion)
	}
	return out, remaining
}

// TotalBalance sums the positive balances of sales.
func TotalBalance(sales []Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		if s.Balance.IsPositive() {
			total = total.Add(s.Balance)
		}
	}
	return total
}
