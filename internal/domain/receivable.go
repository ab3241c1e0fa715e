package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerKey identifies a debtor by customer id, or by name for walk-in sales without one.
type CustomerKey struct {
	ID   *int64
	Name string
}

func (k CustomerKey) String() string {
	if k.ID != nil {
		return fmt.Sprintf("id:%d", *k.ID)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(k.Name))
}

// Empty reports whether neither an id nor a name is set.
func (k CustomerKey) Empty() bool {
	return k.ID == nil && strings.TrimSpace(k.Name) == ""
}

// Matches reports whether the sale belongs to this debtor.
func (k CustomerKey) Matches(s Sale) bool {
	return KeyOf(s).String() == k.String()
}

// KeyOf returns the grouping key for a sale.
func KeyOf(s Sale) CustomerKey {
	return CustomerKey{ID: s.CustomerID, Name: s.CustomerName}
}

type Receivable struct {
	Key              CustomerKey
	CustomerName     string
	Phone            string
	TotalOutstanding decimal.Decimal
	OpenSales        int
	LastSaleDate     time.Time
	DaysSinceSale    int
}

// GroupReceivables folds unpaid sales into one row per debtor, largest debt first.
// phones maps customer id to phone number.
func GroupReceivables(sales []Sale, phones map[int64]string, today time.Time) []Receivable {
	byKey := make(map[string]*Receivable)
	var order []string
	for _, s := range sales {
		if !s.Balance.IsPositive() {
			continue
		}
		key := KeyOf(s)
		k := key.String()
		r, ok := byKey[k]
		if !ok {
			r = &Receivable{Key: key, CustomerName: s.CustomerName, TotalOutstanding: decimal.Zero}
			byKey[k] = r
			order = append(order, k)
		}
		r.TotalOutstanding = r.TotalOutstanding.Add(s.Balance)
		r.OpenSales++
		if s.Date.After(r.LastSaleDate) {
			r.LastSaleDate = s.Date
			if s.CustomerName != "" {
				r.CustomerName = s.CustomerName
			}
		}
	}

	out := make([]Receivable, 0, len(order))
	for _, k := range order {
		r := byKey[k]
		if r.Key.ID != nil {
			r.Phone = phones[*r.Key.ID]
		}
		r.DaysSinceSale = DaysBetween(r.LastSaleDate, today)
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalOutstanding.GreaterThan(out[j].TotalOutstanding)
	})
	return out
}

// DaysBetween counts whole calendar days from the date a to the instant b, read in b's location.
// a is a calendar date as stored, so its fields are taken as they are.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
