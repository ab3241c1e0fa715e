package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name  string
		total string
		paid  string
		want  JobStatus
	}{
		{"nothing charged", "0", "0", JobPending},
		{"nothing charged but paid", "0", "500", JobPending},
		{"negative total", "-10", "5", JobPending},
		{"unpaid", "5000", "0", JobPending},
		{"partly paid", "5000", "1", JobPart},
		{"one short", "5000", "4999.99", JobPart},
		{"exactly paid", "5000", "5000", JobDone},
		{"overpaid", "5000", "6000", JobDone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(d(tc.total), d(tc.paid)))
		})
	}
}

func TestSewingJobRecompute(t *testing.T) {
	job := SewingJob{MaterialCost: d("2000"), LabourCharge: d("3000"), AmountPaid: d("5000")}
	job.Recompute()

	assert.True(t, job.TotalCharged.Equal(d("5000")))
	assert.True(t, job.Balance.IsZero())
	assert.True(t, job.Profit.Equal(d("3000")))
	assert.Equal(t, JobDone, job.Status)

	job.AmountPaid = d("1500")
	job.Recompute()
	assert.True(t, job.Balance.Equal(d("3500")))
	assert.True(t, job.Profit.Equal(d("-500")))
	assert.Equal(t, JobPart, job.Status)
}

func TestSewingJobRecomputeDecimalExact(t *testing.T) {
	job := SewingJob{MaterialCost: d("0.1"), LabourCharge: d("0.2"), AmountPaid: d("0.3")}
	job.Recompute()

	assert.True(t, job.Balance.IsZero())
	assert.Equal(t, JobDone, job.Status)
}

func TestDrawsFromStock(t *testing.T) {
	id := int64(7)
	assert.True(t, SewingJob{FabricSource: FabricOurs, InventoryItemID: &id}.DrawsFromStock())
	assert.False(t, SewingJob{FabricSource: FabricOurs}.DrawsFromStock())
	assert.False(t, SewingJob{FabricSource: FabricCustomer, InventoryItemID: &id}.DrawsFromStock())
}

func TestEntersDone(t *testing.T) {
	assert.True(t, EntersDone(JobPending, JobDone))
	assert.True(t, EntersDone(JobPart, JobDone))
	assert.False(t, EntersDone(JobDone, JobDone))
	assert.False(t, EntersDone(JobPending, JobPart))
}

func TestInventoryItemRecompute(t *testing.T) {
	item := InventoryItem{QuantityBought: d("10"), QuantityUsed: d("3"), UnitCost: d("1200"), ReorderLevel: d("6")}
	item.Recompute()
	assert.True(t, item.QuantityLeft.Equal(d("7")))
	assert.True(t, item.TotalCost.Equal(d("12000")))
	assert.False(t, item.LowStock())

	item.QuantityUsed = item.QuantityUsed.Add(decimal.NewFromInt(1))
	item.Recompute()
	assert.True(t, item.QuantityLeft.Equal(d("6")))
	assert.True(t, item.LowStock())
}
