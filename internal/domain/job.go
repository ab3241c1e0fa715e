package domain

import "github.com/shopspring/decimal"

// StatusFor partitions a job by how much of its charge has been paid.
// A job with nothing to charge stays Pending whatever was paid.
func StatusFor(totalCharged, amountPaid decimal.Decimal) JobStatus {
	switch {
	case !totalCharged.IsPositive():
		return JobPending
	case !amountPaid.IsPositive():
		return JobPending
	case amountPaid.GreaterThanOrEqual(totalCharged):
		return JobDone
	default:
		return JobPart
	}
}

// Recompute refreshes total_charged, balance, profit and status from the money fields.
func (j *SewingJob) Recompute() {
	j.TotalCharged = j.MaterialCost.Add(j.LabourCharge)
	j.Balance = j.TotalCharged.Sub(j.AmountPaid)
	j.Profit = j.AmountPaid.Sub(j.MaterialCost)
	j.Status = StatusFor(j.TotalCharged, j.AmountPaid)
}

// DrawsFromStock reports whether the fabric comes out of the shop's own inventory.
func (j SewingJob) DrawsFromStock() bool {
	return j.FabricSource == FabricOurs && j.InventoryItemID != nil
}

// EntersDone reports whether moving from prev to next is a transition into Done.
func EntersDone(prev, next JobStatus) bool {
	return prev != JobDone && next == JobDone
}
