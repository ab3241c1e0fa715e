package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/metrics"
	"tailorbooks-backend/internal/ports"
	"tailorbooks-backend/internal/repository"
)

// fabricUnitsPerJob is how much stock a job drawing on the shop's own fabric consumes.
var fabricUnitsPerJob = decimal.NewFromInt(1)

// JobService owns the sewing job payment state machine and the writes that follow a job into Done.
type JobService struct {
	Ledger ports.Ledger
	Logger *slog.Logger
	Clock  Clock
}

type JobInput struct {
	Date                 time.Time
	CustomerID           *int64
	CustomerName         string
	FabricSource         domain.FabricSource
	InventoryItemID      *int64
	Item                 string
	MaterialCost         decimal.Decimal
	LabourCharge         decimal.Decimal
	AmountPaid           decimal.Decimal
	DeliveryDateExpected *time.Time
	DeliveryDateActual   *time.Time
	FittingDate          *time.Time
	Notes                string
}

// JobResult is the saved job plus every row the cascade wrote alongside it.
type JobResult struct {
	Job        domain.SewingJob
	SewingSale *domain.Sale
	FabricSale *domain.Sale
	Inventory  *domain.InventoryItem
}

func (in JobInput) validate() error {
	if in.MaterialCost.IsNegative() || in.LabourCharge.IsNegative() || in.AmountPaid.IsNegative() {
		return invalid("amounts must not be negative")
	}
	if in.FabricSource != "" && !in.FabricSource.Valid() {
		return invalid("fabric_source must be %q or %q", domain.FabricOurs, domain.FabricCustomer)
	}
	return nil
}

func (in JobInput) applyTo(j domain.SewingJob, today time.Time) domain.SewingJob {
	j.Date = in.Date
	if j.Date.IsZero() {
		j.Date = today
	}
	j.CustomerID = in.CustomerID
	j.CustomerName = in.CustomerName
	j.FabricSource = in.FabricSource
	if j.FabricSource == "" {
		j.FabricSource = domain.FabricCustomer
	}
	j.InventoryItemID = in.InventoryItemID
	j.Item = in.Item
	j.MaterialCost = in.MaterialCost
	j.LabourCharge = in.LabourCharge
	j.AmountPaid = in.AmountPaid
	j.DeliveryDateExpected = in.DeliveryDateExpected
	if in.DeliveryDateActual != nil {
		j.DeliveryDateActual = in.DeliveryDateActual
	}
	j.FittingDate = in.FittingDate
	j.Notes = in.Notes
	j.Recompute()
	return j
}

// Create inserts a job. A job created fully paid runs the Done cascade, including fabric consumption.
func (s JobService) Create(ctx context.Context, actor Actor, in JobInput) (*JobResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	today := s.Clock.today()
	job := in.applyTo(domain.SewingJob{}, today)

	var res JobResult
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		if job.DrawsFromStock() {
			if _, err := tx.GetInventoryItemForUpdate(ctx, actor.OwnerID, *job.InventoryItemID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return invalid("inventory item %d not found", *job.InventoryItemID)
				}
				return err
			}
		}
		if job.Status == domain.JobDone && job.DeliveryDateActual == nil {
			job.DeliveryDateActual = &today
		}
		saved, err := tx.InsertJob(ctx, actor.OwnerID, job)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		res.Job = *saved

		if saved.Status == domain.JobDone {
			if err := s.syncSewingSale(ctx, tx, actor, &res, true); err != nil {
				return err
			}
			if saved.DrawsFromStock() {
				if err := s.consumeFabric(ctx, tx, actor, &res); err != nil {
					return err
				}
			}
		}
		if err := s.touchCustomer(ctx, tx, actor, res.Job); err != nil {
			return err
		}
		return tx.LogActivity(ctx, actor.OwnerID, domain.ActivityLog{
			Title:   "Job created",
			Message: fmt.Sprintf("Job #%d for %s (%s) recorded as %s", saved.ID, saved.CustomerName, saved.Item, saved.Status),
			Actor:   actor.Name,
			Type:    domain.LogInfo,
		})
	})
	metrics.Observe("job_create", err)
	if err != nil {
		s.logFailure("job create failed", actor, 0, err)
		return nil, err
	}
	if res.Job.Status == domain.JobDone {
		metrics.JobsCompleted.Inc()
	}
	return &res, nil
}

// Update rewrites a job, re-syncing its Sewing sale when one exists and running the
// Done cascade (without fabric consumption) when the edit completes the job.
func (s JobService) Update(ctx context.Context, actor Actor, id int64, in JobInput) (*JobResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	today := s.Clock.today()
	var res JobResult
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		prev, err := tx.GetJobForUpdate(ctx, actor.OwnerID, id)
		if err != nil {
			return err
		}
		next := in.applyTo(*prev, today)
		return s.save(ctx, tx, actor, prev, next, &res, "Job updated")
	})
	metrics.Observe("job_update", err)
	if err != nil {
		s.logFailure("job update failed", actor, id, err)
		return nil, err
	}
	return &res, nil
}

// Complete marks a job as fully paid.
func (s JobService) Complete(ctx context.Context, actor Actor, id int64) (*JobResult, error) {
	var res JobResult
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		prev, err := tx.GetJobForUpdate(ctx, actor.OwnerID, id)
		if err != nil {
			return err
		}
		if prev.Status == domain.JobDone {
			return invalid("job %d is already done", id)
		}
		next := *prev
		next.Recompute()
		if !next.TotalCharged.IsPositive() {
			return invalid("job %d has nothing to charge", id)
		}
		next.AmountPaid = next.TotalCharged
		next.Recompute()
		return s.save(ctx, tx, actor, prev, next, &res, "Job completed")
	})
	metrics.Observe("job_complete", err)
	if err != nil {
		s.logFailure("job complete failed", actor, id, err)
		return nil, err
	}
	return &res, nil
}

func (s JobService) save(ctx context.Context, tx ports.LedgerTx, actor Actor, prev *domain.SewingJob, next domain.SewingJob, res *JobResult, title string) error {
	entering := domain.EntersDone(prev.Status, next.Status)
	if entering && next.DeliveryDateActual == nil {
		today := s.Clock.today()
		next.DeliveryDateActual = &today
	}
	saved, err := tx.UpdateJob(ctx, actor.OwnerID, next)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	res.Job = *saved

	if err := s.syncSewingSale(ctx, tx, actor, res, entering); err != nil {
		return err
	}
	if err := s.touchCustomer(ctx, tx, actor, res.Job); err != nil {
		return err
	}
	if entering {
		metrics.JobsCompleted.Inc()
	}
	return tx.LogActivity(ctx, actor.OwnerID, domain.ActivityLog{
		Title:   title,
		Message: fmt.Sprintf("Job #%d: %s -> %s, paid %s of %s", saved.ID, prev.Status, saved.Status, saved.AmountPaid.StringFixed(2), saved.TotalCharged.StringFixed(2)),
		Actor:   actor.Name,
		Type:    domain.LogInfo,
	})
}

// syncSewingSale keeps the job's single Sewing sale in step with the job.
// An existing sale is always updated; a missing one is inserted only when insert is set.
func (s JobService) syncSewingSale(ctx context.Context, tx ports.LedgerTx, actor Actor, res *JobResult, insert bool) error {
	job := res.Job
	sale, err := tx.FindSewingSale(ctx, actor.OwnerID, job.ID)
	switch {
	case err == nil:
		if err := tx.UpdateSaleAmounts(ctx, actor.OwnerID, sale.ID, job.TotalCharged, job.AmountPaid); err != nil {
			return fmt.Errorf("sync sewing sale: %w", err)
		}
		sale.TotalAmount = job.TotalCharged
		sale.AmountPaid = job.AmountPaid
		sale.Recompute()
		res.SewingSale = sale
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("find sewing sale: %w", err)
	case !insert:
		return nil
	}

	jobID := job.ID
	sale, err = tx.InsertSale(ctx, actor.OwnerID, domain.Sale{
		Date:         job.Date,
		Type:         domain.SaleSewing,
		CustomerID:   job.CustomerID,
		CustomerName: job.CustomerName,
		TotalAmount:  job.TotalCharged,
		AmountPaid:   job.AmountPaid,
		CostAmount:   job.MaterialCost,
		JobID:        &jobID,
		Notes:        job.Item,
	})
	if err != nil {
		return fmt.Errorf("insert sewing sale: %w", err)
	}
	res.SewingSale = sale
	return nil
}

// consumeFabric records the shop's fabric going into a new job: a Fabric sale at unit cost
// and one unit added to the item's quantity_used.
func (s JobService) consumeFabric(ctx context.Context, tx ports.LedgerTx, actor Actor, res *JobResult) error {
	job := res.Job
	item, err := tx.GetInventoryItemForUpdate(ctx, actor.OwnerID, *job.InventoryItemID)
	if err != nil {
		return fmt.Errorf("load fabric: %w", err)
	}
	jobID := job.ID
	sale, err := tx.InsertSale(ctx, actor.OwnerID, domain.Sale{
		Date:         job.Date,
		Type:         domain.SaleFabric,
		CustomerID:   job.CustomerID,
		CustomerName: job.CustomerName,
		TotalAmount:  item.UnitCost,
		AmountPaid:   item.UnitCost,
		CostAmount:   item.UnitCost,
		JobID:        &jobID,
		Notes:        fmt.Sprintf("%s for job #%d", item.ItemName, job.ID),
	})
	if err != nil {
		return fmt.Errorf("insert fabric sale: %w", err)
	}
	res.FabricSale = sale

	updated, err := tx.ConsumeInventory(ctx, actor.OwnerID, item.ID, fabricUnitsPerJob, fmt.Sprintf("job:%d", job.ID))
	if err != nil {
		return fmt.Errorf("consume fabric: %w", err)
	}
	res.Inventory = updated
	return nil
}

func (s JobService) touchCustomer(ctx context.Context, tx ports.LedgerTx, actor Actor, job domain.SewingJob) error {
	if job.CustomerID == nil {
		return nil
	}
	if err := tx.TouchCustomerOrderDate(ctx, actor.OwnerID, *job.CustomerID, job.Date); err != nil {
		return fmt.Errorf("touch customer: %w", err)
	}
	return nil
}

func (s JobService) logFailure(msg string, actor Actor, jobID int64, err error) {
	if s.Logger == nil || errors.Is(err, ErrValidation) || errors.Is(err, repository.ErrNotFound) {
		return
	}
	s.Logger.Error(msg, "owner", actor.OwnerID, "job", jobID, "err", err)
}
