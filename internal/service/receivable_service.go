package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/metrics"
	"tailorbooks-backend/internal/ports"
	"tailorbooks-backend/internal/repository"
)

const paymentLockTTL = 30 * time.Second

// ReceivableService reports who owes money and spreads incoming payments over their open sales.
type ReceivableService struct {
	Reader ports.ReceivableReader
	Ledger ports.Ledger
	Locker ports.Locker
	Logger *slog.Logger
	Clock  Clock
}

// List groups open sales by debtor, largest debt first.
func (s ReceivableService) List(ctx context.Context, ownerUserID int64) ([]domain.Receivable, error) {
	sales, err := s.Reader.ListUnpaidSales(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid sales: %w", err)
	}
	seen := make(map[int64]struct{})
	var ids []int64
	for _, sale := range sales {
		if sale.CustomerID == nil {
			continue
		}
		if _, ok := seen[*sale.CustomerID]; ok {
			continue
		}
		seen[*sale.CustomerID] = struct{}{}
		ids = append(ids, *sale.CustomerID)
	}
	phones, err := s.Reader.CustomerPhones(ctx, ownerUserID, ids)
	if err != nil {
		return nil, fmt.Errorf("customer phones: %w", err)
	}
	return domain.GroupReceivables(sales, phones, s.Clock.today()), nil
}

type PaymentInput struct {
	CustomerID    *int64
	CustomerName  string
	Amount        decimal.Decimal
	PaymentMethod string
	Date          time.Time
	Notes         string
}

type PaymentResult struct {
	Collection  domain.Collection
	Allocations []domain.Allocation
	Jobs        []domain.SewingJob
	Remaining   decimal.Decimal
}

// ApplyPayment records one collection and allocates it to the debtor's open sales oldest first.
// Linked jobs take their share and have their status recomputed.
func (s ReceivableService) ApplyPayment(ctx context.Context, actor Actor, in PaymentInput) (*PaymentResult, error) {
	key := domain.CustomerKey{ID: in.CustomerID, Name: strings.TrimSpace(in.CustomerName)}
	if key.Empty() {
		return nil, invalid("customer_id or customer_name is required")
	}
	if !in.Amount.IsPositive() {
		return nil, invalid("amount must be greater than zero")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "cash"
	}
	if in.Date.IsZero() {
		in.Date = s.Clock.today()
	}

	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, fmt.Sprintf("payment:%d:%s", actor.OwnerID, key), paymentLockTTL)
		if err != nil {
			if errors.Is(err, ports.ErrLockHeld) {
				return nil, fmt.Errorf("%w: a payment for this customer is already in progress", ErrConflict)
			}
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil && s.Logger != nil {
				s.Logger.Warn("release payment lock", "owner", actor.OwnerID, "customer", key.String(), "err", err)
			}
		}()
	}

	var res PaymentResult
	err := s.Ledger.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		sales, err := tx.ListUnpaidSalesForUpdate(ctx, actor.OwnerID, key)
		if err != nil {
			return fmt.Errorf("lock open sales: %w", err)
		}
		outstanding := domain.TotalBalance(sales)
		if !outstanding.IsPositive() {
			return invalid("customer has no outstanding balance")
		}
		if in.Amount.GreaterThan(outstanding) {
			return invalid("amount %s exceeds outstanding balance %s", in.Amount.StringFixed(2), outstanding.StringFixed(2))
		}

		name := key.Name
		if name == "" {
			name = sales[len(sales)-1].CustomerName
		}
		collection, err := tx.InsertCollection(ctx, actor.OwnerID, domain.Collection{
			ReceiptNo:     newReceiptNo(),
			Date:          in.Date,
			CustomerID:    in.CustomerID,
			CustomerName:  name,
			Amount:        in.Amount,
			PaymentMethod: in.PaymentMethod,
			Notes:         in.Notes,
		})
		if err != nil {
			return fmt.Errorf("insert collection: %w", err)
		}
		res.Collection = *collection

		byID := make(map[int64]domain.Sale, len(sales))
		for _, sale := range sales {
			byID[sale.ID] = sale
		}
		allocs, remaining := domain.AllocateFIFO(in.Amount, sales)
		res.Allocations = allocs
		res.Remaining = outstanding.Sub(in.Amount)

		for _, a := range allocs {
			sale := byID[a.SaleID]
			if err := tx.UpdateSaleAmounts(ctx, actor.OwnerID, sale.ID, sale.TotalAmount, sale.AmountPaid.Add(a.Amount)); err != nil {
				return fmt.Errorf("apply to sale %d: %w", sale.ID, err)
			}
			if a.JobID == nil {
				continue
			}
			job, err := tx.GetJobForUpdate(ctx, actor.OwnerID, *a.JobID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("load job %d: %w", *a.JobID, err)
			}
			job.AmountPaid = job.AmountPaid.Add(a.Amount)
			job.Recompute()
			saved, err := tx.UpdateJob(ctx, actor.OwnerID, *job)
			if err != nil {
				return fmt.Errorf("apply to job %d: %w", job.ID, err)
			}
			res.Jobs = append(res.Jobs, *saved)
		}
		if remaining.IsPositive() {
			return fmt.Errorf("allocation left %s unplaced", remaining.StringFixed(2))
		}

		return tx.LogActivity(ctx, actor.OwnerID, domain.ActivityLog{
			Title:   "Payment received",
			Message: fmt.Sprintf("%s paid %s by %s (%s) across %d sale(s)", name, in.Amount.StringFixed(2), in.PaymentMethod, collection.ReceiptNo, len(allocs)),
			Actor:   actor.Name,
			Type:    domain.LogInfo,
		})
	})
	metrics.Observe("payment_apply", err)
	if err != nil {
		if s.Logger != nil && !errors.Is(err, ErrValidation) {
			s.Logger.Error("apply payment failed", "owner", actor.OwnerID, "customer", key.String(), "err", err)
		}
		return nil, err
	}
	metrics.PaymentsApplied.Inc()
	return &res, nil
}

func newReceiptNo() string {
	return "RCPT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
