package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/ports"
)

// Ledger runs job and payment cascades inside one pgx transaction.
type Ledger struct {
	DB *db.Postgres
}

func (l Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	tx, err := l.DB.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, ledgerTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type ledgerTx struct {
	q pgxQuerier
}

func (t ledgerTx) GetJobForUpdate(ctx context.Context, ownerUserID, id int64) (*domain.SewingJob, error) {
	return getJobWith(ctx, t.q, ownerUserID, id, true)
}

func (t ledgerTx) InsertJob(ctx context.Context, ownerUserID int64, job domain.SewingJob) (*domain.SewingJob, error) {
	return insertJobWith(ctx, t.q, ownerUserID, job)
}

func (t ledgerTx) UpdateJob(ctx context.Context, ownerUserID int64, job domain.SewingJob) (*domain.SewingJob, error) {
	return updateJobWith(ctx, t.q, ownerUserID, job)
}

func (t ledgerTx) FindSewingSale(ctx context.Context, ownerUserID, jobID int64) (*domain.Sale, error) {
	return findSewingSaleWith(ctx, t.q, ownerUserID, jobID)
}

func (t ledgerTx) InsertSale(ctx context.Context, ownerUserID int64, sale domain.Sale) (*domain.Sale, error) {
	return insertSaleWith(ctx, t.q, ownerUserID, sale)
}

func (t ledgerTx) UpdateSaleAmounts(ctx context.Context, ownerUserID, saleID int64, total, paid decimal.Decimal) error {
	return updateSaleAmountsWith(ctx, t.q, ownerUserID, saleID, total, paid)
}

func (t ledgerTx) ListUnpaidSalesForUpdate(ctx context.Context, ownerUserID int64, key domain.CustomerKey) ([]domain.Sale, error) {
	return listUnpaidForUpdateWith(ctx, t.q, ownerUserID, key)
}

func (t ledgerTx) GetInventoryItemForUpdate(ctx context.Context, ownerUserID, id int64) (*domain.InventoryItem, error) {
	return getInventoryItemForUpdateWith(ctx, t.q, ownerUserID, id)
}

func (t ledgerTx) ConsumeInventory(ctx context.Context, ownerUserID, itemID int64, qty decimal.Decimal, reference string) (*domain.InventoryItem, error) {
	return consumeWith(ctx, t.q, ownerUserID, itemID, qty, reference, "used for sewing job")
}

func (t ledgerTx) TouchCustomerOrderDate(ctx context.Context, ownerUserID, customerID int64, date time.Time) error {
	return touchOrderDateWith(ctx, t.q, ownerUserID, customerID, date)
}

func (t ledgerTx) InsertCollection(ctx context.Context, ownerUserID int64, c domain.Collection) (*domain.Collection, error) {
	return insertCollectionWith(ctx, t.q, ownerUserID, c)
}

func (t ledgerTx) LogActivity(ctx context.Context, ownerUserID int64, entry domain.ActivityLog) error {
	_, err := insertActivityWith(ctx, t.q, ownerUserID, entry)
	return err
}

// Receivables reads open sales together with the debtors' phone numbers.
type Receivables struct {
	Sales     SaleRepository
	Customers CustomerRepository
}

func (r Receivables) ListUnpaidSales(ctx context.Context, ownerUserID int64) ([]domain.Sale, error) {
	return r.Sales.ListUnpaidSales(ctx, ownerUserID)
}

func (r Receivables) CustomerPhones(ctx context.Context, ownerUserID int64, ids []int64) (map[int64]string, error) {
	return r.Customers.Phones(ctx, ownerUserID, ids)
}

// ReportSource feeds the period reports.
type ReportSource struct {
	Sales    SaleRepository
	Expenses ExpenseRepository
	Jobs     JobRepository
}

func (r ReportSource) SalesBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.Sale, error) {
	return r.Sales.SalesBetween(ctx, ownerUserID, from, to)
}

func (r ReportSource) ExpensesBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.Expense, error) {
	return r.Expenses.ExpensesBetween(ctx, ownerUserID, from, to)
}

func (r ReportSource) JobsBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.SewingJob, error) {
	return r.Jobs.JobsBetween(ctx, ownerUserID, from, to)
}

var (
	_ ports.Ledger           = Ledger{}
	_ ports.ReceivableReader = Receivables{}
	_ ports.ReportReader     = ReportSource{}
	_ ports.SettingsStore    = SettingsRepository{}
)
