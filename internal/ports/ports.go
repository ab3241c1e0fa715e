package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/domain"
)

// ErrLockHeld is returned by a Locker when another holder owns the key.
var ErrLockHeld = errors.New("lock held")

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Ledger runs a unit of work against the books in a single transaction.
// fn's error rolls back every write made through tx.
type Ledger interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the set of writes a job or payment cascade may perform.
type LedgerTx interface {
	GetJobForUpdate(ctx context.Context, ownerUserID, id int64) (*domain.SewingJob, error)
	InsertJob(ctx context.Context, ownerUserID int64, job domain.SewingJob) (*domain.SewingJob, error)
	UpdateJob(ctx context.Context, ownerUserID int64, job domain.SewingJob) (*domain.SewingJob, error)

	FindSewingSale(ctx context.Context, ownerUserID, jobID int64) (*domain.Sale, error)
	InsertSale(ctx context.Context, ownerUserID int64, sale domain.Sale) (*domain.Sale, error)
	UpdateSaleAmounts(ctx context.Context, ownerUserID, saleID int64, total, paid decimal.Decimal) error
	ListUnpaidSalesForUpdate(ctx context.Context, ownerUserID int64, key domain.CustomerKey) ([]domain.Sale, error)

	GetInventoryItemForUpdate(ctx context.Context, ownerUserID, id int64) (*domain.InventoryItem, error)
	ConsumeInventory(ctx context.Context, ownerUserID, itemID int64, qty decimal.Decimal, reference string) (*domain.InventoryItem, error)

	TouchCustomerOrderDate(ctx context.Context, ownerUserID, customerID int64, date time.Time) error
	InsertCollection(ctx context.Context, ownerUserID int64, c domain.Collection) (*domain.Collection, error)
	LogActivity(ctx context.Context, ownerUserID int64, entry domain.ActivityLog) error
}

// ReceivableReader reads the open side of the sales ledger.
type ReceivableReader interface {
	ListUnpaidSales(ctx context.Context, ownerUserID int64) ([]domain.Sale, error)
	CustomerPhones(ctx context.Context, ownerUserID int64, ids []int64) (map[int64]string, error)
}

// ReportReader returns the raw rows a period report is folded from.
type ReportReader interface {
	SalesBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.Sale, error)
	ExpensesBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.Expense, error)
	JobsBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.SewingJob, error)
}

// SettingsStore persists flat key/value settings per owner.
type SettingsStore interface {
	Load(ctx context.Context, ownerUserID int64) (map[string]string, error)
	Save(ctx context.Context, ownerUserID int64, values map[string]string) error
}

// SettingsCache holds assembled settings between requests.
type SettingsCache interface {
	Get(ctx context.Context, ownerUserID int64) (*domain.BusinessSettings, bool)
	Set(ctx context.Context, ownerUserID int64, s domain.BusinessSettings)
	Invalidate(ctx context.Context, ownerUserID int64)
}

// Locker serialises work on a key across processes.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
