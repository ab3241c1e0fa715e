package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleStaff   UserRole = "staff"

	LogInfo    ActivityLogType = "info"
	LogWarning ActivityLogType = "warning"
	LogError   ActivityLogType = "error"

	JobPending JobStatus = "Pending"
	JobPart    JobStatus = "Part"
	JobDone    JobStatus = "Done"

	FabricOurs     FabricSource = "Yours"
	FabricCustomer FabricSource = "Customer's"

	SaleSewing SaleType = "Sewing"
	SaleFabric SaleType = "Fabric"
	SaleOther  SaleType = "Other"

	MovementConsume MovementType = "consume"
	MovementRestock MovementType = "restock"
	MovementAdjust  MovementType = "adjust"
)

type UserRole string
type ActivityLogType string
type JobStatus string
type FabricSource string
type SaleType string
type MovementType string

func (s JobStatus) Valid() bool {
	return s == JobPending || s == JobPart || s == JobDone
}

func (f FabricSource) Valid() bool {
	return f == FabricOurs || f == FabricCustomer
}

func (t SaleType) Valid() bool {
	return t == SaleSewing || t == SaleFabric || t == SaleOther
}

type User struct {
	ID           int64
	OwnerID      *int64
	Name         string
	Email        string
	Role         UserRole
	IsGoogle     bool
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountID is the owner whose rows this user reads and writes.
func (u User) AccountID() int64 {
	if u.OwnerID != nil {
		return *u.OwnerID
	}
	return u.ID
}

type ActivityLog struct {
	ID       int64
	Title    string
	Message  string
	Actor    string
	Type     ActivityLogType
	LoggedAt time.Time
}

type Customer struct {
	ID             int64
	Name           string
	Phone          string
	Address        string
	Preferences    string
	FirstOrderDate *time.Time
	LastOrderDate  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InventoryItem struct {
	ID             int64
	ItemName       string
	Category       string
	QuantityBought decimal.Decimal
	QuantityUsed   decimal.Decimal
	QuantityLeft   decimal.Decimal
	UnitCost       decimal.Decimal
	TotalCost      decimal.Decimal
	ReorderLevel   decimal.Decimal
	Supplier       string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Recompute derives quantity_left and total_cost the same way the store's generated columns do.
func (i *InventoryItem) Recompute() {
	i.QuantityLeft = i.QuantityBought.Sub(i.QuantityUsed)
	i.TotalCost = i.QuantityBought.Mul(i.UnitCost)
}

// LowStock reports whether the remaining quantity is at or below the reorder level.
func (i InventoryItem) LowStock() bool {
	return i.QuantityLeft.LessThanOrEqual(i.ReorderLevel)
}

type InventoryMovement struct {
	ID        int64
	ItemID    int64
	Change    decimal.Decimal
	Remaining decimal.Decimal
	Type      MovementType
	Reference string
	Note      string
	CreatedAt time.Time
}

type SewingJob struct {
	ID                   int64
	Date                 time.Time
	CustomerID           *int64
	CustomerName         string
	FabricSource         FabricSource
	InventoryItemID      *int64
	Item                 string
	MaterialCost         decimal.Decimal
	LabourCharge         decimal.Decimal
	AmountPaid           decimal.Decimal
	TotalCharged         decimal.Decimal
	Balance              decimal.Decimal
	Profit               decimal.Decimal
	Status               JobStatus
	DeliveryDateExpected *time.Time
	DeliveryDateActual   *time.Time
	FittingDate          *time.Time
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Sale struct {
	ID           int64
	Date         time.Time
	Type         SaleType
	CustomerID   *int64
	CustomerName string
	TotalAmount  decimal.Decimal
	AmountPaid   decimal.Decimal
	Balance      decimal.Decimal
	CostAmount   decimal.Decimal
	JobID        *int64
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Recompute derives the sale balance.
func (s *Sale) Recompute() {
	s.Balance = s.TotalAmount.Sub(s.AmountPaid)
}

// ErrJobSale rejects a direct change to a sale written by a sewing job.
var ErrJobSale = errors.New("sale belongs to a sewing job, edit the job instead")

// CheckDirectEdit reports whether next may replace s outside the job flow.
// Sales written by a job only take date and notes changes, and cannot be deleted.
func (s Sale) CheckDirectEdit(next *Sale) error {
	if s.JobID == nil {
		return nil
	}
	if next == nil ||
		next.Type != s.Type ||
		KeyOf(*next).String() != KeyOf(s).String() ||
		!next.TotalAmount.Equal(s.TotalAmount) ||
		!next.AmountPaid.Equal(s.AmountPaid) ||
		!next.CostAmount.Equal(s.CostAmount) {
		return ErrJobSale
	}
	return nil
}

type Collection struct {
	ID            int64
	ReceiptNo     string
	Date          time.Time
	CustomerID    *int64
	CustomerName  string
	Amount        decimal.Decimal
	PaymentMethod string
	Notes         string
	CreatedAt     time.Time
}

type Expense struct {
	ID            int64
	Date          time.Time
	Category      string
	Description   string
	Amount        decimal.Decimal
	PaymentMethod string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
