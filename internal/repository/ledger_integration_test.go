//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
	"tailorbooks-backend/internal/service"
	"tailorbooks-backend/internal/testhelpers"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLedgerCascadesAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	pg := testhelpers.StartPostgres(t)

	owner, err := repository.UserRepository{DB: pg}.Create(ctx, repository.CreateUserParams{
		Name: "Owner", Email: "owner@example.com", Role: domain.RoleManager,
	})
	require.NoError(t, err)

	customers := repository.CustomerRepository{DB: pg}
	ada, err := customers.Create(ctx, owner.ID, domain.Customer{Name: "Ada", Phone: "+2348012345678"})
	require.NoError(t, err)

	inventory := repository.InventoryRepository{DB: pg}
	ankara, err := inventory.Create(ctx, owner.ID, domain.InventoryItem{
		ItemName: "Ankara", QuantityBought: dec("10"), UnitCost: dec("1500"), ReorderLevel: dec("2"),
	})
	require.NoError(t, err)

	clock := service.Clock{Now: func() time.Time { return time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC) }, Location: time.UTC}
	ledger := repository.Ledger{DB: pg}
	jobs := service.JobService{Ledger: ledger, Clock: clock}
	actor := service.Actor{OwnerID: owner.ID, Name: "Owner"}

	done, err := jobs.Create(ctx, actor, service.JobInput{
		Date:            time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:      &ada.ID,
		CustomerName:    ada.Name,
		FabricSource:    domain.FabricOurs,
		InventoryItemID: &ankara.ID,
		Item:            "Kaftan",
		MaterialCost:    dec("1500"),
		LabourCharge:    dec("2500"),
		AmountPaid:      dec("4000"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, done.Job.Status)
	require.NotNil(t, done.SewingSale)
	require.NotNil(t, done.FabricSale)

	item, err := inventory.Get(ctx, owner.ID, ankara.ID)
	require.NoError(t, err)
	assert.True(t, item.QuantityLeft.Equal(dec("9")), "generated quantity_left follows quantity_used")

	stored, err := customers.Get(ctx, owner.ID, ada.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastOrderDate)

	// Two unpaid jobs, then one payment that covers the older in full.
	for _, day := range []int{5, 6} {
		_, err := jobs.Create(ctx, actor, service.JobInput{
			Date:         time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			CustomerID:   &ada.ID,
			CustomerName: ada.Name,
			LabourCharge: dec("3000"),
		})
		require.NoError(t, err)
	}
	sales := repository.SaleRepository{DB: pg}
	open, err := sales.ListUnpaidSales(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, open, "pending jobs do not post sales")

	page, err := repository.JobRepository{DB: pg}.List(ctx, owner.ID, repository.ListParams{Status: string(domain.JobPending)})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	for _, j := range page.Items {
		_, err := jobs.Complete(ctx, actor, j.ID)
		require.NoError(t, err)
	}

	settled, err := sales.ListByCustomer(ctx, owner.ID, ada.ID)
	require.NoError(t, err)
	for _, s := range settled {
		assert.True(t, s.Balance.IsZero(), "sale %d balance", s.ID)
	}

	// A hand-entered credit sale is what payments allocate against.
	credit, err := sales.Create(ctx, owner.ID, domain.Sale{
		Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Type: domain.SaleOther,
		CustomerID: &ada.ID, CustomerName: ada.Name, TotalAmount: dec("2000"), AmountPaid: dec("500"),
	})
	require.NoError(t, err)
	assert.True(t, credit.Balance.Equal(dec("1500")))

	receivables := service.ReceivableService{
		Reader: repository.Receivables{Sales: sales, Customers: customers},
		Ledger: ledger,
		Clock:  clock,
	}
	rows, err := receivables.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "+2348012345678", rows[0].Phone)

	res, err := receivables.ApplyPayment(ctx, actor, service.PaymentInput{CustomerID: &ada.ID, Amount: dec("1000"), PaymentMethod: "transfer"})
	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	assert.True(t, res.Remaining.Equal(dec("500")))

	after, err := sales.Get(ctx, owner.ID, credit.ID)
	require.NoError(t, err)
	assert.True(t, after.Balance.Equal(dec("500")))

	collections, err := repository.CollectionRepository{DB: pg}.List(ctx, owner.ID, repository.ListParams{})
	require.NoError(t, err)
	require.EqualValues(t, 1, collections.Total)
	assert.Equal(t, "transfer", collections.Items[0].PaymentMethod)
}

func TestJobSalesOnlyChangeThroughTheirJob(t *testing.T) {
	ctx := context.Background()
	pg := testhelpers.StartPostgres(t)

	owner, err := repository.UserRepository{DB: pg}.Create(ctx, repository.CreateUserParams{
		Name: "Owner", Email: "owner@example.com", Role: domain.RoleManager,
	})
	require.NoError(t, err)

	clock := service.Clock{Now: func() time.Time { return time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC) }, Location: time.UTC}
	jobs := service.JobService{Ledger: repository.Ledger{DB: pg}, Clock: clock}
	actor := service.Actor{OwnerID: owner.ID, Name: "Owner"}

	res, err := jobs.Create(ctx, actor, service.JobInput{
		Date:         time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		CustomerName: "Bola",
		LabourCharge: dec("3000"),
		AmountPaid:   dec("3000"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.SewingSale)
	linked := *res.SewingSale

	sales := repository.SaleRepository{DB: pg}

	retyped := linked
	retyped.Type = domain.SaleOther
	_, err = sales.Update(ctx, owner.ID, retyped)
	require.ErrorIs(t, err, domain.ErrJobSale)

	repriced := linked
	repriced.AmountPaid = dec("1000")
	_, err = sales.Update(ctx, owner.ID, repriced)
	require.ErrorIs(t, err, domain.ErrJobSale)

	require.ErrorIs(t, sales.Delete(ctx, owner.ID, linked.ID), domain.ErrJobSale)

	annotated := linked
	annotated.Notes = "collected by Bola's sister"
	saved, err := sales.Update(ctx, owner.ID, annotated)
	require.NoError(t, err)
	assert.Equal(t, "collected by Bola's sister", saved.Notes)
	assert.Equal(t, domain.SaleSewing, saved.Type)

	// Re-saving the job in and out of Done still finds its one sale.
	in := service.JobInput{Date: res.Job.Date, CustomerName: "Bola", LabourCharge: dec("3000"), AmountPaid: dec("1000")}
	_, err = jobs.Update(ctx, actor, res.Job.ID, in)
	require.NoError(t, err)
	in.AmountPaid = dec("3000")
	_, err = jobs.Update(ctx, actor, res.Job.ID, in)
	require.NoError(t, err)
	page, err := sales.List(ctx, owner.ID, repository.ListParams{Type: string(domain.SaleSewing)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, repository.JobRepository{DB: pg}.Delete(ctx, owner.ID, res.Job.ID))
	orphan, err := sales.Get(ctx, owner.ID, linked.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.JobID)
	require.NoError(t, sales.Delete(ctx, owner.ID, linked.ID))
}
