package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"tailorbooks-backend/internal/repository"
)

// DashboardSource is the set of KPI queries behind the dashboard.
type DashboardSource interface {
	CustomerCount(ctx context.Context, ownerUserID int64) (int64, error)
	JobCounts(ctx context.Context, ownerUserID int64, dueBy time.Time) (repository.JobCounts, error)
	Receivables(ctx context.Context, ownerUserID int64) (decimal.Decimal, error)
	MonthToDate(ctx context.Context, ownerUserID int64, now time.Time) (repository.MonthToDate, error)
	LowStockCount(ctx context.Context, ownerUserID int64) (int64, error)
	TopItems(ctx context.Context, ownerUserID int64, limit int) ([]repository.DashboardItem, error)
	SalesSeries(ctx context.Context, ownerUserID int64, now time.Time, days int) ([]repository.SalesPoint, error)
}

type DashboardService struct {
	Source DashboardSource
	Clock  Clock
}

type DashboardSummary struct {
	Customers      int64
	OpenJobs       int64
	DueForDelivery int64
	Receivables    decimal.Decimal
	MonthToDate    repository.MonthToDate
	LowStock       int64
	TopItems       []repository.DashboardItem
	SalesSeries    []repository.SalesPoint
}

const (
	deliveryWindowDays = 7
	seriesDays         = 30
	topItemsLimit      = 5
)

// Summary runs the KPI queries concurrently and fails if any of them fails.
func (s DashboardService) Summary(ctx context.Context, ownerUserID int64) (*DashboardSummary, error) {
	now := s.Clock.now()
	var out DashboardSummary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.Source.CustomerCount(ctx, ownerUserID)
		out.Customers = n
		return err
	})
	g.Go(func() error {
		c, err := s.Source.JobCounts(ctx, ownerUserID, now.AddDate(0, 0, deliveryWindowDays))
		out.OpenJobs, out.DueForDelivery = c.Open, c.DueForDelivery
		return err
	})
	g.Go(func() error {
		v, err := s.Source.Receivables(ctx, ownerUserID)
		out.Receivables = v
		return err
	})
	g.Go(func() error {
		m, err := s.Source.MonthToDate(ctx, ownerUserID, now)
		out.MonthToDate = m
		return err
	})
	g.Go(func() error {
		n, err := s.Source.LowStockCount(ctx, ownerUserID)
		out.LowStock = n
		return err
	})
	g.Go(func() error {
		items, err := s.Source.TopItems(ctx, ownerUserID, topItemsLimit)
		out.TopItems = items
		return err
	})
	g.Go(func() error {
		points, err := s.Source.SalesSeries(ctx, ownerUserID, now, seriesDays)
		out.SalesSeries = points
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
