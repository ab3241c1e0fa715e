package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type DashboardItem struct {
	Name   string
	Amount decimal.Decimal
	Count  int64
}

type SalesPoint struct {
	Label  string
	Amount decimal.Decimal
}

type MonthToDate struct {
	Sales       decimal.Decimal
	Collections decimal.Decimal
	Expenses    decimal.Decimal
}

type JobCounts struct {
	Open           int64
	DueForDelivery int64
}

func (r DashboardRepository) CustomerCount(ctx context.Context, ownerUserID int64) (int64, error) {
	return CustomerRepository{DB: r.DB}.Count(ctx, ownerUserID)
}

// JobCounts counts unfinished jobs and those expected for delivery before dueBy.
func (r DashboardRepository) JobCounts(ctx context.Context, ownerUserID int64, dueBy time.Time) (JobCounts, error) {
	var c JobCounts
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status <> $2),
			COUNT(*) FILTER (WHERE delivery_date_actual IS NULL AND delivery_date_expected IS NOT NULL AND delivery_date_expected <= $3::date)
		FROM sewing_jobs
		WHERE owner_user_id=$1
	`, ownerUserID, string(domain.JobDone), dateOnly(dueBy)).Scan(&c.Open, &c.DueForDelivery)
	return c, err
}

func (r DashboardRepository) Receivables(ctx context.Context, ownerUserID int64) (decimal.Decimal, error) {
	return SaleRepository{DB: r.DB}.OutstandingTotal(ctx, ownerUserID)
}

// MonthToDate sums sales, collections and expenses from the first of now's month through now.
func (r DashboardRepository) MonthToDate(ctx context.Context, ownerUserID int64, now time.Time) (MonthToDate, error) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now.AddDate(0, 0, 1)
	var m MonthToDate
	sales, err := SaleRepository{DB: r.DB}.Totals(ctx, ownerUserID, from, to)
	if err != nil {
		return m, err
	}
	m.Sales = sales.Total
	if m.Collections, err = (CollectionRepository{DB: r.DB}).Total(ctx, ownerUserID, from, to); err != nil {
		return m, err
	}
	if m.Expenses, err = (ExpenseRepository{DB: r.DB}).Total(ctx, ownerUserID, from, to); err != nil {
		return m, err
	}
	return m, nil
}

func (r DashboardRepository) LowStockCount(ctx context.Context, ownerUserID int64) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_items WHERE owner_user_id=$1 AND quantity_left <= reorder_level
	`, ownerUserID).Scan(&n)
	return n, err
}

// TopItems ranks job descriptions by amount charged.
func (r DashboardRepository) TopItems(ctx context.Context, ownerUserID int64, limit int) ([]DashboardItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT item, COALESCE(SUM(total_charged),0) AS amount, COUNT(*) AS cnt
		FROM sewing_jobs
		WHERE owner_user_id=$1 AND item <> ''
		GROUP BY item
		ORDER BY amount DESC
		LIMIT $2
	`, ownerUserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DashboardItem
	for rows.Next() {
		var it DashboardItem
		if err := rows.Scan(&it.Name, &it.Amount, &it.Count); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SalesSeries returns daily sales totals for the last days days up to now.
func (r DashboardRepository) SalesSeries(ctx context.Context, ownerUserID int64, now time.Time, days int) ([]SalesPoint, error) {
	start := now.AddDate(0, 0, -days+1)
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT to_char(sale_date, 'YYYY-MM-DD'), COALESCE(SUM(total_amount),0) AS amount
		FROM sales
		WHERE owner_user_id=$1
		  AND sale_date >= $2::date
		GROUP BY sale_date
		ORDER BY sale_date ASC
	`, ownerUserID, dateOnly(start))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var points []SalesPoint
	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Label, &p.Amount); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
