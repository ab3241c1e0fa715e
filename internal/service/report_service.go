package service

import (
	"context"
	"fmt"
	"time"

	"tailorbooks-backend/internal/ports"
	"tailorbooks-backend/internal/report"
)

type ReportService struct {
	Reader ports.ReportReader
	Clock  Clock
}

// Monthly builds the month-by-month report for year.
func (s ReportService) Monthly(ctx context.Context, ownerUserID int64, year int) (report.Monthly, error) {
	if year < 2000 || year > 9999 {
		return report.Monthly{}, invalid("year %d out of range", year)
	}
	now := s.Clock.now()
	if year > now.Year() {
		return report.BuildMonthly(year, now, nil, nil, nil), nil
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	sales, err := s.Reader.SalesBetween(ctx, ownerUserID, from, to)
	if err != nil {
		return report.Monthly{}, fmt.Errorf("sales: %w", err)
	}
	expenses, err := s.Reader.ExpensesBetween(ctx, ownerUserID, from, to)
	if err != nil {
		return report.Monthly{}, fmt.Errorf("expenses: %w", err)
	}
	jobs, err := s.Reader.JobsBetween(ctx, ownerUserID, from, to)
	if err != nil {
		return report.Monthly{}, fmt.Errorf("jobs: %w", err)
	}
	return report.BuildMonthly(year, now, sales, expenses, jobs), nil
}
