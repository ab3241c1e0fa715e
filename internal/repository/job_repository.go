package repository

import (
	"context"
	"time"

	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type JobRepository struct {
	DB *db.Postgres
}

const jobColumns = `id, job_date, customer_id, customer_name, fabric_source, inventory_item_id, item,
	material_cost, labour_charge, amount_paid, total_charged, balance, profit, status,
	delivery_date_expected, delivery_date_actual, fitting_date, notes, created_at, updated_at`

var jobSorts = map[string]string{
	"date":          "job_date",
	"customer":      "customer_name",
	"total_charged": "total_charged",
	"balance":       "balance",
	"profit":        "profit",
	"status":        "status",
	"delivery":      "delivery_date_expected",
}

func (r JobRepository) List(ctx context.Context, ownerUserID int64, p ListParams) (Page[domain.SewingJob], error) {
	w := newWhere(ownerUserID)
	if like := p.like(); like != "" {
		w.add("(customer_name ILIKE ? OR item ILIKE ?)", like)
	}
	if p.Status != "" {
		w.add("status = ?", p.Status)
	}
	if p.From != nil {
		w.add("job_date >= ?::date", dateOnly(*p.From))
	}
	if p.To != nil {
		w.add("job_date <= ?::date", dateOnly(*p.To))
	}

	var page Page[domain.SewingJob]
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM sewing_jobs WHERE `+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return page, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM sewing_jobs
		WHERE `+w.sql()+`
		ORDER BY `+p.orderBy(jobSorts, "job_date")+` `+w.page(p), w.args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *j)
	}
	return page, rows.Err()
}

func (r JobRepository) ListByCustomer(ctx context.Context, ownerUserID, customerID int64) ([]domain.SewingJob, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM sewing_jobs
		WHERE owner_user_id=$1 AND customer_id=$2
		ORDER BY job_date DESC, id DESC
	`, ownerUserID, customerID)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r JobRepository) Get(ctx context.Context, ownerUserID int64, id int64) (*domain.SewingJob, error) {
	return getJobWith(ctx, r.DB.Pool, ownerUserID, id, false)
}

// Delete removes the job. A linked Sewing sale stays in the ledger.
// Delete removes a job. Sales it wrote stay on the books, unlinked, so they become directly editable.
func (r JobRepository) Delete(ctx context.Context, ownerUserID int64, id int64) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM sewing_jobs WHERE id=$1 AND owner_user_id=$2`, id, ownerUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		UPDATE sales SET job_id=NULL, updated_at=now() WHERE job_id=$1 AND owner_user_id=$2
	`, id, ownerUserID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// JobsBetween returns jobs dated within [from, to).
func (r JobRepository) JobsBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.SewingJob, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM sewing_jobs
		WHERE owner_user_id=$1 AND job_date >= $2::date AND job_date < $3::date
		ORDER BY job_date ASC, id ASC
	`, ownerUserID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

// DueForDelivery lists unfinished jobs expected on or before until.
func (r JobRepository) DueForDelivery(ctx context.Context, ownerUserID int64, until time.Time) ([]domain.SewingJob, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM sewing_jobs
		WHERE owner_user_id=$1
		  AND delivery_date_actual IS NULL
		  AND delivery_date_expected IS NOT NULL
		  AND delivery_date_expected <= $2::date
		ORDER BY delivery_date_expected ASC, id ASC
	`, ownerUserID, dateOnly(until))
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func getJobWith(ctx context.Context, q pgxQuerier, ownerUserID, id int64, forUpdate bool) (*domain.SewingJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM sewing_jobs
		WHERE id=$1 AND owner_user_id=$2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	j, err := scanJob(q.QueryRow(ctx, query, id, ownerUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return j, nil
}

func insertJobWith(ctx context.Context, q pgxQuerier, ownerUserID int64, j domain.SewingJob) (*domain.SewingJob, error) {
	return scanJob(q.QueryRow(ctx, `
		INSERT INTO sewing_jobs (owner_user_id, job_date, customer_id, customer_name, fabric_source, inventory_item_id, item,
			material_cost, labour_charge, amount_paid, status, delivery_date_expected, delivery_date_actual, fitting_date, notes,
			created_at, updated_at)
		VALUES ($1,$2::date,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, now(), now())
		RETURNING `+jobColumns,
		ownerUserID, dateOnly(j.Date), j.CustomerID, j.CustomerName, string(j.FabricSource), j.InventoryItemID, j.Item,
		j.MaterialCost, j.LabourCharge, j.AmountPaid, string(j.Status), j.DeliveryDateExpected, j.DeliveryDateActual, j.FittingDate, j.Notes))
}

func updateJobWith(ctx context.Context, q pgxQuerier, ownerUserID int64, j domain.SewingJob) (*domain.SewingJob, error) {
	out, err := scanJob(q.QueryRow(ctx, `
		UPDATE sewing_jobs
		SET job_date=$3::date, customer_id=$4, customer_name=$5, fabric_source=$6, inventory_item_id=$7, item=$8,
			material_cost=$9, labour_charge=$10, amount_paid=$11, status=$12,
			delivery_date_expected=$13, delivery_date_actual=$14, fitting_date=$15, notes=$16, updated_at=now()
		WHERE id=$1 AND owner_user_id=$2
		RETURNING `+jobColumns,
		j.ID, ownerUserID, dateOnly(j.Date), j.CustomerID, j.CustomerName, string(j.FabricSource), j.InventoryItemID, j.Item,
		j.MaterialCost, j.LabourCharge, j.AmountPaid, string(j.Status),
		j.DeliveryDateExpected, j.DeliveryDateActual, j.FittingDate, j.Notes))
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

type rowIterator interface {
	rowScanner
	Next() bool
	Err() error
	Close()
}

func collectJobs(rows rowIterator) ([]domain.SewingJob, error) {
	defer rows.Close()
	var out []domain.SewingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func scanJob(row rowScanner) (*domain.SewingJob, error) {
	var (
		j      domain.SewingJob
		source string
		status string
	)
	if err := row.Scan(
		&j.ID, &j.Date, &j.CustomerID, &j.CustomerName, &source, &j.InventoryItemID, &j.Item,
		&j.MaterialCost, &j.LabourCharge, &j.AmountPaid, &j.TotalCharged, &j.Balance, &j.Profit, &status,
		&j.DeliveryDateExpected, &j.DeliveryDateActual, &j.FittingDate, &j.Notes, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	j.FabricSource = domain.FabricSource(source)
	j.Status = domain.JobStatus(status)
	return &j, nil
}
