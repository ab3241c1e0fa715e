package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type SaleRepository struct {
	DB *db.Postgres
}

const saleColumns = `id, sale_date, sale_type, customer_id, customer_name, total_amount, amount_paid, balance, cost_amount, job_id, notes, created_at, updated_at`

var saleSorts = map[string]string{
	"date":     "sale_date",
	"customer": "customer_name",
	"total":    "total_amount",
	"paid":     "amount_paid",
	"balance":  "balance",
	"type":     "sale_type",
}

func (r SaleRepository) List(ctx context.Context, ownerUserID int64, p ListParams) (Page[domain.Sale], error) {
	w := newWhere(ownerUserID)
	if like := p.like(); like != "" {
		w.add("(customer_name ILIKE ? OR notes ILIKE ?)", like)
	}
	if p.Type != "" {
		w.add("sale_type = ?", p.Type)
	}
	if p.Status == "open" {
		w.clauses = append(w.clauses, "balance > 0")
	}
	if p.From != nil {
		w.add("sale_date >= ?::date", dateOnly(*p.From))
	}
	if p.To != nil {
		w.add("sale_date <= ?::date", dateOnly(*p.To))
	}

	var page Page[domain.Sale]
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE `+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return page, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE `+w.sql()+`
		ORDER BY `+p.orderBy(saleSorts, "sale_date")+` `+w.page(p), w.args...)
	if err != nil {
		return page, err
	}
	items, err := collectSales(rows)
	page.Items = items
	return page, err
}

func (r SaleRepository) Get(ctx context.Context, ownerUserID int64, id int64) (*domain.Sale, error) {
	s, err := scanSale(r.DB.Pool.QueryRow(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE id=$1 AND owner_user_id=$2
	`, id, ownerUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r SaleRepository) Create(ctx context.Context, ownerUserID int64, s domain.Sale) (*domain.Sale, error) {
	return insertSaleWith(ctx, r.DB.Pool, ownerUserID, s)
}

// Update edits a sale directly. job_id is not editable, and a job's sale keeps its type, customer and amounts.
func (r SaleRepository) Update(ctx context.Context, ownerUserID int64, s domain.Sale) (*domain.Sale, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := getSaleForUpdateWith(ctx, tx, ownerUserID, s.ID)
	if err != nil {
		return nil, err
	}
	if err := current.CheckDirectEdit(&s); err != nil {
		return nil, err
	}
	out, err := scanSale(tx.QueryRow(ctx, `
		UPDATE sales
		SET sale_date=$3::date, sale_type=$4, customer_id=$5, customer_name=$6, total_amount=$7, amount_paid=$8,
			cost_amount=$9, notes=$10, updated_at=now()
		WHERE id=$1 AND owner_user_id=$2
		RETURNING `+saleColumns,
		s.ID, ownerUserID, dateOnly(s.Date), string(s.Type), s.CustomerID, s.CustomerName, s.TotalAmount, s.AmountPaid,
		s.CostAmount, s.Notes))
	if err != nil {
		return nil, notFound(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a sale recorded outside the job flow.
func (r SaleRepository) Delete(ctx context.Context, ownerUserID int64, id int64) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	current, err := getSaleForUpdateWith(ctx, tx, ownerUserID, id)
	if err != nil {
		return err
	}
	if err := current.CheckDirectEdit(nil); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sales WHERE id=$1 AND owner_user_id=$2`, id, ownerUserID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func getSaleForUpdateWith(ctx context.Context, q pgxQuerier, ownerUserID, id int64) (*domain.Sale, error) {
	s, err := scanSale(q.QueryRow(ctx, `
		SELECT `+saleColumns+` FROM sales WHERE id=$1 AND owner_user_id=$2 FOR UPDATE
	`, id, ownerUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r SaleRepository) ListByCustomer(ctx context.Context, ownerUserID, customerID int64) ([]domain.Sale, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE owner_user_id=$1 AND customer_id=$2
		ORDER BY sale_date DESC, id DESC
	`, ownerUserID, customerID)
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

// ListUnpaidSales returns every sale with a positive balance, oldest first.
func (r SaleRepository) ListUnpaidSales(ctx context.Context, ownerUserID int64) ([]domain.Sale, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE owner_user_id=$1 AND balance > 0
		ORDER BY sale_date ASC, id ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

// SalesBetween returns sales dated within [from, to).
func (r SaleRepository) SalesBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.Sale, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE owner_user_id=$1 AND sale_date >= $2::date AND sale_date < $3::date
		ORDER BY sale_date ASC, id ASC
	`, ownerUserID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

type SalesTotals struct {
	Total       decimal.Decimal
	Collected   decimal.Decimal
	Outstanding decimal.Decimal
}

// Totals sums sales dated within [from, to).
func (r SaleRepository) Totals(ctx context.Context, ownerUserID int64, from, to time.Time) (SalesTotals, error) {
	var t SalesTotals
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount),0), COALESCE(SUM(amount_paid),0), COALESCE(SUM(balance),0)
		FROM sales
		WHERE owner_user_id=$1 AND sale_date >= $2::date AND sale_date < $3::date
	`, ownerUserID, dateOnly(from), dateOnly(to)).Scan(&t.Total, &t.Collected, &t.Outstanding)
	return t, err
}

// OutstandingTotal sums every positive balance regardless of date.
func (r SaleRepository) OutstandingTotal(ctx context.Context, ownerUserID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(balance),0) FROM sales WHERE owner_user_id=$1 AND balance > 0
	`, ownerUserID).Scan(&total)
	return total, err
}

func findSewingSaleWith(ctx context.Context, q pgxQuerier, ownerUserID, jobID int64) (*domain.Sale, error) {
	s, err := scanSale(q.QueryRow(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE owner_user_id=$1 AND job_id=$2 AND sale_type=$3
		FOR UPDATE
	`, ownerUserID, jobID, string(domain.SaleSewing)))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func insertSaleWith(ctx context.Context, q pgxQuerier, ownerUserID int64, s domain.Sale) (*domain.Sale, error) {
	return scanSale(q.QueryRow(ctx, `
		INSERT INTO sales (owner_user_id, sale_date, sale_type, customer_id, customer_name, total_amount, amount_paid, cost_amount, job_id, notes, created_at, updated_at)
		VALUES ($1,$2::date,$3,$4,$5,$6,$7,$8,$9,$10, now(), now())
		RETURNING `+saleColumns,
		ownerUserID, dateOnly(s.Date), string(s.Type), s.CustomerID, s.CustomerName, s.TotalAmount, s.AmountPaid, s.CostAmount, s.JobID, s.Notes))
}

func updateSaleAmountsWith(ctx context.Context, q pgxQuerier, ownerUserID, saleID int64, total, paid decimal.Decimal) error {
	tag, err := q.Exec(ctx, `
		UPDATE sales SET total_amount=$3, amount_paid=$4, updated_at=now()
		WHERE id=$1 AND owner_user_id=$2
	`, saleID, ownerUserID, total, paid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// listUnpaidForUpdateWith locks one debtor's open sales, oldest first.
func listUnpaidForUpdateWith(ctx context.Context, q pgxQuerier, ownerUserID int64, key domain.CustomerKey) ([]domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE owner_user_id=$1 AND balance > 0 AND `
	var arg any
	if key.ID != nil {
		query += `customer_id = $2`
		arg = *key.ID
	} else {
		query += `customer_id IS NULL AND lower(trim(customer_name)) = lower(trim($2))`
		arg = key.Name
	}
	query += `
		ORDER BY sale_date ASC, id ASC
		FOR UPDATE`
	rows, err := q.Query(ctx, query, ownerUserID, arg)
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

func collectSales(rows rowIterator) ([]domain.Sale, error) {
	defer rows.Close()
	var out []domain.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var (
		s   domain.Sale
		typ string
	)
	if err := row.Scan(
		&s.ID, &s.Date, &typ, &s.CustomerID, &s.CustomerName, &s.TotalAmount, &s.AmountPaid, &s.Balance,
		&s.CostAmount, &s.JobID, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Type = domain.SaleType(typ)
	return &s, nil
}
