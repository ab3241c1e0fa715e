package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type CollectionRepository struct {
	DB *db.Postgres
}

const collectionColumns = `id, receipt_no, collection_date, customer_id, customer_name, amount, payment_method, notes, created_at`

var collectionSorts = map[string]string{
	"date":     "collection_date",
	"amount":   "amount",
	"customer": "customer_name",
	"method":   "payment_method",
}

func (r CollectionRepository) List(ctx context.Context, ownerUserID int64, p ListParams) (Page[domain.Collection], error) {
	w := newWhere(ownerUserID)
	if like := p.like(); like != "" {
		w.add("(customer_name ILIKE ? OR receipt_no ILIKE ? OR notes ILIKE ?)", like)
	}
	if p.Type != "" {
		w.add("lower(payment_method) = lower(?)", p.Type)
	}
	if p.From != nil {
		w.add("collection_date >= ?::date", dateOnly(*p.From))
	}
	if p.To != nil {
		w.add("collection_date <= ?::date", dateOnly(*p.To))
	}

	var page Page[domain.Collection]
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM collections WHERE `+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return page, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+collectionColumns+`
		FROM collections
		WHERE `+w.sql()+`
		ORDER BY `+p.orderBy(collectionSorts, "collection_date")+` `+w.page(p), w.args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *c)
	}
	return page, rows.Err()
}

type MethodTotal struct {
	Method string
	Total  decimal.Decimal
	Count  int64
}

// SummaryByMethod aggregates one day's collections by payment method.
func (r CollectionRepository) SummaryByMethod(ctx context.Context, ownerUserID int64, day time.Time) ([]MethodTotal, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT lower(payment_method) AS method, COALESCE(SUM(amount),0), COUNT(*)
		FROM collections
		WHERE owner_user_id=$1 AND collection_date = $2::date
		GROUP BY lower(payment_method)
		ORDER BY 2 DESC
	`, ownerUserID, dateOnly(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MethodTotal
	for rows.Next() {
		var m MethodTotal
		if err := rows.Scan(&m.Method, &m.Total, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Total sums collections dated within [from, to).
func (r CollectionRepository) Total(ctx context.Context, ownerUserID int64, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount),0)
		FROM collections
		WHERE owner_user_id=$1 AND collection_date >= $2::date AND collection_date < $3::date
	`, ownerUserID, dateOnly(from), dateOnly(to)).Scan(&total)
	return total, err
}

func insertCollectionWith(ctx context.Context, q pgxQuerier, ownerUserID int64, c domain.Collection) (*domain.Collection, error) {
	return scanCollection(q.QueryRow(ctx, `
		INSERT INTO collections (owner_user_id, receipt_no, collection_date, customer_id, customer_name, amount, payment_method, notes, created_at)
		VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8, now())
		RETURNING `+collectionColumns,
		ownerUserID, c.ReceiptNo, dateOnly(c.Date), c.CustomerID, c.CustomerName, c.Amount, c.PaymentMethod, c.Notes))
}

func scanCollection(row rowScanner) (*domain.Collection, error) {
	var c domain.Collection
	if err := row.Scan(&c.ID, &c.ReceiptNo, &c.Date, &c.CustomerID, &c.CustomerName, &c.Amount, &c.PaymentMethod, &c.Notes, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
