package repository

import (
	"context"
	"time"

	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type CustomerRepository struct {
	DB *db.Postgres
}

const customerColumns = `id, name, phone, address, preferences, first_order_date, last_order_date, created_at, updated_at`

var customerSorts = map[string]string{
	"name":            "name",
	"created":         "created_at",
	"last_order_date": "last_order_date",
}

func (r CustomerRepository) List(ctx context.Context, ownerUserID int64, p ListParams) (Page[domain.Customer], error) {
	w := newWhere(ownerUserID)
	if like := p.like(); like != "" {
		w.add("(name ILIKE ? OR phone ILIKE ?)", like)
	}

	var page Page[domain.Customer]
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE `+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return page, err
	}
	order := p.orderBy(customerSorts, "name")
	if p.Sort == "" {
		order = "name ASC, id ASC"
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE `+w.sql()+`
		ORDER BY `+order+` `+w.page(p), w.args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *c)
	}
	return page, rows.Err()
}

func (r CustomerRepository) Get(ctx context.Context, ownerUserID int64, id int64) (*domain.Customer, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id=$1 AND owner_user_id=$2
	`, id, ownerUserID)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r CustomerRepository) Create(ctx context.Context, ownerUserID int64, c domain.Customer) (*domain.Customer, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO customers (owner_user_id, name, phone, address, preferences, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING `+customerColumns,
		ownerUserID, c.Name, c.Phone, c.Address, c.Preferences)
	return scanCustomer(row)
}

func (r CustomerRepository) Update(ctx context.Context, ownerUserID int64, c domain.Customer) (*domain.Customer, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE customers
		SET name=$3, phone=$4, address=$5, preferences=$6, updated_at=now()
		WHERE id=$1 AND owner_user_id=$2
		RETURNING `+customerColumns,
		c.ID, ownerUserID, c.Name, c.Phone, c.Address, c.Preferences)
	out, err := scanCustomer(row)
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

// Delete removes the customer row only; jobs and sales keep their customer_id and name.
func (r CustomerRepository) Delete(ctx context.Context, ownerUserID int64, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM customers WHERE id=$1 AND owner_user_id=$2`, id, ownerUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Phones fetches phone numbers for the given customers in one round trip.
func (r CustomerRepository) Phones(ctx context.Context, ownerUserID int64, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, phone FROM customers WHERE owner_user_id=$1 AND id = ANY($2)
	`, ownerUserID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    int64
			phone string
		)
		if err := rows.Scan(&id, &phone); err != nil {
			return nil, err
		}
		out[id] = phone
	}
	return out, rows.Err()
}

func (r CustomerRepository) Count(ctx context.Context, ownerUserID int64) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE owner_user_id=$1`, ownerUserID).Scan(&n)
	return n, err
}

// touchOrderDateWith moves last_order_date to date and fills first_order_date once.
func touchOrderDateWith(ctx context.Context, q pgxQuerier, ownerUserID, customerID int64, date time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE customers
		SET last_order_date = $3::date,
			first_order_date = COALESCE(first_order_date, $3::date),
			updated_at = now()
		WHERE id=$1 AND owner_user_id=$2
	`, customerID, ownerUserID, dateOnly(date))
	return err
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Preferences, &c.FirstOrderDate, &c.LastOrderDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
