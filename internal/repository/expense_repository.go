package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type ExpenseRepository struct {
	DB *db.Postgres
}

const expenseColumns = `id, expense_date, category, description, amount, payment_method, notes, created_at, updated_at`

var expenseSorts = map[string]string{
	"date":     "expense_date",
	"amount":   "amount",
	"category": "category",
}

func (r ExpenseRepository) Create(ctx context.Context, ownerUserID int64, e domain.Expense) (*domain.Expense, error) {
	return scanExpense(r.DB.Pool.QueryRow(ctx, `
		INSERT INTO expenses (owner_user_id, expense_date, category, description, amount, payment_method, notes, created_at, updated_at)
		VALUES ($1,$2::date,$3,$4,$5,$6,$7, now(), now())
		RETURNING `+expenseColumns,
		ownerUserID, dateOnly(e.Date), e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes))
}

func (r ExpenseRepository) Update(ctx context.Context, ownerUserID int64, e domain.Expense) (*domain.Expense, error) {
	out, err := scanExpense(r.DB.Pool.QueryRow(ctx, `
		UPDATE expenses
		SET expense_date=$3::date, category=$4, description=$5, amount=$6, payment_method=$7, notes=$8, updated_at=now()
		WHERE id=$1 AND owner_user_id=$2
		RETURNING `+expenseColumns,
		e.ID, ownerUserID, dateOnly(e.Date), e.Category, e.Description, e.Amount, e.PaymentMethod, e.Notes))
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (r ExpenseRepository) Get(ctx context.Context, ownerUserID int64, id int64) (*domain.Expense, error) {
	e, err := scanExpense(r.DB.Pool.QueryRow(ctx, `
		SELECT `+expenseColumns+` FROM expenses WHERE id=$1 AND owner_user_id=$2
	`, id, ownerUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r ExpenseRepository) Delete(ctx context.Context, ownerUserID int64, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM expenses WHERE id=$1 AND owner_user_id=$2`, id, ownerUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r ExpenseRepository) List(ctx context.Context, ownerUserID int64, p ListParams) (Page[domain.Expense], error) {
	w := newWhere(ownerUserID)
	if like := p.like(); like != "" {
		w.add("(description ILIKE ? OR category ILIKE ? OR notes ILIKE ?)", like)
	}
	if p.Type != "" {
		w.add("category = ?", p.Type)
	}
	if p.From != nil {
		w.add("expense_date >= ?::date", dateOnly(*p.From))
	}
	if p.To != nil {
		w.add("expense_date <= ?::date", dateOnly(*p.To))
	}

	var page Page[domain.Expense]
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE `+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return page, err
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE `+w.sql()+`
		ORDER BY `+p.orderBy(expenseSorts, "expense_date")+` `+w.page(p), w.args...)
	if err != nil {
		return page, err
	}
	items, err := collectExpenses(rows)
	page.Items = items
	return page, err
}

// ExpensesBetween returns expenses dated within [from, to).
func (r ExpenseRepository) ExpensesBetween(ctx context.Context, ownerUserID int64, from, to time.Time) ([]domain.Expense, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE owner_user_id=$1 AND expense_date >= $2::date AND expense_date < $3::date
		ORDER BY expense_date ASC, id ASC
	`, ownerUserID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

// Total sums expenses dated within [from, to).
func (r ExpenseRepository) Total(ctx context.Context, ownerUserID int64, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount),0)
		FROM expenses
		WHERE owner_user_id=$1 AND expense_date >= $2::date AND expense_date < $3::date
	`, ownerUserID, dateOnly(from), dateOnly(to)).Scan(&total)
	return total, err
}

func collectExpenses(rows rowIterator) ([]domain.Expense, error) {
	defer rows.Close()
	var out []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var e domain.Expense
	if err := row.Scan(&e.ID, &e.Date, &e.Category, &e.Description, &e.Amount, &e.PaymentMethod, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
