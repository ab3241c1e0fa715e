package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"tailorbooks-backend/internal/db"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

// pgxQuerier is satisfied by both pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListParams carries search, sort and paging for list endpoints.
type ListParams struct {
	Query  string
	Sort   string
	Order  string
	Limit  int
	Offset int
	From   *time.Time
	To     *time.Time
	Status string
	Type   string
}

func (p ListParams) limit() int {
	switch {
	case p.Limit <= 0:
		return defaultListLimit
	case p.Limit > maxListLimit:
		return maxListLimit
	default:
		return p.Limit
	}
}

func (p ListParams) offset() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}

// PageLimit is the limit a list query actually applies.
func (p ListParams) PageLimit() int { return p.limit() }

func (p ListParams) PageOffset() int { return p.offset() }

// orderBy maps the requested sort onto a whitelisted column; unknown keys fall back to def.
func (p ListParams) orderBy(columns map[string]string, def string) string {
	col, ok := columns[strings.ToLower(p.Sort)]
	if !ok {
		col = def
	}
	dir := "DESC"
	if strings.EqualFold(p.Order, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}

func (p ListParams) like() string {
	q := strings.TrimSpace(p.Query)
	if q == "" {
		return ""
	}
	return "%" + q + "%"
}

// whereBuilder accumulates AND-ed predicates with positional args.
// Every ? in a clause binds to that clause's single arg.
type whereBuilder struct {
	clauses []string
	args    []any
}

func newWhere(ownerUserID int64) *whereBuilder {
	return &whereBuilder{clauses: []string{"owner_user_id = $1"}, args: []any{ownerUserID}}
}

func (w *whereBuilder) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) sql() string {
	return strings.Join(w.clauses, " AND ")
}

// page appends limit and offset args and returns the matching clause.
// Call it after the count query has used w.args.
func (w *whereBuilder) page(p ListParams) string {
	w.args = append(w.args, p.limit(), p.offset())
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

// Page is a slice of rows plus the total matching count.
type Page[T any] struct {
	Items []T
	Total int64
}

func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
