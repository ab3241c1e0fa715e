package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"tailorbooks-backend/internal/db"
	"tailorbooks-backend/internal/domain"
)

type InventoryRepository struct {
	DB *db.Postgres
}

const inventoryColumns = `id, item_name, category, quantity_bought, quantity_used, quantity_left, unit_cost, total_cost, reorder_level, supplier, notes, created_at, updated_at`

var inventorySorts = map[string]string{
	"name":          "item_name",
	"category":      "category",
	"quantity_left": "quantity_left",
	"unit_cost":     "unit_cost",
	"total_cost":    "total_cost",
	"updated":       "updated_at",
}

func (r InventoryRepository) List(ctx context.Context, ownerUserID int64, p ListParams) (Page[domain.InventoryItem], error) {
	w := newWhere(ownerUserID)
	if like := p.like(); like != "" {
		w.add("(item_name ILIKE ? OR category ILIKE ? OR supplier ILIKE ?)", like)
	}
	var page Page[domain.InventoryItem]
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items WHERE `+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return page, err
	}
	order := p.orderBy(inventorySorts, "item_name")
	if p.Sort == "" {
		order = "item_name ASC, id ASC"
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE `+w.sql()+`
		ORDER BY `+order+` `+w.page(p), w.args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, *it)
	}
	return page, rows.Err()
}

// LowStock lists items whose remaining quantity is at or below their reorder level.
func (r InventoryRepository) LowStock(ctx context.Context, ownerUserID int64) ([]domain.InventoryItem, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE owner_user_id=$1 AND quantity_left <= reorder_level
		ORDER BY quantity_left ASC, item_name ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r InventoryRepository) Get(ctx context.Context, ownerUserID int64, id int64) (*domain.InventoryItem, error) {
	it, err := scanInventoryItem(r.DB.Pool.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE id=$1 AND owner_user_id=$2
	`, id, ownerUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return it, nil
}

func (r InventoryRepository) Create(ctx context.Context, ownerUserID int64, in domain.InventoryItem) (*domain.InventoryItem, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	it, err := scanInventoryItem(tx.QueryRow(ctx, `
		INSERT INTO inventory_items (owner_user_id, item_name, category, quantity_bought, quantity_used, unit_cost, reorder_level, supplier, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now(), now())
		RETURNING `+inventoryColumns,
		ownerUserID, in.ItemName, in.Category, in.QuantityBought, in.QuantityUsed, in.UnitCost, in.ReorderLevel, in.Supplier, in.Notes))
	if err != nil {
		return nil, err
	}
	if in.QuantityBought.IsPositive() {
		if err := insertMovementWith(ctx, tx, ownerUserID, it.ID, in.QuantityBought, it.QuantityLeft, domain.MovementRestock, "", "opening stock"); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return it, nil
}

// Update edits descriptive fields and prices. Quantities change only through movements.
func (r InventoryRepository) Update(ctx context.Context, ownerUserID int64, in domain.InventoryItem) (*domain.InventoryItem, error) {
	it, err := scanInventoryItem(r.DB.Pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET item_name=$3, category=$4, unit_cost=$5, reorder_level=$6, supplier=$7, notes=$8, updated_at=now()
		WHERE id=$1 AND owner_user_id=$2
		RETURNING `+inventoryColumns,
		in.ID, ownerUserID, in.ItemName, in.Category, in.UnitCost, in.ReorderLevel, in.Supplier, in.Notes))
	if err != nil {
		return nil, notFound(err)
	}
	return it, nil
}

func (r InventoryRepository) Delete(ctx context.Context, ownerUserID int64, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM inventory_items WHERE id=$1 AND owner_user_id=$2`, id, ownerUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type AdjustInventoryInput struct {
	ItemID   int64
	Type     domain.MovementType
	Quantity decimal.Decimal
	Note     string
}

// Adjust applies a restock (quantity added to quantity_bought), a consumption, or a
// recount (quantity is the counted amount left) and records the movement.
func (r InventoryRepository) Adjust(ctx context.Context, ownerUserID int64, in AdjustInventoryInput) (*domain.InventoryItem, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := getInventoryItemForUpdateWith(ctx, tx, ownerUserID, in.ItemID)
	if err != nil {
		return nil, err
	}

	var updated *domain.InventoryItem
	switch in.Type {
	case domain.MovementRestock:
		updated, err = scanInventoryItem(tx.QueryRow(ctx, `
			UPDATE inventory_items SET quantity_bought = quantity_bought + $3, updated_at=now()
			WHERE id=$1 AND owner_user_id=$2
			RETURNING `+inventoryColumns, in.ItemID, ownerUserID, in.Quantity))
		if err == nil {
			err = insertMovementWith(ctx, tx, ownerUserID, in.ItemID, in.Quantity, updated.QuantityLeft, in.Type, "", in.Note)
		}
	case domain.MovementConsume:
		updated, err = consumeWith(ctx, tx, ownerUserID, in.ItemID, in.Quantity, "", in.Note)
	default:
		change := in.Quantity.Sub(current.QuantityLeft)
		updated, err = scanInventoryItem(tx.QueryRow(ctx, `
			UPDATE inventory_items SET quantity_used = quantity_bought - $3, updated_at=now()
			WHERE id=$1 AND owner_user_id=$2
			RETURNING `+inventoryColumns, in.ItemID, ownerUserID, in.Quantity))
		if err == nil {
			err = insertMovementWith(ctx, tx, ownerUserID, in.ItemID, change, updated.QuantityLeft, domain.MovementAdjust, "", in.Note)
		}
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r InventoryRepository) Movements(ctx context.Context, ownerUserID int64, itemID int64, limit int) ([]domain.InventoryMovement, error) {
	if _, err := r.Get(ctx, ownerUserID, itemID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, item_id, change, remaining, type, reference, note, created_at
		FROM inventory_movements
		WHERE item_id=$1 AND owner_user_id=$2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, itemID, ownerUserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.InventoryMovement
	for rows.Next() {
		var (
			m   domain.InventoryMovement
			typ string
		)
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Change, &m.Remaining, &typ, &m.Reference, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Type = domain.MovementType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

func getInventoryItemForUpdateWith(ctx context.Context, q pgxQuerier, ownerUserID, id int64) (*domain.InventoryItem, error) {
	it, err := scanInventoryItem(q.QueryRow(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE id=$1 AND owner_user_id=$2
		FOR UPDATE
	`, id, ownerUserID))
	if err != nil {
		return nil, notFound(err)
	}
	return it, nil
}

// consumeWith adds qty to quantity_used and records a consume movement.
func consumeWith(ctx context.Context, q pgxQuerier, ownerUserID, itemID int64, qty decimal.Decimal, reference, note string) (*domain.InventoryItem, error) {
	it, err := scanInventoryItem(q.QueryRow(ctx, `
		UPDATE inventory_items
		SET quantity_used = quantity_used + $3, updated_at = now()
		WHERE id=$1 AND owner_user_id=$2
		RETURNING `+inventoryColumns, itemID, ownerUserID, qty))
	if err != nil {
		return nil, notFound(err)
	}
	if err := insertMovementWith(ctx, q, ownerUserID, itemID, qty.Neg(), it.QuantityLeft, domain.MovementConsume, reference, note); err != nil {
		return nil, err
	}
	return it, nil
}

func insertMovementWith(ctx context.Context, q pgxQuerier, ownerUserID, itemID int64, change, remaining decimal.Decimal, typ domain.MovementType, reference, note string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO inventory_movements (owner_user_id, item_id, change, remaining, type, reference, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now())
	`, ownerUserID, itemID, change, remaining, string(typ), reference, note)
	return err
}

func scanInventoryItem(row rowScanner) (*domain.InventoryItem, error) {
	var it domain.InventoryItem
	if err := row.Scan(
		&it.ID, &it.ItemName, &it.Category, &it.QuantityBought, &it.QuantityUsed, &it.QuantityLeft,
		&it.UnitCost, &it.TotalCost, &it.ReorderLevel, &it.Supplier, &it.Notes, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}
