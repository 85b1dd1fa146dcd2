package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, sku, barcode, name, description, category, brand, model, unit_price, cost_price,
	quantity_in_stock, minimum_stock_level, maximum_stock_level, reorder_point, unit_of_measure, status,
	is_tracked, notes, supplier_id, created_at, updated_at`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	var barcode, supplierID *string
	err := row.Scan(&it.ID, &it.SKU, &barcode, &it.Name, &it.Description, &it.Category, &it.Brand, &it.Model,
		&it.UnitPrice, &it.CostPrice, &it.QuantityInStock, &it.MinimumStockLevel, &it.MaximumStockLevel,
		&it.ReorderPoint, &it.UnitOfMeasure, &it.Status, &it.IsTracked, &it.Notes, &supplierID,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Barcode = derefString(barcode)
	it.SupplierID = derefString(supplierID)
	return &it, nil
}

func (r *ItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	return it, nil
}

// Create persiste un nuevo artículo.
func (r *ItemRepo) Create(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SKU, nullIfEmpty(it.Barcode), it.Name, it.Description, it.Category, it.Brand, it.Model,
		it.UnitPrice, it.CostPrice, it.QuantityInStock, it.MinimumStockLevel, it.MaximumStockLevel,
		it.ReorderPoint, it.UnitOfMeasure, it.Status, it.IsTracked, it.Notes, nullIfEmpty(it.SupplierID),
		it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("supplier_id", "el proveedor no existe")
		}
		return wrap("insert item", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get item", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el artículo bloqueando la fila hasta el fin de la transacción.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "lock item", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

// GetBySKU obtiene un artículo por SKU.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get item by sku", `SELECT `+itemColumns+` FROM inventory_items WHERE sku = $1`, sku)
}

// GetByBarcode obtiene un artículo por código de barras.
func (r *ItemRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get item by barcode", `SELECT `+itemColumns+` FROM inventory_items WHERE barcode = $1`, barcode)
}

// Update actualiza un artículo existente. No modifica cantidad ni costo (se manejan vía StockMutator).
func (r *ItemRepo) Update(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items SET sku = $2, barcode = $3, name = $4, description = $5, category = $6, brand = $7,
			model = $8, unit_price = $9, minimum_stock_level = $10, maximum_stock_level = $11, reorder_point = $12,
			unit_of_measure = $13, status = $14, is_tracked = $15, notes = $16, supplier_id = $17, updated_at = $18
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		it.ID, it.SKU, nullIfEmpty(it.Barcode), it.Name, it.Description, it.Category, it.Brand, it.Model,
		it.UnitPrice, it.MinimumStockLevel, it.MaximumStockLevel, it.ReorderPoint, it.UnitOfMeasure,
		it.Status, it.IsTracked, it.Notes, nullIfEmpty(it.SupplierID), it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("supplier_id", "el proveedor no existe")
		}
		return wrap("update item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateQuantity fija la cantidad en stock (llamar con la fila bloqueada).
func (r *ItemRepo) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET quantity_in_stock = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return wrap("update item quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo promedio.
func (r *ItemRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET cost_price = $2, updated_at = now() WHERE id = $1`,
		id, cost,
	)
	if err != nil {
		return wrap("update item cost", err)
	}
	return nil
}

func itemWhere(f repository.ItemFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(lower(name) LIKE $%[1]d OR lower(sku) LIKE $%[1]d OR lower(coalesce(barcode, '')) LIKE $%[1]d OR lower(brand) LIKE $%[1]d)`, n))
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.SupplierID != "" {
		if !validID(f.SupplierID) {
			conds = append(conds, "false")
		} else {
			add("supplier_id = $%d", f.SupplierID)
		}
	}
	if f.LowStock {
		conds = append(conds, "is_tracked AND quantity_in_stock <= reorder_point")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List artículos filtrados con paginación y total.
func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, int64, error) {
	where, args := itemWhere(f)
	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_items`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap("count items", err)
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM inventory_items%s ORDER BY name, sku LIMIT $%d OFFSET $%d`,
		itemColumns, where, len(args)-1, len(args))
	list, err := r.query(ctx, "list items", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListLowStock artículos activos y controlados en o por debajo del punto de reorden (más urgentes primero).
func (r *ItemRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + ` FROM inventory_items
		WHERE is_tracked AND status = 'active' AND quantity_in_stock <= reorder_point
		ORDER BY quantity_in_stock, name LIMIT $1`
	return r.query(ctx, "list low stock", query, limit)
}

func (r *ItemRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// CountBySupplier artículos asociados al proveedor.
func (r *ItemRepo) CountBySupplier(ctx context.Context, supplierID string) (int64, error) {
	if !validID(supplierID) {
		return 0, nil
	}
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_items WHERE supplier_id = $1`, supplierID).Scan(&n); err != nil {
		return 0, wrap("count items by supplier", err)
	}
	return n, nil
}

// Delete elimina un artículo por ID.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ConflictError{Resource: "artículo", ID: id, Message: "el artículo tiene referencias"}
		}
		return wrap("delete item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Summary agregados calculados al vuelo. El valor usa el costo (o el precio si no hay costo).
func (r *ItemRepo) Summary(ctx context.Context) (*repository.ItemSummary, error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE status = 'active'),
			count(*) FILTER (WHERE is_tracked AND quantity_in_stock <= reorder_point),
			count(*) FILTER (WHERE is_tracked AND quantity_in_stock <= 0),
			coalesce(sum(quantity_in_stock) FILTER (WHERE is_tracked), 0),
			coalesce(sum(quantity_in_stock * CASE WHEN cost_price = 0 THEN unit_price ELSE cost_price END)
				FILTER (WHERE is_tracked), 0)
		FROM inventory_items`
	var s repository.ItemSummary
	err := r.q.QueryRow(ctx, query).Scan(&s.TotalItems, &s.ActiveItems, &s.LowStockItems,
		&s.OutOfStockItems, &s.TotalUnits, &s.TotalValue)
	if err != nil {
		return nil, wrap("item summary", err)
	}
	return &s, nil
}
