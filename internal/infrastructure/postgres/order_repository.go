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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, order_type, status, supplier_id, customer_name, customer_email,
	subtotal, tax_amount, discount_amount, shipping_cost, total_amount, expected_delivery_date,
	shipping_address, shipping_city, shipping_state, shipping_country, shipping_postal_code,
	tracking_number, notes, internal_notes, created_by, created_at, updated_at,
	confirmed_at, shipped_at, received_at, closed_at, cancelled_at`

// OrderRepo pedidos (orders) y sus líneas (order_items).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var supplierID, createdBy *string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.OrderType, &o.Status, &supplierID, &o.CustomerName,
		&o.CustomerEmail, &o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.ShippingCost, &o.TotalAmount,
		&o.ExpectedDeliveryDate, &o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingCountry,
		&o.ShippingPostalCode, &o.TrackingNumber, &o.Notes, &o.InternalNotes, &createdBy, &o.CreatedAt,
		&o.UpdatedAt, &o.ConfirmedAt, &o.ShippedAt, &o.ReceivedAt, &o.ClosedAt, &o.CancelledAt)
	if err != nil {
		return nil, err
	}
	o.SupplierID = derefString(supplierID)
	o.CreatedBy = derefString(createdBy)
	return &o, nil
}

// Create persiste cabecera y líneas (llamar dentro de una transacción).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.OrderType, o.Status, nullIfEmpty(o.SupplierID), o.CustomerName, o.CustomerEmail,
		o.Subtotal, o.TaxAmount, o.DiscountAmount, o.ShippingCost, o.TotalAmount, o.ExpectedDeliveryDate,
		o.ShippingAddress, o.ShippingCity, o.ShippingState, o.ShippingCountry, o.ShippingPostalCode,
		o.TrackingNumber, o.Notes, o.InternalNotes, nullIfEmpty(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
		o.ConfirmedAt, o.ShippedAt, o.ReceivedAt, o.ClosedAt, o.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("supplier_id", "el proveedor no existe")
		}
		return wrap("insert order", err)
	}
	return r.insertItems(ctx, o.ID, o.Items)
}

func (r *OrderRepo) insertItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO order_items (id, order_id, item_id, quantity, unit_price, total_price, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, orderID, it.ItemID, it.Quantity, it.UnitPrice, it.TotalPrice, it.Notes)
	}
	res := r.q.SendBatch(ctx, batch)
	defer res.Close()
	for range items {
		if _, err := res.Exec(); err != nil {
			return mapItemInsert(err)
		}
	}
	return nil
}

func mapItemInsert(err error) error {
	if isForeignKeyViolation(err) {
		return domain.Invalid("items", "artículo inexistente")
	}
	return wrap("insert order item", err)
}

func (r *OrderRepo) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, item_id, quantity, unit_price, total_price, notes
		FROM order_items WHERE order_id = $1 ORDER BY item_id`, o.ID)
	if err != nil {
		return wrap("list order items", err)
	}
	defer rows.Close()
	o.Items = o.Items[:0]
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Notes); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *OrderRepo) get(ctx context.Context, op, query, id string) (*entity.Order, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, "get order", `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera y carga las líneas.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, "lock order", `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

// Update cabecera (datos de cliente, envío, importes, notas). No cambia el estado.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET supplier_id = $2, customer_name = $3, customer_email = $4, subtotal = $5,
			tax_amount = $6, discount_amount = $7, shipping_cost = $8, total_amount = $9,
			expected_delivery_date = $10, shipping_address = $11, shipping_city = $12, shipping_state = $13,
			shipping_country = $14, shipping_postal_code = $15, tracking_number = $16, notes = $17,
			internal_notes = $18, updated_at = $19
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		o.ID, nullIfEmpty(o.SupplierID), o.CustomerName, o.CustomerEmail, o.Subtotal, o.TaxAmount,
		o.DiscountAmount, o.ShippingCost, o.TotalAmount, o.ExpectedDeliveryDate, o.ShippingAddress,
		o.ShippingCity, o.ShippingState, o.ShippingCountry, o.ShippingPostalCode, o.TrackingNumber,
		o.Notes, o.InternalNotes, o.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("supplier_id", "el proveedor no existe")
		}
		return wrap("update order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems sustituye todas las líneas del pedido.
func (r *OrderRepo) ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return wrap("delete order items", err)
	}
	return r.insertItems(ctx, orderID, items)
}

// UpdateStatus persiste el estado y las fechas de transición.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET status = $2, confirmed_at = $3, shipped_at = $4, received_at = $5, closed_at = $6,
			cancelled_at = $7, updated_at = $8
		WHERE id = $1`,
		o.ID, o.Status, o.ConfirmedAt, o.ShippedAt, o.ReceivedAt, o.ClosedAt, o.CancelledAt, o.UpdatedAt,
	)
	if err != nil {
		return wrap("update order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el pedido; las líneas caen por ON DELETE CASCADE.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return wrap("delete order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List pedidos filtrados, más recientes primero. No carga las líneas.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int64, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.OrderType != "" {
		add("order_type = $%d", f.OrderType)
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
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		conds = append(conds, fmt.Sprintf(`(lower(order_number) LIKE $%[1]d OR lower(customer_name) LIKE $%[1]d)`, len(args)))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap("count orders", err)
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrap("list orders", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// Summary conteos por estado y tipo e importes de pedidos no cancelados.
func (r *OrderRepo) Summary(ctx context.Context) (*repository.OrderSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT order_type, status, count(*), coalesce(sum(total_amount), 0)
		FROM orders GROUP BY order_type, status`)
	if err != nil {
		return nil, wrap("order summary", err)
	}
	defer rows.Close()
	s := &repository.OrderSummary{
		ByStatus:       map[string]int64{},
		ByType:         map[string]int64{},
		PurchaseAmount: decimal.Zero,
		SalesAmount:    decimal.Zero,
	}
	for rows.Next() {
		var typ, status string
		var n int64
		var amount decimal.Decimal
		if err := rows.Scan(&typ, &status, &n, &amount); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		s.TotalOrders += n
		s.ByStatus[status] += n
		s.ByType[typ] += n
		if status == entity.OrderStatusCancelled {
			continue
		}
		switch typ {
		case entity.OrderTypePurchase:
			s.PurchaseAmount = s.PurchaseAmount.Add(amount)
		case entity.OrderTypeSales:
			s.SalesAmount = s.SalesAmount.Add(amount)
		}
	}
	return s, rows.Err()
}

// CountNonCancelledBySupplier pedidos no cancelados del proveedor.
func (r *OrderRepo) CountNonCancelledBySupplier(ctx context.Context, supplierID string) (int64, error) {
	if !validID(supplierID) {
		return 0, nil
	}
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE supplier_id = $1 AND status <> 'cancelled'`, supplierID).Scan(&n)
	if err != nil {
		return 0, wrap("count supplier orders", err)
	}
	return n, nil
}

// CountItemReferences líneas de pedido que referencian el artículo.
func (r *OrderRepo) CountItemReferences(ctx context.Context, itemID string) (int64, error) {
	if !validID(itemID) {
		return 0, nil
	}
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM order_items WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, wrap("count item references", err)
	}
	return n, nil
}
