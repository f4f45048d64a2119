package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"stockflow/internal/model"
	"stockflow/internal/repository"
)

// OrderPostgres is a PostgreSQL implementation of repository.OrderRepository.
type OrderPostgres struct {
	db *sql.DB
}

func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

const orderColumns = `id, user_id, client_name, order_date, status, created_at, updated_at`

func scanOrder(row rowScanner, extra ...any) (*model.Order, error) {
	var o model.Order
	dest := []any{
		&o.ID,
		&o.UserID,
		&o.ClientName,
		&o.OrderDate,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderPostgres) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const q = `
		INSERT INTO orders (id, user_id, client_name, order_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + orderColumns
	row := r.db.QueryRowContext(ctx, q,
		order.ID,
		order.UserID,
		order.ClientName,
		order.OrderDate,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	out, err := scanOrder(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

const itemInsertCols = 7

func (r *OrderPostgres) CreateItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO order_items (id, order_id, sku_id, line_no, quantity, price_per_unit, created_at) VALUES `)
	args := make([]any, 0, len(items)*itemInsertCols)
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * itemInsertCols
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)
		args = append(args, it.ID, it.OrderID, it.SKUID, it.LineNo, it.Quantity, it.PricePerUnit, it.CreatedAt)
	}
	if _, err := r.db.ExecContext(ctx, b.String(), args...); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *OrderPostgres) FindByID(ctx context.Context, userID, id string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	return scanOrder(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *OrderPostgres) ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	const q = `
		SELECT oi.id, oi.order_id, oi.sku_id, COALESCE(s.sku_name, ''), oi.line_no, oi.quantity, oi.price_per_unit, oi.created_at
		FROM order_items oi
		LEFT JOIN skus s ON s.id = oi.sku_id
		WHERE oi.order_id = $1
		ORDER BY oi.line_no ASC
	`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.SKUID,
			&it.SKUName,
			&it.LineNo,
			&it.Quantity,
			&it.PricePerUnit,
			&it.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// List passes a NULL limit when pq.Limit is not positive, which Postgres treats as LIMIT ALL.
func (r *OrderPostgres) List(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.OrderSummary], error) {
	const qCount = `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT o.id, o.user_id, o.client_name, o.order_date, o.status, o.created_at, o.updated_at,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.order_date DESC, o.created_at DESC
		LIMIT $2 OFFSET $3
	`
	limit := sql.NullInt64{Int64: int64(pq.Limit), Valid: pq.Limit > 0}
	rows, err := r.db.QueryContext(ctx, qList, userID, limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.OrderSummary, 0)
	for rows.Next() {
		var count int
		o, err := scanOrder(rows, &count)
		if err != nil {
			return nil, err
		}
		items = append(items, model.OrderSummary{Order: *o, ItemCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.OrderSummary]{
		Items: items,
		Total: total,
	}, nil
}

func (r *OrderPostgres) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM orders WHERE user_id = $1 AND order_date >= $2`
	var n int
	if err := r.db.QueryRowContext(ctx, q, userID, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *OrderPostgres) UpdateStatus(ctx context.Context, userID, id string, status model.OrderStatus, at time.Time) (*model.Order, error) {
	const q = `
		UPDATE orders SET status = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
		RETURNING ` + orderColumns
	return scanOrder(r.db.QueryRowContext(ctx, q, id, userID, status, at))
}
