package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"stockflow/internal/model"
	"stockflow/internal/repository"
)

// SKUPostgres is a PostgreSQL implementation of repository.SKURepository.
type SKUPostgres struct {
	db *sql.DB
}

func NewSKUPostgres(db *sql.DB) *SKUPostgres {
	return &SKUPostgres{db: db}
}

var _ repository.SKURepository = (*SKUPostgres)(nil)

const skuColumns = `id, user_id, sku_name, current_quantity, low_stock_threshold, created_at, updated_at`

func scanSKU(row rowScanner) (*model.SKU, error) {
	var s model.SKU
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Name,
		&s.CurrentQuantity,
		&s.LowStockThreshold,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SKUPostgres) Create(ctx context.Context, sku *model.SKU) (*model.SKU, error) {
	const q = `
		INSERT INTO skus (id, user_id, sku_name, current_quantity, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + skuColumns
	row := r.db.QueryRowContext(ctx, q,
		sku.ID,
		sku.UserID,
		sku.Name,
		sku.CurrentQuantity,
		sku.LowStockThreshold,
		sku.CreatedAt,
		sku.UpdatedAt,
	)
	out, err := scanSKU(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *SKUPostgres) FindByID(ctx context.Context, userID, id string) (*model.SKU, error) {
	const q = `SELECT ` + skuColumns + ` FROM skus WHERE id = $1 AND user_id = $2`
	return scanSKU(r.db.QueryRowContext(ctx, q, id, userID))
}

// List filters with position() rather than LIKE so user input needs no escaping.
func (r *SKUPostgres) List(ctx context.Context, userID, search string) ([]model.SKU, error) {
	const q = `
		SELECT ` + skuColumns + `
		FROM skus
		WHERE user_id = $1
		  AND ($2 = '' OR position(lower($2) in lower(sku_name)) > 0)
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SKU, 0)
	for rows.Next() {
		s, err := scanSKU(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SKUPostgres) ListOptions(ctx context.Context, userID string) ([]model.SKUOption, error) {
	const q = `
		SELECT id, sku_name, current_quantity
		FROM skus
		WHERE user_id = $1
		ORDER BY sku_name ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opts := make([]model.SKUOption, 0)
	for rows.Next() {
		var o model.SKUOption
		if err := rows.Scan(&o.ID, &o.Name, &o.CurrentQuantity); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (r *SKUPostgres) Update(ctx context.Context, sku *model.SKU) (*model.SKU, error) {
	const q = `
		UPDATE skus
		SET sku_name = $3, current_quantity = $4, low_stock_threshold = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + skuColumns
	row := r.db.QueryRowContext(ctx, q,
		sku.ID,
		sku.UserID,
		sku.Name,
		sku.CurrentQuantity,
		sku.LowStockThreshold,
		sku.UpdatedAt,
	)
	out, err := scanSKU(row)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *SKUPostgres) UpdateQuantity(ctx context.Context, userID, id string, quantity int, at time.Time) error {
	const q = `UPDATE skus SET current_quantity = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID, quantity, at)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SKUPostgres) Delete(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM skus WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
