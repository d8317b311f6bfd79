package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// ErrDuplicateNumber signals an order-number collision on insert. The service
// retries with a fresh number.
var ErrDuplicateNumber = errors.New("duplicate order number")

// Repo provides Postgres access to orders.
type Repo struct {
	Pool *pgxpool.Pool
}

// Optional text fields (contact, payment_ref, size) are NOT NULL DEFAULT ''
// in the schema, so empty strings are bound verbatim rather than nulled out.
const insertOrderSQL = `
	INSERT INTO orders (order_number, email, phone, total_amount, status, payment_ref)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at`

const insertOrderItemSQL = `
	INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, size, pieces, extras, total)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`

// Create inserts the order and its lines in one transaction. The generated id,
// item ids and created-at are filled in on o.
func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.Number, o.Email, o.Phone, o.Total, o.Status, o.PaymentRef,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateNumber, o.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		extras, err := json.Marshal(item.Extras)
		if err != nil {
			return fmt.Errorf("encode extras: %w", err)
		}
		err = tx.QueryRow(ctx, insertOrderItemSQL,
			o.ID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice,
			item.Size, item.Pieces, extras, item.Total,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// GetByNumber loads an order with its lines.
func (r *Repo) GetByNumber(ctx context.Context, number string) (Order, error) {
	var o Order
	err := r.Pool.QueryRow(ctx, `
		SELECT id, order_number, email, phone,
		       total_amount, status, payment_ref, created_at
		FROM orders WHERE order_number = $1`, number,
	).Scan(&o.ID, &o.Number, &o.Email, &o.Phone, &o.Total, &o.Status, &o.PaymentRef, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

// List returns orders newest first, optionally filtered by status, plus the
// total row count for pagination.
func (r *Repo) List(ctx context.Context, status string, limit, offset int) ([]Order, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}
	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	query := fmt.Sprintf(`
		SELECT id, order_number, email, phone,
		       total_amount, status, payment_ref, created_at
		FROM orders%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Number, &o.Email, &o.Phone, &o.Total, &o.Status, &o.PaymentRef, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

// UpdateStatus sets the status of an order by id.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid flips a pending order to paid and records the settled amount and
// payment reference. Re-delivered notifications for an already paid order are
// a no-op.
func (r *Repo) MarkPaid(ctx context.Context, number string, amount pricing.Money, paymentRef string) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, total_amount = $3, payment_ref = COALESCE(NULLIF($4, ''), payment_ref)
		WHERE order_number = $1 AND status <> $2`,
		number, StatusPaid, amount, paymentRef)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := r.Pool.QueryRow(ctx, `SELECT status FROM orders WHERE order_number = $1`, number).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}
	}
	return nil
}

func (r *Repo) itemsFor(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, menu_item_id, name, quantity, unit_price, size, pieces, extras, total
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		var item Item
		var extras []byte
		if err := rows.Scan(&item.ID, &item.MenuItemID, &item.Name, &item.Quantity, &item.UnitPrice, &item.Size, &item.Pieces, &extras, &item.Total); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if len(extras) > 0 {
			if err := json.Unmarshal(extras, &item.Extras); err != nil {
				return nil, fmt.Errorf("decode extras: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
