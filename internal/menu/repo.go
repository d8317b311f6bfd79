package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// Repo provides Postgres access to menu data.
type Repo struct {
	Pool *pgxpool.Pool
}

// ListCategories returns categories in display order.
func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, name, image_url, display_order
		FROM categories
		ORDER BY display_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &c.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// CreateCategory inserts a category and returns it with its id.
func (r *Repo) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	var c Category
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO categories (name, image_url, display_order)
		VALUES ($1, $2, $3)
		RETURNING id, name, image_url, display_order`,
		in.Name, in.Image, in.DisplayOrder,
	).Scan(&c.ID, &c.Name, &c.Image, &c.DisplayOrder)
	if err != nil {
		return Category{}, mapPgError("create category", err)
	}
	return c, nil
}

// UpdateCategory updates an existing category.
func (r *Repo) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	var c Category
	err := r.Pool.QueryRow(ctx, `
		UPDATE categories
		SET name = $2, image_url = $3, display_order = $4
		WHERE id = $1
		RETURNING id, name, image_url, display_order`,
		id, in.Name, in.Image, in.DisplayOrder,
	).Scan(&c.ID, &c.Name, &c.Image, &c.DisplayOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, mapPgError("update category", err)
	}
	return c, nil
}

// DeleteCategory removes a category.
func (r *Repo) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListItems returns menu items, optionally filtered by category, with their
// option definitions attached.
func (r *Repo) ListItems(ctx context.Context, category string) ([]Item, error) {
	query := `
		SELECT id, name, description, price, category, image_url, available
		FROM menu_items`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY id`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var items []Item
	var ids []int64
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.Image, &it.Available); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	if err := r.attachOptions(ctx, items, ids); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem loads a single item with its options.
func (r *Repo) GetItem(ctx context.Context, id int64) (Item, error) {
	var it Item
	err := r.Pool.QueryRow(ctx, `
		SELECT id, name, description, price, category, image_url, available
		FROM menu_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.Image, &it.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	items := []Item{it}
	if err := r.attachOptions(ctx, items, []int64{id}); err != nil {
		return Item{}, err
	}
	return items[0], nil
}

// CreateItem inserts the item and its option rows in one transaction.
func (r *Repo) CreateItem(ctx context.Context, in ItemInput) (Item, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Item{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	available := true
	if in.Available != nil {
		available = *in.Available
	}
	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price, category, image_url, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		in.Name, in.Description, in.Price, in.Category, in.Image, available,
	).Scan(&id)
	if err != nil {
		return Item{}, mapPgError("create item", err)
	}
	if err := insertOptions(ctx, tx, id, in); err != nil {
		return Item{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Item{}, err
	}
	return r.GetItem(ctx, id)
}

// UpdateItem rewrites the item row and replaces its option rows atomically.
func (r *Repo) UpdateItem(ctx context.Context, id int64, in ItemInput) (Item, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return Item{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	available := true
	if in.Available != nil {
		available = *in.Available
	}
	tag, err := tx.Exec(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5,
		    image_url = $6, available = $7
		WHERE id = $1`,
		id, in.Name, in.Description, in.Price, in.Category, in.Image, available)
	if err != nil {
		return Item{}, mapPgError("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return Item{}, ErrNotFound
	}
	for _, table := range []string{"extras", "sizes", "piece_options"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE item_id = $1`, id); err != nil {
			return Item{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertOptions(ctx, tx, id, in); err != nil {
		return Item{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Item{}, err
	}
	return r.GetItem(ctx, id)
}

// DeleteItem removes an item; option rows cascade.
func (r *Repo) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertOptions(ctx context.Context, tx pgx.Tx, itemID int64, in ItemInput) error {
	for _, extra := range in.Extras {
		if _, err := tx.Exec(ctx, `
			INSERT INTO extras (item_id, name, price) VALUES ($1, $2, $3)`,
			itemID, extra.Name, extra.Price); err != nil {
			return fmt.Errorf("insert extra: %w", err)
		}
	}
	for _, size := range in.Sizes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sizes (item_id, name, price) VALUES ($1, $2, $3)`,
			itemID, size.Name, size.Price); err != nil {
			return fmt.Errorf("insert size: %w", err)
		}
	}
	for _, opt := range in.PieceOptions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO piece_options (item_id, quantity, price, is_default) VALUES ($1, $2, $3, $4)`,
			itemID, opt.Quantity, opt.Price, opt.IsDefault); err != nil {
			return fmt.Errorf("insert piece option: %w", err)
		}
	}
	return nil
}

func (r *Repo) attachOptions(ctx context.Context, items []Item, ids []int64) error {
	index := make(map[int64]*Item, len(items))
	for i := range items {
		items[i].Extras = []pricing.Extra{}
		items[i].Sizes = []pricing.SizeVariant{}
		items[i].PieceOptions = []pricing.PieceVariant{}
		index[items[i].ID] = &items[i]
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT item_id, id, name, price FROM extras WHERE item_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list extras: %w", err)
	}
	for rows.Next() {
		var itemID int64
		var extra pricing.Extra
		if err := rows.Scan(&itemID, &extra.ID, &extra.Name, &extra.Price); err != nil {
			rows.Close()
			return fmt.Errorf("scan extra: %w", err)
		}
		if it, ok := index[itemID]; ok {
			it.Extras = append(it.Extras, extra)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.Pool.Query(ctx, `
		SELECT item_id, name, price FROM sizes WHERE item_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list sizes: %w", err)
	}
	for rows.Next() {
		var itemID int64
		var size pricing.SizeVariant
		if err := rows.Scan(&itemID, &size.Name, &size.Price); err != nil {
			rows.Close()
			return fmt.Errorf("scan size: %w", err)
		}
		if it, ok := index[itemID]; ok {
			it.Sizes = append(it.Sizes, size)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.Pool.Query(ctx, `
		SELECT item_id, id, quantity, price, is_default FROM piece_options WHERE item_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list piece options: %w", err)
	}
	for rows.Next() {
		var itemID int64
		var opt pricing.PieceVariant
		if err := rows.Scan(&itemID, &opt.ID, &opt.Pieces, &opt.Price, &opt.Default); err != nil {
			rows.Close()
			return fmt.Errorf("scan piece option: %w", err)
		}
		if it, ok := index[itemID]; ok {
			it.PieceOptions = append(it.PieceOptions, opt)
		}
	}
	rows.Close()
	return rows.Err()
}

func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: duplicate entry: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
