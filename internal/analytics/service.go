package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// DailySales is one day of settled revenue.
type DailySales struct {
	Day      time.Time     `json:"day"`
	Orders   int64         `json:"orders"`
	Revenue  pricing.Money `json:"revenue"`
	AvgOrder pricing.Money `json:"avgOrder"`
}

// TopItem is a menu item ranked by quantity sold.
type TopItem struct {
	MenuItemID int64         `json:"menuItemId"`
	Name       string        `json:"name"`
	Quantity   int64         `json:"quantity"`
	Revenue    pricing.Money `json:"revenue"`
}

// Querier defines the database access required for analytics queries.
type Querier interface {
	SalesDailyRange(ctx context.Context, from, to time.Time) ([]DailySales, error)
	TopItems(ctx context.Context, limit, offset int) ([]TopItem, error)
}

// Repo runs the analytics aggregations against Postgres. Only paid and later
// statuses count as revenue.
type Repo struct {
	Pool *pgxpool.Pool
}

// SalesDailyRange aggregates settled orders per day, from inclusive, to exclusive.
func (r *Repo) SalesDailyRange(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*) AS orders,
		       COALESCE(SUM(total_amount), 0) AS revenue
		FROM orders
		WHERE status NOT IN ('pending', 'cancelled')
		  AND created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day`, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales daily range: %w", err)
	}
	defer rows.Close()
	var out []DailySales
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Day, &d.Orders, &d.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		if d.Orders > 0 {
			d.AvgOrder = d.Revenue / d.Orders
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TopItems ranks menu items by quantity sold across settled orders.
func (r *Repo) TopItems(ctx context.Context, limit, offset int) ([]TopItem, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT oi.menu_item_id, oi.name,
		       SUM(oi.quantity) AS quantity,
		       COALESCE(SUM(oi.total), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status NOT IN ('pending', 'cancelled')
		GROUP BY oi.menu_item_id, oi.name
		ORDER BY quantity DESC, revenue DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()
	var out []TopItem
	for rows.Next() {
		var item TopItem
		if err := rows.Scan(&item.MenuItemID, &item.Name, &item.Quantity, &item.Revenue); err != nil {
			return nil, fmt.Errorf("scan top item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Service provides cached access to the analytics aggregations.
type Service struct {
	Q            Querier
	R            *redis.Client
	TTL          time.Duration
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// SalesRange returns daily sales between the bounds, from inclusive, to
// exclusive. Zero bounds default to the configured trailing range.
func (s *Service) SalesRange(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		days := s.DefaultRange
		if days <= 0 {
			days = 30
		}
		from = to.AddDate(0, 0, -days)
	}
	key := cacheKey("an", "sales", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if rows, ok := getCached[[]DailySales](ctx, s, key); ok {
		return rows, nil
	}
	rows, err := s.Q.SalesDailyRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// TopItems returns the top-selling menu items ordered by quantity sold.
func (s *Service) TopItems(ctx context.Context, limit, offset int) ([]TopItem, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	key := cacheKey("an", "top", limit, offset)
	if rows, ok := getCached[[]TopItem](ctx, s, key); ok {
		return rows, nil
	}
	rows, err := s.Q.TopItems(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

func getCached[T any](ctx context.Context, s *Service, key string) (T, bool) {
	var zero T
	if s.R == nil || s.TTL <= 0 {
		return zero, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return zero, false
	}
	var rows T
	if err := json.Unmarshal(data, &rows); err != nil {
		return zero, false
	}
	return rows, true
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
