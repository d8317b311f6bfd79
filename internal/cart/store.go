package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists the session cart as a single JSON document in Redis. The
// cart is the only kiosk state that survives a page reload within a session.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s *Store) key(session string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "kiosk:"
	}
	return prefix + "cart:" + session
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

// Load fetches the cart for a session. A missing key yields an empty cart.
func (s *Store) Load(ctx context.Context, session string) (Cart, error) {
	if s == nil || s.Client == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	if strings.TrimSpace(session) == "" {
		return Cart{}, errors.New("session id is required")
	}
	data, err := s.Client.Get(ctx, s.key(session)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, nil
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save writes the cart back under the session key, refreshing the TTL.
func (s *Store) Save(ctx context.Context, session string, c Cart) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.Client.Set(ctx, s.key(session), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete drops the persisted cart for a session.
func (s *Store) Delete(ctx context.Context, session string) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	if err := s.Client.Del(ctx, s.key(session)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
