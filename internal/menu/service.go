package menu

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/SandileTshabalala/restuarant-selfservice/internal/pricing"
)

// Queries is the storage surface the service needs. *Repo satisfies it.
type Queries interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (Category, error)
	UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListItems(ctx context.Context, category string) ([]Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)
	CreateItem(ctx context.Context, in ItemInput) (Item, error)
	UpdateItem(ctx context.Context, id int64, in ItemInput) (Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// Service exposes menu reads for the kiosk and CRUD for the admin console.
// Reads go through the cache when one is configured.
type Service struct {
	Repo     Queries
	Cache    *Cache
	Validate *validator.Validate
	Log      zerolog.Logger
}

// Categories lists categories in display order.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if s == nil || s.Repo == nil {
		return nil, fmt.Errorf("menu service not configured")
	}
	key := s.Cache.Key(ctx, "categories")
	var cached []Category
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, key, cats); err != nil {
		s.Log.Warn().Err(err).Msg("cache categories")
	}
	return cats, nil
}

// Items lists menu items, optionally filtered by category name.
func (s *Service) Items(ctx context.Context, category string) ([]Item, error) {
	if s == nil || s.Repo == nil {
		return nil, fmt.Errorf("menu service not configured")
	}
	key := s.Cache.Key(ctx, "items:"+category)
	var cached []Item
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	items, err := s.Repo.ListItems(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, key, items); err != nil {
		s.Log.Warn().Err(err).Msg("cache items")
	}
	return items, nil
}

// Item returns a single menu item with its option definitions.
func (s *Service) Item(ctx context.Context, id int64) (Item, error) {
	if s == nil || s.Repo == nil {
		return Item{}, fmt.Errorf("menu service not configured")
	}
	key := s.Cache.Key(ctx, fmt.Sprintf("item:%d", id))
	var cached Item
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	item, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if err := s.Cache.SetJSON(ctx, key, item); err != nil {
		s.Log.Warn().Err(err).Msg("cache item")
	}
	return item, nil
}

// PricingItem satisfies the cart's catalog dependency. Unavailable items are
// treated as missing so they cannot be added to a cart.
func (s *Service) PricingItem(ctx context.Context, id int64) (pricing.Item, error) {
	item, err := s.Item(ctx, id)
	if err != nil {
		return pricing.Item{}, err
	}
	if !item.Available {
		return pricing.Item{}, ErrNotFound
	}
	return item.Pricing(), nil
}

// CreateItem validates and persists a new menu item.
func (s *Service) CreateItem(ctx context.Context, in ItemInput) (Item, error) {
	if err := s.Validate.Struct(in); err != nil {
		return Item{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := in.CheckVariants(); err != nil {
		return Item{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	item, err := s.Repo.CreateItem(ctx, in)
	if err != nil {
		return Item{}, err
	}
	s.Cache.Bump(ctx)
	s.Log.Info().Int64("item_id", item.ID).Str("name", item.Name).Msg("menu item created")
	return item, nil
}

// UpdateItem validates and replaces an existing menu item and its options.
func (s *Service) UpdateItem(ctx context.Context, id int64, in ItemInput) (Item, error) {
	if err := s.Validate.Struct(in); err != nil {
		return Item{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := in.CheckVariants(); err != nil {
		return Item{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	item, err := s.Repo.UpdateItem(ctx, id, in)
	if err != nil {
		return Item{}, err
	}
	s.Cache.Bump(ctx)
	return item, nil
}

// DeleteItem removes a menu item.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.Repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.Cache.Bump(ctx)
	return nil
}

// CreateCategory validates and persists a category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	if err := s.Validate.Struct(in); err != nil {
		return Category{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	cat, err := s.Repo.CreateCategory(ctx, in)
	if err != nil {
		return Category{}, err
	}
	s.Cache.Bump(ctx)
	return cat, nil
}

// UpdateCategory validates and updates a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	if err := s.Validate.Struct(in); err != nil {
		return Category{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	cat, err := s.Repo.UpdateCategory(ctx, id, in)
	if err != nil {
		return Category{}, err
	}
	s.Cache.Bump(ctx)
	return cat, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.Cache.Bump(ctx)
	return nil
}
