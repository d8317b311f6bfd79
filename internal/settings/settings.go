package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConfigured indicates the settings row has not been created yet.
var ErrNotConfigured = errors.New("settings not configured")

// ErrInvalidInput indicates the payload failed validation.
var ErrInvalidInput = errors.New("invalid settings input")

// Settings is the single site-wide configuration row shown on the kiosk.
type Settings struct {
	RestaurantName string `json:"restaurantName" validate:"required"`
	Address        string `json:"address" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Currency       string `json:"currency" validate:"required"`
	TimeZone       string `json:"timeZone" validate:"required"`
	LogoURL        string `json:"logoUrl"`
}

// Repo provides Postgres access to the settings row.
type Repo struct {
	Pool *pgxpool.Pool
}

// Get loads the settings row.
func (r *Repo) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.Pool.QueryRow(ctx, `
		SELECT restaurant_name, address, phone, email, currency, time_zone, logo_url
		FROM general_settings
		ORDER BY id LIMIT 1`,
	).Scan(&s.RestaurantName, &s.Address, &s.Phone, &s.Email, &s.Currency, &s.TimeZone, &s.LogoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrNotConfigured
		}
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// Upsert replaces the settings row, creating it on first write.
func (r *Repo) Upsert(ctx context.Context, s Settings) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO general_settings (id, restaurant_name, address, phone, email, currency, time_zone, logo_url)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			restaurant_name = EXCLUDED.restaurant_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			currency = EXCLUDED.currency,
			time_zone = EXCLUDED.time_zone,
			logo_url = EXCLUDED.logo_url`,
		s.RestaurantName, s.Address, s.Phone, s.Email, s.Currency, s.TimeZone, s.LogoURL)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// Store is the persistence surface the service needs. *Repo satisfies it.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, s Settings) error
}

// Service validates and serves the site settings.
type Service struct {
	Store    Store
	Validate *validator.Validate
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	return s.Store.Get(ctx)
}

// Update validates and stores the settings.
func (s *Service) Update(ctx context.Context, in Settings) (Settings, error) {
	if err := s.Validate.Struct(in); err != nil {
		return Settings{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := s.Store.Upsert(ctx, in); err != nil {
		return Settings{}, err
	}
	return in, nil
}
