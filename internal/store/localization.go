package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpontes/promogate/internal/hasoneproduct"
)

// LocalizationRepository defines the persistence operations for locale string
// resources.
type LocalizationRepository interface {
	// AddOrUpdate upserts one resource.
	AddOrUpdate(ctx context.Context, name, value string) error

	// Delete removes one resource. Removing an absent resource is not an error.
	Delete(ctx context.Context, name string) error

	// GetByName returns the resource value and whether it exists.
	GetByName(ctx context.Context, name string) (string, bool, error)
}

var (
	_ LocalizationRepository                   = (*PostgresLocalizationStore)(nil)
	_ hasoneproduct.LocalizationResourceStore = (*PostgresLocalizationStore)(nil)
)

// PostgresLocalizationStore is the LocalizationRepository implementation backed
// by PostgreSQL.
type PostgresLocalizationStore struct {
	db *pgxpool.Pool
}

// NewPostgresLocalizationStore creates a new repository instance with the given pool.
func NewPostgresLocalizationStore(db *pgxpool.Pool) *PostgresLocalizationStore {
	if db == nil {
		panic("store: database pool cannot be nil")
	}
	return &PostgresLocalizationStore{db: db}
}

// AddOrUpdate upserts a locale string resource. Install hooks rely on this
// being idempotent.
func (s *PostgresLocalizationStore) AddOrUpdate(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO locale_string_resources (resource_name, resource_value)
		VALUES ($1, $2)
		ON CONFLICT (resource_name) DO UPDATE SET resource_value = EXCLUDED.resource_value
	`

	if _, err := s.db.Exec(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to upsert locale resource %q: %w", name, err)
	}
	return nil
}

// Delete removes a locale string resource if present.
func (s *PostgresLocalizationStore) Delete(ctx context.Context, name string) error {
	query := `DELETE FROM locale_string_resources WHERE resource_name = $1`

	if _, err := s.db.Exec(ctx, query, name); err != nil {
		return fmt.Errorf("failed to delete locale resource %q: %w", name, err)
	}
	return nil
}

// GetByName fetches one resource value. A missing row is reported through the
// boolean, not as an error.
func (s *PostgresLocalizationStore) GetByName(ctx context.Context, name string) (string, bool, error) {
	query := `SELECT resource_value FROM locale_string_resources WHERE resource_name = $1`

	var value string
	err := s.db.QueryRow(ctx, query, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get locale resource %q: %w", name, err)
	}

	return value, true, nil
}
