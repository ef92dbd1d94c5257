// Package store provides the Data Access Layer (Repository) for the Promogate
// application. It handles all direct interactions with the PostgreSQL database
// using the pgx driver.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpontes/promogate/internal/hasoneproduct"
)

// Setting is one name/value configuration pair.
type Setting struct {
	Name  string
	Value string
}

// SettingsRepository defines the persistence operations for settings.
// Using an interface allows for dependency injection and easier mocking in tests.
type SettingsRepository interface {
	// GetByKey returns the setting value and whether it exists.
	GetByKey(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces a setting.
	Set(ctx context.Context, name, value string) error

	// Delete removes a setting. Removing an absent setting is not an error.
	Delete(ctx context.Context, name string) error

	// ListByPrefix returns all settings whose name starts with prefix,
	// ordered by name (deterministic).
	ListByPrefix(ctx context.Context, prefix string) ([]Setting, error)
}

// Compile-time checks: the Postgres store must satisfy both the repository
// interface and the rule plugin's narrower settings port.
var (
	_ SettingsRepository          = (*PostgresSettingsStore)(nil)
	_ hasoneproduct.SettingsStore = (*PostgresSettingsStore)(nil)
)

// PostgresSettingsStore is the SettingsRepository implementation backed by PostgreSQL.
type PostgresSettingsStore struct {
	db *pgxpool.Pool
}

// NewPostgresSettingsStore creates a new repository instance with the given pool.
func NewPostgresSettingsStore(db *pgxpool.Pool) *PostgresSettingsStore {
	if db == nil {
		panic("store: database pool cannot be nil")
	}
	return &PostgresSettingsStore{db: db}
}

// GetByKey fetches one setting value. A missing row is reported through the
// boolean, not as an error.
func (s *PostgresSettingsStore) GetByKey(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE name = $1`

	var value string
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}

	return value, true, nil
}

// Set upserts a setting.
func (s *PostgresSettingsStore) Set(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO settings (name, value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := s.db.Exec(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", name, err)
	}
	return nil
}

// Delete removes a setting if present.
func (s *PostgresSettingsStore) Delete(ctx context.Context, name string) error {
	query := `DELETE FROM settings WHERE name = $1`

	if _, err := s.db.Exec(ctx, query, name); err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", name, err)
	}
	return nil
}

// ListByPrefix returns all settings under a key namespace, ordered by name.
// The prefix is matched literally, so LIKE metacharacters are escaped.
func (s *PostgresSettingsStore) ListByPrefix(ctx context.Context, prefix string) ([]Setting, error) {
	query := `
		SELECT name, value
		FROM settings
		WHERE name LIKE $1 ESCAPE '\'
		ORDER BY name
	`

	rows, err := s.db.Query(ctx, query, escapeLikePattern(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings by prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Name, &st.Value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		settings = append(settings, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return settings, nil
}

// escapeLikePattern escapes the LIKE metacharacters so a prefix containing
// '%', '_' or '\' matches literally.
func escapeLikePattern(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
