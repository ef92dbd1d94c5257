package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpontes/promogate/internal/hasoneproduct"
)

// ErrRequirementNotFound is returned when a discount requirement does not exist.
var ErrRequirementNotFound = errors.New("discount requirement not found")

// RequirementRecord is a discount requirement row with its persistence metadata.
type RequirementRecord struct {
	ID             int64
	DiscountID     int64
	RuleSystemName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Requirement converts the record to the rule plugin's requirement type.
func (r RequirementRecord) Requirement() hasoneproduct.DiscountRequirement {
	return hasoneproduct.DiscountRequirement{
		ID:             r.ID,
		DiscountID:     r.DiscountID,
		RuleSystemName: r.RuleSystemName,
	}
}

// RequirementsRepository defines the persistence operations for discount requirements.
type RequirementsRepository interface {
	// Create inserts a requirement and returns the stored record.
	Create(ctx context.Context, discountID int64, ruleSystemName string) (RequirementRecord, error)

	// GetByID returns one requirement or ErrRequirementNotFound.
	GetByID(ctx context.Context, id int64) (RequirementRecord, error)

	// List returns a page of requirements ordered by id.
	List(ctx context.Context, limit, offset int) ([]RequirementRecord, error)

	// Count returns the total number of requirements.
	Count(ctx context.Context) (int64, error)

	// Touch bumps updated_at after a configuration change and returns the
	// refreshed record, or ErrRequirementNotFound.
	Touch(ctx context.Context, id int64) (RequirementRecord, error)

	// GetAllRequirements returns every requirement, regardless of rule.
	GetAllRequirements(ctx context.Context) ([]hasoneproduct.DiscountRequirement, error)

	// Delete removes a requirement. Deleting an absent requirement returns
	// ErrRequirementNotFound.
	Delete(ctx context.Context, requirement hasoneproduct.DiscountRequirement) error
}

var (
	_ RequirementsRepository                 = (*PostgresRequirementsStore)(nil)
	_ hasoneproduct.DiscountRequirementStore = (*PostgresRequirementsStore)(nil)
)

// PostgresRequirementsStore is the RequirementsRepository implementation backed
// by PostgreSQL.
type PostgresRequirementsStore struct {
	db *pgxpool.Pool
}

// NewPostgresRequirementsStore creates a new repository instance with the given pool.
func NewPostgresRequirementsStore(db *pgxpool.Pool) *PostgresRequirementsStore {
	if db == nil {
		panic("store: database pool cannot be nil")
	}
	return &PostgresRequirementsStore{db: db}
}

// Create inserts a new discount requirement.
func (s *PostgresRequirementsStore) Create(ctx context.Context, discountID int64, ruleSystemName string) (RequirementRecord, error) {
	query := `
		INSERT INTO discount_requirements (discount_id, rule_system_name)
		VALUES ($1, $2)
		RETURNING id, discount_id, rule_system_name, created_at, updated_at
	`

	var rec RequirementRecord
	err := s.db.QueryRow(ctx, query, discountID, ruleSystemName).Scan(
		&rec.ID,
		&rec.DiscountID,
		&rec.RuleSystemName,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return RequirementRecord{}, fmt.Errorf("failed to create discount requirement: %w", err)
	}

	return rec, nil
}

// GetByID fetches one requirement by primary key.
func (s *PostgresRequirementsStore) GetByID(ctx context.Context, id int64) (RequirementRecord, error) {
	query := `
		SELECT id, discount_id, rule_system_name, created_at, updated_at
		FROM discount_requirements
		WHERE id = $1
	`

	var rec RequirementRecord
	err := s.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.DiscountID,
		&rec.RuleSystemName,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequirementRecord{}, ErrRequirementNotFound
		}
		return RequirementRecord{}, fmt.Errorf("failed to get discount requirement %d: %w", id, err)
	}

	return rec, nil
}

// List returns a page of requirements ordered by id for stable pagination.
func (s *PostgresRequirementsStore) List(ctx context.Context, limit, offset int) ([]RequirementRecord, error) {
	query := `
		SELECT id, discount_id, rule_system_name, created_at, updated_at
		FROM discount_requirements
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount requirements: %w", err)
	}
	defer rows.Close()

	records := make([]RequirementRecord, 0, limit)
	for rows.Next() {
		var rec RequirementRecord
		if err := rows.Scan(&rec.ID, &rec.DiscountID, &rec.RuleSystemName, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan discount requirement row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// Count returns the total number of requirements for pagination metadata.
func (s *PostgresRequirementsStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM discount_requirements`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count discount requirements: %w", err)
	}
	return total, nil
}

// Touch bumps updated_at, marking a configuration change on the requirement.
func (s *PostgresRequirementsStore) Touch(ctx context.Context, id int64) (RequirementRecord, error) {
	query := `
		UPDATE discount_requirements
		SET updated_at = now()
		WHERE id = $1
		RETURNING id, discount_id, rule_system_name, created_at, updated_at
	`

	var rec RequirementRecord
	err := s.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.DiscountID,
		&rec.RuleSystemName,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RequirementRecord{}, ErrRequirementNotFound
		}
		return RequirementRecord{}, fmt.Errorf("failed to touch discount requirement %d: %w", id, err)
	}

	return rec, nil
}

// GetAllRequirements returns every requirement in the system. The plugin
// uninstall hook filters for its own rule system name.
func (s *PostgresRequirementsStore) GetAllRequirements(ctx context.Context) ([]hasoneproduct.DiscountRequirement, error) {
	query := `
		SELECT id, discount_id, rule_system_name
		FROM discount_requirements
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all discount requirements: %w", err)
	}
	defer rows.Close()

	var requirements []hasoneproduct.DiscountRequirement
	for rows.Next() {
		var req hasoneproduct.DiscountRequirement
		if err := rows.Scan(&req.ID, &req.DiscountID, &req.RuleSystemName); err != nil {
			return nil, fmt.Errorf("failed to scan discount requirement row: %w", err)
		}
		requirements = append(requirements, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return requirements, nil
}

// Delete removes a requirement by its id.
func (s *PostgresRequirementsStore) Delete(ctx context.Context, requirement hasoneproduct.DiscountRequirement) error {
	query := `DELETE FROM discount_requirements WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, requirement.ID)
	if err != nil {
		return fmt.Errorf("failed to delete discount requirement %d: %w", requirement.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequirementNotFound
	}

	return nil
}
