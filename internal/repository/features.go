package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beanpath/coffee-directory/internal/entity"
)

var (
	// ErrFeatureNotFound is returned when a feature id does not exist.
	ErrFeatureNotFound = errors.New("feature not found")
	// ErrFeatureDuplicate is returned when a feature label already exists.
	ErrFeatureDuplicate = errors.New("feature label already exists")
)

// FeaturesRepository manages the amenity label catalogue.
type FeaturesRepository interface {
	List(ctx context.Context) ([]entity.Feature, error)
	Create(ctx context.Context, label string) (*entity.Feature, error)
	Rename(ctx context.Context, id uuid.UUID, label string) (*entity.Feature, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXFeaturesRepository is a pgx-backed FeaturesRepository.
type PGXFeaturesRepository struct {
	pool pgxPool
}

// NewPGXFeaturesRepository creates a repository backed by the given pool.
func NewPGXFeaturesRepository(pool *pgxpool.Pool) *PGXFeaturesRepository {
	return &PGXFeaturesRepository{pool: pool}
}

// List returns all features ordered by label.
func (r *PGXFeaturesRepository) List(ctx context.Context) ([]entity.Feature, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, label FROM features ORDER BY label ASC`)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	defer rows.Close()

	features := make([]entity.Feature, 0)
	for rows.Next() {
		var feature entity.Feature
		if err := rows.Scan(&feature.ID, &feature.Label); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, feature)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return features, nil
}

// Create inserts a new feature label.
func (r *PGXFeaturesRepository) Create(ctx context.Context, label string) (*entity.Feature, error) {
	feature := entity.Feature{ID: uuid.New(), Label: label}
	_, err := r.pool.Exec(ctx, `INSERT INTO features (id, label) VALUES ($1, $2)`, feature.ID, feature.Label)
	if err != nil {
		if uniqueViolation(err, "features_label_key") {
			return nil, ErrFeatureDuplicate
		}
		return nil, fmt.Errorf("insert feature: %w", err)
	}
	return &feature, nil
}

// Rename changes a feature's label.
func (r *PGXFeaturesRepository) Rename(ctx context.Context, id uuid.UUID, label string) (*entity.Feature, error) {
	var feature entity.Feature
	err := r.pool.QueryRow(ctx, `
        UPDATE features SET label = $2 WHERE id = $1
        RETURNING id, label`, id, label).Scan(&feature.ID, &feature.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFeatureNotFound
		}
		if uniqueViolation(err, "features_label_key") {
			return nil, ErrFeatureDuplicate
		}
		return nil, fmt.Errorf("rename feature: %w", err)
	}
	return &feature, nil
}

// Delete removes a feature and its shop links.
func (r *PGXFeaturesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFeatureNotFound
	}
	return nil
}
