package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beanpath/coffee-directory/internal/entity"
)

var (
	// ErrCityNotFound is returned when no city matches the lookup criteria.
	ErrCityNotFound = errors.New("city not found")
	// ErrCitySlugDuplicate indicates a city with the same slug already exists.
	ErrCitySlugDuplicate = errors.New("city slug already exists")
)

// CitiesRepository describes persistence operations for cities.
type CitiesRepository interface {
	Create(ctx context.Context, city *entity.City) (*entity.City, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.City, error)
	FindBySlug(ctx context.Context, slug string) (*entity.City, error)
	List(ctx context.Context) ([]entity.City, error)
	Update(ctx context.Context, id uuid.UUID, name, country *string, lat, lng *float64) (*entity.City, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXCitiesRepository implements CitiesRepository using pgx.
type PGXCitiesRepository struct {
	pool pgxPool
}

// NewPGXCitiesRepository wires a pgx backed cities repository.
func NewPGXCitiesRepository(pool *pgxpool.Pool) *PGXCitiesRepository {
	return &PGXCitiesRepository{pool: pool}
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const cityColumns = `id, name, slug, country, latitude, longitude, created_at, updated_at`

// Create inserts a new city row.
func (r *PGXCitiesRepository) Create(ctx context.Context, city *entity.City) (*entity.City, error) {
	if city == nil {
		return nil, fmt.Errorf("city payload is nil")
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO cities (name, slug, country, latitude, longitude)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+cityColumns,
		city.Name, city.Slug, city.Country, city.Latitude, city.Longitude)

	created, err := scanCity(row)
	if err != nil {
		if uniqueViolation(err, "cities_slug_key") {
			return nil, fmt.Errorf("%w: %s", ErrCitySlugDuplicate, city.Slug)
		}
		return nil, fmt.Errorf("insert city: %w", err)
	}
	return created, nil
}

// FindByID retrieves a city by identifier.
func (r *PGXCitiesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.City, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE id = $1`, id)
	city, err := scanCity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("query city by id: %w", err)
	}
	return city, nil
}

// FindBySlug retrieves a city by its URL slug.
func (r *PGXCitiesRepository) FindBySlug(ctx context.Context, slug string) (*entity.City, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities WHERE slug = $1`, slug)
	city, err := scanCity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("query city by slug: %w", err)
	}
	return city, nil
}

// List returns all cities ordered by name.
func (r *PGXCitiesRepository) List(ctx context.Context) ([]entity.City, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cityColumns+` FROM cities ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var cities []entity.City
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan city row: %w", err)
		}
		cities = append(cities, *city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return cities, nil
}

// Update patches city attributes.
func (r *PGXCitiesRepository) Update(ctx context.Context, id uuid.UUID, name, country *string, lat, lng *float64) (*entity.City, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", idx))
		args = append(args, *name)
		idx++
	}
	if country != nil {
		setClauses = append(setClauses, fmt.Sprintf("country = $%d", idx))
		args = append(args, *country)
		idx++
	}
	if lat != nil {
		setClauses = append(setClauses, fmt.Sprintf("latitude = $%d", idx))
		args = append(args, *lat)
		idx++
	}
	if lng != nil {
		setClauses = append(setClauses, fmt.Sprintf("longitude = $%d", idx))
		args = append(args, *lng)
		idx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE cities SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, cityColumns)

	city, err := scanCity(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("update city: %w", err)
	}
	return city, nil
}

// Delete removes a city by id.
func (r *PGXCitiesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete city: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCityNotFound
	}
	return nil
}

func scanCity(row pgx.Row) (*entity.City, error) {
	var city entity.City
	err := row.Scan(
		&city.ID,
		&city.Name,
		&city.Slug,
		&city.Country,
		&city.Latitude,
		&city.Longitude,
		&city.CreatedAt,
		&city.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &city, nil
}
