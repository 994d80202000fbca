package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
)

var (
	// ErrShopNotFound is returned when no coffee shop matches the lookup criteria.
	ErrShopNotFound = errors.New("coffee shop not found")
	// ErrShopSlugDuplicate indicates a shop with the same slug already exists.
	ErrShopSlugDuplicate = errors.New("coffee shop slug already exists")
)

// ShopsRepository describes persistence operations for coffee shops.
type ShopsRepository interface {
	Create(ctx context.Context, shop *entity.CoffeeShop) (*entity.CoffeeShop, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CoffeeShop, error)
	FindBySlug(ctx context.Context, slug string) (*entity.CoffeeShop, error)
	List(ctx context.Context, filter dto.ShopFilter) ([]entity.CoffeeShop, error)
	Update(ctx context.Context, shop *entity.CoffeeShop) (*entity.CoffeeShop, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateAggregate(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
	BulkUpsertShops(ctx context.Context, records []BulkUpsertShopInput) (BulkUpsertResult, error)
}

// BulkUpsertShopInput represents the minimal fields required for CSV
// ingestion. CitySlug identifies the city row the shop attaches to; rows
// without one leave city_id untouched.
type BulkUpsertShopInput struct {
	Name       string
	Address    string
	Slug       string
	Phone      *string
	Website    *string
	PriceRange *string
	City       *string
	Country    *string
	CitySlug   *string
}

// BulkUpsertResult summarises the number of rows inserted or updated.
type BulkUpsertResult struct {
	Inserted int
	Updated  int
	Total    int
}

// PGXShopsRepository implements ShopsRepository using pgx.
type PGXShopsRepository struct {
	pool pgxPool
}

// NewPGXShopsRepository wires a pgx backed shops repository.
func NewPGXShopsRepository(pool *pgxpool.Pool) *PGXShopsRepository {
	return &PGXShopsRepository{pool: pool}
}

// shopSelect aggregates feature labels alongside the shop row so listings need
// a single query.
const shopSelect = `
        SELECT
            s.id,
            s.city_id,
            s.name,
            s.slug,
            s.description,
            s.address,
            s.latitude,
            s.longitude,
            s.phone,
            s.email,
            s.website,
            s.instagram,
            s.facebook,
            s.opening_hours,
            s.price_range,
            ARRAY(
                SELECT f.label FROM features f
                JOIN shop_features sf ON sf.feature_id = f.id
                WHERE sf.shop_id = s.id
                ORDER BY f.label
            ) AS features,
            s.image_urls,
            s.rating,
            s.review_count,
            s.created_at,
            s.updated_at
        FROM coffee_shops s
    `

// Create inserts a new shop and attaches its feature labels.
func (r *PGXShopsRepository) Create(ctx context.Context, shop *entity.CoffeeShop) (*entity.CoffeeShop, error) {
	if shop == nil {
		return nil, fmt.Errorf("shop payload is nil")
	}

	hours, err := marshalOpeningHours(shop.OpeningHours)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("start create shop tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
        INSERT INTO coffee_shops (
            city_id, name, slug, description, address, latitude, longitude,
            phone, email, website, instagram, facebook, opening_hours,
            price_range, image_urls
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id`,
		shop.CityID, shop.Name, shop.Slug, shop.Description, shop.Address,
		shop.Latitude, shop.Longitude, shop.Phone, shop.Email, shop.Website,
		shop.Instagram, shop.Facebook, hours, shop.PriceRange,
		stringSliceOrEmpty(shop.ImageURLs),
	).Scan(&id)
	if err != nil {
		if uniqueViolation(err, "coffee_shops_slug_key") {
			return nil, fmt.Errorf("%w: %s", ErrShopSlugDuplicate, shop.Slug)
		}
		return nil, fmt.Errorf("insert shop: %w", err)
	}

	if err := replaceFeatures(ctx, tx, id, shop.Features); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create shop tx: %w", err)
	}

	return r.FindByID(ctx, id)
}

// FindByID retrieves a shop by identifier.
func (r *PGXShopsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CoffeeShop, error) {
	row := r.pool.QueryRow(ctx, shopSelect+` WHERE s.id = $1`, id)
	shop, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("query shop by id: %w", err)
	}
	return shop, nil
}

// FindBySlug retrieves a shop by its URL slug.
func (r *PGXShopsRepository) FindBySlug(ctx context.Context, slug string) (*entity.CoffeeShop, error) {
	row := r.pool.QueryRow(ctx, shopSelect+` WHERE s.slug = $1`, slug)
	shop, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("query shop by slug: %w", err)
	}
	return shop, nil
}

// List retrieves shops matching the provided filter, sorted by rating then
// review count unless the filter asks for recency.
func (r *PGXShopsRepository) List(ctx context.Context, filter dto.ShopFilter) ([]entity.CoffeeShop, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(shopSelect)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(s.name ILIKE $%d OR s.address ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if filter.CitySlug != "" {
		clauses = append(clauses, fmt.Sprintf("s.city_id = (SELECT id FROM cities WHERE slug = $%d)", idx))
		args = append(args, filter.CitySlug)
		idx++
	}
	if filter.Feature != "" {
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
            SELECT 1 FROM shop_features sf
            JOIN features f ON f.id = sf.feature_id
            WHERE sf.shop_id = s.id AND LOWER(f.label) = LOWER($%d)
        )`, idx))
		args = append(args, filter.Feature)
		idx++
	}
	if filter.PriceRange != "" {
		clauses = append(clauses, fmt.Sprintf("s.price_range = $%d", idx))
		args = append(args, filter.PriceRange)
		idx++
	}
	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("s.rating >= $%d", idx))
		args = append(args, *filter.MinRating)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}

	orderClause := "s.rating DESC, s.review_count DESC, s.name ASC"
	if strings.EqualFold(filter.Sort, "recent") {
		orderClause = "s.updated_at DESC, s.name ASC"
	}
	baseQuery.WriteString(" ORDER BY ")
	baseQuery.WriteString(orderClause)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	return scanShops(rows)
}

// Update rewrites all mutable shop attributes and its feature set. Rating and
// review_count are untouched; only the aggregator writes those.
func (r *PGXShopsRepository) Update(ctx context.Context, shop *entity.CoffeeShop) (*entity.CoffeeShop, error) {
	if shop == nil {
		return nil, fmt.Errorf("shop payload is nil")
	}

	hours, err := marshalOpeningHours(shop.OpeningHours)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("start update shop tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
        UPDATE coffee_shops SET
            city_id = $2,
            name = $3,
            slug = $4,
            description = $5,
            address = $6,
            latitude = $7,
            longitude = $8,
            phone = $9,
            email = $10,
            website = $11,
            instagram = $12,
            facebook = $13,
            opening_hours = $14,
            price_range = $15,
            image_urls = $16,
            updated_at = NOW()
        WHERE id = $1`,
		shop.ID, shop.CityID, shop.Name, shop.Slug, shop.Description,
		shop.Address, shop.Latitude, shop.Longitude, shop.Phone, shop.Email,
		shop.Website, shop.Instagram, shop.Facebook, hours, shop.PriceRange,
		stringSliceOrEmpty(shop.ImageURLs),
	)
	if err != nil {
		if uniqueViolation(err, "coffee_shops_slug_key") {
			return nil, fmt.Errorf("%w: %s", ErrShopSlugDuplicate, shop.Slug)
		}
		return nil, fmt.Errorf("update shop: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrShopNotFound
	}

	if err := replaceFeatures(ctx, tx, shop.ID, shop.Features); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update shop tx: %w", err)
	}

	return r.FindByID(ctx, shop.ID)
}

// Delete removes a shop by id. Reviews, favorites and feature links cascade at
// the schema level.
func (r *PGXShopsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM coffee_shops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

// UpdateAggregate persists the recomputed rating and review count.
func (r *PGXShopsRepository) UpdateAggregate(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE coffee_shops SET rating = $2, review_count = $3, updated_at = NOW()
        WHERE id = $1`, id, rating, reviewCount)
	if err != nil {
		return fmt.Errorf("update shop aggregate: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

const bulkUpsertShopSQL = `
        INSERT INTO coffee_shops (name, slug, address, phone, website, price_range, city_id, image_urls, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,'{}',NOW())
        ON CONFLICT (name, address) DO UPDATE SET
            phone = EXCLUDED.phone,
            website = EXCLUDED.website,
            price_range = EXCLUDED.price_range,
            city_id = COALESCE(EXCLUDED.city_id, coffee_shops.city_id),
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// BulkUpsertShops persists a batch of shops with idempotent semantics, keyed
// on (name, address).
func (r *PGXShopsRepository) BulkUpsertShops(ctx context.Context, records []BulkUpsertShopInput) (BulkUpsertResult, error) {
	var result BulkUpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start bulk upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, record := range records {
		cityID, err := resolveCity(ctx, tx, record)
		if err != nil {
			return result, err
		}

		var inserted bool
		err = tx.QueryRow(ctx, bulkUpsertShopSQL,
			record.Name,
			record.Slug,
			record.Address,
			record.Phone,
			record.Website,
			record.PriceRange,
			cityID,
		).Scan(&inserted)
		if err != nil {
			return result, fmt.Errorf("bulk upsert shop %q: %w", record.Name, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit bulk upsert tx: %w", err)
	}

	return result, nil
}

// resolveCity upserts the city named on an imported row and returns its id,
// or nil when the row carries no usable city.
func resolveCity(ctx context.Context, tx pgx.Tx, record BulkUpsertShopInput) (*uuid.UUID, error) {
	if record.City == nil || record.Country == nil || record.CitySlug == nil {
		return nil, nil
	}

	var id uuid.UUID
	err := tx.QueryRow(ctx, `
        INSERT INTO cities (name, slug, country) VALUES ($1, $2, $3)
        ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, *record.City, *record.CitySlug, *record.Country).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("resolve city %q: %w", *record.City, err)
	}
	return &id, nil
}

// replaceFeatures rewrites the shop's feature links, creating feature rows for
// labels seen for the first time.
func replaceFeatures(ctx context.Context, tx pgx.Tx, shopID uuid.UUID, labels []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM shop_features WHERE shop_id = $1`, shopID); err != nil {
		return fmt.Errorf("clear shop features: %w", err)
	}

	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		var featureID uuid.UUID
		err := tx.QueryRow(ctx, `
            INSERT INTO features (label) VALUES ($1)
            ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
            RETURNING id`, label).Scan(&featureID)
		if err != nil {
			return fmt.Errorf("upsert feature %q: %w", label, err)
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO shop_features (shop_id, feature_id) VALUES ($1, $2)
            ON CONFLICT DO NOTHING`, shopID, featureID); err != nil {
			return fmt.Errorf("link feature %q: %w", label, err)
		}
	}
	return nil
}

func scanShop(row pgx.Row) (*entity.CoffeeShop, error) {
	var (
		shop  entity.CoffeeShop
		hours []byte
	)
	err := row.Scan(
		&shop.ID,
		&shop.CityID,
		&shop.Name,
		&shop.Slug,
		&shop.Description,
		&shop.Address,
		&shop.Latitude,
		&shop.Longitude,
		&shop.Phone,
		&shop.Email,
		&shop.Website,
		&shop.Instagram,
		&shop.Facebook,
		&hours,
		&shop.PriceRange,
		&shop.Features,
		&shop.ImageURLs,
		&shop.Rating,
		&shop.ReviewCount,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(hours) > 0 {
		var parsed entity.OpeningHours
		if err := json.Unmarshal(hours, &parsed); err != nil {
			return nil, fmt.Errorf("unmarshal opening hours: %w", err)
		}
		shop.OpeningHours = &parsed
	}
	if shop.Features == nil {
		shop.Features = []string{}
	}
	if shop.ImageURLs == nil {
		shop.ImageURLs = []string{}
	}
	return &shop, nil
}

func scanShops(rows pgx.Rows) ([]entity.CoffeeShop, error) {
	var shops []entity.CoffeeShop
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, *shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shops: %w", err)
	}
	return shops, nil
}

func marshalOpeningHours(hours *entity.OpeningHours) (any, error) {
	if hours == nil {
		return nil, nil
	}
	data, err := json.Marshal(hours)
	if err != nil {
		return nil, fmt.Errorf("marshal opening hours: %w", err)
	}
	return string(data), nil
}

func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
