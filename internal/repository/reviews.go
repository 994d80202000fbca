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
	// ErrReviewNotFound is returned when no review matches the lookup criteria.
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateReview indicates the user already reviewed this shop.
	ErrDuplicateReview = errors.New("user already reviewed this coffee shop")
)

// ReviewsRepository describes persistence operations for reviews.
type ReviewsRepository interface {
	Create(ctx context.Context, review *entity.Review) (*entity.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]entity.Review, error)
	ListRatings(ctx context.Context, shopID uuid.UUID) ([]int, error)
	Update(ctx context.Context, id uuid.UUID, rating *int, comment *string) (*entity.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXReviewsRepository implements ReviewsRepository using pgx.
type PGXReviewsRepository struct {
	pool pgxPool
}

// NewPGXReviewsRepository wires a pgx backed reviews repository.
func NewPGXReviewsRepository(pool *pgxpool.Pool) *PGXReviewsRepository {
	return &PGXReviewsRepository{pool: pool}
}

const reviewColumns = `id, coffee_shop_id, user_id, rating, comment, created_at, updated_at`

// Create inserts a review row. The (user, shop) uniqueness constraint turns a
// second submission into ErrDuplicateReview.
func (r *PGXReviewsRepository) Create(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	if review == nil {
		return nil, fmt.Errorf("review payload is nil")
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO reviews (coffee_shop_id, user_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING `+reviewColumns,
		review.CoffeeShopID, review.UserID, review.Rating, review.Comment)

	created, err := scanReview(row)
	if err != nil {
		if uniqueViolation(err, "reviews_user_id_coffee_shop_id_key") {
			return nil, ErrDuplicateReview
		}
		if foreignKeyViolation(err) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return created, nil
}

// FindByID retrieves a review by identifier.
func (r *PGXReviewsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("query review by id: %w", err)
	}
	return review, nil
}

// ListByShop returns all reviews for a shop, newest first.
func (r *PGXReviewsRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]entity.Review, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE coffee_shop_id = $1 ORDER BY created_at DESC`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// ListRatings returns just the rating values for a shop, in no particular
// order. The aggregator needs nothing else.
func (r *PGXReviewsRepository) ListRatings(ctx context.Context, shopID uuid.UUID) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating FROM reviews WHERE coffee_shop_id = $1`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// Update patches the review's rating and/or comment.
func (r *PGXReviewsRepository) Update(ctx context.Context, id uuid.UUID, rating *int, comment *string) (*entity.Review, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	if rating != nil {
		setClauses = append(setClauses, fmt.Sprintf("rating = $%d", idx))
		args = append(args, *rating)
		idx++
	}
	if comment != nil {
		setClauses = append(setClauses, fmt.Sprintf("comment = $%d", idx))
		args = append(args, *comment)
		idx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE reviews SET %s WHERE id = $%d RETURNING %s`, strings.Join(setClauses, ", "), idx, reviewColumns)

	review, err := scanReview(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// Delete removes a review by id.
func (r *PGXReviewsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func scanReview(row pgx.Row) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.CoffeeShopID,
		&review.UserID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
