package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beanpath/coffee-directory/internal/entity"
)

var (
	// ErrFavoriteNotFound is returned when the user never favorited the shop.
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrDuplicateFavorite indicates the shop is already in the user's favorites.
	ErrDuplicateFavorite = errors.New("coffee shop already favorited")
)

// FavoritesRepository describes persistence operations for user favorites.
type FavoritesRepository interface {
	Add(ctx context.Context, userID, shopID uuid.UUID) error
	Remove(ctx context.Context, userID, shopID uuid.UUID) error
	ListShops(ctx context.Context, userID uuid.UUID) ([]entity.CoffeeShop, error)
}

// PGXFavoritesRepository implements FavoritesRepository using pgx.
type PGXFavoritesRepository struct {
	pool pgxPool
}

// NewPGXFavoritesRepository wires a pgx backed favorites repository.
func NewPGXFavoritesRepository(pool *pgxpool.Pool) *PGXFavoritesRepository {
	return &PGXFavoritesRepository{pool: pool}
}

// Add records the shop in the user's favorites.
func (r *PGXFavoritesRepository) Add(ctx context.Context, userID, shopID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO favorites (user_id, coffee_shop_id) VALUES ($1, $2)`, userID, shopID)
	if err != nil {
		if uniqueViolation(err, "favorites_user_id_coffee_shop_id_key") {
			return ErrDuplicateFavorite
		}
		if foreignKeyViolation(err) {
			return ErrShopNotFound
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// Remove drops the shop from the user's favorites.
func (r *PGXFavoritesRepository) Remove(ctx context.Context, userID, shopID uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND coffee_shop_id = $2`, userID, shopID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListShops returns the user's favorited shops, most recently added first.
func (r *PGXFavoritesRepository) ListShops(ctx context.Context, userID uuid.UUID) ([]entity.CoffeeShop, error) {
	rows, err := r.pool.Query(ctx, shopSelect+`
        JOIN favorites fav ON fav.coffee_shop_id = s.id
        WHERE fav.user_id = $1
        ORDER BY fav.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite shops: %w", err)
	}
	defer rows.Close()

	return scanShops(rows)
}
