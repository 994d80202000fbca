package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// FavoritesService manages a user's saved coffee shops.
type FavoritesService struct {
	repo repository.FavoritesRepository
}

// NewFavoritesService creates a new instance of FavoritesService.
func NewFavoritesService(repo repository.FavoritesRepository) *FavoritesService {
	return &FavoritesService{repo: repo}
}

// Add saves the shop to the user's favorites. Favoriting twice surfaces as
// repository.ErrDuplicateFavorite.
func (s *FavoritesService) Add(ctx context.Context, userID, shopID uuid.UUID) error {
	return s.repo.Add(ctx, userID, shopID)
}

// Remove drops the shop from the user's favorites.
func (s *FavoritesService) Remove(ctx context.Context, userID, shopID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, shopID)
}

// ListShops returns the user's favorited shops.
func (s *FavoritesService) ListShops(ctx context.Context, userID uuid.UUID) ([]entity.CoffeeShop, error) {
	return s.repo.ListShops(ctx, userID)
}
