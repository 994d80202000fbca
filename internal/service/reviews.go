package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// ReviewsService handles review CRUD and triggers rating recomputation on
// every mutation.
type ReviewsService struct {
	reviews    repository.ReviewsRepository
	aggregator *RatingAggregator
}

// NewReviewsService creates a new instance of ReviewsService.
func NewReviewsService(reviews repository.ReviewsRepository, aggregator *RatingAggregator) *ReviewsService {
	return &ReviewsService{reviews: reviews, aggregator: aggregator}
}

// ListByShop returns all reviews for a shop.
func (s *ReviewsService) ListByShop(ctx context.Context, shopID uuid.UUID) ([]entity.Review, error) {
	return s.reviews.ListByShop(ctx, shopID)
}

// Create posts a review on a shop on behalf of userID. A second review for the
// same (user, shop) pair surfaces as repository.ErrDuplicateReview without
// touching the first review or the aggregate.
func (s *ReviewsService) Create(ctx context.Context, userID, shopID uuid.UUID, req dto.CreateReviewRequest) (*entity.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ValidationError{Message: "rating must be between 1 and 5"}
	}

	review := &entity.Review{
		CoffeeShopID: shopID,
		UserID:       userID,
		Rating:       req.Rating,
		Comment:      trimmedOrNil(req.Comment),
	}

	created, err := s.reviews.Create(ctx, review)
	if err != nil {
		return nil, err
	}

	s.recompute(ctx, shopID)
	return created, nil
}

// Update patches the caller's own review.
func (s *ReviewsService) Update(ctx context.Context, reviewID, actorID uuid.UUID, req dto.UpdateReviewRequest) (*entity.Review, error) {
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, ValidationError{Message: "rating must be between 1 and 5"}
	}

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actorID {
		return nil, ErrNotReviewAuthor
	}

	updated, err := s.reviews.Update(ctx, reviewID, req.Rating, trimmedOrNil(req.Comment))
	if err != nil {
		return nil, err
	}

	s.recompute(ctx, review.CoffeeShopID)
	return updated, nil
}

// Delete removes a review. Only the author or an administrator may delete.
func (s *ReviewsService) Delete(ctx context.Context, reviewID, actorID uuid.UUID, actorRole string) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actorID && actorRole != "admin" {
		return ErrNotReviewAuthor
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.recompute(ctx, review.CoffeeShopID)
	return nil
}

// recompute refreshes the shop aggregate after a review mutation. A failure
// here does not roll the mutation back; it is logged so the transient
// inconsistency is observable, and the next mutation self-corrects it.
func (s *ReviewsService) recompute(ctx context.Context, shopID uuid.UUID) {
	if err := s.aggregator.Recompute(ctx, shopID); err != nil {
		log.Printf("level=error msg=\"rating recompute failed\" shop_id=%s err=%q", shopID, err)
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
