package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/repository"
)

// RatingAggregator keeps CoffeeShop.rating and CoffeeShop.review_count
// consistent with the shop's live review set. It always recomputes from
// scratch rather than adjusting counters incrementally, so a partial failure
// can never leave a drifted aggregate; the next recompute self-corrects.
type RatingAggregator struct {
	reviews repository.ReviewsRepository
	shops   repository.ShopsRepository
}

// NewRatingAggregator wires the aggregator to its stores.
func NewRatingAggregator(reviews repository.ReviewsRepository, shops repository.ShopsRepository) *RatingAggregator {
	return &RatingAggregator{reviews: reviews, shops: shops}
}

// Recompute fetches all ratings for the shop and persists the derived
// rating/review_count pair. A shop with no reviews gets 0.0 and 0.
func (a *RatingAggregator) Recompute(ctx context.Context, shopID uuid.UUID) error {
	ratings, err := a.reviews.ListRatings(ctx, shopID)
	if err != nil {
		return fmt.Errorf("fetch ratings for shop %s: %w", shopID, err)
	}

	rating, count := aggregate(ratings)

	if err := a.shops.UpdateAggregate(ctx, shopID, rating, count); err != nil {
		return fmt.Errorf("persist aggregate for shop %s: %w", shopID, err)
	}
	return nil
}

// aggregate returns the mean rounded to one decimal (half away from zero) and
// the review count.
func aggregate(ratings []int) (float64, int) {
	n := len(ratings)
	if n == 0 {
		return 0.0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(n)
	return math.Round(mean*10) / 10, n
}
