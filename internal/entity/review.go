package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of a coffee shop. The database enforces one
// review per (user, shop) pair.
type Review struct {
	ID           uuid.UUID `json:"id"`
	CoffeeShopID uuid.UUID `json:"coffee_shop_id"`
	UserID       uuid.UUID `json:"user_id"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
