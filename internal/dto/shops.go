package dto

import (
	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/entity"
)

// ShopFilter contains query parameters for shop listing endpoints.
type ShopFilter struct {
	Q          string
	CitySlug   string
	Feature    string
	PriceRange string
	MinRating  *float64
	Sort       string
	Page       int
	PerPage    int
}

// ShopInput is the admin payload for creating or updating a coffee shop.
type ShopInput struct {
	CityID       *uuid.UUID           `json:"city_id"`
	Name         string               `json:"name"`
	Description  *string              `json:"description"`
	Address      string               `json:"address"`
	Latitude     *float64             `json:"latitude"`
	Longitude    *float64             `json:"longitude"`
	Phone        *string              `json:"phone"`
	Email        *string              `json:"email"`
	Website      *string              `json:"website"`
	Instagram    *string              `json:"instagram"`
	Facebook     *string              `json:"facebook"`
	OpeningHours *entity.OpeningHours `json:"opening_hours"`
	PriceRange   *string              `json:"price_range"`
	Features     []string             `json:"features"`
	ImageURLs    []string             `json:"image_urls"`
}
