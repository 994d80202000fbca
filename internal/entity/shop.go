package entity

import (
	"time"

	"github.com/google/uuid"
)

// DayHours holds opening and closing times for a single day, formatted HH:MM.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OpeningHours maps lowercase weekday names to opening windows. Days the shop
// is closed are simply absent.
type OpeningHours map[string]DayHours

// CoffeeShop represents an official listing in the directory. Rating and
// ReviewCount are derived from the shop's review set and never authored
// directly.
type CoffeeShop struct {
	ID           uuid.UUID     `json:"id"`
	CityID       *uuid.UUID    `json:"city_id,omitempty"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	Description  *string       `json:"description,omitempty"`
	Address      string        `json:"address"`
	Latitude     *float64      `json:"latitude,omitempty"`
	Longitude    *float64      `json:"longitude,omitempty"`
	Phone        *string       `json:"phone,omitempty"`
	Email        *string       `json:"email,omitempty"`
	Website      *string       `json:"website,omitempty"`
	Instagram    *string       `json:"instagram,omitempty"`
	Facebook     *string       `json:"facebook,omitempty"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
	PriceRange   *string       `json:"price_range,omitempty"`
	Features     []string      `json:"features"`
	ImageURLs    []string      `json:"image_urls"`
	Rating       float64       `json:"rating"`
	ReviewCount  int           `json:"review_count"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Feature is an amenity label that can be attached to shops ("wifi",
// "outdoor seating", ...).
type Feature struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}
