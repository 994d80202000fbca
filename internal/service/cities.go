package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// CitiesService exposes read/write operations for cities.
type CitiesService struct {
	repo repository.CitiesRepository
}

// NewCitiesService creates a new instance of CitiesService.
func NewCitiesService(repo repository.CitiesRepository) *CitiesService {
	return &CitiesService{repo: repo}
}

// List returns all cities.
func (s *CitiesService) List(ctx context.Context) ([]entity.City, error) {
	return s.repo.List(ctx)
}

// GetBySlug retrieves a city for the public city page.
func (s *CitiesService) GetBySlug(ctx context.Context, slug string) (*entity.City, error) {
	return s.repo.FindBySlug(ctx, slug)
}

// Create adds a city. lat/lng come from the geocoding worker when it
// answered, nil otherwise; coordinates are optional.
func (s *CitiesService) Create(ctx context.Context, input dto.CityInput, lat, lng *float64) (*entity.City, error) {
	name := strings.TrimSpace(input.Name)
	country := strings.TrimSpace(input.Country)
	if name == "" || country == "" {
		return nil, ValidationError{Message: "name and country are required"}
	}

	city := &entity.City{
		Name:      name,
		Slug:      Slugify(name + " " + country),
		Country:   country,
		Latitude:  lat,
		Longitude: lng,
	}
	return s.repo.Create(ctx, city)
}

// Update patches city attributes.
func (s *CitiesService) Update(ctx context.Context, id uuid.UUID, name, country *string, lat, lng *float64) (*entity.City, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, ValidationError{Message: "name cannot be empty"}
	}
	if country != nil && strings.TrimSpace(*country) == "" {
		return nil, ValidationError{Message: "country cannot be empty"}
	}
	return s.repo.Update(ctx, id, name, country, lat, lng)
}

// Delete removes a city. Shops keep their rows; their city_id becomes null at
// the schema level.
func (s *CitiesService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
