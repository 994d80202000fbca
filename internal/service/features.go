package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// FeaturesService manages the amenity label catalogue.
type FeaturesService struct {
	repo repository.FeaturesRepository
}

// NewFeaturesService creates a new service instance.
func NewFeaturesService(repo repository.FeaturesRepository) *FeaturesService {
	return &FeaturesService{repo: repo}
}

// List returns all known amenity labels.
func (s *FeaturesService) List(ctx context.Context) ([]entity.Feature, error) {
	return s.repo.List(ctx)
}

// Create registers a new amenity label.
func (s *FeaturesService) Create(ctx context.Context, label string) (*entity.Feature, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ValidationError{Message: "label is required"}
	}
	return s.repo.Create(ctx, label)
}

// Rename changes an existing label.
func (s *FeaturesService) Rename(ctx context.Context, id uuid.UUID, label string) (*entity.Feature, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ValidationError{Message: "label is required"}
	}
	return s.repo.Rename(ctx, id, label)
}

// Delete removes a label from the catalogue.
func (s *FeaturesService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
