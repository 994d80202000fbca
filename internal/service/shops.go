package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// ShopsService exposes read/write operations for the coffee shop catalogue.
type ShopsService struct {
	repo    repository.ShopsRepository
	contact *ContactNormalizer
}

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// UploadSummary reports how many rows were inserted or updated during import.
type UploadSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}

// NewShopsService creates a new instance of ShopsService.
func NewShopsService(repo repository.ShopsRepository, contact *ContactNormalizer) *ShopsService {
	return &ShopsService{repo: repo, contact: contact}
}

// List returns shops respecting pagination defaults.
func (s *ShopsService) List(ctx context.Context, filter dto.ShopFilter) ([]entity.CoffeeShop, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.List(ctx, filter)
}

// GetBySlug retrieves a single shop for the public detail page.
func (s *ShopsService) GetBySlug(ctx context.Context, slug string) (*entity.CoffeeShop, error) {
	return s.repo.FindBySlug(ctx, slug)
}

// GetByID retrieves a single shop by identifier.
func (s *ShopsService) GetByID(ctx context.Context, id uuid.UUID) (*entity.CoffeeShop, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds an official shop from the admin screens.
func (s *ShopsService) Create(ctx context.Context, input dto.ShopInput) (*entity.CoffeeShop, error) {
	shop, err := s.shopFromInput(input)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, shop)
}

// Update rewrites an existing shop from the admin screens.
func (s *ShopsService) Update(ctx context.Context, id uuid.UUID, input dto.ShopInput) (*entity.CoffeeShop, error) {
	shop, err := s.shopFromInput(input)
	if err != nil {
		return nil, err
	}
	shop.ID = id
	return s.repo.Update(ctx, shop)
}

// Delete removes a shop and, via schema cascades, its reviews and favorites.
func (s *ShopsService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *ShopsService) shopFromInput(input dto.ShopInput) (*entity.CoffeeShop, error) {
	name := strings.TrimSpace(input.Name)
	address := strings.TrimSpace(input.Address)
	if name == "" || address == "" {
		return nil, ValidationError{Message: "name and address are required"}
	}

	shop := &entity.CoffeeShop{
		CityID:       input.CityID,
		Name:         name,
		Slug:         Slugify(name),
		Description:  trimmedOrNil(input.Description),
		Address:      address,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		OpeningHours: input.OpeningHours,
		PriceRange:   trimmedOrNil(input.PriceRange),
		Features:     trimLabels(input.Features),
		ImageURLs:    input.ImageURLs,
	}
	if input.Phone != nil {
		shop.Phone = s.contact.Phone(*input.Phone)
	}
	if input.Email != nil {
		shop.Email = s.contact.Email(*input.Email)
	}
	if input.Website != nil {
		shop.Website = s.contact.Website(*input.Website)
	}
	if input.Instagram != nil {
		shop.Instagram = s.contact.Social("instagram", *input.Instagram)
	}
	if input.Facebook != nil {
		shop.Facebook = s.contact.Social("facebook", *input.Facebook)
	}
	return shop, nil
}

var requiredCSVHeaders = []string{"name", "address", "city", "country", "phone", "website", "price_range"}

// ImportShopsCSV ingests shop data from a CSV reader. Rows are upserted keyed
// on (name, address) so re-importing the same file is idempotent.
func (s *ShopsService) ImportShopsCSV(ctx context.Context, r io.Reader) (UploadSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return UploadSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return UploadSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return UploadSummary{}, valErr
	}

	var (
		records []repository.BulkUpsertShopInput
		rowNum  = 1
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return UploadSummary{}, fmt.Errorf("read csv row: %w", err)
		}

		rowNum++

		name := strings.TrimSpace(row[indexMap["name"]])
		address := strings.TrimSpace(row[indexMap["address"]])
		if name == "" || address == "" {
			continue
		}

		priceRange := strings.TrimSpace(row[indexMap["price_range"]])
		if priceRange != "" && !validPriceRange(priceRange) {
			return UploadSummary{}, CSVValidationError{Message: fmt.Sprintf("invalid price_range value on row %d", rowNum)}
		}

		city := normalizeString(row[indexMap["city"]])
		country := normalizeString(row[indexMap["country"]])
		var citySlug *string
		if city != nil && country != nil {
			// same slug the admin city endpoints produce, so imports and
			// manual creation converge on one city row
			slug := Slugify(*city + " " + *country)
			citySlug = &slug
		}

		records = append(records, repository.BulkUpsertShopInput{
			Name:       name,
			Address:    address,
			Slug:       Slugify(name + " " + address),
			Phone:      s.contact.Phone(row[indexMap["phone"]]),
			Website:    s.contact.Website(row[indexMap["website"]]),
			PriceRange: normalizeString(priceRange),
			City:       city,
			Country:    country,
			CitySlug:   citySlug,
		})
	}

	result, err := s.repo.BulkUpsertShops(ctx, records)
	if err != nil {
		return UploadSummary{}, err
	}

	return UploadSummary{
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Total:    result.Total,
	}, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func validPriceRange(value string) bool {
	switch value {
	case "$", "$$", "$$$", "$$$$":
		return true
	}
	return false
}
