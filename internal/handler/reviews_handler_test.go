package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
	"github.com/beanpath/coffee-directory/internal/service"
)

type stubReviewsRepo struct {
	createErr error
}

func (s *stubReviewsRepo) Create(ctx context.Context, review *entity.Review) (*entity.Review, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	created := *review
	created.ID = uuid.New()
	return &created, nil
}

func (s *stubReviewsRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	return nil, repository.ErrReviewNotFound
}

func (s *stubReviewsRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]entity.Review, error) {
	return []entity.Review{}, nil
}

func (s *stubReviewsRepo) ListRatings(ctx context.Context, shopID uuid.UUID) ([]int, error) {
	return []int{5}, nil
}

func (s *stubReviewsRepo) Update(ctx context.Context, id uuid.UUID, rating *int, comment *string) (*entity.Review, error) {
	return nil, repository.ErrReviewNotFound
}

func (s *stubReviewsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return repository.ErrReviewNotFound
}

func newReviewsHandler(repo repository.ReviewsRepository) *ReviewsHandler {
	aggregator := service.NewRatingAggregator(repo, &capturingShopsRepo{})
	return NewReviewsHandler(service.NewReviewsService(repo, aggregator))
}

func TestReviewsHandler_Create(t *testing.T) {
	shopID := uuid.New()

	tests := map[string]struct {
		authed     bool
		body       string
		createErr  error
		wantStatus int
	}{
		"requires auth":     {authed: false, body: `{"rating":5}`, wantStatus: http.StatusUnauthorized},
		"invalid rating":    {authed: true, body: `{"rating":9}`, wantStatus: http.StatusBadRequest},
		"duplicate review":  {authed: true, body: `{"rating":4}`, createErr: repository.ErrDuplicateReview, wantStatus: http.StatusConflict},
		"unknown shop":      {authed: true, body: `{"rating":4}`, createErr: repository.ErrShopNotFound, wantStatus: http.StatusNotFound},
		"successful create": {authed: true, body: `{"rating":4,"comment":"smooth"}`, wantStatus: http.StatusCreated},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			handler := newReviewsHandler(&stubReviewsRepo{createErr: tc.createErr})

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/shops/"+shopID.String()+"/reviews", bodyJSON(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(shopID.String())
			if tc.authed {
				authenticate(c, uuid.New(), "user")
			}

			_ = handler.Create(c)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d (%s)", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReviewsHandler_Create_InvalidShopID(t *testing.T) {
	handler := newReviewsHandler(&stubReviewsRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/shops/not-a-uuid/reviews", bodyJSON(`{"rating":4}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	authenticate(c, uuid.New(), "user")

	_ = handler.Create(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReviewsHandler_Delete_NotFound(t *testing.T) {
	handler := newReviewsHandler(&stubReviewsRepo{})

	e := echo.New()
	reviewID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/reviews/"+reviewID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(reviewID.String())
	authenticate(c, uuid.New(), "user")

	_ = handler.Delete(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
