package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
)

type stubShopRows struct {
	called bool
}

func (s *stubShopRows) Close()                                       {}
func (s *stubShopRows) Err() error                                   { return nil }
func (s *stubShopRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (s *stubShopRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (s *stubShopRows) Next() bool {
	if s.called {
		return false
	}
	s.called = true
	return true
}

func (s *stubShopRows) Scan(dest ...any) error {
	if !s.called {
		return errors.New("scan called before next")
	}
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	cityID := uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
	created := time.Now()
	description := "Third wave roaster"
	lat := 45.52
	lng := -122.68
	phone := "+15035550142"
	price := "$$"
	hours := []byte(`{"saturday":{"open":"09:00","close":"15:00"}}`)

	*dest[0].(*uuid.UUID) = id
	*dest[1].(**uuid.UUID) = &cityID
	*dest[2].(*string) = "Good Beans"
	*dest[3].(*string) = "good-beans"
	*dest[4].(**string) = &description
	*dest[5].(*string) = "123 Pine St"
	*dest[6].(**float64) = &lat
	*dest[7].(**float64) = &lng
	*dest[8].(**string) = &phone
	*dest[9].(**string) = nil
	*dest[10].(**string) = nil
	*dest[11].(**string) = nil
	*dest[12].(**string) = nil
	*dest[13].(*[]byte) = hours
	*dest[14].(**string) = &price
	*dest[15].(*[]string) = []string{"wifi"}
	*dest[16].(*[]string) = nil
	*dest[17].(*float64) = 4.3
	*dest[18].(*int) = 12
	*dest[19].(*time.Time) = created
	*dest[20].(*time.Time) = created
	return nil
}

func (s *stubShopRows) Values() ([]any, error) { return nil, nil }
func (s *stubShopRows) RawValues() [][]byte    { return nil }
func (s *stubShopRows) Conn() *pgx.Conn        { return nil }

type stubTx struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	execFunc     func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	committed    bool
}

func (t *stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *stubTx) Commit(ctx context.Context) error          { t.committed = true; return nil }
func (t *stubTx) Rollback(ctx context.Context) error        { return nil }

func (t *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy from not implemented")
}

func (t *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *stubTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("prepare not implemented")
}

func (t *stubTx) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if t.execFunc != nil {
		return t.execFunc(ctx, query, args...)
	}
	return pgconn.CommandTag{}, errors.New("exec not implemented")
}

func (t *stubTx) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (t *stubTx) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if t.queryRowFunc != nil {
		return t.queryRowFunc(ctx, query, args...)
	}
	return &stubRow{}
}

func (t *stubTx) Conn() *pgx.Conn { return nil }

func TestScanShops(t *testing.T) {
	shops, err := scanShops(&stubShopRows{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shops) != 1 {
		t.Fatalf("expected 1 shop, got %d", len(shops))
	}
	shop := shops[0]
	if shop.Name != "Good Beans" || shop.Slug != "good-beans" {
		t.Fatalf("unexpected shop: %+v", shop)
	}
	if shop.Rating != 4.3 || shop.ReviewCount != 12 {
		t.Fatalf("unexpected aggregate: rating=%v count=%d", shop.Rating, shop.ReviewCount)
	}
	if shop.OpeningHours == nil || (*shop.OpeningHours)["saturday"].Close != "15:00" {
		t.Fatalf("expected opening hours parsed, got %+v", shop.OpeningHours)
	}
	if shop.ImageURLs == nil || len(shop.ImageURLs) != 0 {
		t.Fatalf("expected empty image slice, got %+v", shop.ImageURLs)
	}
}

func TestPGXShopsRepository_CreateValidation(t *testing.T) {
	repo := &PGXShopsRepository{}
	if _, err := repo.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil shop")
	}
}

func TestPGXShopsRepository_FindBySlugNotFound(t *testing.T) {
	repo := &PGXShopsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}}
	if _, err := repo.FindBySlug(context.Background(), "missing"); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}

func TestPGXShopsRepository_ListBuildsFilterClauses(t *testing.T) {
	var capturedQuery string
	var capturedArgs []any
	repo := &PGXShopsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			capturedQuery = query
			capturedArgs = args
			return &stubShopRows{}, nil
		},
	}}

	minRating := 4.0
	_, err := repo.List(context.Background(), dto.ShopFilter{
		Q:          "beans",
		CitySlug:   "portland-us",
		PriceRange: "$$",
		MinRating:  &minRating,
		Sort:       "recent",
		Page:       3,
		PerPage:    10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, fragment := range []string{"ILIKE", "cities WHERE slug", "price_range", "rating >=", "ORDER BY s.updated_at DESC"} {
		if !strings.Contains(capturedQuery, fragment) {
			t.Fatalf("query missing %q: %s", fragment, capturedQuery)
		}
	}
	// limit and offset ride at the tail of the args
	if len(capturedArgs) < 2 {
		t.Fatalf("expected pagination args, got %+v", capturedArgs)
	}
	if capturedArgs[len(capturedArgs)-2] != 10 || capturedArgs[len(capturedArgs)-1] != 20 {
		t.Fatalf("expected limit 10 offset 20, got %+v", capturedArgs)
	}
}

func TestPGXShopsRepository_Delete(t *testing.T) {
	repo := &PGXShopsRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}}
	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}

func TestPGXShopsRepository_UpdateAggregate(t *testing.T) {
	var capturedArgs []any
	repo := &PGXShopsRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			capturedArgs = args
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}}

	id := uuid.New()
	if err := repo.UpdateAggregate(context.Background(), id, 4.5, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(capturedArgs) != 3 || capturedArgs[1] != 4.5 || capturedArgs[2] != 2 {
		t.Fatalf("unexpected args: %+v", capturedArgs)
	}

	repo.pool = &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}
	if err := repo.UpdateAggregate(context.Background(), uuid.New(), 0, 0); !errors.Is(err, ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}

// Imported rows carrying a city must end up attached to that city's row, not
// just upserted as orphan shops.
func TestPGXShopsRepository_BulkUpsertAttachesCity(t *testing.T) {
	cityID := uuid.MustParse("dddddddd-dddd-dddd-dddd-dddddddddddd")

	var cityArgs []any
	var shopArgs []any
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			if strings.Contains(query, "INSERT INTO cities") {
				cityArgs = args
				return &stubRow{scan: func(dest ...any) error {
					*dest[0].(*uuid.UUID) = cityID
					return nil
				}}
			}
			shopArgs = args
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*bool) = true
				return nil
			}}
		},
	}
	repo := &PGXShopsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
			return tx, nil
		},
	}}

	city, country, citySlug := "Portland", "US", "portland-us"
	res, err := repo.BulkUpsertShops(context.Background(), []BulkUpsertShopInput{{
		Name:     "Good Beans",
		Address:  "123 Pine St",
		Slug:     "good-beans-123-pine-st",
		City:     &city,
		Country:  &country,
		CitySlug: &citySlug,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 || res.Total != 1 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if !tx.committed {
		t.Fatalf("expected transaction to commit")
	}

	if len(cityArgs) != 3 || cityArgs[0] != "Portland" || cityArgs[1] != "portland-us" || cityArgs[2] != "US" {
		t.Fatalf("unexpected city upsert args: %+v", cityArgs)
	}
	if len(shopArgs) != 7 {
		t.Fatalf("expected 7 shop args, got %+v", shopArgs)
	}
	got, ok := shopArgs[6].(*uuid.UUID)
	if !ok || got == nil || *got != cityID {
		t.Fatalf("expected resolved city id in shop upsert, got %+v", shopArgs[6])
	}
}

func TestPGXShopsRepository_BulkUpsertWithoutCity(t *testing.T) {
	var queries []string
	var shopArgs []any
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			queries = append(queries, query)
			shopArgs = args
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*bool) = false
				return nil
			}}
		},
	}
	repo := &PGXShopsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
			return tx, nil
		},
	}}

	res, err := repo.BulkUpsertShops(context.Background(), []BulkUpsertShopInput{{
		Name:    "Good Beans",
		Address: "123 Pine St",
		Slug:    "good-beans-123-pine-st",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Updated != 1 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if len(queries) != 1 {
		t.Fatalf("expected a single upsert query, got %d", len(queries))
	}
	if got, ok := shopArgs[6].(*uuid.UUID); !ok || got != nil {
		t.Fatalf("expected nil city id, got %+v", shopArgs[6])
	}
}

func TestPGXShopsRepository_BulkUpsertEmpty(t *testing.T) {
	repo := &PGXShopsRepository{}
	res, err := repo.BulkUpsertShops(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || res.Inserted != 0 || res.Updated != 0 {
		t.Fatalf("expected zero summary, got %+v", res)
	}
}

func TestHelperConversions(t *testing.T) {
	if v, err := marshalOpeningHours(nil); err != nil || v != nil {
		t.Fatalf("expected nil for nil hours, got %v (%v)", v, err)
	}

	hours := entity.OpeningHours{"monday": {Open: "08:00", Close: "17:00"}}
	v, err := marshalOpeningHours(&hours)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v.(string); !ok || !strings.Contains(s, `"monday"`) {
		t.Fatalf("unexpected payload: %v", v)
	}

	if out := stringSliceOrEmpty(nil); out == nil || len(out) != 0 {
		t.Fatalf("expected empty slice, got %+v", out)
	}
	if out := stringSliceOrEmpty([]string{"a"}); len(out) != 1 || out[0] != "a" {
		t.Fatalf("expected passthrough, got %+v", out)
	}
}

func TestConstraintHelpers(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "coffee_shops_slug_key"}
	if !uniqueViolation(dup, "coffee_shops_slug_key") {
		t.Fatalf("expected unique violation match")
	}
	if uniqueViolation(dup, "users_email_key") {
		t.Fatalf("constraint name should be checked")
	}
	if uniqueViolation(errors.New("boom"), "coffee_shops_slug_key") {
		t.Fatalf("plain errors are not violations")
	}

	fk := &pgconn.PgError{Code: "23503"}
	if !foreignKeyViolation(fk) {
		t.Fatalf("expected foreign key violation match")
	}
	if foreignKeyViolation(dup) {
		t.Fatalf("unique violations are not foreign key violations")
	}
}
