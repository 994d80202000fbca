package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
)

var (
	// ErrProposalNotFound is returned when no proposal matches the lookup criteria.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrProposalStatusChanged indicates the row's status no longer matches the
	// status the caller validated against.
	ErrProposalStatusChanged = errors.New("proposal status changed concurrently")
)

// StatusUpdate carries a validated status change to the storage layer.
type StatusUpdate struct {
	Status     entity.ProposalStatus
	AdminNotes *string
	ReviewedAt *time.Time
	ReviewedBy *uuid.UUID
	// AllowedFrom guards the write: the update only applies while the row is
	// still in one of these states.
	AllowedFrom []entity.ProposalStatus
}

// ProposalsRepository describes persistence operations for proposals.
type ProposalsRepository interface {
	Create(ctx context.Context, proposal *entity.Proposal) (*entity.Proposal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	List(ctx context.Context, filter dto.ProposalFilter) ([]entity.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*entity.Proposal, error)
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, update StatusUpdate) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*entity.Proposal, error)
	Convert(ctx context.Context, id uuid.UUID, shop *entity.CoffeeShop, note string) (*entity.Proposal, error)
}

// PGXProposalsRepository implements ProposalsRepository using pgx.
type PGXProposalsRepository struct {
	pool pgxPool
}

// NewPGXProposalsRepository wires a pgx backed proposals repository.
func NewPGXProposalsRepository(pool *pgxpool.Pool) *PGXProposalsRepository {
	return &PGXProposalsRepository{pool: pool}
}

const proposalColumns = `
            id, name, address, city, country, phone, email, website, instagram,
            facebook, latitude, longitude, opening_hours, features, price_range,
            submitter_user_id, submitter_name, submitter_email, image_urls,
            status, admin_notes, reviewed_at, reviewed_by, created_at, updated_at`

// Create inserts a proposal in the pending state.
func (r *PGXProposalsRepository) Create(ctx context.Context, proposal *entity.Proposal) (*entity.Proposal, error) {
	if proposal == nil {
		return nil, fmt.Errorf("proposal payload is nil")
	}

	hours, err := marshalOpeningHours(proposal.OpeningHours)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO proposals (
            name, address, city, country, phone, email, website, instagram,
            facebook, latitude, longitude, opening_hours, features, price_range,
            submitter_user_id, submitter_name, submitter_email, image_urls, status
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING `+proposalColumns,
		proposal.Name, proposal.Address, proposal.City, proposal.Country,
		proposal.Phone, proposal.Email, proposal.Website, proposal.Instagram,
		proposal.Facebook, proposal.Latitude, proposal.Longitude, hours,
		stringSliceOrEmpty(proposal.Features), proposal.PriceRange,
		proposal.SubmitterID, proposal.SubmitterName, proposal.SubmitterEmail,
		stringSliceOrEmpty(proposal.ImageURLs), string(entity.ProposalPending))

	created, err := scanProposal(row)
	if err != nil {
		return nil, fmt.Errorf("insert proposal: %w", err)
	}
	return created, nil
}

// FindByID retrieves a proposal by identifier.
func (r *PGXProposalsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("query proposal by id: %w", err)
	}
	return proposal, nil
}

// List returns proposals, optionally filtered by status, newest first.
func (r *PGXProposalsRepository) List(ctx context.Context, filter dto.ProposalFilter) ([]entity.Proposal, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + proposalColumns + ` FROM proposals`)

	var args []any
	idx := 1
	if filter.Status != "" {
		query.WriteString(fmt.Sprintf(" WHERE status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	query.WriteString(" ORDER BY created_at DESC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []entity.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal row: %w", err)
		}
		proposals = append(proposals, *proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return proposals, nil
}

// UpdateStatus applies a status change guarded by the AllowedFrom set, so a
// transition validated by the caller cannot apply to a row that moved on
// underneath it.
func (r *PGXProposalsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*entity.Proposal, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE proposals SET
            status = $2,
            admin_notes = COALESCE($3, admin_notes),
            reviewed_at = COALESCE($4, reviewed_at),
            reviewed_by = COALESCE($5, reviewed_by),
            updated_at = NOW()
        WHERE id = $1 AND status = ANY($6)
        RETURNING `+proposalColumns,
		id, string(update.Status), update.AdminNotes, update.ReviewedAt,
		update.ReviewedBy, statusStrings(update.AllowedFrom))

	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, findErr := r.FindByID(ctx, id); findErr != nil {
				return nil, findErr
			}
			return nil, ErrProposalStatusChanged
		}
		return nil, fmt.Errorf("update proposal status: %w", err)
	}
	return proposal, nil
}

// BulkUpdateStatus applies one status change to many proposals in a single
// transaction. Any proposal that is missing or not in an allowed source state
// aborts the whole batch.
func (r *PGXProposalsRepository) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, update StatusUpdate) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start bulk status tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, id := range ids {
		cmd, err := tx.Exec(ctx, `
            UPDATE proposals SET
                status = $2,
                admin_notes = COALESCE($3, admin_notes),
                reviewed_at = COALESCE($4, reviewed_at),
                reviewed_by = COALESCE($5, reviewed_by),
                updated_at = NOW()
            WHERE id = $1 AND status = ANY($6)`,
			id, string(update.Status), update.AdminNotes, update.ReviewedAt,
			update.ReviewedBy, statusStrings(update.AllowedFrom))
		if err != nil {
			return fmt.Errorf("bulk update proposal %s: %w", id, err)
		}
		if cmd.RowsAffected() == 0 {
			var current string
			err := tx.QueryRow(ctx, `SELECT status FROM proposals WHERE id = $1`, id).Scan(&current)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrProposalNotFound, id)
			}
			if err != nil {
				return fmt.Errorf("inspect proposal %s: %w", id, err)
			}
			return fmt.Errorf("%w: proposal %s is %s", ErrProposalStatusChanged, id, current)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk status tx: %w", err)
	}
	return nil
}

// UpdateNotes edits admin notes without touching status. Allowed in any state.
func (r *PGXProposalsRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*entity.Proposal, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE proposals SET admin_notes = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING `+proposalColumns, id, notes)

	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("update proposal notes: %w", err)
	}
	return proposal, nil
}

// Convert creates the official shop and flips the proposal to
// converted_to_official in one transaction. The status flip is guarded on
// approved, so a concurrent convert or rejection rolls the shop insert back.
func (r *PGXProposalsRepository) Convert(ctx context.Context, id uuid.UUID, shop *entity.CoffeeShop, note string) (*entity.Proposal, error) {
	if shop == nil {
		return nil, fmt.Errorf("shop payload is nil")
	}

	hours, err := marshalOpeningHours(shop.OpeningHours)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("start convert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO coffee_shops (
            id, city_id, name, slug, description, address, latitude, longitude,
            phone, email, website, instagram, facebook, opening_hours,
            price_range, image_urls
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		shop.ID, shop.CityID, shop.Name, shop.Slug, shop.Description,
		shop.Address, shop.Latitude, shop.Longitude, shop.Phone, shop.Email,
		shop.Website, shop.Instagram, shop.Facebook, hours, shop.PriceRange,
		stringSliceOrEmpty(shop.ImageURLs))
	if err != nil {
		if uniqueViolation(err, "coffee_shops_slug_key") {
			return nil, fmt.Errorf("%w: %s", ErrShopSlugDuplicate, shop.Slug)
		}
		return nil, fmt.Errorf("insert converted shop: %w", err)
	}

	if err := replaceFeatures(ctx, tx, shop.ID, shop.Features); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
        UPDATE proposals SET
            status = $2,
            admin_notes = CASE
                WHEN admin_notes IS NULL OR admin_notes = '' THEN $3
                ELSE admin_notes || E'\n' || $3
            END,
            updated_at = NOW()
        WHERE id = $1 AND status = $4
        RETURNING `+proposalColumns,
		id, string(entity.ProposalConverted), note, string(entity.ProposalApproved))

	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, findErr := r.FindByID(ctx, id); findErr != nil {
				return nil, findErr
			}
			return nil, ErrProposalStatusChanged
		}
		return nil, fmt.Errorf("flag proposal converted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit convert tx: %w", err)
	}
	return proposal, nil
}

func statusStrings(statuses []entity.ProposalStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func scanProposal(row pgx.Row) (*entity.Proposal, error) {
	var (
		proposal entity.Proposal
		hours    []byte
		status   string
	)
	err := row.Scan(
		&proposal.ID,
		&proposal.Name,
		&proposal.Address,
		&proposal.City,
		&proposal.Country,
		&proposal.Phone,
		&proposal.Email,
		&proposal.Website,
		&proposal.Instagram,
		&proposal.Facebook,
		&proposal.Latitude,
		&proposal.Longitude,
		&hours,
		&proposal.Features,
		&proposal.PriceRange,
		&proposal.SubmitterID,
		&proposal.SubmitterName,
		&proposal.SubmitterEmail,
		&proposal.ImageURLs,
		&status,
		&proposal.AdminNotes,
		&proposal.ReviewedAt,
		&proposal.ReviewedBy,
		&proposal.CreatedAt,
		&proposal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, ok := entity.ParseProposalStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown proposal status %q", status)
	}
	proposal.Status = parsed

	if len(hours) > 0 {
		var parsedHours entity.OpeningHours
		if err := json.Unmarshal(hours, &parsedHours); err != nil {
			return nil, fmt.Errorf("unmarshal opening hours: %w", err)
		}
		proposal.OpeningHours = &parsedHours
	}
	if proposal.Features == nil {
		proposal.Features = []string{}
	}
	if proposal.ImageURLs == nil {
		proposal.ImageURLs = []string{}
	}
	return &proposal, nil
}
