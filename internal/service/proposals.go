package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/dto"
	"github.com/beanpath/coffee-directory/internal/entity"
	"github.com/beanpath/coffee-directory/internal/repository"
)

// proposalTransitions is the enforced moderation state machine. A transition
// absent from this table is illegal; rejected and converted_to_official are
// terminal.
var proposalTransitions = map[entity.ProposalStatus][]entity.ProposalStatus{
	entity.ProposalPending:   {entity.ProposalInReview, entity.ProposalApproved, entity.ProposalRejected},
	entity.ProposalInReview:  {entity.ProposalApproved, entity.ProposalRejected, entity.ProposalPending},
	entity.ProposalApproved:  {entity.ProposalConverted, entity.ProposalRejected},
	entity.ProposalRejected:  {},
	entity.ProposalConverted: {},
}

// ProposalWorkflow governs the lifecycle of submitted coffee shops from
// intake to rejection or conversion into an official listing.
type ProposalWorkflow struct {
	proposals repository.ProposalsRepository
	shops     repository.ShopsRepository
	contact   *ContactNormalizer
}

// NewProposalWorkflow creates a new instance of ProposalWorkflow.
func NewProposalWorkflow(proposals repository.ProposalsRepository, shops repository.ShopsRepository, contact *ContactNormalizer) *ProposalWorkflow {
	return &ProposalWorkflow{proposals: proposals, shops: shops, contact: contact}
}

// Submit validates and stores a new proposal in the pending state. Submitter
// identity is optional so anonymous submissions work.
func (w *ProposalWorkflow) Submit(ctx context.Context, req dto.SubmitProposalRequest, submitterID *uuid.UUID) (*entity.Proposal, error) {
	name := strings.TrimSpace(req.Name)
	address := strings.TrimSpace(req.Address)
	city := strings.TrimSpace(req.City)
	country := strings.TrimSpace(req.Country)
	if name == "" || address == "" || city == "" || country == "" {
		return nil, ValidationError{Message: "name, address, city and country are required"}
	}

	proposal := &entity.Proposal{
		Name:           name,
		Address:        address,
		City:           city,
		Country:        country,
		Phone:          w.contact.Phone(req.Phone),
		Email:          w.contact.Email(req.Email),
		Website:        w.contact.Website(req.Website),
		Instagram:      w.contact.Social("instagram", req.Instagram),
		Facebook:       w.contact.Social("facebook", req.Facebook),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		OpeningHours:   req.OpeningHours,
		Features:       trimLabels(req.Features),
		PriceRange:     normalizeString(req.PriceRange),
		SubmitterID:    submitterID,
		SubmitterName:  normalizeString(req.SubmitterName),
		SubmitterEmail: w.contact.Email(req.SubmitterEmail),
		ImageURLs:      req.ImageURLs,
	}

	return w.proposals.Create(ctx, proposal)
}

// Get retrieves a single proposal.
func (w *ProposalWorkflow) Get(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	return w.proposals.FindByID(ctx, id)
}

// List returns proposals for the admin screens.
func (w *ProposalWorkflow) List(ctx context.Context, filter dto.ProposalFilter) ([]entity.Proposal, error) {
	if filter.Status != "" {
		if _, ok := entity.ParseProposalStatus(filter.Status); !ok {
			return nil, ValidationError{Message: fmt.Sprintf("unknown status %q", filter.Status)}
		}
	}
	return w.proposals.List(ctx, filter)
}

// SetStatus moves a proposal to newStatus, enforcing the transition table.
// Leaving pending stamps reviewed_at/reviewed_by with the acting admin.
func (w *ProposalWorkflow) SetStatus(ctx context.Context, id uuid.UUID, newStatus string, adminNotes *string, actor uuid.UUID) (*entity.Proposal, error) {
	target, ok := entity.ParseProposalStatus(newStatus)
	if !ok {
		return nil, ValidationError{Message: fmt.Sprintf("unknown status %q", newStatus)}
	}
	if target == entity.ProposalConverted {
		return nil, InvalidStateError{Message: "conversion must go through the convert operation"}
	}

	proposal, err := w.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(proposal.Status, target) {
		return nil, InvalidStateError{Message: fmt.Sprintf("cannot move proposal from %s to %s", proposal.Status, target)}
	}

	update := repository.StatusUpdate{
		Status:      target,
		AdminNotes:  adminNotes,
		AllowedFrom: []entity.ProposalStatus{proposal.Status},
	}
	stampReview(&update, target, actor)

	updated, err := w.proposals.UpdateStatus(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrProposalStatusChanged) {
			return nil, InvalidStateError{Message: fmt.Sprintf("proposal is no longer %s", proposal.Status)}
		}
		return nil, err
	}
	return updated, nil
}

// BulkSetStatus applies one status change to many proposals as a single
// all-or-nothing batch.
func (w *ProposalWorkflow) BulkSetStatus(ctx context.Context, req dto.BulkSetStatusRequest, actor uuid.UUID) error {
	if len(req.IDs) == 0 {
		return ValidationError{Message: "ids must not be empty"}
	}

	target, ok := entity.ParseProposalStatus(req.Status)
	if !ok {
		return ValidationError{Message: fmt.Sprintf("unknown status %q", req.Status)}
	}
	if target == entity.ProposalConverted {
		return InvalidStateError{Message: "conversion must go through the convert operation"}
	}

	update := repository.StatusUpdate{
		Status:      target,
		AdminNotes:  req.AdminNotes,
		AllowedFrom: allowedSources(target),
	}
	stampReview(&update, target, actor)

	err := w.proposals.BulkUpdateStatus(ctx, req.IDs, update)
	if err != nil {
		if errors.Is(err, repository.ErrProposalStatusChanged) {
			return InvalidStateError{Message: err.Error()}
		}
		return err
	}
	return nil
}

// UpdateNotes edits admin notes in any state, including terminal ones.
func (w *ProposalWorkflow) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*entity.Proposal, error) {
	return w.proposals.UpdateNotes(ctx, id, strings.TrimSpace(notes))
}

// ConvertToOfficial materializes an approved proposal as an official coffee
// shop and flips the proposal to converted_to_official in one transaction.
// City assignment stays manual; the geo/contact/hours fields are copied over.
func (w *ProposalWorkflow) ConvertToOfficial(ctx context.Context, id uuid.UUID) (*entity.CoffeeShop, error) {
	proposal, err := w.proposals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Status != entity.ProposalApproved {
		return nil, InvalidStateError{Message: "only approved proposals can be converted"}
	}

	shopID := uuid.New()
	shop := &entity.CoffeeShop{
		ID:           shopID,
		Name:         proposal.Name,
		Slug:         Slugify(proposal.Name + " " + proposal.City),
		Address:      proposal.Address,
		Latitude:     proposal.Latitude,
		Longitude:    proposal.Longitude,
		Phone:        proposal.Phone,
		Email:        proposal.Email,
		Website:      proposal.Website,
		Instagram:    proposal.Instagram,
		Facebook:     proposal.Facebook,
		OpeningHours: proposal.OpeningHours,
		PriceRange:   proposal.PriceRange,
		Features:     proposal.Features,
		ImageURLs:    proposal.ImageURLs,
	}
	note := fmt.Sprintf("converted to official coffee shop %s", shopID)

	if _, err := w.proposals.Convert(ctx, id, shop, note); err != nil {
		if errors.Is(err, repository.ErrProposalStatusChanged) {
			return nil, InvalidStateError{Message: "only approved proposals can be converted"}
		}
		return nil, err
	}

	created, err := w.shops.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func transitionAllowed(from, to entity.ProposalStatus) bool {
	for _, allowed := range proposalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// allowedSources returns every state the table permits to move to target.
func allowedSources(target entity.ProposalStatus) []entity.ProposalStatus {
	var sources []entity.ProposalStatus
	for from, targets := range proposalTransitions {
		for _, to := range targets {
			if to == target {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// stampReview sets reviewed_at/reviewed_by for transitions that represent an
// admin having looked at the proposal.
func stampReview(update *repository.StatusUpdate, target entity.ProposalStatus, actor uuid.UUID) {
	switch target {
	case entity.ProposalInReview, entity.ProposalApproved, entity.ProposalRejected:
		now := time.Now().UTC()
		update.ReviewedAt = &now
		update.ReviewedBy = &actor
	}
}

func trimLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label != "" {
			out = append(out, label)
		}
	}
	return out
}

func normalizeString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
