package dto

import (
	"github.com/google/uuid"

	"github.com/beanpath/coffee-directory/internal/entity"
)

// SubmitProposalRequest is the public intake payload for suggesting a shop.
// Submitter fields are optional so anonymous submissions remain possible.
type SubmitProposalRequest struct {
	Name           string               `json:"name"`
	Address        string               `json:"address"`
	City           string               `json:"city"`
	Country        string               `json:"country"`
	Phone          string               `json:"phone"`
	Email          string               `json:"email"`
	Website        string               `json:"website"`
	Instagram      string               `json:"instagram"`
	Facebook       string               `json:"facebook"`
	Latitude       *float64             `json:"latitude"`
	Longitude      *float64             `json:"longitude"`
	OpeningHours   *entity.OpeningHours `json:"opening_hours"`
	Features       []string             `json:"features"`
	PriceRange     string               `json:"price_range"`
	SubmitterName  string               `json:"submitter_name"`
	SubmitterEmail string               `json:"submitter_email"`
	ImageURLs      []string             `json:"image_urls"`
}

// SetStatusRequest moves a proposal through the moderation workflow.
type SetStatusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes"`
}

// BulkSetStatusRequest applies one status change to many proposals at once.
type BulkSetStatusRequest struct {
	IDs        []uuid.UUID `json:"ids"`
	Status     string      `json:"status"`
	AdminNotes *string     `json:"admin_notes"`
}

// UpdateNotesRequest edits admin notes without touching status.
type UpdateNotesRequest struct {
	AdminNotes string `json:"admin_notes"`
}

// ProposalFilter narrows the admin proposal listing.
type ProposalFilter struct {
	Status  string
	Page    int
	PerPage int
}
