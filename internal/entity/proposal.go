package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus enumerates the moderation states of a submitted shop. The
// literal strings are a storage contract and must not be renamed.
type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalInReview  ProposalStatus = "in_review"
	ProposalApproved  ProposalStatus = "approved"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalConverted ProposalStatus = "converted_to_official"
)

// ParseProposalStatus validates a status string from the wire.
func ParseProposalStatus(value string) (ProposalStatus, bool) {
	switch ProposalStatus(value) {
	case ProposalPending, ProposalInReview, ProposalApproved, ProposalRejected, ProposalConverted:
		return ProposalStatus(value), true
	}
	return "", false
}

// Terminal reports whether no further status transitions are allowed.
func (s ProposalStatus) Terminal() bool {
	return s == ProposalRejected || s == ProposalConverted
}

// Proposal is a user-submitted candidate coffee shop awaiting moderation.
type Proposal struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	Country        string         `json:"country"`
	Phone          *string        `json:"phone,omitempty"`
	Email          *string        `json:"email,omitempty"`
	Website        *string        `json:"website,omitempty"`
	Instagram      *string        `json:"instagram,omitempty"`
	Facebook       *string        `json:"facebook,omitempty"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	OpeningHours   *OpeningHours  `json:"opening_hours,omitempty"`
	Features       []string       `json:"features"`
	PriceRange     *string        `json:"price_range,omitempty"`
	SubmitterID    *uuid.UUID     `json:"submitter_user_id,omitempty"`
	SubmitterName  *string        `json:"submitter_name,omitempty"`
	SubmitterEmail *string        `json:"submitter_email,omitempty"`
	ImageURLs      []string       `json:"image_urls"`
	Status         ProposalStatus `json:"status"`
	AdminNotes     *string        `json:"admin_notes,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	ReviewedBy     *uuid.UUID     `json:"reviewed_by,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
