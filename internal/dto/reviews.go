package dto

// CreateReviewRequest is the payload for posting a review on a shop.
type CreateReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

// UpdateReviewRequest patches the caller's existing review.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}
