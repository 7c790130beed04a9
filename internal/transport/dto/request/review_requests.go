package request

import "time"

type SubmitReviewRequest struct {
	AssignmentId string     `json:"assignment_id"`
	ReviewText   string     `json:"review_text"`
	Rating       int        `json:"rating"`
	ProofUrl     string     `json:"proof_url"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}
