package response

type SubmitReviewResponse struct {
	CreditsEarned  int  `json:"credits_earned"`
	BatchCompleted bool `json:"batch_completed"`
}
