package response

import "github.com/extmarket/review-exchange/internal/domain"

type ProfileResponse struct {
	User          *domain.User                 `json:"user"`
	Items         []*domain.Item               `json:"items"`
	Assignments   []*domain.Assignment         `json:"assignments"`
	Credits       []*domain.CreditTransaction  `json:"credit_transactions"`
	Balance       int                          `json:"balance"`
	Relationships []*domain.ReviewRelationship `json:"relationships"`
}
