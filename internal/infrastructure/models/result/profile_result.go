package result

import "github.com/extmarket/review-exchange/internal/domain"

// ProfileResult is the dashboard read model for one user: purely derived,
// no invariants of its own.
type ProfileResult struct {
	User          *domain.User
	Items         []*domain.Item
	Assignments   []*domain.Assignment
	Credits       []*domain.CreditTransaction
	Balance       int
	Relationships []*domain.ReviewRelationship
}
