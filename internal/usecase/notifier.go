package usecase

import (
	"context"

	"github.com/google/uuid"
)

// Notifier is the outbound side channel to item owners and reviewers.
// All calls are best-effort: callers log failures and never let them fail
// an allocation or settlement that already landed.
type Notifier interface {
	ReviewerAssigned(ctx context.Context, ownerId, itemId, reviewerId uuid.UUID) error
	ReviewReceived(ctx context.Context, ownerId, itemId uuid.UUID) error
	CreditEarned(ctx context.Context, reviewerId uuid.UUID, amount int) error
}
