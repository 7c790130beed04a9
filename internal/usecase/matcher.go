package usecase

import (
	"context"

	"github.com/extmarket/review-exchange/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EligibilityRepository provides the raw sets the matcher intersects.
type EligibilityRepository interface {
	SelectQualifiedReviewers(ctx context.Context) ([]*domain.User, error)
	SelectOwnerReviewers(ctx context.Context, ownerId uuid.UUID) ([]uuid.UUID, error)
	SelectBusyReviewers(ctx context.Context) ([]uuid.UUID, error)
}

// Matcher computes the candidate reviewer set for an item. Read-only; the
// result may be empty and the caller must treat that as "skip the item".
type Matcher struct {
	repo EligibilityRepository
	log  *zap.Logger
}

func NewMatcher(repo EligibilityRepository, log *zap.Logger) *Matcher {
	return &Matcher{
		repo: repo,
		log:  log,
	}
}

// EligibleReviewers starts from all qualified users and removes the owner,
// anyone with a lifetime relationship to the owner, and anyone holding an
// active assignment. The filters are set subtractions with no ordering
// dependency between them; the returned slice keeps the repository's stable
// id order.
func (m *Matcher) EligibleReviewers(ctx context.Context, ownerId uuid.UUID) ([]uuid.UUID, error) {
	qualified, err := m.repo.SelectQualifiedReviewers(ctx)
	if err != nil {
		return nil, err
	}

	ownerReviewers, err := m.repo.SelectOwnerReviewers(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	busyReviewers, err := m.repo.SelectBusyReviewers(ctx)
	if err != nil {
		return nil, err
	}

	excluded := make(map[uuid.UUID]struct{}, len(ownerReviewers)+len(busyReviewers)+1)
	excluded[ownerId] = struct{}{}
	for _, id := range ownerReviewers {
		excluded[id] = struct{}{}
	}
	for _, id := range busyReviewers {
		excluded[id] = struct{}{}
	}

	var eligible []uuid.UUID
	for _, user := range qualified {
		if user == nil {
			continue
		}
		if _, ok := excluded[user.Id]; ok {
			continue
		}
		eligible = append(eligible, user.Id)
	}

	m.log.Debug("eligibility computed",
		zap.String("owner_id", ownerId.String()),
		zap.Int("qualified", len(qualified)),
		zap.Int("eligible", len(eligible)),
	)
	return eligible, nil
}
