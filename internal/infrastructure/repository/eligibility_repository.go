package repository

import (
	"context"

	"github.com/extmarket/review-exchange/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	selectQualifiedUsersQuery = `
SELECT id, name, has_completed_qualification, COALESCE(tier, 'free'), created_at
FROM users
WHERE has_completed_qualification = TRUE
ORDER BY id;`

	selectOwnerReviewersQuery = `
SELECT DISTINCT reviewer_id FROM review_relationships
WHERE reviewed_owner_id = $1;`

	selectBusyReviewersQuery = `
SELECT DISTINCT reviewer_id FROM assignments
WHERE status = 'assigned';`
)

// EligibilityRepository provides the read-only inputs of the matcher.
type EligibilityRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewEligibilityRepository(db *pgxpool.Pool, log *zap.Logger) *EligibilityRepository {
	return &EligibilityRepository{
		db:  db,
		log: log,
	}
}

// SelectQualifiedReviewers returns every user who passed qualification,
// ordered by id so downstream selection stays deterministic under a seeded
// random source.
func (r *EligibilityRepository) SelectQualifiedReviewers(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, selectQualifiedUsersQuery)
	if err != nil {
		r.log.Error("failed to load qualified users", zap.Error(err))
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		err = rows.Scan(
			&user.Id,
			&user.Name,
			&user.HasCompletedQualification,
			&user.Tier,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		users = append(users, user)
	}

	return users, nil
}

// SelectOwnerReviewers returns every reviewer that has ever reviewed an item
// of the given owner, regardless of item.
func (r *EligibilityRepository) SelectOwnerReviewers(ctx context.Context, ownerId uuid.UUID) ([]uuid.UUID, error) {
	return r.selectIds(ctx, selectOwnerReviewersQuery, ownerId)
}

// SelectBusyReviewers returns every reviewer holding an assignment in status
// 'assigned', independent of item or batch.
func (r *EligibilityRepository) SelectBusyReviewers(ctx context.Context) ([]uuid.UUID, error) {
	return r.selectIds(ctx, selectBusyReviewersQuery)
}

func (r *EligibilityRepository) selectIds(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to load reviewer ids", zap.Error(err))
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, handleDBError(err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
