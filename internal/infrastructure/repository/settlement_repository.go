package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/extmarket/review-exchange/internal/infrastructure/models/dto"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	selectAssignmentForSettleQuery = `
SELECT
    a.batch_id,
    a.item_id,
    a.reviewer_id,
    a.status,
    i.owner_id,
    i.name
FROM assignments a
JOIN items i ON i.id = a.item_id
WHERE a.id = $1
FOR UPDATE OF a;`

	approveAssignmentQuery = `
UPDATE assignments
SET status = 'approved',
    review_text = $2,
    rating = $3,
    proof_url = $4,
    submitted_at = $5
WHERE id = $1 AND status = 'assigned';`

	markItemReviewedQuery = `
UPDATE items
SET status = 'reviewed'
WHERE id = $1 AND status = 'assigned';`

	insertCreditQuery = `
INSERT INTO credit_transactions(id, user_id, amount, type, description)
VALUES ($1, $2, $3, 'earned', $4);`

	insertRelationshipQuery = `
INSERT INTO review_relationships(reviewer_id, reviewed_owner_id, item_id)
VALUES ($1, $2, $3)
ON CONFLICT (reviewer_id, reviewed_owner_id, item_id) DO NOTHING;`

	completeBatchQuery = `
UPDATE assignment_batches b
SET status = 'completed',
    completed_at = CURRENT_TIMESTAMP,
    credits_earned = (SELECT COUNT(*) FROM assignments a WHERE a.batch_id = b.id)
WHERE b.id = $1
  AND b.status = 'active'
  AND NOT EXISTS (
      SELECT 1 FROM assignments a
      WHERE a.batch_id = b.id AND a.status <> 'approved'
  );`
)

// ErrItemNotAssigned means the assignment was settleable but its item had
// already left the assigned state, which the allocation saga should make
// impossible.
var ErrItemNotAssigned = errors.New("item is not in assigned state")

type SettlementRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewSettlementRepository(db *pgxpool.Pool, log *zap.Logger) *SettlementRepository {
	return &SettlementRepository{
		db:  db,
		log: log,
	}
}

// Settle approves the assignment, transitions the item and credits the
// reviewer in one transaction; those three must land together or not at all.
// The relationship insert and the batch-completion check run after commit as
// best-effort steps: the reviewer's work is already validated, so a failure
// there is logged, never rolled back.
func (r *SettlementRepository) Settle(ctx context.Context, d *dto.SettleDTO) (*result.SettlementResult, error) {
	r.log.Info("settle started", zap.String("assignment_id", d.AssignmentId.String()))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer tx.Rollback(ctx)

	res := &result.SettlementResult{AssignmentId: d.AssignmentId}
	var status string
	err = tx.QueryRow(ctx, selectAssignmentForSettleQuery, d.AssignmentId).Scan(
		&res.BatchId,
		&res.ItemId,
		&res.ReviewerId,
		&status,
		&res.OwnerId,
		&res.ItemName,
	)
	if err != nil {
		return nil, handleDBError(err)
	}

	// Re-submission and submission against an approved assignment are both
	// rejected here, which makes duplicate submits idempotent.
	if status != "assigned" {
		return nil, ErrNotFound
	}

	cmdTag, err := tx.Exec(ctx, approveAssignmentQuery,
		d.AssignmentId, d.ReviewText, d.Rating, d.ProofUrl, d.SubmittedAt)
	if err != nil {
		r.log.Error("failed to approve assignment",
			zap.String("assignment_id", d.AssignmentId.String()),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	cmdTag, err = tx.Exec(ctx, markItemReviewedQuery, res.ItemId)
	if err != nil {
		r.log.Error("failed to transition item to reviewed",
			zap.String("item_id", res.ItemId.String()),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Item and assignment states disagree; abort rather than credit a
		// review for an item that never transitions.
		r.log.Error("item not in assigned state",
			zap.String("item_id", res.ItemId.String()),
			zap.String("assignment_id", d.AssignmentId.String()),
		)
		return nil, ErrItemNotAssigned
	}

	description := fmt.Sprintf("review credit for %q", res.ItemName)
	if _, err := tx.Exec(ctx, insertCreditQuery, uuid.New(), res.ReviewerId, 1, description); err != nil {
		r.log.Error("failed to insert credit transaction",
			zap.String("reviewer_id", res.ReviewerId.String()),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}
	res.CreditsEarned = 1

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit settlement",
			zap.String("assignment_id", d.AssignmentId.String()),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	// Best-effort tail: duplicates are swallowed by ON CONFLICT, other
	// failures only logged.
	if _, err := r.db.Exec(ctx, insertRelationshipQuery, res.ReviewerId, res.OwnerId, res.ItemId); err != nil {
		r.log.Warn("failed to record review relationship",
			zap.String("reviewer_id", res.ReviewerId.String()),
			zap.String("owner_id", res.OwnerId.String()),
			zap.Error(err),
		)
	}

	// Single conditional statement, so concurrent settlements of the same
	// batch cannot both observe an incomplete member set.
	cmdTag, err = r.db.Exec(ctx, completeBatchQuery, res.BatchId)
	if err != nil {
		r.log.Warn("failed to check batch completion",
			zap.String("batch_id", res.BatchId.String()),
			zap.Error(err),
		)
	} else if cmdTag.RowsAffected() > 0 {
		res.BatchCompleted = true
		r.log.Info("batch completed", zap.String("batch_id", res.BatchId.String()))
	}

	r.log.Info("settlement done",
		zap.String("assignment_id", d.AssignmentId.String()),
		zap.Bool("batch_completed", res.BatchCompleted),
	)
	return res, nil
}
