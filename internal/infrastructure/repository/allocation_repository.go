package repository

import (
	"context"
	"errors"

	"github.com/extmarket/review-exchange/internal/infrastructure/models/dto"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	ErrItemNotQueued = errors.New("item is not queued")
	ErrReviewerBusy  = errors.New("reviewer already has an active assignment")
)

const (
	selectItemStatusQuery = `
SELECT status FROM items
WHERE id = $1;`

	selectReviewerBusyQuery = `
SELECT EXISTS (
    SELECT 1 FROM assignments
    WHERE reviewer_id = $1 AND status = 'assigned'
);`

	insertBatchQuery = `
INSERT INTO assignment_batches(id, reviewer_id, status)
VALUES ($1, $2, 'active');`

	nextAssignmentNumberQuery = `
SELECT COALESCE(MAX(assignment_number), 0) + 1 FROM assignments;`

	insertAssignmentQuery = `
INSERT INTO assignments(id, batch_id, item_id, reviewer_id, assignment_number, due_at, status)
VALUES ($1, $2, $3, $4, $5, $6, 'assigned');`

	markItemAssignedQuery = `
UPDATE items
SET status = 'assigned'
WHERE id = $1 AND status = 'queued';`

	deleteAssignmentQuery = `
DELETE FROM assignments WHERE id = $1;`

	deleteBatchQuery = `
DELETE FROM assignment_batches WHERE id = $1;`
)

// AllocationRepository performs the per-item allocation saga. The steps are
// individual statements with compensating deletes rather than one
// transaction, so a partial failure never leaves a batch or assignment
// behind. Compensation table:
//
//	assignment insert fails  -> delete batch
//	item transition fails    -> delete assignment, delete batch
type AllocationRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewAllocationRepository(db *pgxpool.Pool, log *zap.Logger) *AllocationRepository {
	return &AllocationRepository{
		db:  db,
		log: log,
	}
}

func (r *AllocationRepository) Allocate(ctx context.Context, d *dto.AllocateDTO) (*result.AllocationResult, error) {
	r.log.Info("allocate started",
		zap.String("item_id", d.ItemId.String()),
		zap.String("reviewer_id", d.ReviewerId.String()),
	)

	// Retried allocation for an item that already left the queue is a no-op.
	var itemStatus string
	if err := r.db.QueryRow(ctx, selectItemStatusQuery, d.ItemId).Scan(&itemStatus); err != nil {
		return nil, handleDBError(err)
	}
	if itemStatus != "queued" {
		return nil, ErrItemNotQueued
	}

	// Skip busy reviewers early. This check alone cannot hold under
	// concurrent cycles; the partial unique index on active assignments is
	// what actually rejects a second one.
	var busy bool
	if err := r.db.QueryRow(ctx, selectReviewerBusyQuery, d.ReviewerId).Scan(&busy); err != nil {
		return nil, handleDBError(err)
	}
	if busy {
		return nil, ErrReviewerBusy
	}

	batchId := uuid.New()
	if _, err := r.db.Exec(ctx, insertBatchQuery, batchId, d.ReviewerId); err != nil {
		r.log.Error("failed to insert batch",
			zap.String("item_id", d.ItemId.String()),
			zap.Error(err),
		)
		return nil, handleDBError(err)
	}

	var assignmentNumber int64
	if err := r.db.QueryRow(ctx, nextAssignmentNumberQuery).Scan(&assignmentNumber); err != nil {
		r.compensate(ctx, uuid.Nil, batchId)
		return nil, handleDBError(err)
	}

	// The unique indexes on assignment_number and on the reviewer's active
	// assignment are the serialization points for concurrent cycles; either
	// collision surfaces as ErrAlreadyExists and the caller retries, where
	// the fresh status and busy checks resolve what actually happened.
	assignmentId := uuid.New()
	_, err := r.db.Exec(ctx, insertAssignmentQuery,
		assignmentId, batchId, d.ItemId, d.ReviewerId, assignmentNumber, d.DueAt)
	if err != nil {
		r.log.Error("failed to insert assignment",
			zap.String("item_id", d.ItemId.String()),
			zap.Int64("assignment_number", assignmentNumber),
			zap.Error(err),
		)
		r.compensate(ctx, uuid.Nil, batchId)
		return nil, handleDBError(err)
	}

	cmdTag, err := r.db.Exec(ctx, markItemAssignedQuery, d.ItemId)
	if err != nil || cmdTag.RowsAffected() == 0 {
		r.log.Error("failed to transition item to assigned",
			zap.String("item_id", d.ItemId.String()),
			zap.Error(err),
		)
		r.compensate(ctx, assignmentId, batchId)
		if err != nil {
			return nil, handleDBError(err)
		}
		return nil, ErrItemNotQueued
	}

	r.log.Info("assignment created",
		zap.String("assignment_id", assignmentId.String()),
		zap.String("batch_id", batchId.String()),
		zap.Int64("assignment_number", assignmentNumber),
	)
	return &result.AllocationResult{
		AssignmentId:     assignmentId,
		BatchId:          batchId,
		AssignmentNumber: assignmentNumber,
		ItemId:           d.ItemId,
		OwnerId:          d.OwnerId,
		ReviewerId:       d.ReviewerId,
		DueAt:            d.DueAt,
	}, nil
}

// compensate undoes the saga steps that succeeded before a failure. Cleanup
// errors are logged only; the batch/assignment rows carry no external effect
// until the item transition lands.
func (r *AllocationRepository) compensate(ctx context.Context, assignmentId, batchId uuid.UUID) {
	if assignmentId != uuid.Nil {
		if _, err := r.db.Exec(ctx, deleteAssignmentQuery, assignmentId); err != nil {
			r.log.Error("compensation failed to delete assignment",
				zap.String("assignment_id", assignmentId.String()),
				zap.Error(err),
			)
		}
	}
	if _, err := r.db.Exec(ctx, deleteBatchQuery, batchId); err != nil {
		r.log.Error("compensation failed to delete batch",
			zap.String("batch_id", batchId.String()),
			zap.Error(err),
		)
	}
}
