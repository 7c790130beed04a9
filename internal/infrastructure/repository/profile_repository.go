package repository

import (
	"context"
	"database/sql"

	"github.com/extmarket/review-exchange/internal/domain"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	selectUserQuery = `
SELECT id, name, has_completed_qualification, COALESCE(tier, 'free'), created_at
FROM users
WHERE id = $1;`

	selectUserItemsQuery = `
SELECT id, owner_id, name, status, queued_at, created_at
FROM items
WHERE owner_id = $1
ORDER BY created_at;`

	selectUserAssignmentsQuery = `
SELECT id, batch_id, item_id, reviewer_id, assignment_number, due_at, status,
       review_text, rating, proof_url, submitted_at, created_at
FROM assignments
WHERE reviewer_id = $1
ORDER BY assignment_number;`

	selectUserCreditsQuery = `
SELECT id, user_id, amount, type, description, created_at
FROM credit_transactions
WHERE user_id = $1
ORDER BY created_at;`

	selectUserBalanceQuery = `
SELECT COALESCE(SUM(amount), 0) FROM credit_transactions
WHERE user_id = $1;`

	selectUserRelationshipsQuery = `
SELECT reviewer_id, reviewed_owner_id, item_id, created_at
FROM review_relationships
WHERE reviewer_id = $1
ORDER BY created_at;`
)

type ProfileRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewProfileRepository(db *pgxpool.Pool, log *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: log,
	}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userId uuid.UUID) (*result.ProfileResult, error) {
	r.log.Debug("load profile", zap.String("user_id", userId.String()))

	user := &domain.User{}
	err := r.db.QueryRow(ctx, selectUserQuery, userId).Scan(
		&user.Id,
		&user.Name,
		&user.HasCompletedQualification,
		&user.Tier,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, handleDBError(err)
	}

	items, err := r.selectItems(ctx, userId)
	if err != nil {
		return nil, err
	}

	assignments, err := r.selectAssignments(ctx, userId)
	if err != nil {
		return nil, err
	}

	credits, err := r.selectCredits(ctx, userId)
	if err != nil {
		return nil, err
	}

	var balance int
	if err := r.db.QueryRow(ctx, selectUserBalanceQuery, userId).Scan(&balance); err != nil {
		return nil, handleDBError(err)
	}

	relationships, err := r.selectRelationships(ctx, userId)
	if err != nil {
		return nil, err
	}

	return &result.ProfileResult{
		User:          user,
		Items:         items,
		Assignments:   assignments,
		Credits:       credits,
		Balance:       balance,
		Relationships: relationships,
	}, nil
}

func (r *ProfileRepository) selectItems(ctx context.Context, userId uuid.UUID) ([]*domain.Item, error) {
	rows, err := r.db.Query(ctx, selectUserItemsQuery, userId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		var queuedAt sql.NullTime
		err = rows.Scan(
			&item.Id,
			&item.OwnerId,
			&item.Name,
			&item.Status,
			&queuedAt,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		if queuedAt.Valid {
			item.QueuedAt = &queuedAt.Time
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ProfileRepository) selectAssignments(ctx context.Context, userId uuid.UUID) ([]*domain.Assignment, error) {
	rows, err := r.db.Query(ctx, selectUserAssignmentsQuery, userId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var assignments []*domain.Assignment
	for rows.Next() {
		a := &domain.Assignment{}
		var (
			reviewText  sql.NullString
			rating      sql.NullInt32
			proofUrl    sql.NullString
			submittedAt sql.NullTime
		)
		err = rows.Scan(
			&a.Id,
			&a.BatchId,
			&a.ItemId,
			&a.ReviewerId,
			&a.AssignmentNumber,
			&a.DueAt,
			&a.Status,
			&reviewText,
			&rating,
			&proofUrl,
			&submittedAt,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		if reviewText.Valid {
			a.ReviewText = &reviewText.String
		}
		if rating.Valid {
			v := int(rating.Int32)
			a.Rating = &v
		}
		if proofUrl.Valid {
			a.ProofUrl = &proofUrl.String
		}
		if submittedAt.Valid {
			a.SubmittedAt = &submittedAt.Time
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (r *ProfileRepository) selectCredits(ctx context.Context, userId uuid.UUID) ([]*domain.CreditTransaction, error) {
	rows, err := r.db.Query(ctx, selectUserCreditsQuery, userId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var credits []*domain.CreditTransaction
	for rows.Next() {
		c := &domain.CreditTransaction{}
		err = rows.Scan(
			&c.Id,
			&c.UserId,
			&c.Amount,
			&c.Type,
			&c.Description,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		credits = append(credits, c)
	}
	return credits, nil
}

func (r *ProfileRepository) selectRelationships(ctx context.Context, userId uuid.UUID) ([]*domain.ReviewRelationship, error) {
	rows, err := r.db.Query(ctx, selectUserRelationshipsQuery, userId)
	if err != nil {
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var relationships []*domain.ReviewRelationship
	for rows.Next() {
		rel := &domain.ReviewRelationship{}
		err = rows.Scan(
			&rel.ReviewerId,
			&rel.ReviewedOwnerId,
			&rel.ItemId,
			&rel.CreatedAt,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		relationships = append(relationships, rel)
	}
	return relationships, nil
}
