package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/extmarket/review-exchange/internal/infrastructure/models/dto"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/extmarket/review-exchange/internal/infrastructure/repository"
	"github.com/extmarket/review-exchange/internal/transport/dto/request"
	"github.com/extmarket/review-exchange/internal/transport/dto/response"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minReviewTextLen = 25

var submitError = errors.New("submit review error")

type SettlementRepository interface {
	Settle(ctx context.Context, d *dto.SettleDTO) (*result.SettlementResult, error)
}

// SettlementService validates a completed review and settles it: approve the
// assignment, transition the item, credit the reviewer, record the
// relationship and check batch completion.
type SettlementService struct {
	repo     SettlementRepository
	notifier Notifier
	log      *zap.Logger
}

func NewSettlementService(repo SettlementRepository, notifier Notifier, log *zap.Logger) *SettlementService {
	return &SettlementService{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

func (s *SettlementService) Submit(ctx context.Context, req *request.SubmitReviewRequest) (*response.SubmitReviewResponse, error) {
	s.log.Info("submit review request accepted",
		zap.String("assignment_id", req.AssignmentId),
	)

	// Validation order is fixed; the first failure short-circuits and
	// nothing is mutated.
	if len(req.ReviewText) < minReviewTextLen {
		return nil, WrapError(ErrReviewTooShort, nil)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, WrapError(ErrRatingOutOfRange, nil)
	}
	if req.ProofUrl == "" {
		return nil, WrapError(ErrProofMissing, nil)
	}

	assignmentId, err := uuid.Parse(req.AssignmentId)
	if err != nil {
		return nil, WrapError(ErrInvalidID, err)
	}

	submittedAt := time.Now()
	if req.SubmittedAt != nil {
		submittedAt = *req.SubmittedAt
	}

	d := &dto.SettleDTO{
		AssignmentId: assignmentId,
		ReviewText:   req.ReviewText,
		Rating:       req.Rating,
		ProofUrl:     req.ProofUrl,
		SubmittedAt:  submittedAt,
	}

	res, err := s.repo.Settle(ctx, d)
	if err != nil {
		s.log.Error("settlement failed",
			zap.String("assignment_id", req.AssignmentId),
			zap.Error(err),
		)

		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrAssignmentNotFound, err)
		}
		if errors.Is(err, repository.ErrInvalidInput) {
			return nil, WrapError(ErrInvalidInput, err)
		}
		return nil, WrapError(ErrStoreFailure, errors.Join(submitError, err))
	}

	s.log.Info("review settled",
		zap.String("assignment_id", res.AssignmentId.String()),
		zap.String("reviewer_id", res.ReviewerId.String()),
		zap.Int("credits_earned", res.CreditsEarned),
		zap.Bool("batch_completed", res.BatchCompleted),
	)

	if err := s.notifier.ReviewReceived(ctx, res.OwnerId, res.ItemId); err != nil {
		s.log.Warn("review-received notification failed",
			zap.String("owner_id", res.OwnerId.String()),
			zap.Error(err),
		)
	}
	if err := s.notifier.CreditEarned(ctx, res.ReviewerId, res.CreditsEarned); err != nil {
		s.log.Warn("credit-earned notification failed",
			zap.String("reviewer_id", res.ReviewerId.String()),
			zap.Error(err),
		)
	}

	return &response.SubmitReviewResponse{
		CreditsEarned:  res.CreditsEarned,
		BatchCompleted: res.BatchCompleted,
	}, nil
}
