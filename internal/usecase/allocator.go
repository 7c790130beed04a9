package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/extmarket/review-exchange/internal/domain"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/dto"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/extmarket/review-exchange/internal/infrastructure/repository"
	"github.com/extmarket/review-exchange/internal/transport/dto/response"
	"go.uber.org/zap"
)

const (
	assignmentDueIn   = 7 * 24 * time.Hour
	numberRetryLimit  = 3
	DefaultCycleSlots = 10
)

var runCycleError = errors.New("run allocation cycle error")

type ItemRepository interface {
	SelectQueuedItems(ctx context.Context) ([]*result.QueuedItem, error)
}

type AllocationRepository interface {
	Allocate(ctx context.Context, d *dto.AllocateDTO) (*result.AllocationResult, error)
}

// AllocatorService runs one allocation cycle: scheduler picks the items,
// matcher narrows the reviewers, and the repository saga creates the
// batch/assignment and flips the item status. Every invocation recomputes
// the backlog and eligibility from the store; there is no shared in-process
// cycle state.
type AllocatorService struct {
	items     ItemRepository
	alloc     AllocationRepository
	matcher   *Matcher
	scheduler *Scheduler
	notifier  Notifier
	rnd       Rand
	log       *zap.Logger
}

func NewAllocatorService(
	items ItemRepository,
	alloc AllocationRepository,
	matcher *Matcher,
	scheduler *Scheduler,
	notifier Notifier,
	rnd Rand,
	log *zap.Logger,
) *AllocatorService {
	return &AllocatorService{
		items:     items,
		alloc:     alloc,
		matcher:   matcher,
		scheduler: scheduler,
		notifier:  notifier,
		rnd:       rnd,
		log:       log,
	}
}

// RunCycle is idempotent to call repeatedly; an empty backlog is a success
// with zero counts. A single item's failure is logged and counted, never
// escalated to abort the cycle.
func (s *AllocatorService) RunCycle(ctx context.Context, maxAssignments int) (*response.RunCycleResponse, error) {
	if maxAssignments <= 0 {
		return nil, WrapError(ErrInvalidMaxAssignments, nil)
	}

	s.log.Info("allocation cycle started", zap.Int("max_assignments", maxAssignments))

	queued, err := s.items.SelectQueuedItems(ctx)
	if err != nil {
		return nil, WrapError(ErrStoreFailure, errors.Join(runCycleError, err))
	}

	cycle := s.scheduler.BuildCycle(queued, maxAssignments)

	resp := &response.RunCycleResponse{ItemsConsidered: len(cycle)}
	for _, item := range cycle {
		allocated, err := s.allocateOne(ctx, item)
		if err != nil {
			// PartialCycleFailure: operational logs only, the cycle
			// moves on to the next item.
			s.log.Error("item allocation failed",
				zap.String("item_id", item.Id.String()),
				zap.Error(err),
			)
			resp.ItemsSkipped++
			continue
		}
		if !allocated {
			resp.ItemsSkipped++
			continue
		}

		resp.AssignmentsCreated++
		if domain.Tier(item.Tier) == domain.TierPremium {
			resp.PremiumAssigned++
		} else {
			resp.FreeAssigned++
		}
	}

	s.log.Info("allocation cycle finished",
		zap.Int("considered", resp.ItemsConsidered),
		zap.Int("created", resp.AssignmentsCreated),
		zap.Int("premium", resp.PremiumAssigned),
		zap.Int("free", resp.FreeAssigned),
		zap.Int("skipped", resp.ItemsSkipped),
	)
	return resp, nil
}

// allocateOne returns (false, nil) when the item is skipped without being an
// error: no eligible reviewer, item already taken by a concurrent cycle, or
// the chosen reviewer got busy in the race window.
func (s *AllocatorService) allocateOne(ctx context.Context, item *result.QueuedItem) (bool, error) {
	eligible, err := s.matcher.EligibleReviewers(ctx, item.OwnerId)
	if err != nil {
		return false, err
	}
	if len(eligible) == 0 {
		s.log.Info("no eligible reviewer, item stays queued",
			zap.String("item_id", item.Id.String()),
		)
		return false, nil
	}

	// Uniform random pick; no reviewer is systematically favored.
	reviewerId := eligible[s.rnd.Intn(len(eligible))]

	d := &dto.AllocateDTO{
		ItemId:     item.Id,
		OwnerId:    item.OwnerId,
		ReviewerId: reviewerId,
		DueAt:      time.Now().Add(assignmentDueIn),
	}

	// Two concurrent cycles can collide on the assignment number or on the
	// reviewer's single active slot, both guarded by unique indexes; retry
	// just this item and let the re-validation inside Allocate sort it out.
	var res *result.AllocationResult
	for attempt := 1; ; attempt++ {
		res, err = s.alloc.Allocate(ctx, d)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrAlreadyExists) && attempt < numberRetryLimit {
			s.log.Warn("assignment insert conflict, retrying",
				zap.String("item_id", item.Id.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if errors.Is(err, repository.ErrItemNotQueued) {
			s.log.Info("item already allocated by a concurrent cycle",
				zap.String("item_id", item.Id.String()),
			)
			return false, nil
		}
		if errors.Is(err, repository.ErrReviewerBusy) {
			s.log.Info("reviewer taken by a concurrent cycle, item stays queued",
				zap.String("item_id", item.Id.String()),
				zap.String("reviewer_id", reviewerId.String()),
			)
			return false, nil
		}
		return false, err
	}

	if err := s.notifier.ReviewerAssigned(ctx, res.OwnerId, res.ItemId, res.ReviewerId); err != nil {
		s.log.Warn("reviewer-assigned notification failed",
			zap.String("item_id", res.ItemId.String()),
			zap.Error(err),
		)
	}

	return true, nil
}
