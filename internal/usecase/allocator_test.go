package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/extmarket/review-exchange/internal/domain"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/dto"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/extmarket/review-exchange/internal/infrastructure/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) SelectQueuedItems(ctx context.Context) ([]*result.QueuedItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*result.QueuedItem), args.Error(1)
}

type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) Allocate(ctx context.Context, d *dto.AllocateDTO) (*result.AllocationResult, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*result.AllocationResult), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ReviewerAssigned(ctx context.Context, ownerId, itemId, reviewerId uuid.UUID) error {
	args := m.Called(ctx, ownerId, itemId, reviewerId)
	return args.Error(0)
}

func (m *MockNotifier) ReviewReceived(ctx context.Context, ownerId, itemId uuid.UUID) error {
	args := m.Called(ctx, ownerId, itemId)
	return args.Error(0)
}

func (m *MockNotifier) CreditEarned(ctx context.Context, reviewerId uuid.UUID, amount int) error {
	args := m.Called(ctx, reviewerId, amount)
	return args.Error(0)
}

type fixedRand struct {
	v int
}

func (r fixedRand) Intn(n int) int {
	return r.v % n
}

type allocatorFixture struct {
	items    *MockItemRepository
	alloc    *MockAllocationRepository
	elig     *MockEligibilityRepository
	notifier *MockNotifier
	svc      *AllocatorService
}

func newAllocatorFixture(rnd Rand) *allocatorFixture {
	log := zap.NewNop()
	f := &allocatorFixture{
		items:    new(MockItemRepository),
		alloc:    new(MockAllocationRepository),
		elig:     new(MockEligibilityRepository),
		notifier: new(MockNotifier),
	}
	f.svc = NewAllocatorService(
		f.items,
		f.alloc,
		NewMatcher(f.elig, log),
		NewScheduler(3),
		f.notifier,
		rnd,
		log,
	)
	return f
}

func (f *allocatorFixture) expectEligible(owner uuid.UUID, reviewers ...uuid.UUID) {
	users := make([]*domain.User, 0, len(reviewers))
	for _, id := range reviewers {
		users = append(users, qualifiedUser(id))
	}
	f.elig.On("SelectQualifiedReviewers", mock.Anything).Return(users, nil)
	f.elig.On("SelectOwnerReviewers", mock.Anything, owner).Return([]uuid.UUID{}, nil)
	f.elig.On("SelectBusyReviewers", mock.Anything).Return([]uuid.UUID{}, nil)
}

func allocationResultFor(d *dto.AllocateDTO, number int64) *result.AllocationResult {
	return &result.AllocationResult{
		AssignmentId:     uuid.New(),
		BatchId:          uuid.New(),
		AssignmentNumber: number,
		ItemId:           d.ItemId,
		OwnerId:          d.OwnerId,
		ReviewerId:       d.ReviewerId,
		DueAt:            d.DueAt,
	}
}

func TestAllocator_CreatesAssignment(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	owner := uuid.New()
	reviewer := uuid.New()
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "premium", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	f.expectEligible(owner, reviewer)
	f.alloc.On("Allocate", mock.Anything, mock.MatchedBy(func(d *dto.AllocateDTO) bool {
		return d.ItemId == item.Id && d.ReviewerId == reviewer
	})).Return(allocationResultFor(&dto.AllocateDTO{ItemId: item.Id, OwnerId: owner, ReviewerId: reviewer}, 1), nil)
	f.notifier.On("ReviewerAssigned", mock.Anything, owner, item.Id, reviewer).Return(nil)

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.AssignmentsCreated)
	assert.Equal(t, 1, resp.PremiumAssigned)
	assert.Equal(t, 0, resp.FreeAssigned)
	assert.Equal(t, 1, resp.ItemsConsidered)
	assert.Equal(t, 0, resp.ItemsSkipped)
	f.alloc.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAllocator_SeededRandomPickIsDeterministic(t *testing.T) {
	// The same seed must pick the same reviewer
	seeded := NewRand(42)
	expected := seeded.Intn(3)

	f := newAllocatorFixture(NewRand(42))

	owner := uuid.New()
	reviewers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "free", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	f.expectEligible(owner, reviewers...)
	f.alloc.On("Allocate", mock.Anything, mock.MatchedBy(func(d *dto.AllocateDTO) bool {
		return d.ReviewerId == reviewers[expected]
	})).Return(allocationResultFor(&dto.AllocateDTO{ItemId: item.Id, OwnerId: owner, ReviewerId: reviewers[expected]}, 1), nil)
	f.notifier.On("ReviewerAssigned", mock.Anything, owner, item.Id, reviewers[expected]).Return(nil)

	_, err := f.svc.RunCycle(context.Background(), 1)

	require.NoError(t, err)
	f.alloc.AssertExpectations(t)
}

func TestAllocator_SkipsItemWithNoEligibleReviewer(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	owner := uuid.New()
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "free", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	// Only the owner is qualified, so the eligible set is empty
	f.elig.On("SelectQualifiedReviewers", mock.Anything).Return([]*domain.User{qualifiedUser(owner)}, nil)
	f.elig.On("SelectOwnerReviewers", mock.Anything, owner).Return([]uuid.UUID{}, nil)
	f.elig.On("SelectBusyReviewers", mock.Anything).Return([]uuid.UUID{}, nil)

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.AssignmentsCreated)
	assert.Equal(t, 1, resp.ItemsSkipped)
	f.alloc.AssertNotCalled(t, "Allocate")
}

func TestAllocator_EmptyBacklogIsSuccess(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{}, nil)

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.AssignmentsCreated)
	assert.Equal(t, 0, resp.ItemsConsidered)
}

func TestAllocator_RetriesOnAssignmentNumberConflict(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	owner := uuid.New()
	reviewer := uuid.New()
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "free", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	f.expectEligible(owner, reviewer)
	f.alloc.On("Allocate", mock.Anything, mock.Anything).Return(nil, repository.ErrAlreadyExists).Once()
	f.alloc.On("Allocate", mock.Anything, mock.Anything).
		Return(allocationResultFor(&dto.AllocateDTO{ItemId: item.Id, OwnerId: owner, ReviewerId: reviewer}, 2), nil).Once()
	f.notifier.On("ReviewerAssigned", mock.Anything, owner, item.Id, reviewer).Return(nil)

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.AssignmentsCreated)
	f.alloc.AssertNumberOfCalls(t, "Allocate", 2)
}

func TestAllocator_ConcurrentlyTakenItemIsNoOp(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	owner := uuid.New()
	reviewer := uuid.New()
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "free", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	f.expectEligible(owner, reviewer)
	f.alloc.On("Allocate", mock.Anything, mock.Anything).Return(nil, repository.ErrItemNotQueued)

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.AssignmentsCreated)
	assert.Equal(t, 1, resp.ItemsSkipped)
	f.notifier.AssertNotCalled(t, "ReviewerAssigned")
}

func TestAllocator_ReviewerSlotConflictResolvesToSkip(t *testing.T) {
	// A losing racer hits the unique index on the reviewer's active
	// assignment, and its retry then observes the reviewer as busy.
	f := newAllocatorFixture(fixedRand{0})

	owner := uuid.New()
	reviewer := uuid.New()
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "free", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	f.expectEligible(owner, reviewer)
	f.alloc.On("Allocate", mock.Anything, mock.Anything).Return(nil, repository.ErrAlreadyExists).Once()
	f.alloc.On("Allocate", mock.Anything, mock.Anything).Return(nil, repository.ErrReviewerBusy).Once()

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.AssignmentsCreated)
	assert.Equal(t, 1, resp.ItemsSkipped)
	f.alloc.AssertNumberOfCalls(t, "Allocate", 2)
	f.notifier.AssertNotCalled(t, "ReviewerAssigned")
}

func TestAllocator_BusyReviewerConflictSkipsItem(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	owner := uuid.New()
	reviewer := uuid.New()
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "free", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	f.expectEligible(owner, reviewer)
	f.alloc.On("Allocate", mock.Anything, mock.Anything).Return(nil, repository.ErrReviewerBusy)

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.ItemsSkipped)
}

func TestAllocator_OneItemFailureDoesNotAbortCycle(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	ownerA := uuid.New()
	ownerB := uuid.New()
	reviewer := uuid.New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	itemA := &result.QueuedItem{Id: uuid.New(), OwnerId: ownerA, Tier: "free", QueuedAt: base}
	itemB := &result.QueuedItem{Id: uuid.New(), OwnerId: ownerB, Tier: "free", QueuedAt: base.Add(time.Minute)}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{itemA, itemB}, nil)

	f.elig.On("SelectQualifiedReviewers", mock.Anything).Return([]*domain.User{qualifiedUser(reviewer)}, nil)
	f.elig.On("SelectOwnerReviewers", mock.Anything, mock.Anything).Return([]uuid.UUID{}, nil)
	f.elig.On("SelectBusyReviewers", mock.Anything).Return([]uuid.UUID{}, nil)

	f.alloc.On("Allocate", mock.Anything, mock.MatchedBy(func(d *dto.AllocateDTO) bool {
		return d.ItemId == itemA.Id
	})).Return(nil, errors.New("store exploded"))
	f.alloc.On("Allocate", mock.Anything, mock.MatchedBy(func(d *dto.AllocateDTO) bool {
		return d.ItemId == itemB.Id
	})).Return(allocationResultFor(&dto.AllocateDTO{ItemId: itemB.Id, OwnerId: ownerB, ReviewerId: reviewer}, 1), nil)
	f.notifier.On("ReviewerAssigned", mock.Anything, ownerB, itemB.Id, reviewer).Return(nil)

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.AssignmentsCreated)
	assert.Equal(t, 1, resp.ItemsSkipped)
	assert.Equal(t, 2, resp.ItemsConsidered)
}

func TestAllocator_NotificationFailureDoesNotFailAllocation(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	owner := uuid.New()
	reviewer := uuid.New()
	item := &result.QueuedItem{Id: uuid.New(), OwnerId: owner, Tier: "free", QueuedAt: time.Now()}

	f.items.On("SelectQueuedItems", mock.Anything).Return([]*result.QueuedItem{item}, nil)
	f.expectEligible(owner, reviewer)
	f.alloc.On("Allocate", mock.Anything, mock.Anything).
		Return(allocationResultFor(&dto.AllocateDTO{ItemId: item.Id, OwnerId: owner, ReviewerId: reviewer}, 1), nil)
	f.notifier.On("ReviewerAssigned", mock.Anything, owner, item.Id, reviewer).
		Return(errors.New("smtp down"))

	resp, err := f.svc.RunCycle(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.AssignmentsCreated)
}

func TestAllocator_InvalidMaxAssignments(t *testing.T) {
	f := newAllocatorFixture(fixedRand{0})

	resp, err := f.svc.RunCycle(context.Background(), 0)

	assert.Nil(t, resp)
	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	f.items.AssertNotCalled(t, "SelectQueuedItems")
}
