package usecase

import (
	"context"
	"errors"

	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/extmarket/review-exchange/internal/infrastructure/repository"
	"github.com/extmarket/review-exchange/internal/transport/dto/response"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var getProfileError = errors.New("get profile error")

type ProfileRepository interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*result.ProfileResult, error)
}

// ProfileService assembles the dashboard read model for one user.
type ProfileService struct {
	repo ProfileRepository
	log  *zap.Logger
}

func NewProfileService(repo ProfileRepository, log *zap.Logger) *ProfileService {
	return &ProfileService{
		repo: repo,
		log:  log,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, rawUserId string) (*response.ProfileResponse, error) {
	userId, err := uuid.Parse(rawUserId)
	if err != nil {
		return nil, WrapError(ErrInvalidID, err)
	}

	res, err := s.repo.GetProfile(ctx, userId)
	if err != nil {
		s.log.Error("failed to load profile",
			zap.String("user_id", rawUserId),
			zap.Error(err),
		)

		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapError(ErrUserNotFound, err)
		}
		return nil, WrapError(ErrStoreFailure, errors.Join(getProfileError, err))
	}

	return &response.ProfileResponse{
		User:          res.User,
		Items:         res.Items,
		Assignments:   res.Assignments,
		Credits:       res.Credits,
		Balance:       res.Balance,
		Relationships: res.Relationships,
	}, nil
}
