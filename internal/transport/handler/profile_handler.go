package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/extmarket/review-exchange/internal/transport/dto/response"
	"github.com/extmarket/review-exchange/internal/usecase"
	"go.uber.org/zap"
)

type ProfileService interface {
	GetProfile(ctx context.Context, rawUserId string) (*response.ProfileResponse, error)
}

type ProfileHandler struct {
	svc ProfileService
	log *zap.Logger
}

func NewProfileHandler(svc ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc: svc,
		log: log,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userId := r.URL.Query().Get("user_id")
	if userId == "" {
		statusCode, errResp := HandleError(usecase.WrapError(usecase.ErrInvalidID, nil))
		WriteError(w, statusCode, errResp)
		return
	}

	resp, err := h.svc.GetProfile(r.Context(), userId)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
