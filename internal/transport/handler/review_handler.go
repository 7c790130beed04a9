package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/extmarket/review-exchange/internal/transport/dto/request"
	"github.com/extmarket/review-exchange/internal/transport/dto/response"
	"github.com/extmarket/review-exchange/internal/usecase"
	"go.uber.org/zap"
)

type ReviewService interface {
	Submit(ctx context.Context, req *request.SubmitReviewRequest) (*response.SubmitReviewResponse, error)
}

type ReviewHandler struct {
	svc ReviewService
	log *zap.Logger
}

func NewReviewHandler(svc ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		svc: svc,
		log: log,
	}
}

func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		statusCode, errResp := HandleError(usecase.WrapError(usecase.ErrInvalidInput, err))
		WriteError(w, statusCode, errResp)
		return
	}

	if req.AssignmentId == "" {
		statusCode, errResp := HandleError(usecase.WrapError(usecase.ErrInvalidID, nil))
		WriteError(w, statusCode, errResp)
		return
	}

	resp, err := h.svc.Submit(r.Context(), &req)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
