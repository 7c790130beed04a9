package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/extmarket/review-exchange/internal/transport/dto/request"
	"github.com/extmarket/review-exchange/internal/transport/dto/response"
	"go.uber.org/zap"
)

type AllocationService interface {
	RunCycle(ctx context.Context, maxAssignments int) (*response.RunCycleResponse, error)
}

type AllocationHandler struct {
	svc        AllocationService
	defaultMax int
	log        *zap.Logger
}

func NewAllocationHandler(svc AllocationService, defaultMax int, log *zap.Logger) *AllocationHandler {
	return &AllocationHandler{
		svc:        svc,
		defaultMax: defaultMax,
		log:        log,
	}
}

// RunCycle triggers one allocation cycle. An empty body runs with the
// default max_assignments; "no items queued" is a success, not an error.
func (h *AllocationHandler) RunCycle(w http.ResponseWriter, r *http.Request) {
	var req request.RunCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	maxAssignments := h.defaultMax
	if req.MaxAssignments != nil {
		maxAssignments = *req.MaxAssignments
	}

	resp, err := h.svc.RunCycle(r.Context(), maxAssignments)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}
