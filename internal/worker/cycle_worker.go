package worker

import (
	"context"
	"time"

	"github.com/extmarket/review-exchange/internal/transport/dto/response"
	"go.uber.org/zap"
)

type AllocationService interface {
	RunCycle(ctx context.Context, maxAssignments int) (*response.RunCycleResponse, error)
}

// CycleWorker triggers the allocation cycle periodically. A tick overlapping
// a manual /allocation/run is expected; safety comes from the store
// constraints, not from this loop.
type CycleWorker struct {
	svc            AllocationService
	interval       time.Duration
	maxAssignments int
	log            *zap.Logger
}

func NewCycleWorker(svc AllocationService, interval time.Duration, maxAssignments int, log *zap.Logger) *CycleWorker {
	return &CycleWorker{
		svc:            svc,
		interval:       interval,
		maxAssignments: maxAssignments,
		log:            log,
	}
}

func (w *CycleWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("cycle worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("cycle worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *CycleWorker) runOnce(ctx context.Context) {
	resp, err := w.svc.RunCycle(ctx, w.maxAssignments)
	if err != nil {
		w.log.Error("scheduled allocation cycle failed", zap.Error(err))
		return
	}

	if resp.AssignmentsCreated > 0 || resp.ItemsSkipped > 0 {
		w.log.Info("scheduled allocation cycle done",
			zap.Int("created", resp.AssignmentsCreated),
			zap.Int("skipped", resp.ItemsSkipped),
		)
	}
}
