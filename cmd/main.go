package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/extmarket/review-exchange/internal/config"
	"github.com/extmarket/review-exchange/internal/infrastructure/db"
	"github.com/extmarket/review-exchange/internal/infrastructure/repository"
	"github.com/extmarket/review-exchange/internal/notify"
	"github.com/extmarket/review-exchange/internal/transport"
	"github.com/extmarket/review-exchange/internal/transport/handler"
	"github.com/extmarket/review-exchange/internal/usecase"
	"github.com/extmarket/review-exchange/internal/worker"
	"github.com/extmarket/review-exchange/pkg/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	eligibilityRepo := repository.NewEligibilityRepository(pool, log)
	itemRepo := repository.NewItemRepository(pool, log)
	allocationRepo := repository.NewAllocationRepository(pool, log)
	settlementRepo := repository.NewSettlementRepository(pool, log)
	profileRepo := repository.NewProfileRepository(pool, log)

	// Services
	notifier := notify.NewLogNotifier(log)
	matcher := usecase.NewMatcher(eligibilityRepo, log)
	scheduler := usecase.NewScheduler(cfg.Scheduler.TierRatio)
	allocator := usecase.NewAllocatorService(
		itemRepo,
		allocationRepo,
		matcher,
		scheduler,
		notifier,
		usecase.NewTimeSeededRand(),
		log,
	)
	settlement := usecase.NewSettlementService(settlementRepo, notifier, log)
	profile := usecase.NewProfileService(profileRepo, log)

	// HTTP layer
	router := transport.NewRouter(
		handler.NewAllocationHandler(allocator, cfg.Scheduler.CycleMaxAssignments, log),
		handler.NewReviewHandler(settlement, log),
		handler.NewProfileHandler(profile, log),
		handler.NewHealthHandler(log),
		log,
	)
	server := transport.NewServer(cfg.App.Port, router, log)

	if cfg.Scheduler.CycleInterval > 0 {
		cycleWorker := worker.NewCycleWorker(
			allocator,
			cfg.Scheduler.CycleInterval,
			cfg.Scheduler.CycleMaxAssignments,
			log,
		)
		go cycleWorker.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
