package e2e

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/extmarket/review-exchange/internal/infrastructure/repository"
	"github.com/extmarket/review-exchange/internal/notify"
	"github.com/extmarket/review-exchange/internal/transport"
	"github.com/extmarket/review-exchange/internal/transport/handler"
	"github.com/extmarket/review-exchange/internal/usecase"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// The suite needs docker; it only runs when E2E_TESTS=1.

var (
	setupOnce  sync.Once
	setupErr   error
	testServer *httptest.Server
	testPool   *pgxpool.Pool
)

func setupSuite(t *testing.T) {
	t.Helper()
	if os.Getenv("E2E_TESTS") != "1" {
		t.Skip("set E2E_TESTS=1 to run the e2e suite")
	}

	setupOnce.Do(func() {
		setupErr = startStack()
	})
	require.NoError(t, setupErr)
}

func startStack() error {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("engine"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("start postgres container: %w", err)
	}

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("connection string: %w", err)
	}

	if err := runMigrations(dbURL); err != nil {
		return err
	}

	testPool, err = pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("pgxpool init: %w", err)
	}

	log := zap.NewNop()
	notifier := notify.NewLogNotifier(log)
	matcher := usecase.NewMatcher(repository.NewEligibilityRepository(testPool, log), log)
	allocator := usecase.NewAllocatorService(
		repository.NewItemRepository(testPool, log),
		repository.NewAllocationRepository(testPool, log),
		matcher,
		usecase.NewScheduler(3),
		notifier,
		usecase.NewRand(1),
		log,
	)
	settlement := usecase.NewSettlementService(repository.NewSettlementRepository(testPool, log), notifier, log)
	profile := usecase.NewProfileService(repository.NewProfileRepository(testPool, log), log)

	router := transport.NewRouter(
		handler.NewAllocationHandler(allocator, 10, log),
		handler.NewReviewHandler(settlement, log),
		handler.NewProfileHandler(profile, log),
		handler.NewHealthHandler(log),
		log,
	)
	testServer = httptest.NewServer(router)
	return nil
}

func runMigrations(dbURL string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	var migrationsPath string
	if filepath.Base(wd) == "e2e" {
		migrationsPath = filepath.Join(wd, "..", "..", "migrations")
	} else {
		migrationsPath = filepath.Join(wd, "migrations")
	}

	mg, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		dbURL,
	)
	if err != nil {
		return fmt.Errorf("migration init err: %w", err)
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration run err: %w", err)
	}

	return nil
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE credit_transactions, review_relationships, assignments, assignment_batches, items, users`)
	require.NoError(t, err)
}

func seedUser(t *testing.T, name string, qualified bool, tier string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	var tierArg any
	if tier != "" {
		tierArg = tier
	}
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO users(id, name, has_completed_qualification, tier) VALUES ($1, $2, $3, $4)`,
		id, name, qualified, tierArg,
	)
	require.NoError(t, err)
	return id
}

func seedItem(t *testing.T, ownerId uuid.UUID, name, status string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO items(id, owner_id, name, status, queued_at) VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)`,
		id, ownerId, name, status,
	)
	require.NoError(t, err)
	return id
}

func seedQueuedItem(t *testing.T, ownerId uuid.UUID, name string) uuid.UUID {
	return seedItem(t, ownerId, name, "queued")
}

func seedBatch(t *testing.T, reviewerId uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO assignment_batches(id, reviewer_id, status) VALUES ($1, $2, 'active')`,
		id, reviewerId,
	)
	require.NoError(t, err)
	return id
}

func seedAssignment(t *testing.T, batchId, itemId, reviewerId uuid.UUID, number int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testPool.Exec(context.Background(),
		`INSERT INTO assignments(id, batch_id, item_id, reviewer_id, assignment_number, due_at, status)
		 VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP + INTERVAL '7 days', 'assigned')`,
		id, batchId, itemId, reviewerId, number,
	)
	require.NoError(t, err)
	return id
}
