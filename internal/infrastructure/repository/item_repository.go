package repository

import (
	"context"

	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	// Global FIFO over the backlog; id is the tie-break for equal
	// queue-entry timestamps so cycle order stays deterministic.
	selectQueuedItemsQuery = `
SELECT
    i.id,
    i.owner_id,
    i.name,
    COALESCE(u.tier, 'free'),
    i.queued_at
FROM items i
JOIN users u ON u.id = i.owner_id
WHERE i.status = 'queued'
ORDER BY i.queued_at, i.id;`
)

type ItemRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewItemRepository(db *pgxpool.Pool, log *zap.Logger) *ItemRepository {
	return &ItemRepository{
		db:  db,
		log: log,
	}
}

// SelectQueuedItems returns the whole review backlog in queue-entry order,
// each item tagged with the owner's tier at read time.
func (r *ItemRepository) SelectQueuedItems(ctx context.Context) ([]*result.QueuedItem, error) {
	rows, err := r.db.Query(ctx, selectQueuedItemsQuery)
	if err != nil {
		r.log.Error("failed to load queued items", zap.Error(err))
		return nil, handleDBError(err)
	}
	defer rows.Close()

	var items []*result.QueuedItem
	for rows.Next() {
		item := &result.QueuedItem{}
		err = rows.Scan(
			&item.Id,
			&item.OwnerId,
			&item.Name,
			&item.Tier,
			&item.QueuedAt,
		)
		if err != nil {
			return nil, handleDBError(err)
		}
		items = append(items, item)
	}

	r.log.Debug("queued items loaded", zap.Int("count", len(items)))
	return items, nil
}
