package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier records outbound notifications in the log. Real delivery
// (email/newsletter) is an external collaborator; swapping it in only needs
// another usecase.Notifier implementation.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ReviewerAssigned(ctx context.Context, ownerId, itemId, reviewerId uuid.UUID) error {
	n.log.Info("notify: reviewer assigned",
		zap.String("owner_id", ownerId.String()),
		zap.String("item_id", itemId.String()),
		zap.String("reviewer_id", reviewerId.String()),
	)
	return nil
}

func (n *LogNotifier) ReviewReceived(ctx context.Context, ownerId, itemId uuid.UUID) error {
	n.log.Info("notify: review received",
		zap.String("owner_id", ownerId.String()),
		zap.String("item_id", itemId.String()),
	)
	return nil
}

func (n *LogNotifier) CreditEarned(ctx context.Context, reviewerId uuid.UUID, amount int) error {
	n.log.Info("notify: credit earned",
		zap.String("reviewer_id", reviewerId.String()),
		zap.Int("amount", amount),
	)
	return nil
}
