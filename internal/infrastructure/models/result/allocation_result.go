package result

import (
	"time"

	"github.com/google/uuid"
)

// QueuedItem is an item in the review backlog, tagged with the owner's tier
// at read time.
type QueuedItem struct {
	Id       uuid.UUID
	OwnerId  uuid.UUID
	Name     string
	Tier     string
	QueuedAt time.Time
}

type AllocationResult struct {
	AssignmentId     uuid.UUID
	BatchId          uuid.UUID
	AssignmentNumber int64
	ItemId           uuid.UUID
	OwnerId          uuid.UUID
	ReviewerId       uuid.UUID
	DueAt            time.Time
}
