package result

import "github.com/google/uuid"

type SettlementResult struct {
	AssignmentId   uuid.UUID
	BatchId        uuid.UUID
	ItemId         uuid.UUID
	ItemName       string
	OwnerId        uuid.UUID
	ReviewerId     uuid.UUID
	CreditsEarned  int
	BatchCompleted bool
}
