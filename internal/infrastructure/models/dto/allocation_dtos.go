package dto

import (
	"time"

	"github.com/google/uuid"
)

type AllocateDTO struct {
	ItemId     uuid.UUID
	OwnerId    uuid.UUID
	ReviewerId uuid.UUID
	DueAt      time.Time
}
