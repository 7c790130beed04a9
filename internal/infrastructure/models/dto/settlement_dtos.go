package dto

import (
	"time"

	"github.com/google/uuid"
)

type SettleDTO struct {
	AssignmentId uuid.UUID
	ReviewText   string
	Rating       int
	ProofUrl     string
	SubmittedAt  time.Time
}
