package domain

import (
	"time"

	"github.com/google/uuid"
)

type Tier string

const (
	TierPremium Tier = "premium"
	TierFree    Tier = "free"
)

type ItemStatus string

const (
	ItemStatusDraft    ItemStatus = "draft"
	ItemStatusQueued   ItemStatus = "queued"
	ItemStatusAssigned ItemStatus = "assigned"
	ItemStatusReviewed ItemStatus = "reviewed"
	ItemStatusVerified ItemStatus = "verified"
	ItemStatusRejected ItemStatus = "rejected"
)

type AssignmentStatus string

const (
	AssignmentStatusAssigned AssignmentStatus = "assigned"
	AssignmentStatusApproved AssignmentStatus = "approved"
)

type BatchStatus string

const (
	BatchStatusActive    BatchStatus = "active"
	BatchStatusCompleted BatchStatus = "completed"
)

type CreditType string

const (
	CreditTypeEarned CreditType = "earned"
	CreditTypeSpent  CreditType = "spent"
)

type User struct {
	Id                        uuid.UUID `json:"user_id"`
	Name                      string    `json:"username"`
	HasCompletedQualification bool      `json:"has_completed_qualification"`
	Tier                      Tier      `json:"tier"`
	CreatedAt                 time.Time `json:"-"`
}

type Item struct {
	Id        uuid.UUID  `json:"item_id"`
	OwnerId   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	Status    ItemStatus `json:"status"`
	QueuedAt  *time.Time `json:"queued_at,omitempty"`
	CreatedAt time.Time  `json:"-"`
}

// AssignmentBatch groups assignments issued to one reviewer in a single
// allocation event; it is the unit of credit settlement.
type AssignmentBatch struct {
	Id            uuid.UUID   `json:"batch_id"`
	ReviewerId    uuid.UUID   `json:"reviewer_id"`
	Status        BatchStatus `json:"status"`
	CreditsEarned *int        `json:"credits_earned,omitempty"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
	CreatedAt     time.Time   `json:"-"`
}

type Assignment struct {
	Id               uuid.UUID        `json:"assignment_id"`
	BatchId          uuid.UUID        `json:"batch_id"`
	ItemId           uuid.UUID        `json:"item_id"`
	ReviewerId       uuid.UUID        `json:"reviewer_id"`
	AssignmentNumber int64            `json:"assignment_number"`
	DueAt            time.Time        `json:"due_at"`
	Status           AssignmentStatus `json:"status"`
	ReviewText       *string          `json:"review_text,omitempty"`
	Rating           *int             `json:"rating,omitempty"`
	ProofUrl         *string          `json:"proof_url,omitempty"`
	SubmittedAt      *time.Time       `json:"submitted_at,omitempty"`
	CreatedAt        time.Time        `json:"-"`
}

// ReviewRelationship records that reviewer has reviewed an item of
// reviewed_owner. The matcher treats it as a lifetime exclusion scoped to
// the owner, not to the item.
type ReviewRelationship struct {
	ReviewerId      uuid.UUID `json:"reviewer_id"`
	ReviewedOwnerId uuid.UUID `json:"reviewed_owner_id"`
	ItemId          uuid.UUID `json:"item_id"`
	CreatedAt       time.Time `json:"-"`
}

// CreditTransaction is an append-only ledger entry; a user's balance is the
// sum of their amounts.
type CreditTransaction struct {
	Id          uuid.UUID  `json:"transaction_id"`
	UserId      uuid.UUID  `json:"user_id"`
	Amount      int        `json:"amount"`
	Type        CreditType `json:"type"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}
