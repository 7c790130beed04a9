package usecase

import (
	"math/rand"
	"time"
)

// Rand is the seam for reviewer selection. Production uses a time-seeded
// source; tests inject a fixed seed so the picked reviewer is deterministic.
type Rand interface {
	Intn(n int) int
}

func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

func NewTimeSeededRand() Rand {
	return NewRand(time.Now().UnixNano())
}
