package usecase

import (
	"sort"

	"github.com/extmarket/review-exchange/internal/domain"
	"github.com/extmarket/review-exchange/internal/infrastructure/models/result"
)

const DefaultTierRatio = 3

// Scheduler orders the queued backlog into one assignment cycle. For a cycle
// length of ratio+1, the first ratio positions prefer the premium queue and
// the last position prefers the free queue; a preferred queue that is
// exhausted falls back to the other one so a depleted tier never stalls the
// cycle. FIFO order is preserved within each tier.
type Scheduler struct {
	ratio int
}

func NewScheduler(ratio int) *Scheduler {
	if ratio < 1 {
		ratio = DefaultTierRatio
	}
	return &Scheduler{ratio: ratio}
}

// BuildCycle selects up to maxSlots items. Items not selected stay queued
// for the next cycle.
func (s *Scheduler) BuildCycle(queued []*result.QueuedItem, maxSlots int) []*result.QueuedItem {
	if maxSlots <= 0 || len(queued) == 0 {
		return nil
	}

	items := make([]*result.QueuedItem, len(queued))
	copy(items, queued)

	// Queue-entry order with item id as tie-break keeps the cycle
	// deterministic for equal timestamps.
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].QueuedAt.Equal(items[j].QueuedAt) {
			return items[i].QueuedAt.Before(items[j].QueuedAt)
		}
		return items[i].Id.String() < items[j].Id.String()
	})

	var premium, free []*result.QueuedItem
	for _, item := range items {
		if domain.Tier(item.Tier) == domain.TierPremium {
			premium = append(premium, item)
		} else {
			free = append(free, item)
		}
	}

	cycle := make([]*result.QueuedItem, 0, min(maxSlots, len(items)))
	pi, fi := 0, 0
	for pos := 0; len(cycle) < maxSlots; pos++ {
		preferPremium := pos%(s.ratio+1) < s.ratio

		switch {
		case preferPremium && pi < len(premium):
			cycle = append(cycle, premium[pi])
			pi++
		case preferPremium && fi < len(free):
			cycle = append(cycle, free[fi])
			fi++
		case !preferPremium && fi < len(free):
			cycle = append(cycle, free[fi])
			fi++
		case !preferPremium && pi < len(premium):
			cycle = append(cycle, premium[pi])
			pi++
		default:
			return cycle
		}
	}

	return cycle
}
