package syncer

import (
	"context"
	"errors"
	"time"
)

// Summary is one pass over the enabled items.
type Summary struct {
	Processed int       `json:"processed"`
	Updated   int       `json:"updated"`
	Unchanged int       `json:"unchanged"`
	Failed    int       `json:"failed"`
	Pruned    int       `json:"pruned"`
	StartedAt time.Time `json:"startedAt"`
	Took      string    `json:"took"`
}

// RunAll syncs every enabled item regardless of dueness, pacing between
// items the same way the scheduler does. Used by the operator's
// "update now" action.
func (s *Syncer) RunAll(ctx context.Context, itemDelay time.Duration) Summary {
	start := s.clock()
	sum := Summary{StartedAt: start}

	for i, it := range s.Items.List() {
		if !it.Enabled {
			continue
		}
		if i > 0 && itemDelay > 0 {
			select {
			case <-ctx.Done():
				sum.Took = s.clock().Sub(start).Truncate(time.Millisecond).String()
				return sum
			case <-time.After(itemDelay):
			}
		}

		sum.Processed++
		out, err := s.Sync(ctx, it)
		switch {
		case err == nil && out == OutcomeUpdated:
			sum.Updated++
		case err == nil:
			sum.Unchanged++
		case errors.Is(err, ErrListingGone):
			sum.Pruned++
		default:
			sum.Failed++
			s.log().Warn("syncer: item failed", "lot", it.ID, "err", err)
		}
	}

	if sum.Processed > 0 {
		s.Items.Save()
	}
	sum.Took = s.clock().Sub(start).Truncate(time.Millisecond).String()
	return sum
}
