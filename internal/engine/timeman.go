package engine

import (
	"time"

	"github.com/hailam/venomchess/internal/board"
)

// DefaultTimeFraction is the share of the remaining clock spent on one move.
const DefaultTimeFraction = 20

// TimeManager handles time allocation for searches.
type TimeManager struct {
	fraction int
	minimum  time.Duration
}

// NewTimeManager creates a time manager that spends 1/fraction of the
// remaining clock per move, but never less than minimum.
func NewTimeManager(fraction int, minimum time.Duration) *TimeManager {
	if fraction <= 0 {
		fraction = DefaultTimeFraction
	}
	if minimum <= 0 {
		minimum = 10 * time.Millisecond
	}
	return &TimeManager{fraction: fraction, minimum: minimum}
}

// Budget returns the thinking time for the side to move in pos.
func (tm *TimeManager) Budget(pos board.Position) time.Duration {
	budget := pos.Remaining() / time.Duration(tm.fraction)
	return max(budget, tm.minimum)
}
