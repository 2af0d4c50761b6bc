package engine

import (
	"github.com/hailam/venomchess/internal/eval"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "exact"
	case TTLowerBound:
		return "lower"
	case TTUpperBound:
		return "upper"
	default:
		return "unknown"
	}
}

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key   uint64     // Full fingerprint for verification
	Value eval.Score // Score (bounded by flag)
	Depth int16      // Remaining search depth the value was computed with
	Flag  TTFlag     // Type of bound
	used  bool
}

// TableStats is a snapshot of the table counters.
type TableStats struct {
	Capacity   int    `json:"capacity"`
	Used       uint64 `json:"used"`
	Collisions uint64 `json:"collisions"`
	Probes     uint64 `json:"probes"`
	Hits       uint64 `json:"hits"`
}

// HitRate returns the cache hit rate as a percentage.
func (s TableStats) HitRate() float64 {
	if s.Probes == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Probes) * 100
}

// TranspositionTable is a fixed-capacity, direct-mapped cache of search
// results. Slot i holds the most recent entry whose fingerprint is i modulo
// the capacity. A table belongs to one searcher and is not safe for
// concurrent use.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64

	// used counts inserts into empty slots, collisions inserts that
	// overwrote an occupied slot.
	used       uint64
	collisions uint64
	hits       uint64
	probes     uint64
}

// NewTranspositionTable creates a table with room for capacity entries.
func NewTranspositionTable(capacity int) *TranspositionTable {
	capacity = max(capacity, 1)
	return &TranspositionTable{
		entries: make([]TTEntry, capacity),
		size:    uint64(capacity),
	}
}

// Get looks up a fingerprint. The entry is returned only if the stored key
// matches exactly.
func (tt *TranspositionTable) Get(hash uint64) (TTEntry, bool) {
	tt.probes++

	entry := tt.entries[hash%tt.size]
	if entry.used && entry.Key == hash {
		tt.hits++
		return entry, true
	}
	return TTEntry{}, false
}

// Insert stores an entry, replacing whatever occupied its slot. It reports
// whether an occupied slot was overwritten.
func (tt *TranspositionTable) Insert(hash uint64, depth int, value eval.Score, flag TTFlag) bool {
	entry := &tt.entries[hash%tt.size]
	collided := entry.used
	if collided {
		tt.collisions++
	} else {
		tt.used++
	}

	*entry = TTEntry{
		Key:   hash,
		Value: value,
		Depth: int16(depth),
		Flag:  flag,
		used:  true,
	}
	return collided
}

// Clear empties the table and resets its counters.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.used = 0
	tt.collisions = 0
	tt.hits = 0
	tt.probes = 0
}

// Stats returns the current counters.
func (tt *TranspositionTable) Stats() TableStats {
	return TableStats{
		Capacity:   int(tt.size),
		Used:       tt.used,
		Collisions: tt.collisions,
		Probes:     tt.probes,
		Hits:       tt.hits,
	}
}

// HashFull returns the permille (parts per thousand) of slots in use.
func (tt *TranspositionTable) HashFull() int {
	return int(min(tt.used, tt.size) * 1000 / tt.size)
}

// AdjustScoreFromTT converts a stored mate score, counted from the node
// that stored it, into one counted from the root at the given ply.
func AdjustScoreFromTT(score eval.Score, ply int) eval.Score {
	if score > eval.MateThreshold {
		return score - eval.Score(ply)
	}
	if score < -eval.MateThreshold {
		return score + eval.Score(ply)
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score eval.Score, ply int) eval.Score {
	if score > eval.MateThreshold {
		return score + eval.Score(ply)
	}
	if score < -eval.MateThreshold {
		return score - eval.Score(ply)
	}
	return score
}
