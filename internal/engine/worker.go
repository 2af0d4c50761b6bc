package engine

import (
	"context"
	"errors"
	"time"

	"github.com/hailam/venomchess/internal/eval"
)

// errSearchStopped is returned by a worker whose search hit the deadline or
// was cancelled before finishing its shard.
var errSearchStopped = errors.New("search stopped")

// Worker searches a share of the root moves. Each worker owns its searcher
// and transposition table, so workers never share mutable state.
type Worker struct {
	id       int
	searcher *Searcher
}

// NewWorker creates a search worker with a table of the given capacity.
// A capacity of zero disables the table.
func NewWorker(id int, inc *Incremental, tableCapacity int, quiescence bool, qDepth int) *Worker {
	var tt *TranspositionTable
	if tableCapacity > 0 {
		tt = NewTranspositionTable(tableCapacity)
	}
	return &Worker{
		id:       id,
		searcher: NewSearcher(inc, tt, quiescence, qDepth),
	}
}

// searchShard fills scores[i] for every root child i with i%stride == w.id.
// Children are searched one ply shallower than depth since the root move
// itself accounts for one ply.
func (w *Worker) searchShard(ctx context.Context, children []Child, stride, depth int, deadline time.Time, scores []eval.Score) error {
	w.searcher.Begin(ctx, deadline)
	for i := w.id; i < len(children); i += stride {
		scores[i] = w.searcher.Value(children[i].Node, depth-1)
		if w.searcher.Stopped() {
			return errSearchStopped
		}
	}
	return nil
}
