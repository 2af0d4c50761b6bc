package engine

import (
	"context"
	"time"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/eval"
)

// DefaultQuiescenceDepth bounds how many captures quiescence follows.
const DefaultQuiescenceDepth = 8

// ctxCheckInterval is how many nodes pass between context checks.
const ctxCheckInterval = 1024

// Searcher performs a depth-limited alpha-beta search over nodes. White
// maximizes and Black minimizes. A Searcher is not safe for concurrent use;
// parallel searches each get their own.
type Searcher struct {
	inc     *Incremental
	orderer *MoveOrderer
	tt      *TranspositionTable // nil disables the table

	quiescence bool
	qDepth     int

	ctx      context.Context
	deadline time.Time
	stopped  bool

	nodes  uint64
	qnodes uint64
}

// NewSearcher creates a searcher. tt may be nil. With quiescence enabled,
// leaves are extended by capture sequences up to qDepth plies.
func NewSearcher(inc *Incremental, tt *TranspositionTable, quiescence bool, qDepth int) *Searcher {
	if qDepth <= 0 {
		qDepth = DefaultQuiescenceDepth
	}
	return &Searcher{
		inc:        inc,
		orderer:    NewMoveOrderer(inc),
		tt:         tt,
		quiescence: quiescence,
		qDepth:     qDepth,
		ctx:        context.Background(),
	}
}

// Begin prepares a search that gives up at deadline (zero for none) or when
// ctx is done.
func (s *Searcher) Begin(ctx context.Context, deadline time.Time) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	s.deadline = deadline
	s.stopped = false
}

// ResetCounters zeroes the node counters.
func (s *Searcher) ResetCounters() {
	s.nodes = 0
	s.qnodes = 0
}

// Stopped returns true if the last search ran out of time or was cancelled.
// Values returned by a stopped search are meaningless.
func (s *Searcher) Stopped() bool {
	return s.stopped
}

// Nodes returns the number of main search nodes visited.
func (s *Searcher) Nodes() uint64 { return s.nodes }

// QNodes returns the number of quiescence nodes visited.
func (s *Searcher) QNodes() uint64 { return s.qnodes }

// Value returns the exact value of n searched to depth with a full window.
// n is treated as one ply below the root.
func (s *Searcher) Value(n Node, depth int) eval.Score {
	return s.alphaBeta(n, depth, 1, -eval.Infinity, eval.Infinity)
}

// SearchValue searches n to depth within the window [alpha, beta]. A value
// inside the window is exact; one at or beyond a bound is a bound itself.
func (s *Searcher) SearchValue(n Node, depth int, alpha, beta eval.Score) eval.Score {
	return s.alphaBeta(n, depth, 1, alpha, beta)
}

func (s *Searcher) expired() bool {
	if s.stopped {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.stopped = true
	} else if (s.nodes+s.qnodes)%ctxCheckInterval == 0 && s.ctx.Err() != nil {
		s.stopped = true
	}
	return s.stopped
}

// terminalScore scores a position without legal moves: mate for the side
// that just moved, or a draw.
func terminalScore(pos board.Position, ply int) eval.Score {
	if pos.InCheck() {
		return eval.Mate(pos.SideToMove.Other(), ply)
	}
	return eval.Draw
}

func (s *Searcher) alphaBeta(n Node, depth, ply int, alpha, beta eval.Score) eval.Score {
	s.nodes++
	if s.expired() {
		return 0
	}

	if s.tt != nil {
		if e, ok := s.tt.Get(n.Hash); ok && int(e.Depth) >= depth {
			v := AdjustScoreFromTT(e.Value, ply)
			switch e.Flag {
			case TTExact:
				return v
			case TTLowerBound:
				alpha = max(alpha, v)
			case TTUpperBound:
				beta = min(beta, v)
			}
			if alpha >= beta {
				return v
			}
		}
	}

	if depth <= 0 {
		if s.quiescence {
			return s.quiesce(n, ply, s.qDepth, alpha, beta)
		}
		return n.Score
	}

	moves := n.Pos.AllMoves()
	if len(moves) == 0 {
		return terminalScore(n.Pos, ply)
	}

	// Bounds are classified against the window actually searched.
	lo, hi := alpha, beta
	white := n.Pos.SideToMove == board.White

	var value eval.Score
	if white {
		value = -eval.Infinity
		for _, c := range s.orderer.Order(n, moves) {
			value = max(value, s.alphaBeta(c.Node, depth-1, ply+1, alpha, beta))
			alpha = max(alpha, value)
			if alpha >= beta || s.stopped {
				break
			}
		}
	} else {
		value = eval.Infinity
		for _, c := range s.orderer.Order(n, moves) {
			value = min(value, s.alphaBeta(c.Node, depth-1, ply+1, alpha, beta))
			beta = min(beta, value)
			if alpha >= beta || s.stopped {
				break
			}
		}
	}

	if s.stopped {
		return 0
	}

	if s.tt != nil {
		flag := TTExact
		if value <= lo {
			flag = TTUpperBound
		} else if value >= hi {
			flag = TTLowerBound
		}
		s.tt.Insert(n.Hash, depth, AdjustScoreToTT(value, ply), flag)
	}
	return value
}

// quiesce resolves pending captures below the depth horizon. The side to
// move may stand pat on the static evaluation instead of capturing.
func (s *Searcher) quiesce(n Node, ply, qdepth int, alpha, beta eval.Score) eval.Score {
	s.qnodes++
	if s.expired() {
		return 0
	}

	stand := n.Score
	white := n.Pos.SideToMove == board.White
	if white {
		if stand >= beta {
			return stand
		}
		alpha = max(alpha, stand)
	} else {
		if stand <= alpha {
			return stand
		}
		beta = min(beta, stand)
	}

	moves := n.Pos.AllMoves()
	if len(moves) == 0 {
		return terminalScore(n.Pos, ply)
	}
	captures := board.FilterCaptures(moves)
	if qdepth <= 0 || len(captures) == 0 {
		return stand
	}

	best := stand
	for _, c := range s.orderer.Order(n, captures) {
		v := s.quiesce(c.Node, ply+1, qdepth-1, alpha, beta)
		if white {
			best = max(best, v)
			alpha = max(alpha, best)
		} else {
			best = min(best, v)
			beta = min(beta, best)
		}
		if alpha >= beta || s.stopped {
			break
		}
	}

	if s.stopped {
		return 0
	}
	return best
}

// Minimax is the unpruned reference search. It applies the same leaf and
// terminal rules as Searcher without quiescence or a table.
func Minimax(inc *Incremental, n Node, depth int) eval.Score {
	return minimax(inc, n, depth, 1)
}

func minimax(inc *Incremental, n Node, depth, ply int) eval.Score {
	if depth <= 0 {
		return n.Score
	}
	moves := n.Pos.AllMoves()
	if len(moves) == 0 {
		return terminalScore(n.Pos, ply)
	}

	white := n.Pos.SideToMove == board.White
	best := eval.Infinity
	if white {
		best = -eval.Infinity
	}
	for _, m := range moves {
		v := minimax(inc, inc.Next(n, m), depth-1, ply+1)
		if white {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}
