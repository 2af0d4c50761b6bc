package engine

import (
	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/eval"
	"github.com/hailam/venomchess/internal/zobrist"
)

// Node is a search tree vertex: a position with its evaluation and
// fingerprint kept up to date incrementally.
type Node struct {
	Pos   board.Position
	Score eval.Score
	Hash  uint64
}

// Child is a move together with the node it leads to.
type Child struct {
	Move board.Move
	Node Node
}

// Incremental derives nodes from their parents using one evaluator and one
// key set. It holds no mutable state and may be shared between goroutines.
type Incremental struct {
	eval *eval.Evaluator
	keys *zobrist.Keys
}

// NewIncremental bundles an evaluator and a key set.
func NewIncremental(ev *eval.Evaluator, keys *zobrist.Keys) *Incremental {
	return &Incremental{eval: ev, keys: keys}
}

// Evaluator returns the evaluator used for node scores.
func (in *Incremental) Evaluator() *eval.Evaluator { return in.eval }

// Root scores and hashes pos from scratch.
func (in *Incremental) Root(pos board.Position) Node {
	return Node{
		Pos:   pos,
		Score: in.eval.Evaluate(pos),
		Hash:  in.keys.Hash(pos),
	}
}

// observers feeds one transition to the evaluator and the hasher.
type observers struct {
	score eval.Tracker
	hash  zobrist.Tracker
}

func (o *observers) PieceRemoved(p board.Piece, sq board.Square) {
	o.score.PieceRemoved(p, sq)
	o.hash.PieceRemoved(p, sq)
}

func (o *observers) PieceAdded(p board.Piece, sq board.Square) {
	o.score.PieceAdded(p, sq)
	o.hash.PieceAdded(p, sq)
}

// Next applies m to n without touching the clock.
func (in *Incremental) Next(n Node, m board.Move) Node {
	obs := observers{
		score: in.eval.Track(n.Score),
		hash:  in.keys.Track(n.Hash),
	}
	pos := n.Pos.Transition(m, &obs)
	return Node{
		Pos:   pos,
		Score: obs.score.Score,
		Hash:  obs.hash.Settle(n.Pos, pos),
	}
}

// Children expands every legal move of n.
func (in *Incremental) Children(n Node, moves []board.Move) []Child {
	children := make([]Child, len(moves))
	for i, m := range moves {
		children[i] = Child{Move: m, Node: in.Next(n, m)}
	}
	return children
}
