// Package eval implements the static evaluator: material plus piece-square
// tables, maintained incrementally as pieces leave and enter squares.
package eval

import (
	"github.com/hailam/venomchess/internal/board"
)

// Score is a position value in centipawns from White's point of view.
type Score int32

// Search score bounds
const (
	Infinity  Score = 1_000_000
	MateScore Score = 900_000
	MaxPly          = 128

	// MateThreshold separates mate scores from ordinary evaluations.
	MateThreshold = MateScore - MaxPly
	Draw          Score = 0
)

// Mate returns the score of a mate delivered by winner at the given ply.
// Shorter mates score further from zero.
func Mate(winner board.Color, ply int) Score {
	s := MateScore - Score(ply)
	if winner == board.Black {
		return -s
	}
	return s
}

// IsMate returns true if s encodes a forced mate for either side.
func IsMate(s Score) bool {
	return s >= MateThreshold || s <= -MateThreshold
}

// Piece-Square Tables (PST) for positional evaluation.
// Laid out rank 8 first, from White's perspective; mirrored for Black.

var pawnPST = [64]Score{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]Score{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]Score{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]Score{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]Score{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// The king table favours a castled king.
var kingPST = [64]Score{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// Evaluator scores positions. Its tables are read-only after construction,
// so one Evaluator may be shared by concurrent searches.
type Evaluator struct {
	// table[piece][square] is the signed contribution of that piece there.
	table [12][64]Score
	bound Score
}

// NewEvaluator builds an evaluator from board.PieceValue and the built-in
// piece-square tables.
func NewEvaluator() *Evaluator {
	psts := [6]*[64]Score{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST, &kingPST}

	e := &Evaluator{}
	var widest Score
	for pt := board.Pawn; pt <= board.King; pt++ {
		weight := Score(board.PieceValue[pt])
		for sq := board.A8; sq < board.NoSquare; sq++ {
			v := weight + psts[pt][sq]
			e.table[board.NewPiece(pt, board.White)][sq] = v
			e.table[board.NewPiece(pt, board.Black)][sq.Mirror()] = -v
			widest = max(widest, v, -v)
		}
	}
	e.bound = 32 * widest
	return e
}

// PieceScore returns the signed contribution of piece p standing on sq.
func (e *Evaluator) PieceScore(p board.Piece, sq board.Square) Score {
	if p >= board.NoPiece {
		return 0
	}
	return e.table[p][sq]
}

// Evaluate scores pos from scratch.
func (e *Evaluator) Evaluate(pos board.Position) Score {
	var s Score
	for sq := board.A8; sq < board.NoSquare; sq++ {
		s += e.PieceScore(pos.PieceAt(sq), sq)
	}
	return s
}

// Bound is the largest magnitude Evaluate can return for any position with
// at most 32 pieces. It stays well below MateThreshold.
func (e *Evaluator) Bound() Score {
	return e.bound
}

// Tracker follows a position's score through the removals and placements
// reported by board.Position.Transition.
type Tracker struct {
	eval  *Evaluator
	Score Score
}

// Track starts a tracker at the score of an already evaluated position.
func (e *Evaluator) Track(s Score) Tracker {
	return Tracker{eval: e, Score: s}
}

// PieceRemoved implements board.Observer.
func (t *Tracker) PieceRemoved(p board.Piece, sq board.Square) {
	t.Score -= t.eval.PieceScore(p, sq)
}

// PieceAdded implements board.Observer.
func (t *Tracker) PieceAdded(p board.Piece, sq board.Square) {
	t.Score += t.eval.PieceScore(p, sq)
}

var _ board.Observer = (*Tracker)(nil)
