package engine

import (
	"cmp"
	"slices"

	"github.com/hailam/venomchess/internal/board"
)

// MoveOrderer sorts the moves of a node so the ones that leave the mover
// with the most material are searched first.
type MoveOrderer struct {
	inc *Incremental
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer(inc *Incremental) *MoveOrderer {
	return &MoveOrderer{inc: inc}
}

// Order expands moves from n and returns the children best first for the
// side to move: descending material for White, ascending for Black. The
// sort is stable, and ties on material fall back to the evaluation.
func (mo *MoveOrderer) Order(n Node, moves []board.Move) []Child {
	children := mo.inc.Children(n, moves)
	sign := n.Pos.SideToMove.Sign()

	slices.SortStableFunc(children, func(a, b Child) int {
		if c := cmp.Compare(b.Node.Pos.Material*sign, a.Node.Pos.Material*sign); c != 0 {
			return c
		}
		return cmp.Compare(int32(b.Node.Score)*sign, int32(a.Node.Score)*sign)
	})
	return children
}
