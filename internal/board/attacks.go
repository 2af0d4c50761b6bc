package board

type direction struct{ dx, dy int }

var (
	knightSteps = []direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = []direction{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs    = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs  = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Pre-computed target squares for non-sliding pieces
var (
	knightTargets [64][]Square
	kingTargets   [64][]Square

	// rays[sq][d] lists the squares walked from sq in kingSteps[d] order,
	// nearest first. Directions 0, 2, 4, 6 are orthogonal.
	rays [64][8][]Square
)

func init() {
	for sq := A8; sq < NoSquare; sq++ {
		for _, d := range knightSteps {
			if to, ok := sq.offset(d.dx, d.dy); ok {
				knightTargets[sq] = append(knightTargets[sq], to)
			}
		}
		for i, d := range kingSteps {
			if to, ok := sq.offset(d.dx, d.dy); ok {
				kingTargets[sq] = append(kingTargets[sq], to)
			}
			for n := 1; ; n++ {
				to, ok := sq.offset(d.dx*n, d.dy*n)
				if !ok {
					break
				}
				rays[sq][i] = append(rays[sq][i], to)
			}
		}
	}
}

// pawnForward is the row step of a pawn of color c. White pawns walk
// towards row 0.
func pawnForward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// IsAttacked returns true if any piece of color by attacks sq.
func (p Position) IsAttacked(sq Square, by Color) bool {
	if sq >= NoSquare {
		return false
	}

	// A pawn of color by attacks sq from one row behind it.
	dy := -pawnForward(by)
	for _, dx := range [2]int{-1, 1} {
		if from, ok := sq.offset(dx, dy); ok && p.squares[from] == NewPiece(Pawn, by) {
			return true
		}
	}

	knight := NewPiece(Knight, by)
	for _, from := range knightTargets[sq] {
		if p.squares[from] == knight {
			return true
		}
	}

	king := NewPiece(King, by)
	for _, from := range kingTargets[sq] {
		if p.squares[from] == king {
			return true
		}
	}

	queen := NewPiece(Queen, by)
	for d := range rays[sq] {
		slider := NewPiece(Bishop, by)
		if d%2 == 0 {
			slider = NewPiece(Rook, by)
		}
		for _, from := range rays[sq][d] {
			piece := p.squares[from]
			if piece == NoPiece {
				continue
			}
			if piece == slider || piece == queen {
				return true
			}
			break
		}
	}

	return false
}

// InCheck returns true if the side to move is in check.
func (p Position) InCheck() bool {
	return p.IsAttacked(p.kings[p.SideToMove], p.SideToMove.Other())
}
