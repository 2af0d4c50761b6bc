package board

// AllMoves generates all legal moves for the side to move.
func (p Position) AllMoves() []Move {
	moves := make([]Move, 0, 48)
	for sq := A8; sq < NoSquare; sq++ {
		if p.squares[sq].Color() == p.SideToMove {
			moves = p.appendMoves(moves, sq)
		}
	}
	return moves
}

// MovesFrom generates the legal moves of the piece on sq. It returns nil
// unless sq holds a piece of the side to move.
func (p Position) MovesFrom(sq Square) []Move {
	if !sq.IsValid() || p.squares[sq].Color() != p.SideToMove {
		return nil
	}
	return p.appendMoves(nil, sq)
}

// Captures returns the legal moves that remove an enemy piece.
func (p Position) Captures() []Move {
	return FilterCaptures(p.AllMoves())
}

// FilterCaptures keeps the capturing moves of a legal move list, in order.
func FilterCaptures(moves []Move) []Move {
	captures := moves[:0:0]
	for _, m := range moves {
		if m.IsCapture() {
			captures = append(captures, m)
		}
	}
	return captures
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p Position) HasLegalMoves() bool {
	for sq := A8; sq < NoSquare; sq++ {
		if p.squares[sq].Color() == p.SideToMove && len(p.appendMoves(nil, sq)) > 0 {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// Terminal reports whether the game is over. When it is, winner is the side
// that delivered mate, or NoColor for stalemate.
func (p Position) Terminal() (winner Color, over bool) {
	if p.HasLegalMoves() {
		return NoColor, false
	}
	if p.InCheck() {
		return p.SideToMove.Other(), true
	}
	return NoColor, true
}

// appendMoves appends the legal moves of the piece on from.
func (p Position) appendMoves(moves []Move, from Square) []Move {
	piece := p.squares[from]
	us := piece.Color()
	start := len(moves)

	switch piece.Type() {
	case Pawn:
		moves = p.appendPawnMoves(moves, from, us)
	case Knight:
		moves = p.appendSteps(moves, from, us, knightTargets[from])
	case Bishop:
		moves = p.appendSlides(moves, from, us, 1)
	case Rook:
		moves = p.appendSlides(moves, from, us, 0)
	case Queen:
		moves = p.appendSlides(moves, from, us, -1)
	case King:
		moves = p.appendSteps(moves, from, us, kingTargets[from])
		moves = p.appendCastles(moves, from, us)
	}

	// Drop moves that leave the mover's own king attacked.
	legal := moves[:start]
	for _, m := range moves[start:] {
		next := p.Transition(m, nil)
		if !next.IsAttacked(next.kings[us], us.Other()) {
			legal = append(legal, m)
		}
	}
	return legal
}

func (p Position) target(moves []Move, from, to Square, us Color) ([]Move, bool) {
	occupant := p.squares[to]
	switch occupant.Color() {
	case NoColor:
		return append(moves, Move{From: from, To: to, Extra: Quiet}), true
	case us:
		return moves, false
	default:
		return append(moves, Move{From: from, To: to, Extra: Capture}), false
	}
}

func (p Position) appendSteps(moves []Move, from Square, us Color, targets []Square) []Move {
	for _, to := range targets {
		moves, _ = p.target(moves, from, to, us)
	}
	return moves
}

// appendSlides walks the rays of a slider. parity selects orthogonal (0),
// diagonal (1) or both (-1).
func (p Position) appendSlides(moves []Move, from Square, us Color, parity int) []Move {
	for d := range rays[from] {
		if parity >= 0 && d%2 != parity {
			continue
		}
		for _, to := range rays[from][d] {
			var open bool
			if moves, open = p.target(moves, from, to, us); !open {
				break
			}
		}
	}
	return moves
}

func (p Position) appendPawnMoves(moves []Move, from Square, us Color) []Move {
	dy := pawnForward(us)
	startRow, lastRow := 6, 0
	if us == Black {
		startRow, lastRow = 1, 7
	}

	add := func(to Square, capture bool) {
		if to.Y() != lastRow {
			extra := Quiet
			if capture {
				extra = Capture
			}
			moves = append(moves, Move{From: from, To: to, Extra: extra})
			return
		}
		for _, pt := range [4]PieceType{Queen, Rook, Bishop, Knight} {
			moves = append(moves, Move{From: from, To: to, Extra: promotionExtra(pt, capture)})
		}
	}

	if one, ok := from.offset(0, dy); ok && p.IsEmpty(one) {
		add(one, false)
		if from.Y() == startRow {
			if two, ok := from.offset(0, 2*dy); ok && p.IsEmpty(two) {
				moves = append(moves, Move{From: from, To: two, Extra: DoublePawnPush})
			}
		}
	}

	epRow := 3
	if us == Black {
		epRow = 4
	}
	for _, dx := range [2]int{-1, 1} {
		to, ok := from.offset(dx, dy)
		if !ok {
			continue
		}
		if p.squares[to].Color() == us.Other() {
			add(to, true)
		} else if from.Y() == epRow && p.EnPassant == int8(to.X()) && p.IsEmpty(to) {
			moves = append(moves, Move{From: from, To: to, Extra: EnPassantCapture})
		}
	}
	return moves
}

// appendCastles adds castling moves when the right is held, the squares
// between king and rook are empty and the king neither starts on, crosses
// nor lands on an attacked square.
func (p Position) appendCastles(moves []Move, from Square, us Color) []Move {
	row := 7
	if us == Black {
		row = 0
	}
	if from != NewSquare(4, row) {
		return moves
	}
	them := us.Other()
	rook := NewPiece(Rook, us)

	if p.Castling.CanCastle(us, true) && p.squares[NewSquare(7, row)] == rook &&
		p.IsEmpty(NewSquare(5, row)) && p.IsEmpty(NewSquare(6, row)) &&
		!p.IsAttacked(from, them) && !p.IsAttacked(NewSquare(5, row), them) && !p.IsAttacked(NewSquare(6, row), them) {
		moves = append(moves, Move{From: from, To: NewSquare(6, row), Extra: KingCastle})
	}

	if p.Castling.CanCastle(us, false) && p.squares[NewSquare(0, row)] == rook &&
		p.IsEmpty(NewSquare(1, row)) && p.IsEmpty(NewSquare(2, row)) && p.IsEmpty(NewSquare(3, row)) &&
		!p.IsAttacked(from, them) && !p.IsAttacked(NewSquare(3, row), them) && !p.IsAttacked(NewSquare(2, row), them) {
		moves = append(moves, Move{From: from, To: NewSquare(2, row), Extra: QueenCastle})
	}
	return moves
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := p.AllMoves()
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, m := range moves {
		nodes += Perft(p.Transition(m, nil), depth-1)
	}
	return nodes
}

// Divide returns the perft count below each root move.
func Divide(p Position, depth int) map[string]int64 {
	out := make(map[string]int64)
	for _, m := range p.AllMoves() {
		out[m.String()] = Perft(p.Transition(m, nil), depth-1)
	}
	return out
}
