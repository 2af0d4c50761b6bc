package board

import "fmt"

// Extra tags the side effects of a move beyond lifting a piece from one
// square and dropping it on another.
type Extra uint8

const (
	Quiet Extra = iota
	DoublePawnPush
	Capture
	EnPassantCapture
	KingCastle
	QueenCastle
	KnightPromotion
	BishopPromotion
	RookPromotion
	QueenPromotion
	KnightPromotionCapture
	BishopPromotionCapture
	RookPromotionCapture
	QueenPromotionCapture
)

// IsCapture returns true if the move removes an enemy piece.
func (e Extra) IsCapture() bool {
	return e == Capture || e == EnPassantCapture || e >= KnightPromotionCapture
}

// IsPromotion returns true if a pawn is replaced on arrival.
func (e Extra) IsPromotion() bool {
	return e >= KnightPromotion
}

// IsCastle returns true for either castling move.
func (e Extra) IsCastle() bool {
	return e == KingCastle || e == QueenCastle
}

// Promotion returns the piece type a pawn turns into, or NoPieceType.
func (e Extra) Promotion() PieceType {
	switch {
	case e >= KnightPromotionCapture:
		return Knight + PieceType(e-KnightPromotionCapture)
	case e >= KnightPromotion:
		return Knight + PieceType(e-KnightPromotion)
	default:
		return NoPieceType
	}
}

// promotionExtra returns the promotion tag for the piece type.
func promotionExtra(pt PieceType, capture bool) Extra {
	if capture {
		return KnightPromotionCapture + Extra(pt-Knight)
	}
	return KnightPromotion + Extra(pt-Knight)
}

var extraNames = [...]string{
	"quiet", "double-pawn-push", "capture", "en-passant", "king-castle", "queen-castle",
	"promote-knight", "promote-bishop", "promote-rook", "promote-queen",
	"capture-promote-knight", "capture-promote-bishop", "capture-promote-rook", "capture-promote-queen",
}

func (e Extra) String() string {
	if int(e) < len(extraNames) {
		return extraNames[e]
	}
	return fmt.Sprintf("extra(%d)", uint8(e))
}

// Move is a from/to square pair plus the tag describing its side effects.
// Moves are only meaningful for the position that generated them.
type Move struct {
	From  Square
	To    Square
	Extra Extra
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Extra.IsCapture()
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Extra.IsPromotion()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Extra.Promotion().Char())
	}
	return s
}

// ParseMove finds the legal move of pos written in UCI format.
func ParseMove(s string, pos Position) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}
	if _, err := ParseSquare(s[0:2]); err != nil {
		return NoMove, err
	}
	if _, err := ParseSquare(s[2:4]); err != nil {
		return NoMove, err
	}

	for _, m := range pos.AllMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("illegal move %s in %s", s, pos.FEN())
}
