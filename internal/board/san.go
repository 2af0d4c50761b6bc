package board

import "strings"

// SAN converts a legal move of pos to Standard Algebraic Notation.
func (p Position) SAN(m Move) string {
	if m == NoMove {
		return "-"
	}

	piece := p.squares[m.From]
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder
	switch {
	case m.Extra.IsCastle():
		sb.WriteString("O-O")
		if m.Extra == QueenCastle {
			sb.WriteString("-O")
		}
	default:
		pt := piece.Type()
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(p.disambiguation(m, piece))
		}
		if m.IsCapture() {
			if pt == Pawn {
				sb.WriteByte('a' + byte(m.From.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Extra.Promotion()])
		}
	}

	next := p.Transition(m, nil)
	if next.InCheck() {
		if next.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same kind can reach the same destination.
func (p Position) disambiguation(m Move, piece Piece) string {
	var sameFile, sameRank, ambiguous bool
	for _, other := range p.AllMoves() {
		if other.To != m.To || other.From == m.From || p.squares[other.From] != piece {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + m.From.File()))
	case !sameRank:
		return string(rune('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}
