package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every error returned from ParseFEN.
var ErrInvalidFEN = errors.New("invalid FEN")

func fenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, fmt.Sprintf(format, args...))
}

// ParseFEN parses a FEN string and returns a Position. The half-move clock is
// accepted but not tracked.
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Position{}, fenError("need at least 4 fields, got %d", len(parts))
	}

	pos := EmptyPosition()
	if err := parsePiecePlacement(&pos, parts[0]); err != nil {
		return Position{}, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fenError("invalid side to move: %s", parts[1])
	}

	if err := parseCastlingRights(&pos, parts[2]); err != nil {
		return Position{}, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil || !pos.validEnPassant(sq) {
			return Position{}, fenError("invalid en passant square: %s", parts[3])
		}
		pos.EnPassant = int8(sq.File())
	}

	if len(parts) > 4 {
		if _, err := strconv.Atoi(parts[4]); err != nil {
			return Position{}, fenError("invalid half-move clock: %s", parts[4])
		}
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return Position{}, fenError("invalid full-move number: %s", parts[5])
		}
		pos.Ply = (fmn - 1) * 2
	}
	if pos.SideToMove == Black {
		pos.Ply++
	}

	if pos.kings[White] == NoSquare || pos.kings[Black] == NoSquare {
		return Position{}, fenError("both kings must be on the board")
	}
	return pos, nil
}

// validEnPassant reports whether sq can be the en passant target: the
// square just skipped by an enemy pawn that now stands in front of it.
func (p *Position) validEnPassant(sq Square) bool {
	rank, dy := 5, 1
	if p.SideToMove == Black {
		rank, dy = 2, -1
	}
	if sq.Rank() != rank || p.squares[sq] != NoPiece {
		return false
	}
	pawn := NewSquare(sq.X(), sq.Y()+dy)
	return p.squares[pawn] == NewPiece(Pawn, p.SideToMove.Other())
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError("need 8 ranks, got %d", len(ranks))
	}

	// FEN starts from rank 8, which is row 0.
	for y, rankStr := range ranks {
		x := 0
		for _, c := range rankStr {
			if x > 7 {
				return fenError("too many squares in rank %d", 8-y)
			}
			if c >= '1' && c <= '8' {
				x += int(c - '0')
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fenError("invalid piece character: %c", c)
			}
			pos.Put(piece, NewSquare(x, y))
			x++
		}
		if x != 8 {
			return fenError("invalid number of squares in rank %d: got %d", 8-y, x)
		}
	}
	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	pos.Castling = NoCastling
	if castling == "-" {
		return nil
	}

	for _, c := range castling {
		i := strings.IndexRune("KQkq", c)
		if i < 0 {
			return fenError("invalid castling character: %c", c)
		}
		pos.Castling |= 1 << i
	}
	return nil
}

// FEN returns the FEN representation of the position.
func (p Position) FEN() string {
	var sb strings.Builder

	for y := 0; y < 8; y++ {
		empty := 0
		for x := 0; x < 8; x++ {
			piece := p.squares[NewSquare(x, y)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if y < 7 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassantSquare().String())
	sb.WriteString(" 0 ")
	sb.WriteString(strconv.Itoa(p.Ply/2 + 1))

	return sb.String()
}
