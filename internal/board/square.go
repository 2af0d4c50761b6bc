// Package board implements the chess position, move transitions and legal move generation.
package board

import "fmt"

// Square represents a square on the chess board (0-63).
// Squares are laid out row by row from Black's back rank: (x, y) = (0, 0) is a8,
// (7, 0) is h8, (0, 7) is a1 and (7, 7) is h1. The index is y*8 + x.
type Square uint8

// Square constants for all 64 squares.
const (
	A8 Square = iota
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A1
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	NoSquare Square = 64
)

// NewSquare creates a square from grid coordinates (0-7 each).
func NewSquare(x, y int) Square {
	return Square(y*8 + x)
}

// X returns the column of the square (0=a, 7=h).
func (sq Square) X() int {
	return int(sq) & 7
}

// Y returns the row of the square counted from Black's back rank (0=8th rank, 7=1st rank).
func (sq Square) Y() int {
	return int(sq) >> 3
}

// File returns the file of the square (0=a, 7=h).
func (sq Square) File() int {
	return sq.X()
}

// Rank returns the rank of the square (0=1st rank, 7=8th rank).
func (sq Square) Rank() int {
	return 7 - sq.Y()
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, 7-rank), nil
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Mirror returns the square mirrored vertically (for black's perspective).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// offset returns the square displaced by (dx, dy), or false if it falls off the board.
func (sq Square) offset(dx, dy int) (Square, bool) {
	x, y := sq.X()+dx, sq.Y()+dy
	if x < 0 || x > 7 || y < 0 || y > 7 {
		return NoSquare, false
	}
	return NewSquare(x, y), true
}
