package board

import (
	"fmt"
	"strings"
	"time"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

// Flags returns the rights in the order black king-side, black queen-side,
// white king-side, white queen-side.
func (cr CastlingRights) Flags() [4]bool {
	return [4]bool{
		cr&BlackKingSideCastle != 0,
		cr&BlackQueenSideCastle != 0,
		cr&WhiteKingSideCastle != 0,
		cr&WhiteQueenSideCastle != 0,
	}
}

func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// cornerRights maps a rook home square to the right it guards. Anything
// leaving or landing on a corner removes that corner's right.
var cornerRights = func() (t [64]CastlingRights) {
	t[A8] = BlackQueenSideCastle
	t[H8] = BlackKingSideCastle
	t[A1] = WhiteQueenSideCastle
	t[H1] = WhiteKingSideCastle
	return t
}()

// NoEnPassant is the en-passant file value meaning no capture is available.
const NoEnPassant int8 = 8

// Observer is notified of every piece removed from or placed on a square
// while a move is applied. Reports arrive in the order they happen.
type Observer interface {
	PieceRemoved(p Piece, sq Square)
	PieceAdded(p Piece, sq Square)
}

// Position represents a complete chess position. It is a value: applying a
// move returns a new Position and leaves the receiver untouched.
type Position struct {
	squares [64]Piece

	SideToMove Color
	Castling   CastlingRights

	// EnPassant is the file (0-7) of a pawn that just advanced two squares,
	// or NoEnPassant.
	EnPassant int8

	// Material is the signed sum of PieceValue over every piece on the board.
	Material int32

	// Ply counts half-moves played since the start of the game.
	Ply int

	// Clock holds the remaining thinking time of each side. A zero turnStart
	// means the game is not timed.
	Clock     [2]time.Duration
	turnStart time.Time

	kings [2]Square
}

// NewPosition creates the starting position.
func NewPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// EmptyPosition returns a board without pieces, White to move.
func EmptyPosition() Position {
	p := Position{
		SideToMove: White,
		EnPassant:  NoEnPassant,
		kings:      [2]Square{NoSquare, NoSquare},
	}
	for i := range p.squares {
		p.squares[i] = NoPiece
	}
	return p
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p Position) PieceAt(sq Square) Piece {
	return p.squares[sq]
}

// IsEmpty returns true if the square is empty.
func (p Position) IsEmpty(sq Square) bool {
	return p.squares[sq] == NoPiece
}

// KingSquare returns the square of the king of color c, or NoSquare.
func (p Position) KingSquare(c Color) Square {
	return p.kings[c]
}

// CastlingFlags returns the four castling rights, see CastlingRights.Flags.
func (p Position) CastlingFlags() [4]bool {
	return p.Castling.Flags()
}

// EnPassantSquare returns the square a pawn would land on when capturing
// en passant, or NoSquare.
func (p Position) EnPassantSquare() Square {
	if p.EnPassant == NoEnPassant {
		return NoSquare
	}
	if p.SideToMove == White {
		return NewSquare(int(p.EnPassant), 2)
	}
	return NewSquare(int(p.EnPassant), 5)
}

// Put places a piece on an empty square while setting up a position.
func (p *Position) Put(piece Piece, sq Square) {
	p.add(piece, sq, nil)
}

func (p *Position) add(piece Piece, sq Square, obs Observer) {
	p.squares[sq] = piece
	p.Material += piece.Material()
	if piece.Type() == King {
		p.kings[piece.Color()] = sq
	}
	if obs != nil {
		obs.PieceAdded(piece, sq)
	}
}

func (p *Position) remove(sq Square, obs Observer) Piece {
	piece := p.squares[sq]
	if piece == NoPiece {
		return NoPiece
	}
	p.squares[sq] = NoPiece
	p.Material -= piece.Material()
	if obs != nil {
		obs.PieceRemoved(piece, sq)
	}
	return piece
}

// Transition returns the position after m. Every piece removal and placement
// is reported to obs, which may be nil. The move must have been generated
// from p; the clock is not touched.
func (p Position) Transition(m Move, obs Observer) Position {
	next := p
	us := p.SideToMove

	if m.Extra == EnPassantCapture {
		next.remove(NewSquare(m.To.X(), m.From.Y()), obs)
	}
	if !next.IsEmpty(m.To) {
		next.remove(m.To, obs)
	}

	mover := next.remove(m.From, obs)
	if m.IsPromotion() {
		mover = NewPiece(m.Extra.Promotion(), us)
	}
	next.add(mover, m.To, obs)

	switch m.Extra {
	case KingCastle:
		y := m.From.Y()
		rook := next.remove(NewSquare(7, y), obs)
		next.add(rook, NewSquare(5, y), obs)
	case QueenCastle:
		y := m.From.Y()
		rook := next.remove(NewSquare(0, y), obs)
		next.add(rook, NewSquare(3, y), obs)
	}

	if mover.Type() == King {
		next.Castling &^= castleRight(us, true) | castleRight(us, false)
	}
	next.Castling &^= cornerRights[m.From] | cornerRights[m.To]

	next.EnPassant = NoEnPassant
	if mover.Type() == Pawn && abs(m.To.Y()-m.From.Y()) == 2 {
		next.EnPassant = int8(m.From.X())
	}

	next.SideToMove = us.Other()
	next.Ply++
	return next
}

// StartClock gives both sides the same thinking time and starts the clock of
// the side to move at now.
func (p Position) StartClock(initial time.Duration, now time.Time) Position {
	p.Clock = [2]time.Duration{initial, initial}
	p.turnStart = now
	return p
}

// Timed returns true if the clocks are running.
func (p Position) Timed() bool {
	return !p.turnStart.IsZero()
}

// Remaining returns the thinking time left for the side to move.
func (p Position) Remaining() time.Duration {
	return p.Clock[p.SideToMove]
}

// Play applies m like Transition and, when the game is timed, charges the
// time spent since the mover's clock started, never going below zero.
func (p Position) Play(m Move, now time.Time) Position {
	next := p.Transition(m, nil)
	if p.Timed() {
		spent := now.Sub(p.turnStart)
		left := p.Clock[p.SideToMove] - spent
		next.Clock[p.SideToMove] = max(left, 0)
		next.turnStart = now
	}
	return next
}

// Flagged returns true if the side to move has run out of time.
func (p Position) Flagged() bool {
	return p.Timed() && p.Clock[p.SideToMove] <= 0
}

// String returns a visual representation of the position.
func (p Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for y := 0; y < 8; y++ {
		fmt.Fprintf(&sb, "%d  ", 8-y)
		for x := 0; x < 8; x++ {
			sb.WriteString(p.squares[NewSquare(x, y)].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.Castling)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassantSquare())
	fmt.Fprintf(&sb, "Material: %d\n", p.Material)
	return sb.String()
}

// Validate checks if the position is valid.
func (p Position) Validate() error {
	var kings [2]int
	for sq := A8; sq < NoSquare; sq++ {
		piece := p.squares[sq]
		if piece.Type() == King {
			kings[piece.Color()]++
		}
		if piece.Type() == Pawn && (sq.Y() == 0 || sq.Y() == 7) {
			return fmt.Errorf("pawn on back rank at %s", sq)
		}
	}
	if kings[White] != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if kings[Black] != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	if p.IsAttacked(p.kings[p.SideToMove.Other()], p.SideToMove) {
		return fmt.Errorf("side not to move is in check")
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
