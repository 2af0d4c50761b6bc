package board

import (
	"errors"
	"slices"
	"testing"
)

var movegenFENs = []string{
	StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
}

func TestMovesFromCoversAllMoves(t *testing.T) {
	for _, fen := range movegenFENs {
		t.Run(fen, func(t *testing.T) {
			pos := mustFEN(t, fen)

			var joined []Move
			for sq := A8; sq < NoSquare; sq++ {
				moves := pos.MovesFrom(sq)
				piece := pos.PieceAt(sq)
				if piece == NoPiece || piece.Color() != pos.SideToMove {
					if moves != nil {
						t.Errorf("MovesFrom(%s) = %v for %s", sq, moves, piece)
					}
					continue
				}
				for _, m := range moves {
					if m.From != sq {
						t.Errorf("MovesFrom(%s) returned %s", sq, m)
					}
				}
				joined = append(joined, moves...)
			}

			if all := pos.AllMoves(); !slices.Equal(joined, all) {
				t.Errorf("MovesFrom over every square gives %d moves, AllMoves %d", len(joined), len(all))
			}
		})
	}

	if moves := NewPosition().MovesFrom(NoSquare); moves != nil {
		t.Errorf("MovesFrom(NoSquare) = %v", moves)
	}
}

func TestCaptures(t *testing.T) {
	for _, fen := range movegenFENs {
		pos := mustFEN(t, fen)
		captures := pos.Captures()
		want := 0
		for _, m := range pos.AllMoves() {
			if pos.PieceAt(m.To) != NoPiece || m.Extra == EnPassantCapture {
				want++
			}
		}
		if len(captures) != want {
			t.Errorf("%s: %d captures, want %d", fen, len(captures), want)
		}
		for _, m := range captures {
			if !m.IsCapture() {
				t.Errorf("%s: %s listed as a capture", fen, m)
			}
		}
		t.Logf("%s: %d captures", fen, len(captures))
	}
}

func TestCastlingFlags(t *testing.T) {
	const fen = "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"

	tests := []struct {
		name  string
		moves []string
		want  [4]bool // black king side, black queen side, white king side, white queen side
	}{
		{"initial", nil, [4]bool{true, true, true, true}},
		{"white king", []string{"e1f1"}, [4]bool{true, true, false, false}},
		{"black king", []string{"a1b1", "e8d8"}, [4]bool{false, false, true, false}},
		{"white king rook", []string{"h1g1"}, [4]bool{true, true, false, true}},
		{"black queen rook", []string{"e1d1", "a8b8"}, [4]bool{true, false, false, false}},
		{"rook takes rook", []string{"h1h8"}, [4]bool{false, true, false, true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, fen)
			for _, uci := range tc.moves {
				pos = pos.Transition(mustMove(t, pos, uci), nil)
			}
			if got := pos.CastlingFlags(); got != tc.want {
				t.Errorf("CastlingFlags() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseFENEnPassant(t *testing.T) {
	tests := []struct {
		fen string
		ok  bool
	}{
		{"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", true},
		{"4k3/8/8/8/3Pp3/8/8/4K3 b - d3 0 1", true},
		{"4k3/8/8/8/3Pp3/8/8/4K3 w - d3 0 1", false}, // wrong rank for the side to move
		{"4k3/8/8/3pP3/8/8/8/4K3 b - d6 0 1", false},
		{"4k3/8/8/4P3/8/8/8/4K3 w - d6 0 1", false}, // no pawn skipped the square
		{"4k3/8/8/3nP3/8/8/8/4K3 w - d6 0 1", false}, // a knight is not a pawn
		{"4k3/8/8/3PP3/8/8/8/4K3 w - d6 0 1", false}, // own pawn
		{"4k3/8/3b4/3pP3/8/8/8/4K3 w - d6 0 1", false}, // target occupied
		{"4k3/8/8/3pP3/8/8/8/4K3 w - d4 0 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.fen, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if tc.ok {
				if err != nil {
					t.Fatalf("ParseFEN: %v", err)
				}
				if pos.EnPassantSquare().String() != tc.fen[len(tc.fen)-6:len(tc.fen)-4] {
					t.Errorf("EnPassantSquare() = %s", pos.EnPassantSquare())
				}
				return
			}
			if !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("err = %v, want ErrInvalidFEN", err)
			}
		})
	}
}
