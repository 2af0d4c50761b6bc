package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate: Ra8 against Kh8 boxed in by its own pawns.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Checkmate position:")
	t.Log(pos)
	t.Log("InCheck:", pos.InCheck())
	t.Log("Black legal moves:", pos.AllMoves())

	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	winner, over := pos.Terminal()
	if !over || winner != White {
		t.Errorf("Terminal() = (%v, %v), want (white, true)", winner, over)
	}
}

func TestNotCheckmate(t *testing.T) {
	// The king can take the checking rook.
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("InCheck:", pos.InCheck())
	t.Log("Black legal moves:", pos.AllMoves())

	if pos.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
	if _, over := pos.Terminal(); over {
		t.Error("Terminal() reported a finished game")
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		winner Color
		over   bool
	}{
		{"start", StartFEN, NoColor, false},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", Black, true},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", NoColor, true},
		{"smothered", "6rk/5Npp/8/8/8/8/8/6K1 b - - 0 1", White, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			winner, over := pos.Terminal()
			if over != tc.over || winner != tc.winner {
				t.Errorf("Terminal() = (%v, %v), want (%v, %v)", winner, over, tc.winner, tc.over)
			}
			if tc.over && tc.winner == NoColor && !pos.IsStalemate() {
				t.Error("expected stalemate")
			}
		})
	}
}
