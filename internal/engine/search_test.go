package engine

import (
	"testing"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/eval"
	"github.com/hailam/venomchess/internal/zobrist"
)

func newIncremental() *Incremental {
	return NewIncremental(eval.NewEvaluator(), zobrist.NewKeys(zobrist.DefaultSeed))
}

func mustFEN(t *testing.T, fen string) board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

var searchFENs = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",    // mate in one available
	"7k/8/5QK1/8/8/8/8/8 w - - 0 1",           // stalemate traps
	"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4",
}

// TestAlphaBetaMatchesMinimax checks that pruning and the table never
// change the value of a node compared to a full minimax search.
func TestAlphaBetaMatchesMinimax(t *testing.T) {
	inc := newIncremental()

	for _, fen := range searchFENs {
		root := inc.Root(mustFEN(t, fen))
		for depth := 1; depth <= 3; depth++ {
			want := Minimax(inc, root, depth)

			plain := NewSearcher(inc, nil, false, 0)
			if got := plain.Value(root, depth); got != want {
				t.Errorf("%s depth %d: alpha-beta %d, minimax %d", fen, depth, got, want)
			}

			tabled := NewSearcher(inc, NewTranspositionTable(1<<12), false, 0)
			if got := tabled.Value(root, depth); got != want {
				t.Errorf("%s depth %d: alpha-beta with table %d, minimax %d", fen, depth, got, want)
			}
			// A warm table must give the same answer again.
			if got := tabled.Value(root, depth); got != want {
				t.Errorf("%s depth %d: warm table %d, minimax %d", fen, depth, got, want)
			}

			if plain.Nodes() == 0 {
				t.Error("searcher counted no nodes")
			}
		}
	}
}

// TestRootChildrenMatchMinimax compares the per-move values the engine
// chooses from.
func TestRootChildrenMatchMinimax(t *testing.T) {
	inc := newIncremental()
	root := inc.Root(mustFEN(t, "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"))
	s := NewSearcher(inc, NewTranspositionTable(1<<14), false, 0)

	for _, c := range NewMoveOrderer(inc).Order(root, root.Pos.AllMoves()) {
		if got, want := s.Value(c.Node, 2), Minimax(inc, c.Node, 2); got != want {
			t.Errorf("%s: %d, minimax %d", c.Move, got, want)
		}
	}
}

func TestNarrowWindowBounds(t *testing.T) {
	inc := newIncremental()
	root := inc.Root(mustFEN(t, searchFENs[1]))
	exact := Minimax(inc, root, 2)

	s := NewSearcher(inc, nil, false, 0)
	// A failed search returns a bound between the window edge and the exact value.
	if v := s.SearchValue(root, 2, exact+1, exact+50); v < exact || v > exact+1 {
		t.Errorf("fail-low value %d outside [%d, %d]", v, exact, exact+1)
	}
	if v := s.SearchValue(root, 2, exact-50, exact-1); v > exact || v < exact-1 {
		t.Errorf("fail-high value %d outside [%d, %d]", v, exact-1, exact)
	}
}

func TestMateScoresPreferShorterMates(t *testing.T) {
	inc := newIncremental()
	root := inc.Root(mustFEN(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"))

	s := NewSearcher(inc, NewTranspositionTable(1<<12), true, 4)
	v := s.Value(root, 3)
	if !eval.IsMate(v) || v <= 0 {
		t.Fatalf("value %d is not a white mate", v)
	}
	// Root at ply 1, the mating move leads to ply 2.
	if want := eval.Mate(board.White, 2); v != want {
		t.Errorf("value = %d, want %d", v, want)
	}
}

func TestTerminalNodes(t *testing.T) {
	inc := newIncremental()
	s := NewSearcher(inc, nil, true, 4)

	mated := inc.Root(mustFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1"))
	if v := s.Value(mated, 2); v != eval.Mate(board.White, 1) {
		t.Errorf("mated value = %d, want %d", v, eval.Mate(board.White, 1))
	}

	stalemate := inc.Root(mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"))
	if v := s.Value(stalemate, 2); v != eval.Draw {
		t.Errorf("stalemate value = %d, want 0", v)
	}
}

func TestQuiescenceSeesRecapture(t *testing.T) {
	inc := newIncremental()
	pos := mustFEN(t, "4k3/8/4p3/3p4/8/8/8/3QK3 w - - 0 1")
	root := inc.Root(pos)

	grab, err := board.ParseMove("d1d5", pos)
	if err != nil {
		t.Fatal(err)
	}
	child := inc.Next(root, grab)

	plain := NewSearcher(inc, nil, false, 0)
	quiet := NewSearcher(inc, nil, true, 4)

	if v := plain.Value(child, 0); v <= root.Score {
		t.Errorf("plain search should like the pawn grab: %d <= %d", v, root.Score)
	}
	if v := quiet.Value(child, 0); v >= root.Score-500 {
		t.Errorf("quiescence should see the queen lost: %d", v)
	}
	if quiet.QNodes() == 0 {
		t.Error("no quiescence nodes counted")
	}
}

func TestMoveOrderingByMaterial(t *testing.T) {
	inc := newIncremental()
	mo := NewMoveOrderer(inc)

	pos := mustFEN(t, "4k3/8/2q1r3/3P4/8/8/8/K7 w - - 0 1")
	children := mo.Order(inc.Root(pos), pos.AllMoves())
	if children[0].Move.String() != "d5c6" {
		t.Errorf("white first move = %s, want d5c6", children[0].Move)
	}
	for i := 1; i < len(children); i++ {
		if children[i].Node.Pos.Material > children[i-1].Node.Pos.Material {
			t.Errorf("white ordering not descending at %d", i)
		}
	}

	pos = mustFEN(t, "7k/8/8/8/8/3p4/2Q1R3/4K3 b - - 0 1")
	children = mo.Order(inc.Root(pos), pos.AllMoves())
	if children[0].Move.String() != "d3c2" {
		t.Errorf("black should take the queen first, got %s", children[0].Move)
	}
	for i := 1; i < len(children); i++ {
		if children[i].Node.Pos.Material < children[i-1].Node.Pos.Material {
			t.Errorf("black ordering not ascending at %d", i)
		}
	}
}

func TestNodesMatchScratch(t *testing.T) {
	inc := newIncremental()
	root := inc.Root(mustFEN(t, searchFENs[1]))
	for _, c := range inc.Children(root, root.Pos.AllMoves()) {
		want := inc.Root(c.Node.Pos)
		if c.Node.Score != want.Score || c.Node.Hash != want.Hash {
			t.Errorf("%s: incremental (%d, %x), scratch (%d, %x)", c.Move, c.Node.Score, c.Node.Hash, want.Score, want.Hash)
		}
	}
}
