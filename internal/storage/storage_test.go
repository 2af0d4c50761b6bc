package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/engine"
)

func newBadger(t *testing.T) Store {
	t.Helper()
	s, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newRedis(t *testing.T) Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := OpenRedis(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleStats(move string, depth int) engine.SearchStats {
	pos := board.NewPosition()
	m, _ := board.ParseMove(move, pos)
	return engine.SearchStats{
		Move:      m,
		Score:     35,
		Depth:     depth,
		RootMoves: 20,
		Ties:      2,
		Nodes:     12345,
		QNodes:    6789,
		Table:     engine.TableStats{Capacity: 1024, Used: 900, Collisions: 40, Probes: 2000, Hits: 500},
		Elapsed:   42 * time.Millisecond,
	}
}

func TestStores(t *testing.T) {
	backends := map[string]func(*testing.T) Store{
		"badger": newBadger,
		"redis":  newRedis,
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			if _, err := s.Moves(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Moves on unknown game: %v, want ErrNotFound", err)
			}
			if _, err := s.Game(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Game on unknown game: %v, want ErrNotFound", err)
			}

			recs := []MoveRecord{
				NewMoveRecord("g1", 0, board.White, sampleStats("e2e4", 4)),
				NewMoveRecord("g1", 1, board.Black, sampleStats("e2e3", 3)),
				NewMoveRecord("g2", 0, board.White, sampleStats("d2d4", 5)),
			}
			for _, r := range recs {
				if err := s.AppendMove(ctx, r); err != nil {
					t.Fatalf("AppendMove: %v", err)
				}
			}

			got, err := s.Moves(ctx, "g1")
			if err != nil {
				t.Fatalf("Moves: %v", err)
			}
			if len(got) != 2 || got[0] != recs[0] || got[1] != recs[1] {
				t.Errorf("Moves(g1) = %+v", got)
			}
			if got[0].Move != "e2e4" || got[0].HitRate != 25 || got[0].ElapsedMS != 42 {
				t.Errorf("record fields = %+v", got[0])
			}

			// A repeated ply replaces the earlier record and order follows the ply.
			late := NewMoveRecord("g1", 10, board.White, sampleStats("g1f3", 2))
			redo := NewMoveRecord("g1", 1, board.Black, sampleStats("e7e5", 6))
			for _, r := range []MoveRecord{late, redo} {
				if err := s.AppendMove(ctx, r); err != nil {
					t.Fatalf("AppendMove: %v", err)
				}
			}
			got, err = s.Moves(ctx, "g1")
			if err != nil {
				t.Fatalf("Moves: %v", err)
			}
			if want := []MoveRecord{recs[0], redo, late}; !slices.Equal(got, want) {
				t.Errorf("Moves(g1) after rewrite = %+v, want %+v", got, want)
			}

			started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			games := []GameSummary{
				{GameID: "g1", White: "engine", Black: "random", Result: "1-0", Reason: "checkmate", Plies: 31, Started: started, Finished: started.Add(time.Minute)},
				{GameID: "g2", White: "engine", Black: "engine", Result: "1/2-1/2", Reason: "stalemate", Plies: 80, Started: started, Finished: started.Add(time.Hour)},
			}
			for _, g := range games {
				if err := s.SaveGame(ctx, g); err != nil {
					t.Fatalf("SaveGame: %v", err)
				}
			}

			g, err := s.Game(ctx, "g1")
			if err != nil {
				t.Fatalf("Game: %v", err)
			}
			if !g.Finished.Equal(games[0].Finished) || g.Result != "1-0" || g.Plies != 31 {
				t.Errorf("Game(g1) = %+v", g)
			}

			totals, err := s.Totals(ctx)
			if err != nil {
				t.Fatalf("Totals: %v", err)
			}
			want := Totals{GamesPlayed: 2, WhiteWins: 1, Draws: 1, Plies: 111}
			if totals != want {
				t.Errorf("Totals = %+v, want %+v", totals, want)
			}
			if totals.DrawRate() != 50 {
				t.Errorf("DrawRate = %.1f, want 50", totals.DrawRate())
			}
		})
	}
}

func TestRedisKeysExpire(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	defer s.Close()
	ctx := context.Background()

	if err := s.AppendMove(ctx, MoveRecord{GameID: "g", Move: "e2e4"}); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(s.keyMoves("g")); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := s.Moves(ctx, "g"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Moves after expiry: %v, want ErrNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(NopStore); !ok {
		t.Errorf("none backend gave %T", s)
	}
	if err := s.AppendMove(ctx, MoveRecord{}); err != nil {
		t.Error(err)
	}

	s, err = Open(ctx, Options{Backend: BackendBadger, Path: t.TempDir()})
	if err != nil {
		t.Fatalf("badger: %v", err)
	}
	s.Close()

	if _, err := Open(ctx, Options{Backend: BackendRedis}); err == nil {
		t.Error("redis without url succeeded")
	}
	if _, err := Open(ctx, Options{Backend: "sqlite"}); err == nil {
		t.Error("unknown backend succeeded")
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	t.Logf("Database directory: %s", dbDir)
}
