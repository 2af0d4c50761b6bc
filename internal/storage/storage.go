package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/engine"
)

// ErrNotFound is returned when a game has no stored record.
var ErrNotFound = errors.New("storage: not found")

// Backends
const (
	BackendNone   = "none"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// MoveRecord stores the statistics of one engine decision.
type MoveRecord struct {
	GameID     string  `json:"game_id"`
	Ply        int     `json:"ply"`
	Side       string  `json:"side"`
	Move       string  `json:"move"`
	Score      int32   `json:"score"`
	Depth      int     `json:"depth"`
	RootMoves  int     `json:"root_moves"`
	Ties       int     `json:"ties"`
	Nodes      uint64  `json:"nodes"`
	QNodes     uint64  `json:"qnodes"`
	Probes     uint64  `json:"probes"`
	Hits       uint64  `json:"hits"`
	Used       uint64  `json:"used"`
	Collisions uint64  `json:"collisions"`
	HitRate    float64 `json:"hit_rate"`
	ElapsedMS  int64   `json:"elapsed_ms"`
}

// NewMoveRecord converts the statistics of a search made at ply by side.
func NewMoveRecord(gameID string, ply int, side board.Color, st engine.SearchStats) MoveRecord {
	return MoveRecord{
		GameID:     gameID,
		Ply:        ply,
		Side:       side.String(),
		Move:       st.Move.String(),
		Score:      int32(st.Score),
		Depth:      st.Depth,
		RootMoves:  st.RootMoves,
		Ties:       st.Ties,
		Nodes:      st.Nodes,
		QNodes:     st.QNodes,
		Probes:     st.Table.Probes,
		Hits:       st.Table.Hits,
		Used:       st.Table.Used,
		Collisions: st.Table.Collisions,
		HitRate:    st.Table.HitRate(),
		ElapsedMS:  st.Elapsed.Milliseconds(),
	}
}

// GameSummary is the outcome of a finished game.
type GameSummary struct {
	GameID   string    `json:"game_id"`
	White    string    `json:"white"`
	Black    string    `json:"black"`
	Result   string    `json:"result"` // 1-0, 0-1, 1/2-1/2 or *
	Reason   string    `json:"reason"`
	Plies    int       `json:"plies"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Totals aggregates every saved game.
type Totals struct {
	GamesPlayed int   `json:"games_played" redis:"games_played"`
	WhiteWins   int   `json:"white_wins" redis:"white_wins"`
	BlackWins   int   `json:"black_wins" redis:"black_wins"`
	Draws       int   `json:"draws" redis:"draws"`
	Unfinished  int   `json:"unfinished" redis:"unfinished"`
	Plies       int64 `json:"plies" redis:"plies"`
}

// add counts g into t.
func (t *Totals) add(g GameSummary) {
	t.GamesPlayed++
	t.Plies += int64(g.Plies)
	switch g.Result {
	case "1-0":
		t.WhiteWins++
	case "0-1":
		t.BlackWins++
	case "1/2-1/2":
		t.Draws++
	default:
		t.Unfinished++
	}
}

// DrawRate returns the share of drawn games as a percentage.
func (t Totals) DrawRate() float64 {
	if t.GamesPlayed == 0 {
		return 0
	}
	return float64(t.Draws) / float64(t.GamesPlayed) * 100
}

// Store persists search statistics and game results.
type Store interface {
	// AppendMove records rec under its game and ply. A second record for
	// the same ply replaces the first.
	AppendMove(ctx context.Context, rec MoveRecord) error
	// Moves returns the records of a game in ply order, or ErrNotFound.
	Moves(ctx context.Context, gameID string) ([]MoveRecord, error)
	SaveGame(ctx context.Context, g GameSummary) error
	Game(ctx context.Context, gameID string) (GameSummary, error)
	Totals(ctx context.Context) (Totals, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Path     string // badger directory; empty uses the data dir
	RedisURL string
	TTL      time.Duration // redis key lifetime
}

// Open returns the store for opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NopStore{}, nil
	case BackendBadger:
		path := opts.Path
		if path == "" {
			dir, err := GetDatabaseDir()
			if err != nil {
				return nil, fmt.Errorf("database dir: %w", err)
			}
			path = dir
		}
		return OpenBadger(path)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.TTL)
	default:
		return nil, fmt.Errorf("unknown stats backend %q", opts.Backend)
	}
}

// NopStore discards everything.
type NopStore struct{}

func (NopStore) AppendMove(context.Context, MoveRecord) error { return nil }

func (NopStore) Moves(context.Context, string) ([]MoveRecord, error) { return nil, ErrNotFound }

func (NopStore) SaveGame(context.Context, GameSummary) error { return nil }

func (NopStore) Game(context.Context, string) (GameSummary, error) {
	return GameSummary{}, ErrNotFound
}

func (NopStore) Totals(context.Context) (Totals, error) { return Totals{}, nil }

func (NopStore) Close() error { return nil }
