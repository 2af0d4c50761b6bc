package game

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/engine"
)

// Player picks moves for one side.
type Player interface {
	Name() string
	Move(ctx context.Context, pos board.Position) (board.Move, error)
}

// statsReporter is implemented by players whose decisions produce search
// statistics.
type statsReporter interface {
	LastStats() engine.SearchStats
}

// EnginePlayer plays the engine's choice under the engine's own limits.
type EnginePlayer struct {
	eng  *engine.Engine
	name string
}

func NewEnginePlayer(name string, eng *engine.Engine) *EnginePlayer {
	if name == "" {
		name = "engine"
	}
	return &EnginePlayer{eng: eng, name: name}
}

func (p *EnginePlayer) Name() string { return p.name }

func (p *EnginePlayer) Move(ctx context.Context, pos board.Position) (board.Move, error) {
	return p.eng.BestMove(ctx, pos, p.eng.Limits(pos))
}

func (p *EnginePlayer) LastStats() engine.SearchStats { return p.eng.LastStats() }

// RandomPlayer picks a uniformly random legal move.
type RandomPlayer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomPlayer(seed int64) *RandomPlayer {
	return &RandomPlayer{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlayer) Name() string { return "random" }

func (p *RandomPlayer) Move(_ context.Context, pos board.Position) (board.Move, error) {
	moves := pos.AllMoves()
	if len(moves) == 0 {
		return board.NoMove, engine.ErrNoMoves
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return moves[p.rng.Intn(len(moves))], nil
}
