// Package engine implements move selection: alpha-beta search with a
// transposition table, quiescence and iterative deepening under a clock.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/eval"
)

// ErrNoMoves is returned when the side to move has no legal move.
var ErrNoMoves = errors.New("no legal moves")

// Options configures an Engine.
type Options struct {
	Depth           int           // fixed search depth when no time limit applies
	MaxDepth        int           // iterative deepening stops here
	MoveTime        time.Duration // fixed time per move, overrides the clock
	TimeFraction    int           // spend 1/TimeFraction of the remaining clock
	MinMoveTime     time.Duration // lower bound for clock-derived budgets
	Quiescence      bool
	QuiescenceDepth int
	TableCapacity   int  // entries per worker table, 0 disables the table
	PersistentTable bool // keep table contents between moves
	Threads         int  // root-splitting workers
	Seed            int64
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Depth:           4,
		MaxDepth:        32,
		TimeFraction:    DefaultTimeFraction,
		MinMoveTime:     10 * time.Millisecond,
		Quiescence:      true,
		QuiescenceDepth: DefaultQuiescenceDepth,
		TableCapacity:   1 << 18,
		Threads:         1,
		Seed:            1,
	}
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // fixed depth, used when MoveTime is zero
	MoveTime time.Duration // iterative deepening until this much time passed
}

// SearchInfo is reported after every completed iteration.
type SearchInfo struct {
	Depth    int
	Score    eval.Score
	Best     []board.Move // every root move tied for the best score
	Nodes    uint64
	Time     time.Duration
	HashFull int // Permille of hash table used
}

// SearchStats describes the last move choice.
type SearchStats struct {
	Move      board.Move
	Score     eval.Score
	Depth     int // deepest completed iteration
	RootMoves int
	Ties      int // root moves sharing the best score
	Nodes     uint64
	QNodes    uint64
	Table     TableStats
	Elapsed   time.Duration
}

// Engine chooses moves. Its methods are safe for concurrent use; searches
// are serialized.
type Engine struct {
	mu      sync.Mutex
	opts    Options
	inc     *Incremental
	orderer *MoveOrderer
	workers []*Worker
	timeman *TimeManager
	rng     *rand.Rand
	log     *zap.Logger
	last    SearchStats

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(opts Options, inc *Incremental, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.Depth <= 0 {
		opts.Depth = def.Depth
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = def.MaxDepth
	}
	if opts.QuiescenceDepth <= 0 {
		opts.QuiescenceDepth = def.QuiescenceDepth
	}
	// Mate scores must stay distinguishable at the deepest possible ply.
	opts.QuiescenceDepth = min(opts.QuiescenceDepth, eval.MaxPly-2)
	opts.MaxDepth = max(min(opts.MaxDepth, eval.MaxPly-opts.QuiescenceDepth-1), 1)
	opts.Depth = min(opts.Depth, opts.MaxDepth)
	opts.Threads = max(opts.Threads, 1)

	e := &Engine{
		opts:    opts,
		inc:     inc,
		orderer: NewMoveOrderer(inc),
		timeman: NewTimeManager(opts.TimeFraction, opts.MinMoveTime),
		rng:     rand.New(rand.NewSource(opts.Seed)),
		log:     log,
	}
	for i := range opts.Threads {
		e.workers = append(e.workers, NewWorker(i, inc, opts.TableCapacity, opts.Quiescence, opts.QuiescenceDepth))
	}
	return e
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Limits returns the limits the engine applies to pos: a fixed move time if
// configured, a share of the clock if the game is timed, a fixed depth
// otherwise.
func (e *Engine) Limits(pos board.Position) SearchLimits {
	switch {
	case e.opts.MoveTime > 0:
		return SearchLimits{MoveTime: e.opts.MoveTime}
	case pos.Timed():
		return SearchLimits{MoveTime: e.timeman.Budget(pos)}
	default:
		return SearchLimits{Depth: e.opts.Depth}
	}
}

// ChooseMove searches pos and returns the position after the chosen move,
// with the mover's clock charged. It returns false if there is no legal move.
func (e *Engine) ChooseMove(ctx context.Context, pos board.Position, limits SearchLimits) (board.Position, bool) {
	m, err := e.BestMove(ctx, pos, limits)
	if err != nil {
		return pos, false
	}
	return pos.Play(m, time.Now()), true
}

// BestMove searches pos and returns the chosen move. Among root moves with
// equal best score one is picked at random.
func (e *Engine) BestMove(ctx context.Context, pos board.Position, limits SearchLimits) (board.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	root := e.inc.Root(pos)
	moves := pos.AllMoves()
	if len(moves) == 0 {
		e.last = SearchStats{Move: board.NoMove, Score: terminalScore(pos, 0)}
		return board.NoMove, ErrNoMoves
	}
	children := e.orderer.Order(root, moves)

	before := e.beginSearch()

	var (
		best      []int
		bestScore eval.Score
		completed int
	)
	record := func(depth int, scores []eval.Score) {
		best, bestScore = tiedBest(scores, pos.SideToMove)
		completed = depth
		e.report(depth, start, children, best, bestScore)
	}

	if limits.MoveTime <= 0 {
		depth := limits.Depth
		if depth <= 0 {
			depth = e.opts.Depth
		}
		depth = min(max(depth, 1), e.opts.MaxDepth)
		if scores, ok := e.searchDepth(ctx, children, depth, time.Time{}); ok {
			record(depth, scores)
		}
	} else {
		deadline := start.Add(limits.MoveTime)
		for depth := 1; depth <= e.opts.MaxDepth; depth++ {
			// The first iteration always runs to completion.
			dl := deadline
			if depth == 1 {
				dl = time.Time{}
			} else if !time.Now().Before(deadline) {
				break
			}
			scores, ok := e.searchDepth(ctx, children, depth, dl)
			if !ok {
				break
			}
			record(depth, scores)
			if eval.IsMate(bestScore) {
				break
			}
		}
	}

	var choice Child
	if completed == 0 {
		// Cancelled before any iteration finished.
		choice = children[0]
		bestScore = choice.Node.Score
		e.log.Warn("search cancelled before depth 1 completed", zap.String("fallback", choice.Move.String()))
	} else {
		choice = children[best[e.rng.Intn(len(best))]]
	}

	e.last = e.collectStats(before, SearchStats{
		Move:      choice.Move,
		Score:     bestScore,
		Depth:     completed,
		RootMoves: len(children),
		Ties:      len(best),
		Elapsed:   time.Since(start),
	})
	e.log.Info("move chosen",
		zap.String("move", choice.Move.String()),
		zap.Int32("score", int32(bestScore)),
		zap.Int("depth", completed),
		zap.Int("ties", len(best)),
		zap.Uint64("nodes", e.last.Nodes),
		zap.Uint64("qnodes", e.last.QNodes),
		zap.Duration("elapsed", e.last.Elapsed),
	)
	return choice.Move, nil
}

// searchDepth scores every root child at depth. It reports false if the
// search stopped before all scores were final.
func (e *Engine) searchDepth(ctx context.Context, children []Child, depth int, deadline time.Time) ([]eval.Score, bool) {
	scores := make([]eval.Score, len(children))
	stride := len(e.workers)

	if stride == 1 {
		err := e.workers[0].searchShard(ctx, children, 1, depth, deadline, scores)
		return scores, err == nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range e.workers {
		g.Go(func() error {
			return w.searchShard(gctx, children, stride, depth, deadline, scores)
		})
	}
	return scores, g.Wait() == nil
}

// tiedBest returns the indices of every score equal to the best one for
// the side to move.
func tiedBest(scores []eval.Score, side board.Color) ([]int, eval.Score) {
	best := scores[0]
	for _, s := range scores[1:] {
		if side == board.White {
			best = max(best, s)
		} else {
			best = min(best, s)
		}
	}
	var idx []int
	for i, s := range scores {
		if s == best {
			idx = append(idx, i)
		}
	}
	return idx, best
}

// beginSearch prepares the worker tables and returns their counters so the
// search can report only what it added.
func (e *Engine) beginSearch() []TableStats {
	before := make([]TableStats, len(e.workers))
	for i, w := range e.workers {
		s := w.searcher
		s.ResetCounters()
		if s.tt == nil {
			continue
		}
		if !e.opts.PersistentTable {
			s.tt.Clear()
		}
		before[i] = s.tt.Stats()
	}
	return before
}

func (e *Engine) collectStats(before []TableStats, st SearchStats) SearchStats {
	for i, w := range e.workers {
		s := w.searcher
		st.Nodes += s.nodes
		st.QNodes += s.qnodes
		if s.tt == nil {
			continue
		}
		now := s.tt.Stats()
		st.Table.Capacity += now.Capacity
		st.Table.Used += now.Used - before[i].Used
		st.Table.Collisions += now.Collisions - before[i].Collisions
		st.Table.Probes += now.Probes - before[i].Probes
		st.Table.Hits += now.Hits - before[i].Hits
	}
	return st
}

func (e *Engine) report(depth int, start time.Time, children []Child, best []int, score eval.Score) {
	var nodes uint64
	hashFull := 0
	for _, w := range e.workers {
		nodes += w.searcher.nodes + w.searcher.qnodes
		if w.searcher.tt != nil {
			hashFull = max(hashFull, w.searcher.tt.HashFull())
		}
	}
	info := SearchInfo{
		Depth:    depth,
		Score:    score,
		Nodes:    nodes,
		Time:     time.Since(start),
		HashFull: hashFull,
	}
	for _, i := range best {
		info.Best = append(info.Best, children[i].Move)
	}

	e.log.Debug("iteration complete",
		zap.Int("depth", depth),
		zap.Int32("score", int32(score)),
		zap.Int("ties", len(best)),
		zap.Uint64("nodes", nodes),
		zap.Int("hashfull", hashFull),
	)
	if e.OnInfo != nil {
		e.OnInfo(info)
	}
}

// LastStats returns the statistics of the most recent search.
func (e *Engine) LastStats() SearchStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Clear empties every transposition table.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, w := range e.workers {
		if w.searcher.tt != nil {
			w.searcher.tt.Clear()
		}
	}
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos board.Position) eval.Score {
	return e.inc.Evaluator().Evaluate(pos)
}
