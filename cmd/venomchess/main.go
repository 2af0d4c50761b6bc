package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"os/signal"
	"runtime/pprof"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/config"
	"github.com/hailam/venomchess/internal/engine"
	"github.com/hailam/venomchess/internal/eval"
	"github.com/hailam/venomchess/internal/game"
	"github.com/hailam/venomchess/internal/obslog"
	"github.com/hailam/venomchess/internal/storage"
	"github.com/hailam/venomchess/internal/zobrist"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	depth      = flag.Int("depth", 0, "fixed search depth (overrides config)")
	moveTime   = flag.Duration("movetime", 0, "fixed time per move (overrides config)")
	clock      = flag.Duration("clock", -1, "per-side clock, 0 for untimed (overrides config)")
	plies      = flag.Int("plies", game.DefaultMaxPlies, "stop the game after this many plies")
	fen        = flag.String("fen", board.StartFEN, "start position")
	opponent   = flag.String("opponent", "self", "black player: self or random")
	games      = flag.Int("games", 1, "number of games to play")
	referee    = flag.Bool("referee", false, "replay every move on an independent rules implementation")
	perft      = flag.Int("perft", 0, "print perft divide for -fen at this depth and exit")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "venomchess:", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run() error {
	start, err := board.ParseFEN(*fen)
	if err != nil {
		return err
	}
	if *perft > 0 {
		return printPerft(start, *perft)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *depth > 0 {
		cfg.Search.Depth = *depth
	}
	if *moveTime > 0 {
		cfg.Search.MoveTime = *moveTime
	}
	if *clock >= 0 {
		cfg.Clock.Initial = *clock
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := obslog.New(cfg.LogOptions())
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	inc := engine.NewIncremental(eval.NewEvaluator(), zobrist.NewKeys(cfg.Hash.Seed))
	newEngine := func(name string) *engine.Engine {
		eng := engine.NewEngine(cfg.EngineOptions(), inc, logger.Named(name))
		eng.OnInfo = func(info engine.SearchInfo) {
			logger.Debug("info",
				zap.String("engine", name),
				zap.Int("depth", info.Depth),
				zap.Int32("score", int32(info.Score)),
				zap.Stringers("best", info.Best),
				zap.Uint64("nodes", info.Nodes),
				zap.Duration("time", info.Time),
				zap.Int("hashfull", info.HashFull),
			)
		}
		return eng
	}

	white := game.NewEnginePlayer("venom-white", newEngine("white"))
	var black game.Player
	switch *opponent {
	case "self":
		black = game.NewEnginePlayer("venom-black", newEngine("black"))
	case "random":
		black = game.NewRandomPlayer(time.Now().UnixNano())
	default:
		return fmt.Errorf("unknown opponent %q", *opponent)
	}

	for i := 0; i < *games; i++ {
		res, err := game.Run(ctx, white, black, start, game.Options{
			MaxPlies: *plies,
			Clock:    cfg.Clock.Initial,
			Store:    store,
			Referee:  *referee,
			Log:      logger,
			OnMove: func(ply int, m board.Move, san string, pos board.Position) {
				fmt.Printf("%3d. %-8s %s\n", ply+1, san, pos.FEN())
			},
		})
		if err != nil {
			return err
		}
		fmt.Printf("\n[Game %q]\n[Result %q]\n[Termination %q]\n\n%s\n", res.GameID, res.String(), res.Reason, res.PGNMoves())
		if res.Referee != nil {
			fmt.Printf("referee: %s (%s)\n", res.Referee.Outcome(), res.Referee.Method())
		}
	}

	totals, err := store.Totals(ctx)
	if err == nil && totals.GamesPlayed > 0 {
		fmt.Printf("games %d: white %d, black %d, draws %d (%.0f%%), unfinished %d\n",
			totals.GamesPlayed, totals.WhiteWins, totals.BlackWins, totals.Draws, totals.DrawRate(), totals.Unfinished)
	}
	return nil
}

func printPerft(pos board.Position, depth int) error {
	start := time.Now()
	div := board.Divide(pos, depth)
	var total int64
	for _, m := range slices.Sorted(maps.Keys(div)) {
		fmt.Printf("%s: %d\n", m, div[m])
		total += div[m]
	}
	fmt.Printf("\nNodes searched: %d (%v)\n", total, time.Since(start))
	return nil
}
