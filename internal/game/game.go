// Package game runs games between players and records their outcome.
package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/venomchess/internal/board"
	"github.com/hailam/venomchess/internal/storage"
)

// ErrIllegalMove is returned when a player answers with a move that is not
// legal in the current position.
var ErrIllegalMove = errors.New("illegal move")

// DefaultMaxPlies ends games that neither side can finish.
const DefaultMaxPlies = 400

// Reasons a game ends.
const (
	ReasonCheckmate = "checkmate"
	ReasonStalemate = "stalemate"
	ReasonPlyLimit  = "ply limit"
)

// Options configures Run.
type Options struct {
	GameID   string        // generated when empty
	MaxPlies int           // 0 means DefaultMaxPlies
	Clock    time.Duration // per-side thinking time, 0 plays untimed
	Store    storage.Store // receives engine statistics, may be nil
	Referee  bool          // replay every move on an independent rules implementation
	Log      *zap.Logger

	// OnMove is called after each move with the position it produced.
	OnMove func(ply int, m board.Move, san string, pos board.Position)
}

// Result describes a played game.
type Result struct {
	GameID string
	Winner board.Color // NoColor for draws and unfinished games
	Over   bool
	Reason string
	Moves  []board.Move
	SAN    []string
	Final  board.Position
	Start  time.Time
	End    time.Time

	Referee *Recorder // nil unless Options.Referee
}

// String returns the result in PGN form.
func (r Result) String() string {
	switch {
	case !r.Over:
		return "*"
	case r.Winner == board.White:
		return "1-0"
	case r.Winner == board.Black:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

// PGNMoves returns the SAN move list with move numbers.
func (r Result) PGNMoves() string {
	var sb strings.Builder
	firstPly := r.Final.Ply - len(r.SAN)
	for i, san := range r.SAN {
		ply := firstPly + i
		if ply%2 == 0 {
			fmt.Fprintf(&sb, "%d. ", ply/2+1)
		} else if i == 0 {
			fmt.Fprintf(&sb, "%d... ", ply/2+1)
		}
		sb.WriteString(san)
		sb.WriteByte(' ')
	}
	sb.WriteString(r.String())
	return sb.String()
}

// Run plays white against black from start until the game ends, the ply
// limit is reached or ctx is done.
func Run(ctx context.Context, white, black Player, start board.Position, opts Options) (Result, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = storage.NopStore{}
	}
	maxPlies := opts.MaxPlies
	if maxPlies <= 0 {
		maxPlies = DefaultMaxPlies
	}

	res := Result{GameID: opts.GameID, Start: time.Now()}
	if res.GameID == "" {
		res.GameID = uuid.NewString()
	}
	log = log.With(zap.String("game", res.GameID))

	if opts.Referee {
		rec, err := NewRecorder(start.FEN())
		if err != nil {
			return res, err
		}
		res.Referee = rec
	}

	pos := start
	if opts.Clock > 0 {
		pos = pos.StartClock(opts.Clock, res.Start)
	}
	players := [2]Player{white, black}
	log.Info("game started",
		zap.String("white", white.Name()),
		zap.String("black", black.Name()),
		zap.String("fen", start.FEN()),
	)

	flagged := false
	for ply := 0; ; ply++ {
		if winner, over := pos.Terminal(); over {
			res.Over = true
			res.Winner = winner
			res.Reason = ReasonStalemate
			if winner != board.NoColor {
				res.Reason = ReasonCheckmate
			}
			break
		}
		if ply >= maxPlies {
			res.Reason = ReasonPlyLimit
			break
		}
		if err := ctx.Err(); err != nil {
			res.Final = pos
			return res, err
		}
		if pos.Flagged() && !flagged {
			// Running out of time only shrinks the budget.
			flagged = true
			log.Warn("clock expired", zap.Stringer("side", pos.SideToMove))
		}

		side := pos.SideToMove
		p := players[side]
		m, err := p.Move(ctx, pos)
		if err != nil {
			res.Final = pos
			log.Error("player failed to move", zap.String("player", p.Name()), zap.Error(err))
			return res, fmt.Errorf("%s to move: %w", side, err)
		}
		if !slices.Contains(pos.AllMoves(), m) {
			res.Final = pos
			return res, fmt.Errorf("%s played %s: %w", p.Name(), m, ErrIllegalMove)
		}

		if sr, ok := p.(statsReporter); ok {
			rec := storage.NewMoveRecord(res.GameID, pos.Ply, side, sr.LastStats())
			if err := store.AppendMove(ctx, rec); err != nil {
				log.Warn("store move stats", zap.Error(err))
			}
		}
		if res.Referee != nil {
			if _, err := res.Referee.Push(m); err != nil {
				res.Final = pos
				return res, err
			}
		}

		san := pos.SAN(m)
		pos = pos.Play(m, time.Now())
		res.Moves = append(res.Moves, m)
		res.SAN = append(res.SAN, san)
		if opts.OnMove != nil {
			opts.OnMove(ply, m, san, pos)
		}
	}

	res.Final = pos
	res.End = time.Now()
	log.Info("game finished",
		zap.String("result", res.String()),
		zap.String("reason", res.Reason),
		zap.Int("plies", len(res.Moves)),
		zap.Duration("elapsed", res.End.Sub(res.Start)),
	)

	summary := storage.GameSummary{
		GameID:   res.GameID,
		White:    white.Name(),
		Black:    black.Name(),
		Result:   res.String(),
		Reason:   res.Reason,
		Plies:    len(res.Moves),
		Started:  res.Start,
		Finished: res.End,
	}
	if err := store.SaveGame(ctx, summary); err != nil {
		log.Warn("store game", zap.Error(err))
	}
	return res, nil
}
