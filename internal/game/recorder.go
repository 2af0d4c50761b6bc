package game

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"

	"github.com/hailam/venomchess/internal/board"
)

// Recorder replays a game on an independent rules implementation. It
// rejects moves that implementation considers illegal and keeps its own
// SAN record and outcome. Once the referee declares the game over (it also
// knows draw rules the engine does not) further moves are ignored.
type Recorder struct {
	game *nchess.Game
	san  []string
}

// NewRecorder starts a record from fen.
func NewRecorder(fen string) (*Recorder, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("referee fen: %w", err)
	}
	return &Recorder{game: nchess.NewGame(opt)}, nil
}

// Push plays m. It reports false without error if the referee's game had
// already finished.
func (r *Recorder) Push(m board.Move) (bool, error) {
	if r.Finished() {
		return false, nil
	}
	pos := r.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, m.String())
	if err != nil {
		return false, fmt.Errorf("referee rejects %s: %w", m, err)
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := r.game.Move(mv, nil); err != nil {
		return false, fmt.Errorf("referee rejects %s: %w", m, err)
	}
	r.san = append(r.san, san)
	return true, nil
}

// Finished returns true once the referee has decided the game.
func (r *Recorder) Finished() bool {
	return r.game.Outcome() != nchess.NoOutcome
}

// Outcome returns the referee's result string: 1-0, 0-1, 1/2-1/2 or *.
func (r *Recorder) Outcome() string {
	return string(r.game.Outcome())
}

// Method names how the referee's game ended.
func (r *Recorder) Method() string {
	return r.game.Method().String()
}

// SAN returns the moves pushed so far in standard algebraic notation.
func (r *Recorder) SAN() []string {
	return r.san
}

// FEN returns the referee's current position.
func (r *Recorder) FEN() string {
	return r.game.FEN()
}
