// Package analysis grades each move of a finished game against the engine.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/hailam/chessclub/internal/board"
	"github.com/hailam/chessclub/internal/engine"
)

// Depth is the search depth used to suggest a better move.
const Depth = 2

// ErrIllegalReplay is returned when a recorded move cannot be replayed.
var ErrIllegalReplay = errors.New("illegal move in replay")

// Evaluation is the quality bucket of a played move.
type Evaluation int

const (
	Brilliant Evaluation = iota // never produced by Classify
	Good
	Inaccuracy
	Mistake
	Blunder
)

var evaluationNames = [...]string{"brilliant", "good", "inaccuracy", "mistake", "blunder"}

// String returns the lowercase bucket name.
func (e Evaluation) String() string {
	if e < 0 || int(e) >= len(evaluationNames) {
		return "unknown"
	}
	return evaluationNames[e]
}

// MarshalText implements encoding.TextMarshaler.
func (e Evaluation) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Evaluation) UnmarshalText(text []byte) error {
	for i, name := range evaluationNames {
		if name == string(text) {
			*e = Evaluation(i)
			return nil
		}
	}
	return fmt.Errorf("invalid evaluation: %q", text)
}

// ShowsSuggestion reports whether the engine's move is worth showing next to
// a move of this quality.
func (e Evaluation) ShowsSuggestion() bool {
	return e != Brilliant && e != Good
}

// Classify buckets an absolute score difference in pawns.
func Classify(diff float64) Evaluation {
	switch {
	case diff <= 0.3:
		return Good
	case diff <= 0.7:
		return Inaccuracy
	case diff <= 1.5:
		return Mistake
	default:
		return Blunder
	}
}

// Searcher is the part of the engine the analyzer needs.
type Searcher interface {
	SearchDepth(pos *board.Position, depth int) (board.Move, int, bool)
}

// Entry is the verdict on one played move.
type Entry struct {
	Ply             int         `json:"ply"`
	Move            board.Move  `json:"move"`
	Evaluation      Evaluation  `json:"evaluation"`
	BestMove        board.Move  `json:"best_move"`
	HasBestMove     bool        `json:"has_best_move"`
	BestScore       int         `json:"best_score"`
	ScoreDifference float64     `json:"score_difference"`
	Mover           board.Color `json:"mover"`
}

// Analyze replays moves from the initial position. For each move it asks the
// searcher for the best move in the position before it, and compares the
// material balance before the move with the balance after the played move.
func Analyze(moves []board.Move, s Searcher) ([]Entry, error) {
	pos := board.NewPosition()
	entries := make([]Entry, 0, len(moves))

	for i, m := range moves {
		if err := checkReplay(pos, i, m); err != nil {
			return nil, err
		}

		mover := pos.SideToMove
		best, bestScore, ok := s.SearchDepth(pos, Depth)
		before := engine.Evaluate(pos)

		played, _ := pos.MakeMove(m.From, m.To)
		after := engine.Evaluate(pos)

		diff := math.Abs(float64(before - after))
		entries = append(entries, Entry{
			Ply:             i + 1,
			Move:            played,
			Evaluation:      Classify(diff),
			BestMove:        best,
			HasBestMove:     ok,
			BestScore:       bestScore,
			ScoreDifference: diff,
			Mover:           mover,
		})
	}

	return entries, nil
}

// Replay returns the position after the first ply moves.
func Replay(moves []board.Move, ply int) (*board.Position, error) {
	if ply < 0 || ply > len(moves) {
		return nil, fmt.Errorf("ply %d out of range [0, %d]", ply, len(moves))
	}

	pos := board.NewPosition()
	for i, m := range moves[:ply] {
		if err := checkReplay(pos, i, m); err != nil {
			return nil, err
		}
		pos.MakeMove(m.From, m.To)
	}
	return pos, nil
}

func checkReplay(pos *board.Position, i int, m board.Move) error {
	if pos.IsOver() {
		return fmt.Errorf("%w: move %d %s after the game ended", ErrIllegalReplay, i+1, m.UCI())
	}
	if pos.PieceAt(m.From).Color != pos.SideToMove || !pos.IsLegal(m.From, m.To) {
		return fmt.Errorf("%w: move %d %s", ErrIllegalReplay, i+1, m.UCI())
	}
	return nil
}

// Counts tallies entries per bucket.
type Counts map[Evaluation]int

// Summary tallies the entries of each side.
func Summary(entries []Entry) (white, black Counts) {
	white, black = Counts{}, Counts{}
	for _, e := range entries {
		if e.Mover == board.Black {
			black[e.Evaluation]++
		} else {
			white[e.Evaluation]++
		}
	}
	return white, black
}
