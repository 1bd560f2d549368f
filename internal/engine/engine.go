package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/hailam/chessclub/internal/board"
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	Move  board.Move
}

// SearchLimits specifies how a move is chosen.
type SearchLimits struct {
	Depth  int  // Fixed search depth in plies
	Random bool // Pick a uniformly random legal move instead of searching
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // random legal move
	Medium                   // 2 ply
	Hard                     // 3 ply
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Random: true},
	Medium: {Depth: 2},
	Hard:   {Depth: 3},
}

var difficultyNames = [...]string{"easy", "medium", "hard"}

// String returns the lowercase difficulty name.
func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return "unknown"
	}
	return difficultyNames[d]
}

// Title returns the capitalised name used for computer opponents.
func (d Difficulty) Title() string {
	s := d.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseDifficulty parses "easy", "medium" or "hard" (case insensitive).
func ParseDifficulty(s string) (Difficulty, error) {
	for i, name := range difficultyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Difficulty(i), nil
		}
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Engine is the chess AI engine. It is not safe for concurrent use; callers
// serialise access together with the position being searched.
type Engine struct {
	random     *Random
	minimax    *Minimax
	difficulty Difficulty

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine. The seed drives the easy level's
// random choices.
func NewEngine(seed int64) *Engine {
	return &Engine{
		random:     NewRandom(seed),
		minimax:    NewMinimax(DifficultySettings[Medium].Depth),
		difficulty: Medium,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// Search finds a move for the side to move at the current difficulty.
// It returns false when that side has no legal move.
func (e *Engine) Search(pos *board.Position) (board.Move, bool) {
	move, _, ok := e.SearchWithLimits(pos, DifficultySettings[e.difficulty])
	return move, ok
}

// SearchDepth runs a fixed-depth minimax search regardless of difficulty.
func (e *Engine) SearchDepth(pos *board.Position, depth int) (board.Move, int, bool) {
	return e.SearchWithLimits(pos, SearchLimits{Depth: depth})
}

// SearchWithLimits finds a move with specific search limits.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) (board.Move, int, bool) {
	startTime := time.Now()

	var strategy Strategy = e.random
	if !limits.Random {
		e.minimax.Depth = limits.Depth
		strategy = e.minimax
	}

	move, score, ok := strategy.BestMove(pos)

	if e.OnInfo != nil && ok {
		info := SearchInfo{
			Depth: limits.Depth,
			Score: score,
			Time:  time.Since(startTime),
			Move:  move,
		}
		if !limits.Random {
			info.Nodes = e.minimax.Nodes()
		}
		e.OnInfo(info)
	}

	return move, score, ok
}

// Perft counts leaf nodes of the legal move tree (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return perft(pos, pos.SideToMove, depth)
}

func perft(pos *board.Position, c board.Color, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.LegalMoves(c)
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		pos.WithMove(m.From, m.To, func() {
			nodes += perft(pos, c.Other(), depth-1)
		})
	}
	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}
