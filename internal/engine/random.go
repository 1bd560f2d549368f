package engine

import (
	"math/rand"

	"github.com/hailam/chessclub/internal/board"
)

// Random picks uniformly among the legal moves of the side to move.
// It is not safe for concurrent use.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a random mover. The same seed yields the same choices.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// BestMove implements Strategy.
func (r *Random) BestMove(pos *board.Position) (board.Move, int, bool) {
	moves := pos.LegalMoves(pos.SideToMove)
	if len(moves) == 0 {
		return board.NoMove, Evaluate(pos), false
	}

	m := moves[r.rng.Intn(len(moves))]
	m.Notation = board.Notation(m.From, m.To, m.Piece, m.Captured)

	var score int
	pos.WithMove(m.From, m.To, func() {
		score = Evaluate(pos)
	})
	return m, score, true
}
