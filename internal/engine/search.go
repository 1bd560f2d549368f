package engine

import (
	"github.com/hailam/chessclub/internal/board"
)

// Infinity bounds every reachable evaluation (total material is far smaller).
const Infinity = 30000

// Strategy chooses a move for the side to move.
// ok is false when that side has no legal move.
type Strategy interface {
	BestMove(pos *board.Position) (move board.Move, score int, ok bool)
}

// Minimax searches to a fixed depth with alpha-beta pruning.
// Black maximises and white minimises the evaluation. Among equally scored
// moves the first in generation order wins. The position is modified in place
// during the search and restored before returning.
type Minimax struct {
	Depth int
	nodes uint64
}

// NewMinimax creates a fixed-depth searcher.
func NewMinimax(depth int) *Minimax {
	return &Minimax{Depth: depth}
}

// Nodes returns the number of nodes visited by the last search.
func (m *Minimax) Nodes() uint64 {
	return m.nodes
}

// BestMove implements Strategy.
func (m *Minimax) BestMove(pos *board.Position) (board.Move, int, bool) {
	m.nodes = 0
	depth := m.Depth
	if depth < 1 {
		depth = 1
	}

	side := pos.SideToMove
	moves := pos.LegalMoves(side)
	if len(moves) == 0 {
		return board.NoMove, Evaluate(pos), false
	}

	maximize := side == board.Black
	best := board.NoMove
	bestScore := Infinity
	if maximize {
		bestScore = -Infinity
	}
	alpha, beta := -Infinity, Infinity

	for _, mv := range moves {
		var score int
		pos.WithMove(mv.From, mv.To, func() {
			score = m.alphaBeta(pos, depth-1, alpha, beta, side.Other())
		})

		if maximize {
			if score > bestScore {
				bestScore, best = score, mv
			}
			if bestScore > alpha {
				alpha = bestScore
			}
		} else {
			if score < bestScore {
				bestScore, best = score, mv
			}
			if bestScore < beta {
				beta = bestScore
			}
		}
	}

	best.Notation = board.Notation(best.From, best.To, best.Piece, best.Captured)
	return best, bestScore, true
}

// alphaBeta scores the position with c to move.
func (m *Minimax) alphaBeta(pos *board.Position, depth, alpha, beta int, c board.Color) int {
	m.nodes++
	if depth <= 0 {
		return Evaluate(pos)
	}

	moves := pos.LegalMoves(c)
	if len(moves) == 0 {
		return Evaluate(pos)
	}

	if c == board.Black {
		best := -Infinity
		for _, mv := range moves {
			var score int
			pos.WithMove(mv.From, mv.To, func() {
				score = m.alphaBeta(pos, depth-1, alpha, beta, c.Other())
			})
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break // beta cutoff
			}
		}
		return best
	}

	best := Infinity
	for _, mv := range moves {
		var score int
		pos.WithMove(mv.From, mv.To, func() {
			score = m.alphaBeta(pos, depth-1, alpha, beta, c.Other())
		})
		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta {
			break // alpha cutoff
		}
	}
	return best
}

// Exhaustive runs plain minimax without pruning. It returns the same move and
// score as a Minimax of equal depth and exists to check that pruning never
// changes the result.
func Exhaustive(pos *board.Position, depth int) (board.Move, int, bool) {
	if depth < 1 {
		depth = 1
	}

	side := pos.SideToMove
	moves := pos.LegalMoves(side)
	if len(moves) == 0 {
		return board.NoMove, Evaluate(pos), false
	}

	best := board.NoMove
	bestScore := 0
	for i, mv := range moves {
		var score int
		pos.WithMove(mv.From, mv.To, func() {
			score = minimax(pos, depth-1, side.Other())
		})
		if i == 0 || better(side, score, bestScore) {
			bestScore, best = score, mv
		}
	}

	best.Notation = board.Notation(best.From, best.To, best.Piece, best.Captured)
	return best, bestScore, true
}

func minimax(pos *board.Position, depth int, c board.Color) int {
	if depth <= 0 {
		return Evaluate(pos)
	}
	moves := pos.LegalMoves(c)
	if len(moves) == 0 {
		return Evaluate(pos)
	}

	var best int
	for i, mv := range moves {
		var score int
		pos.WithMove(mv.From, mv.To, func() {
			score = minimax(pos, depth-1, c.Other())
		})
		if i == 0 || better(c, score, best) {
			best = score
		}
	}
	return best
}

// better reports whether score strictly improves on best for side c.
func better(c board.Color, score, best int) bool {
	if c == board.Black {
		return score > best
	}
	return score < best
}
