package engine

import (
	"strconv"

	"github.com/hailam/chessclub/internal/board"
)

// Evaluate returns the material balance of the position in pawns.
// Black pieces count positive and white pieces negative, so black is the
// maximising side. Kings are worth nothing.
func Evaluate(pos *board.Position) int {
	score := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := pos.Board[row][col]
			switch piece.Color {
			case board.Black:
				score += piece.Value()
			case board.White:
				score -= piece.Value()
			}
		}
	}
	return score
}

// ScoreToString converts a score to a signed human-readable string.
func ScoreToString(score int) string {
	if score > 0 {
		return "+" + strconv.Itoa(score)
	}
	return strconv.Itoa(score)
}
