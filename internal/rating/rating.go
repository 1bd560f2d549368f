// Package rating computes Elo rating changes for finished player-vs-player games.
package rating

import (
	"math"

	"github.com/hailam/chessclub/internal/board"
)

// K is the Elo development coefficient.
const K = 32

// Initial is the rating given to new players and invited friends.
const Initial = 1200

// Outcome is the result of a finished game from white's point of view.
type Outcome int

const (
	WhiteWins Outcome = iota
	BlackWins
	Draw
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	default:
		return "draw"
	}
}

// OutcomeOf converts a finished game's winner. ok is false while the game
// has no result yet.
func OutcomeOf(w board.Winner) (o Outcome, ok bool) {
	switch w {
	case board.WinnerWhite:
		return WhiteWins, true
	case board.WinnerBlack:
		return BlackWins, true
	case board.WinnerDraw:
		return Draw, true
	default:
		return Draw, false
	}
}

// Change holds the rating deltas for both players.
type Change struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Expected returns white's expected score against black.
func Expected(white, black int) float64 {
	return 1 / (1 + math.Pow(10, float64(black-white)/400))
}

// Delta computes the rating change of both players. The caller guarantees the
// game was a finished player-vs-player game.
func Delta(white, black int, o Outcome) Change {
	expWhite := Expected(white, black)
	expBlack := 1 - expWhite

	var actWhite float64
	switch o {
	case WhiteWins:
		actWhite = 1
	case Draw:
		actWhite = 0.5
	}
	actBlack := 1 - actWhite

	return Change{
		White: round(K * (actWhite - expWhite)),
		Black: round(K * (actBlack - expBlack)),
	}
}

// round rounds half up, so -15.5 becomes -15.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
