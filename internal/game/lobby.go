package game

import (
	"github.com/hailam/chessclub/internal/engine"
	"github.com/hailam/chessclub/internal/rating"
)

// Opponent is the black player. Computer opponents have no rating.
type Opponent struct {
	Name     string `json:"name"`
	Rating   int    `json:"rating,omitempty"`
	Computer bool   `json:"computer,omitempty"`
}

// SimulatedPlayers is the fixed list shown as online.
var SimulatedPlayers = []Opponent{
	{Name: "AliceChess", Rating: 1350},
	{Name: "BobMaster", Rating: 1180},
	{Name: "CharlieKnight", Rating: 1420},
	{Name: "DianaQueen", Rating: 1250},
}

// OnlinePlayers returns the simulated players other than currentUser.
func OnlinePlayers(currentUser string) []Opponent {
	players := make([]Opponent, 0, len(SimulatedPlayers))
	for _, p := range SimulatedPlayers {
		if p.Name != currentUser {
			players = append(players, p)
		}
	}
	return players
}

// ComputerOpponent names the engine after its difficulty, e.g. "AI (Hard)".
func ComputerOpponent(d engine.Difficulty) Opponent {
	return Opponent{Name: "AI (" + d.Title() + ")", Computer: true}
}

// FriendOpponent is a friend invited from the friends list.
func FriendOpponent(name string) Opponent {
	return Opponent{Name: name, Rating: rating.Initial}
}

// GuestOpponent takes over the black pieces when a computer game becomes a
// two player game.
func GuestOpponent() Opponent {
	return Opponent{Name: "Guest", Rating: rating.Initial}
}

// FindPlayer looks up a simulated player by name.
func FindPlayer(name string) (Opponent, bool) {
	for _, p := range SimulatedPlayers {
		if p.Name == name {
			return p, true
		}
	}
	return Opponent{}, false
}
