// Package pgn exports recorded games as PGN.
package pgn

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/hailam/chessclub/internal/board"
	"github.com/hailam/chessclub/internal/storage"
)

// Site is written into the Site tag.
const Site = "chessclub"

// Export replays a recorded game through a full rules implementation and
// renders it as PGN. The user is white. Games where a pawn reached the last
// rank cannot be exported since they were played without promotion.
func Export(rec storage.GameRecord, user string) (string, error) {
	g := chess.NewGame()

	event := "Casual Game"
	if rec.Mode == storage.ModePvC {
		event = "Computer Game"
	}
	white, black := user, rec.Opponent
	if rec.UserColor == board.Black {
		white, black = black, white
	}

	g.AddTagPair("Event", event)
	g.AddTagPair("Site", Site)
	g.AddTagPair("Date", rec.Date.Format("2006.01.02"))
	g.AddTagPair("White", white)
	g.AddTagPair("Black", black)
	if rec.Reason != board.ReasonNone {
		g.AddTagPair("Termination", rec.Reason.String())
	}

	for i, m := range rec.Moves {
		move, err := chess.UCINotation{}.Decode(g.Position(), m.UCI())
		if err != nil {
			return "", fmt.Errorf("pgn: move %d %s: %w", i+1, m.UCI(), err)
		}
		if err := g.Move(move); err != nil {
			return "", fmt.Errorf("pgn: move %d %s: %w", i+1, m.UCI(), err)
		}
	}

	// Checkmate and stalemate are detected by the replay; other endings are
	// applied explicitly.
	if g.Outcome() == chess.NoOutcome {
		switch rec.Result {
		case board.WinnerWhite:
			g.Resign(chess.Black)
		case board.WinnerBlack:
			g.Resign(chess.White)
		case board.WinnerDraw:
			if err := g.Draw(chess.DrawOffer); err != nil {
				return "", fmt.Errorf("pgn: %w", err)
			}
		}
	}

	// The library also ends games on insufficient material and repetition,
	// which these rules do not. The recorded result wins.
	result := resultOf(rec.Result)
	g.AddTagPair("Result", result)
	text := g.String()
	if got := g.Outcome().String(); got != result && g.Outcome() != chess.NoOutcome {
		if i := strings.LastIndex(text, got); i >= 0 {
			text = text[:i] + result + text[i+len(got):]
		}
	}

	return text, nil
}

func resultOf(w board.Winner) string {
	switch w {
	case board.WinnerWhite:
		return string(chess.WhiteWon)
	case board.WinnerBlack:
		return string(chess.BlackWon)
	case board.WinnerDraw:
		return string(chess.Draw)
	}
	return string(chess.NoOutcome)
}
