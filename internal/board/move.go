package board

import "fmt"

// Move is a played or candidate move. Once recorded in a game history it is
// never modified.
type Move struct {
	From     Square `json:"from"`
	To       Square `json:"to"`
	Piece    Piece  `json:"piece"`
	Captured Piece  `json:"captured"`
	Notation string `json:"notation,omitempty"`
}

// NoMove represents the absence of a move.
var NoMove = Move{From: NoSquare, To: NoSquare}

// IsNone returns true for NoMove (or any move without a valid origin).
func (m Move) IsNone() bool {
	return !m.From.IsValid()
}

// IsCapture returns true if this move captured a piece.
func (m Move) IsCapture() bool {
	return !m.Captured.IsEmpty()
}

// UCI returns the coordinate form of the move (e.g., "e2e4").
func (m Move) UCI() string {
	if m.IsNone() {
		return "0000"
	}
	return m.From.String() + m.To.String()
}

// String returns the notation if recorded, otherwise the coordinate form.
func (m Move) String() string {
	if m.Notation != "" {
		return m.Notation
	}
	return m.UCI()
}

// ParseUCI parses a coordinate move string into its squares.
func ParseUCI(s string) (from, to Square, err error) {
	if len(s) != 4 {
		return NoSquare, NoSquare, fmt.Errorf("invalid move string: %s", s)
	}
	if from, err = ParseSquare(s[0:2]); err != nil {
		return NoSquare, NoSquare, err
	}
	if to, err = ParseSquare(s[2:4]); err != nil {
		return NoSquare, NoSquare, err
	}
	return from, to, nil
}

// NewMove describes moving the piece currently on from to to.
func (p *Position) NewMove(from, to Square) Move {
	piece, captured := p.PieceAt(from), p.PieceAt(to)
	return Move{
		From:     from,
		To:       to,
		Piece:    piece,
		Captured: captured,
		Notation: Notation(from, to, piece, captured),
	}
}

// MakeMove plays from -> to for the side to move, flips the side to move and
// classifies the resulting position. Checkmate concludes the game for the
// player who just moved; stalemate concludes it as a draw.
// The move is not validated; callers check IsLegal first.
func (p *Position) MakeMove(from, to Square) (Move, Status) {
	m := p.NewMove(from, to)
	p.Apply(from, to)
	p.SideToMove = p.SideToMove.Other()

	status := p.Classify()
	switch status {
	case StatusCheckmate:
		p.Conclude(WinnerOf(p.SideToMove.Other()), ReasonCheckmate)
	case StatusStalemate:
		p.Conclude(WinnerDraw, ReasonStalemate)
	}
	return m, status
}
