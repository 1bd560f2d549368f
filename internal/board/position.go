package board

import (
	"fmt"
	"strings"
)

// Winner is the outcome of a finished game.
type Winner uint8

const (
	WinnerNone Winner = iota
	WinnerWhite
	WinnerBlack
	WinnerDraw
)

// WinnerOf returns the Winner value for a color.
func WinnerOf(c Color) Winner {
	switch c {
	case White:
		return WinnerWhite
	case Black:
		return WinnerBlack
	default:
		return WinnerNone
	}
}

var winnerNames = [...]string{"none", "white", "black", "draw"}

// String returns the winner name.
func (w Winner) String() string {
	if int(w) >= len(winnerNames) {
		return "none"
	}
	return winnerNames[w]
}

// MarshalText implements encoding.TextMarshaler.
func (w Winner) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Winner) UnmarshalText(text []byte) error {
	for i, name := range winnerNames {
		if name == string(text) {
			*w = Winner(i)
			return nil
		}
	}
	return fmt.Errorf("invalid winner: %q", text)
}

// Reason describes how a game ended.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonCheckmate
	ReasonStalemate
	ReasonTimeForfeit
	ReasonResignation
	ReasonDrawAgreed
	ReasonAbandoned
)

var reasonNames = [...]string{"none", "checkmate", "stalemate", "time forfeit", "resignation", "draw agreed", "abandoned"}

// String returns the reason name.
func (r Reason) String() string {
	if int(r) >= len(reasonNames) {
		return "none"
	}
	return reasonNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	for i, name := range reasonNames {
		if name == string(text) {
			*r = Reason(i)
			return nil
		}
	}
	return fmt.Errorf("invalid reason: %q", text)
}

// Position represents a complete chess position.
type Position struct {
	// Board is indexed [row][col]; row 0 is rank 8.
	Board [8][8]Piece

	// Game state
	SideToMove Color
	Over       bool
	Winner     Winner
	Reason     Reason
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewPosition creates the starting position.
func NewPosition() *Position {
	p := &Position{}
	p.Reset()
	return p
}

// Reset restores the initial arrangement with white to move.
func (p *Position) Reset() {
	p.Clear()
	for col, pt := range backRank {
		p.Board[0][col] = Piece{pt, Black}
		p.Board[1][col] = BlackPawn
		p.Board[6][col] = WhitePawn
		p.Board[7][col] = Piece{pt, White}
	}
}

// Clear resets the position to an empty board with white to move.
func (p *Position) Clear() {
	*p = Position{SideToMove: White}
}

// PieceAt returns the piece at the given square, or NoPiece if empty or off the board.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return p.Board[sq.Row][sq.Col]
}

// SetPiece places a piece on a square. No validation is performed.
func (p *Position) SetPiece(sq Square, piece Piece) {
	p.Board[sq.Row][sq.Col] = piece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.PieceAt(sq).IsEmpty()
}

// Turn returns the side to move.
func (p *Position) Turn() Color {
	return p.SideToMove
}

// IsOver returns true once the game has been concluded.
func (p *Position) IsOver() bool {
	return p.Over
}

// GameWinner returns the winner, or WinnerNone while the game is running.
func (p *Position) GameWinner() Winner {
	if !p.Over {
		return WinnerNone
	}
	return p.Winner
}

// Conclude marks the game as finished.
func (p *Position) Conclude(w Winner, r Reason) {
	p.Over = true
	p.Winner = w
	p.Reason = r
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Equal reports whether two positions hold the same pieces, side to move and status.
func (p *Position) Equal(o *Position) bool {
	return *p == *o
}

// Material returns the material sum for one color.
func (p *Position) Material(c Color) int {
	total := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if piece := p.Board[row][col]; piece.Color == c {
				total += piece.Value()
			}
		}
	}
	return total
}

// Validate checks that each side has exactly one king.
func (p *Position) Validate() error {
	var kings [3]int
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if piece := p.Board[row][col]; piece.Type == King {
				kings[piece.Color]++
			}
		}
	}
	if kings[White] != 1 {
		return fmt.Errorf("white must have exactly one king, found %d", kings[White])
	}
	if kings[Black] != 1 {
		return fmt.Errorf("black must have exactly one king, found %d", kings[Black])
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for row := 0; row < 8; row++ {
		fmt.Fprintf(&sb, "%c  ", ranks[row])
		for col := 0; col < 8; col++ {
			sb.WriteString(p.Board[row][col].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	if p.Over {
		fmt.Fprintf(&sb, "Game over: %s (%s)\n", p.Winner, p.Reason)
	}
	return sb.String()
}
