// Package board implements the chess position, move generation and game state rules.
package board

import "fmt"

// Square is a (row, column) pair on the board.
// Row 0 is the far rank (black's home, rank 8); column 0 is the a-file.
type Square struct {
	Row int
	Col int
}

// NoSquare marks the absence of a square.
var NoSquare = Square{Row: -1, Col: -1}

const (
	files = "abcdefgh"
	ranks = "87654321"
)

// NewSquare creates a square from row and column (0-indexed).
func NewSquare(row, col int) Square {
	return Square{Row: row, Col: col}
}

// IsValid returns true if the square lies on the board.
func (sq Square) IsValid() bool {
	return sq.Row >= 0 && sq.Row < 8 && sq.Col >= 0 && sq.Col < 8
}

// File returns the file letter of the square ('a'..'h').
func (sq Square) File() byte {
	return files[sq.Col]
}

// Rank returns the rank digit of the square ('8'..'1').
func (sq Square) Rank() byte {
	return ranks[sq.Row]
}

// Offset returns the square shifted by the given row and column deltas.
// The result may be off the board; check IsValid.
func (sq Square) Offset(dRow, dCol int) Square {
	return Square{Row: sq.Row + dRow, Col: sq.Col + dCol}
}

// String returns the algebraic name of the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{sq.File(), sq.Rank()})
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	col := int(s[0] - 'a')
	row := int('8' - s[1])

	sq := Square{Row: row, Col: col}
	if s[0] < 'a' || s[1] > '8' || !sq.IsValid() {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}
	return sq, nil
}

// MustParseSquare is like ParseSquare but panics on malformed input.
// Intended for fixtures and constants.
func MustParseSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

// MarshalText implements encoding.TextMarshaler.
func (sq Square) MarshalText() ([]byte, error) {
	return []byte(sq.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (sq *Square) UnmarshalText(text []byte) error {
	if string(text) == "-" {
		*sq = NoSquare
		return nil
	}
	parsed, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*sq = parsed
	return nil
}
