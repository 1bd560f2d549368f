package board

import "fmt"

// Color represents the color of a piece or player.
// The zero value is NoColor so that an empty square is the zero Piece.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	case "none", "":
		*c = NoColor
	default:
		return fmt.Errorf("invalid color: %q", text)
	}
	return nil
}

// PieceType represents the type of a chess piece.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceTypeNames = [...]string{"none", "pawn", "knight", "bishop", "rook", "queen", "king"}

// String returns the piece type name.
func (pt PieceType) String() string {
	if int(pt) >= len(pieceTypeNames) {
		return "none"
	}
	return pieceTypeNames[pt]
}

// Letter returns the uppercase notation letter for the piece type.
// Pawns have no letter in notation but return 'P' for completeness.
func (pt PieceType) Letter() byte {
	const letters = " PNBRQK"
	if int(pt) >= len(letters) {
		return ' '
	}
	return letters[pt]
}

// MarshalText implements encoding.TextMarshaler.
func (pt PieceType) MarshalText() ([]byte, error) {
	return []byte(pt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pt *PieceType) UnmarshalText(text []byte) error {
	for i, name := range pieceTypeNames {
		if name == string(text) {
			*pt = PieceType(i)
			return nil
		}
	}
	if len(text) == 0 {
		*pt = NoPieceType
		return nil
	}
	return fmt.Errorf("invalid piece type: %q", text)
}

// PieceValue is the material value of each piece type in pawns.
var PieceValue = [7]int{0, 1, 3, 3, 5, 9, 0}

// Value returns the material value of the piece type.
func (pt PieceType) Value() int {
	if int(pt) >= len(PieceValue) {
		return 0
	}
	return PieceValue[pt]
}

// Piece is a piece type and color pair. The zero Piece is an empty square.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// NoPiece marks an empty square.
var NoPiece = Piece{}

// Piece constants used by the initial arrangement and tests.
var (
	WhitePawn   = Piece{Pawn, White}
	WhiteKnight = Piece{Knight, White}
	WhiteBishop = Piece{Bishop, White}
	WhiteRook   = Piece{Rook, White}
	WhiteQueen  = Piece{Queen, White}
	WhiteKing   = Piece{King, White}
	BlackPawn   = Piece{Pawn, Black}
	BlackKnight = Piece{Knight, Black}
	BlackBishop = Piece{Bishop, Black}
	BlackRook   = Piece{Rook, Black}
	BlackQueen  = Piece{Queen, Black}
	BlackKing   = Piece{King, Black}
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt == NoPieceType || c == NoColor {
		return NoPiece
	}
	return Piece{Type: pt, Color: c}
}

// IsEmpty returns true if the piece marks an empty square.
func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// IsEnemy returns true if other is a piece of the opposite color.
func (p Piece) IsEnemy(other Piece) bool {
	return !p.IsEmpty() && !other.IsEmpty() && p.Color != other.Color
}

// Value returns the material value of the piece.
func (p Piece) Value() int {
	return p.Type.Value()
}

// String returns the FEN character for the piece, or "." for an empty square.
// FEN characters are only a text codec; the color is always carried explicitly.
func (p Piece) String() string {
	if p.IsEmpty() {
		return "."
	}
	return string(p.fenChar())
}

func (p Piece) fenChar() byte {
	const chars = " pnbrqk"
	c := chars[p.Type]
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return c
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}
