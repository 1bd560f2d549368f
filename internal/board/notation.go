package board

import "strings"

// Notation encodes a move in the simplified algebraic form used for move lists:
// the piece letter for non-pawns, the source file for pawn captures, "x" on a
// capture, then the destination square. There is no disambiguation between
// identical pieces and no check or mate suffix.
func Notation(from, to Square, piece, captured Piece) string {
	var sb strings.Builder

	capture := !captured.IsEmpty()
	if piece.Type == Pawn {
		// Pawn captures include the file of origin
		if capture {
			sb.WriteByte(from.File())
		}
	} else {
		sb.WriteByte(piece.Type.Letter())
	}

	if capture {
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())
	return sb.String()
}

// Notations returns the notation of each move in order.
func Notations(moves []Move) []string {
	result := make([]string, len(moves))
	for i, m := range moves {
		result[i] = m.Notation
	}
	return result
}
