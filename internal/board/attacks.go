package board

import (
	"errors"
	"fmt"
)

// ErrKingMissing reports a malformed position with no king for a color.
var ErrKingMissing = errors.New("king missing")

// IsSquareAttacked returns true if any piece of color by has sq in its attack set.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := p.Board[row][col]
			if piece.Color != by || piece.IsEmpty() {
				continue
			}
			if p.attacks(Square{row, col}, piece, sq) {
				return true
			}
		}
	}
	return false
}

// attacks reports whether piece on from has target in its attack set.
// Equivalent to membership in AttackedSquares(from) without allocating.
func (p *Position) attacks(from Square, piece Piece, target Square) bool {
	if from == target {
		return false
	}
	dRow := target.Row - from.Row
	dCol := target.Col - from.Col

	if piece.Type == Pawn {
		return dRow == pawnDirection(piece.Color) && (dCol == 1 || dCol == -1)
	}

	// Non-pawn attack sets never contain squares held by the attacker's own side.
	if occupant := p.PieceAt(target); !occupant.IsEmpty() && occupant.Color == piece.Color {
		return false
	}

	switch piece.Type {
	case Knight:
		return (abs(dRow) == 1 && abs(dCol) == 2) || (abs(dRow) == 2 && abs(dCol) == 1)
	case King:
		return abs(dRow) <= 1 && abs(dCol) <= 1
	case Rook:
		return (dRow == 0 || dCol == 0) && p.pathClear(from, target)
	case Bishop:
		return abs(dRow) == abs(dCol) && p.pathClear(from, target)
	case Queen:
		return (dRow == 0 || dCol == 0 || abs(dRow) == abs(dCol)) && p.pathClear(from, target)
	}
	return false
}

// pathClear reports whether every square strictly between from and to is empty.
// from and to must share a row, column or diagonal.
func (p *Position) pathClear(from, to Square) bool {
	stepRow, stepCol := sign(to.Row-from.Row), sign(to.Col-from.Col)
	for sq := from.Offset(stepRow, stepCol); sq != to; sq = sq.Offset(stepRow, stepCol) {
		if !p.IsEmpty(sq) {
			return false
		}
	}
	return true
}

// FindKing scans the board for the king of color c.
func (p *Position) FindKing(c Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if piece := p.Board[row][col]; piece.Type == King && piece.Color == c {
				return Square{row, col}, true
			}
		}
	}
	return NoSquare, false
}

// KingInCheck returns true if the king of color c is attacked by the opponent.
// A position without that king is malformed; KingInCheck panics with an error
// wrapping ErrKingMissing rather than reporting "not in check".
func (p *Position) KingInCheck(c Color) bool {
	ksq, ok := p.FindKing(c)
	if !ok {
		panic(fmt.Errorf("board: %s %w\n%s", c, ErrKingMissing, p))
	}
	return p.IsSquareAttacked(ksq, c.Other())
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.KingInCheck(p.SideToMove)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
