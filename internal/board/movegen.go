package board

// Direction tables in generation order. Move lists inherit this order, and
// the search breaks ties by it.
var (
	rookDirections   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightOffsets    = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets      = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// pawnDirection returns the row delta of a forward pawn step.
func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// pawnStartRow returns the row pawns of the color start on.
func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

// PseudoLegalDestinations returns every square the piece on sq could move to,
// ignoring whether the move would leave its own king in check.
// Returns nil for an empty square.
func (p *Position) PseudoLegalDestinations(sq Square) []Square {
	piece := p.PieceAt(sq)
	if piece.IsEmpty() {
		return nil
	}
	return p.appendDestinations(nil, sq, piece, false)
}

// AttackedSquares returns the squares the piece on sq attacks. This matches
// PseudoLegalDestinations except that pawns attack both forward diagonals
// whether or not they are occupied, and never attack straight ahead.
func (p *Position) AttackedSquares(sq Square) []Square {
	piece := p.PieceAt(sq)
	if piece.IsEmpty() {
		return nil
	}
	return p.appendDestinations(nil, sq, piece, true)
}

func (p *Position) appendDestinations(dst []Square, from Square, piece Piece, attacks bool) []Square {
	switch piece.Type {
	case Pawn:
		if attacks {
			return p.appendPawnAttacks(dst, from, piece)
		}
		return p.appendPawnMoves(dst, from, piece)
	case Knight:
		return p.appendSteps(dst, from, piece, knightOffsets[:])
	case Bishop:
		return p.appendRays(dst, from, piece, bishopDirections[:])
	case Rook:
		return p.appendRays(dst, from, piece, rookDirections[:])
	case Queen:
		dst = p.appendRays(dst, from, piece, rookDirections[:])
		return p.appendRays(dst, from, piece, bishopDirections[:])
	case King:
		return p.appendSteps(dst, from, piece, kingOffsets[:])
	}
	return dst
}

// appendPawnMoves generates pushes and captures. No en passant, no promotion.
func (p *Position) appendPawnMoves(dst []Square, from Square, piece Piece) []Square {
	dir := pawnDirection(piece.Color)

	// Forward move
	one := from.Offset(dir, 0)
	if one.IsValid() && p.IsEmpty(one) {
		dst = append(dst, one)

		// Double move from start position
		two := from.Offset(2*dir, 0)
		if from.Row == pawnStartRow(piece.Color) && p.IsEmpty(two) {
			dst = append(dst, two)
		}
	}

	// Diagonal captures onto enemy pieces only
	for _, dCol := range [2]int{-1, 1} {
		to := from.Offset(dir, dCol)
		if to.IsValid() && piece.IsEnemy(p.PieceAt(to)) {
			dst = append(dst, to)
		}
	}

	return dst
}

// appendPawnAttacks generates the two forward diagonals regardless of occupancy.
func (p *Position) appendPawnAttacks(dst []Square, from Square, piece Piece) []Square {
	dir := pawnDirection(piece.Color)
	for _, dCol := range [2]int{-1, 1} {
		to := from.Offset(dir, dCol)
		if to.IsValid() {
			dst = append(dst, to)
		}
	}
	return dst
}

// appendSteps generates fixed-offset moves onto empty or enemy squares.
func (p *Position) appendSteps(dst []Square, from Square, piece Piece, offsets [][2]int) []Square {
	for _, d := range offsets {
		to := from.Offset(d[0], d[1])
		if !to.IsValid() {
			continue
		}
		if target := p.PieceAt(to); target.IsEmpty() || piece.IsEnemy(target) {
			dst = append(dst, to)
		}
	}
	return dst
}

// appendRays casts rays until the board edge or the first occupied square,
// which is included only when it holds an enemy piece.
func (p *Position) appendRays(dst []Square, from Square, piece Piece, directions [][2]int) []Square {
	for _, d := range directions {
		for i := 1; i < 8; i++ {
			to := from.Offset(i*d[0], i*d[1])
			if !to.IsValid() {
				break
			}
			target := p.PieceAt(to)
			if target.IsEmpty() {
				dst = append(dst, to)
				continue
			}
			if piece.IsEnemy(target) {
				dst = append(dst, to)
			}
			break
		}
	}
	return dst
}
