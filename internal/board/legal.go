package board

// Undo stores the information needed to revert a speculative move.
type Undo struct {
	From     Square
	To       Square
	Moved    Piece
	Captured Piece
}

// Apply relocates the piece on from to to without validation and without
// flipping the side to move. The returned Undo must be passed to Revert.
func (p *Position) Apply(from, to Square) Undo {
	undo := Undo{
		From:     from,
		To:       to,
		Moved:    p.Board[from.Row][from.Col],
		Captured: p.Board[to.Row][to.Col],
	}
	p.Board[to.Row][to.Col] = undo.Moved
	p.Board[from.Row][from.Col] = NoPiece
	return undo
}

// Revert restores the squares touched by Apply, including any captured piece.
func (p *Position) Revert(undo Undo) {
	p.Board[undo.From.Row][undo.From.Col] = undo.Moved
	p.Board[undo.To.Row][undo.To.Col] = undo.Captured
}

// WithMove applies a move, runs fn and reverts the move on every exit path,
// including a panic inside fn.
func (p *Position) WithMove(from, to Square, fn func()) {
	undo := p.Apply(from, to)
	defer p.Revert(undo)
	fn()
}

// leavesKingSafe reports whether moving from -> to keeps the mover's king out of check.
func (p *Position) leavesKingSafe(from, to Square, mover Color) bool {
	safe := false
	p.WithMove(from, to, func() {
		safe = !p.KingInCheck(mover)
	})
	return safe
}

// LegalDestinations returns the pseudo-legal destinations of the piece on sq
// that do not leave its own king in check.
func (p *Position) LegalDestinations(sq Square) []Square {
	piece := p.PieceAt(sq)
	if piece.IsEmpty() {
		return nil
	}

	pseudo := p.appendDestinations(nil, sq, piece, false)
	legal := pseudo[:0]
	for _, to := range pseudo {
		if p.leavesKingSafe(sq, to, piece.Color) {
			legal = append(legal, to)
		}
	}
	return legal
}

// IsLegal reports whether from -> to is a legal move for the piece on from.
func (p *Position) IsLegal(from, to Square) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	for _, sq := range p.LegalDestinations(from) {
		if sq == to {
			return true
		}
	}
	return false
}

// LegalMoves generates all legal moves for color c in generation order:
// board scan from row 0 to 7, column 0 to 7, then each piece's own order.
// Notation is left empty; it is assigned when a move is executed.
func (p *Position) LegalMoves(c Color) []Move {
	var moves []Move
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := p.Board[row][col]
			if piece.IsEmpty() || piece.Color != c {
				continue
			}
			from := Square{row, col}
			for _, to := range p.LegalDestinations(from) {
				moves = append(moves, Move{
					From:     from,
					To:       to,
					Piece:    piece,
					Captured: p.PieceAt(to),
				})
			}
		}
	}
	return moves
}

// HasLegalMoves returns true if color c has at least one legal move.
func (p *Position) HasLegalMoves(c Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := p.Board[row][col]
			if piece.IsEmpty() || piece.Color != c {
				continue
			}
			from := Square{row, col}
			for _, to := range p.appendDestinations(nil, from, piece, false) {
				if p.leavesKingSafe(from, to, c) {
					return true
				}
			}
		}
	}
	return false
}
