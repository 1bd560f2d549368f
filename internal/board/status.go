package board

// Status classifies the position for the side to move.
type Status uint8

const (
	StatusOngoing Status = iota
	StatusCheckmate
	StatusStalemate
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Classify decides whether the side to move is checkmated, stalemated or
// still playing. Time forfeits are reported by the caller's clock instead.
func (p *Position) Classify() Status {
	us := p.SideToMove
	if p.HasLegalMoves(us) {
		return StatusOngoing
	}
	if p.KingInCheck(us) {
		return StatusCheckmate
	}
	return StatusStalemate
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.Classify() == StatusCheckmate
}

// IsStalemate returns true if the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return p.Classify() == StatusStalemate
}
