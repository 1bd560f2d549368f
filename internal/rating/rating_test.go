package rating

import (
	"math"
	"testing"

	"github.com/hailam/chessclub/internal/board"
)

func TestDeltaEqualRatings(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    Change
	}{
		{WhiteWins, Change{White: 16, Black: -16}},
		{BlackWins, Change{White: -16, Black: 16}},
		{Draw, Change{White: 0, Black: 0}},
	}
	for _, tc := range tests {
		t.Run(tc.outcome.String(), func(t *testing.T) {
			if got := Delta(1200, 1200, tc.outcome); got != tc.want {
				t.Errorf("Delta(1200, 1200, %v) = %+v, want %+v", tc.outcome, got, tc.want)
			}
		})
	}
}

func TestDeltaUnequalRatings(t *testing.T) {
	// 1200 vs 1420: expected score for white is about 0.22
	got := Delta(1200, 1420, WhiteWins)
	if got.White != 25 || got.Black != -25 {
		t.Errorf("upset win = %+v, want +25/-25", got)
	}

	got = Delta(1200, 1420, Draw)
	if got.White != 9 || got.Black != -9 {
		t.Errorf("draw against stronger = %+v, want +9/-9", got)
	}

	got = Delta(1420, 1200, WhiteWins)
	if got.White != 7 || got.Black != -7 {
		t.Errorf("expected win = %+v, want +7/-7", got)
	}
}

func TestExpected(t *testing.T) {
	if e := Expected(1200, 1200); e != 0.5 {
		t.Errorf("Expected(1200, 1200) = %v, want 0.5", e)
	}
	if sum := Expected(1350, 1180) + Expected(1180, 1350); math.Abs(sum-1) > 1e-12 {
		t.Errorf("expected scores sum to %v, want 1", sum)
	}
}

func TestRoundHalfUp(t *testing.T) {
	for x, want := range map[float64]int{15.5: 16, -15.5: -15, 0.49: 0, -0.5: 0, -0.51: -1} {
		if got := round(x); got != want {
			t.Errorf("round(%v) = %d, want %d", x, got, want)
		}
	}
}

func TestOutcomeOf(t *testing.T) {
	if _, ok := OutcomeOf(board.WinnerNone); ok {
		t.Error("unfinished game should have no outcome")
	}
	if o, ok := OutcomeOf(board.WinnerBlack); !ok || o != BlackWins {
		t.Errorf("OutcomeOf(black) = %v, %v", o, ok)
	}
}
