package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hailam/chessclub/internal/analysis"
	"github.com/hailam/chessclub/internal/board"
	"github.com/hailam/chessclub/internal/config"
	"github.com/hailam/chessclub/internal/game"
	"github.com/hailam/chessclub/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	svc := New(store, Options{
		Game:       config.GameConfig{Seconds: 600, Seed: 1, Difficulty: "easy"},
		Scheduler:  game.Immediate{},
		TickPeriod: time.Hour,
	})
	t.Cleanup(func() {
		svc.Close()
		store.Close()
	})
	return svc
}

func login(t *testing.T, svc *Service, name string) *storage.UserProfile {
	t.Helper()
	profile, _, err := svc.Login(name)
	if err != nil {
		t.Fatal(err)
	}
	return profile
}

func move(t *testing.T, g *game.Game, uci string) {
	t.Helper()
	from, to, err := board.ParseUCI(uci)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.RequestMove(from, to); err != nil {
		t.Fatalf("RequestMove(%s): %v", uci, err)
	}
}

func TestLoginReturnsDefaults(t *testing.T) {
	svc := newTestService(t)

	profile, prefs, err := svc.Login("  alice ")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Username != "alice" || profile.Rating != 1200 {
		t.Errorf("profile = %+v", profile)
	}
	if prefs.GameMode != storage.ModePvC || prefs.Difficulty != "medium" {
		t.Errorf("prefs = %+v", prefs)
	}

	if _, _, err := svc.Login(""); !errors.Is(err, storage.ErrEmptyUsername) {
		t.Errorf("empty login err = %v", err)
	}
	if _, err := svc.Profile("nobody"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("unknown profile err = %v", err)
	}
}

func TestLobby(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "AliceChess")
	if _, err := svc.AddFriend("AliceChess", "carol"); err != nil {
		t.Fatal(err)
	}

	lobby, err := svc.Lobby("AliceChess")
	if err != nil {
		t.Fatal(err)
	}
	if len(lobby.Online) != len(game.SimulatedPlayers)-1 {
		t.Errorf("online = %v, want the current user excluded", lobby.Online)
	}
	if len(lobby.Friends) != 1 || lobby.Friends[0].Name != "carol" || lobby.Friends[0].Rating != 1200 {
		t.Errorf("friends = %v", lobby.Friends)
	}
}

func TestStartGameValidation(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "alice")

	tests := []struct {
		name string
		req  StartRequest
		want error
	}{
		{"unknown user", StartRequest{User: "bob", Mode: "pvc"}, storage.ErrUserNotFound},
		{"bad mode", StartRequest{User: "alice", Mode: "online"}, ErrInvalidInput},
		{"bad difficulty", StartRequest{User: "alice", Mode: "pvc", Difficulty: "grandmaster"}, ErrInvalidInput},
		{"missing opponent", StartRequest{User: "alice", Mode: "pvp"}, ErrOpponentRequired},
		{"self", StartRequest{User: "alice", Mode: "pvp", Opponent: "alice"}, ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.StartGame(tc.req); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestStartGameOpponents(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "alice")

	g, err := svc.StartGame(StartRequest{User: "alice", Mode: "pvp", Opponent: "CharlieKnight"})
	if err != nil {
		t.Fatal(err)
	}
	if snap := g.Snapshot(); snap.Opponent.Rating != 1420 || snap.UserRating != 1200 {
		t.Errorf("snapshot = %+v", snap)
	}

	g, err = svc.StartGame(StartRequest{User: "alice", Mode: "pvp", Opponent: "carol", OpponentRating: 1500})
	if err != nil {
		t.Fatal(err)
	}
	if op := g.Snapshot().Opponent; op.Name != "carol" || op.Rating != 1500 {
		t.Errorf("opponent = %+v", op)
	}

	g, err = svc.StartGame(StartRequest{User: "alice", Mode: "pvc", Difficulty: "hard"})
	if err != nil {
		t.Fatal(err)
	}
	if op := g.Snapshot().Opponent; op.Name != "AI (Hard)" || !op.Computer {
		t.Errorf("opponent = %+v", op)
	}

	if got, err := svc.Session(g.ID()); err != nil || got != g {
		t.Errorf("Session(%s) = %v, %v", g.ID(), got, err)
	}
	if _, err := svc.Session("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing session err = %v", err)
	}
}

func TestStartGameRemembersPreferences(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "alice")

	if _, err := svc.StartGame(StartRequest{User: "alice", Mode: "pvc", Difficulty: "hard"}); err != nil {
		t.Fatal(err)
	}
	_, prefs, err := svc.Login("alice")
	if err != nil {
		t.Fatal(err)
	}
	if prefs.GameMode != storage.ModePvC || prefs.Difficulty != "hard" {
		t.Errorf("prefs = %+v", prefs)
	}

	g, err := svc.StartGame(StartRequest{User: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if snap := g.Snapshot(); snap.Mode != game.ModePvC || snap.Difficulty.String() != "hard" {
		t.Errorf("defaults not taken from preferences: %+v", snap)
	}
}

func TestFinishedPvPGameIsRecorded(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "alice")

	g, err := svc.StartGame(StartRequest{User: "alice", Mode: "pvp", Opponent: "bob"})
	if err != nil {
		t.Fatal(err)
	}
	for _, uci := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		move(t, g, uci)
	}
	if !g.IsOver() || g.Winner() != board.WinnerBlack {
		t.Fatalf("expected black to win by mate, got %v/%v", g.Winner(), g.Reason())
	}

	profile, err := svc.Profile("alice")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Rating != 1184 || profile.GamesPlayed != 1 || profile.Losses != 1 {
		t.Errorf("profile = %+v", profile)
	}

	history, err := svc.History("alice", DashboardGames)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %v", history)
	}
	rec := history[0]
	if rec.ID != g.ID() || rec.Outcome() != "Lost" || rec.RatingChange != -16 || len(rec.Moves) != 4 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Reason != board.ReasonCheckmate || rec.Mode != storage.ModePvP || rec.Difficulty != "" {
		t.Errorf("record = %+v", rec)
	}

	text, err := svc.ExportPGN("alice", rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "0-1") || !strings.Contains(text, `[White "alice"]`) {
		t.Errorf("pgn = %s", text)
	}
	if _, err := svc.ExportPGN("alice", "missing"); !errors.Is(err, storage.ErrGameNotFound) {
		t.Errorf("missing game err = %v", err)
	}
}

func TestComputerGameIsOnlyAppended(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "alice")

	g, err := svc.StartGame(StartRequest{User: "alice", Mode: "pvc", Difficulty: "medium"})
	if err != nil {
		t.Fatal(err)
	}
	move(t, g, "e2e4")
	if len(g.History()) != 2 {
		t.Fatalf("computer did not reply: %v", g.Notations())
	}
	if err := g.Resign(); err != nil {
		t.Fatal(err)
	}

	profile, err := svc.Profile("alice")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Rating != 1200 || profile.GamesPlayed != 0 {
		t.Errorf("computer game changed the profile: %+v", profile)
	}
	history, err := svc.History("alice", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Difficulty != "medium" || history[0].Opponent != "AI (Medium)" {
		t.Errorf("history = %+v", history)
	}
}

func TestAnalyze(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "alice")

	g, err := svc.StartGame(StartRequest{User: "alice", Mode: "pvp", Opponent: "bob"})
	if err != nil {
		t.Fatal(err)
	}
	move(t, g, "e2e4")

	if _, err := svc.Analyze(g.ID()); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("running game err = %v", err)
	}

	move(t, g, "d7d5")
	move(t, g, "e4d5")
	if err := g.OfferDraw(); err != nil {
		t.Fatal(err)
	}

	entries, err := svc.Analyze(g.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %v", entries)
	}
	if entries[2].ScoreDifference != 1 || entries[2].Evaluation != analysis.Mistake {
		t.Errorf("exd5 entry = %+v", entries[2])
	}

	again, err := svc.Analyze(g.ID())
	if err != nil {
		t.Fatal(err)
	}
	if &again[0] != &entries[0] {
		t.Error("analysis was recomputed")
	}
}

func TestCloseSessionAbandons(t *testing.T) {
	svc := newTestService(t)
	login(t, svc, "alice")

	g, err := svc.StartGame(StartRequest{User: "alice", Mode: "pvp", Opponent: "bob"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.CloseSession(g.ID()); err != nil {
		t.Fatal(err)
	}
	if g.Reason() != board.ReasonAbandoned {
		t.Errorf("reason = %v", g.Reason())
	}
	if _, err := svc.Session(g.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("closed session err = %v", err)
	}
	if history, _ := svc.History("alice", 0); len(history) != 0 {
		t.Errorf("abandoned game was recorded: %v", history)
	}
	if err := svc.CloseSession(g.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second close err = %v", err)
	}
}
