package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hailam/chessclub/internal/config"
	"github.com/hailam/chessclub/internal/game"
	"github.com/hailam/chessclub/internal/service"
	"github.com/hailam/chessclub/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(store, service.Options{
		Game:       config.GameConfig{Seconds: 600, Seed: 3},
		Scheduler:  game.Immediate{},
		TickPeriod: time.Hour,
	})
	t.Cleanup(func() {
		svc.Close()
		store.Close()
	})
	return NewRouter(svc, nil, nil)
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", resp.Body.String(), err)
	}
}

func startGame(t *testing.T, router *gin.Engine, req map[string]any) string {
	t.Helper()
	resp := do(t, router, http.MethodPost, "/games", req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("start game: %d %s", resp.Code, resp.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	decode(t, resp, &out)
	return out.ID
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	resp := do(t, router, http.MethodGet, "/health", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestLoginAndFriends(t *testing.T) {
	router := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/login", map[string]string{"username": "alice"})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: %d %s", resp.Code, resp.Body.String())
	}
	var login struct {
		Profile storage.UserProfile `json:"profile"`
	}
	decode(t, resp, &login)
	if login.Profile.Username != "alice" || login.Profile.Rating != 1200 {
		t.Errorf("profile = %+v", login.Profile)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty login", http.MethodPost, "/login", map[string]string{"username": " "}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/login", "not an object", http.StatusBadRequest},
		{"unknown profile", http.MethodGet, "/users/nobody", nil, http.StatusNotFound},
		{"add friend", http.MethodPost, "/users/alice/friends", map[string]string{"friend": "bob"}, http.StatusOK},
		{"duplicate friend", http.MethodPost, "/users/alice/friends", map[string]string{"friend": "bob"}, http.StatusConflict},
		{"self friend", http.MethodPost, "/users/alice/friends", map[string]string{"friend": "alice"}, http.StatusBadRequest},
		{"profile", http.MethodGet, "/users/alice", nil, http.StatusOK},
		{"lobby", http.MethodGet, "/lobby?user=alice", nil, http.StatusOK},
		{"lobby without user", http.MethodGet, "/lobby", nil, http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/users/alice/history?limit=x", nil, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, router, tc.method, tc.path, tc.body)
			if resp.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}

	var profile storage.UserProfile
	decode(t, do(t, router, http.MethodGet, "/users/alice", nil), &profile)
	if len(profile.Friends) != 1 || profile.Friends[0] != "bob" {
		t.Errorf("friends = %v", profile.Friends)
	}
}

func TestPlayGameOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/login", map[string]string{"username": "alice"})

	id := startGame(t, router, map[string]any{"username": "alice", "mode": "pvp", "opponent": "bob"})

	resp := do(t, router, http.MethodPost, "/games/"+id+"/select", map[string]string{"square": "e2"})
	if resp.Code != http.StatusOK {
		t.Fatalf("select: %d %s", resp.Code, resp.Body.String())
	}
	var sel struct {
		Selected     string   `json:"selected"`
		Destinations []string `json:"destinations"`
	}
	decode(t, resp, &sel)
	if sel.Selected != "e2" || len(sel.Destinations) != 2 {
		t.Errorf("select = %+v", sel)
	}

	resp = do(t, router, http.MethodPost, "/games/"+id+"/move", map[string]string{"from": "e2", "to": "e5"})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("illegal move: expected 400, got %d", resp.Code)
	}
	resp = do(t, router, http.MethodPost, "/games/"+id+"/move", map[string]string{"from": "z9", "to": "e4"})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("bad square: expected 400, got %d", resp.Code)
	}

	for _, mv := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}, {"d8", "h4"}} {
		resp := do(t, router, http.MethodPost, "/games/"+id+"/move", map[string]string{"from": mv[0], "to": mv[1]})
		if resp.Code != http.StatusOK {
			t.Fatalf("move %s%s: %d %s", mv[0], mv[1], resp.Code, resp.Body.String())
		}
	}

	var snap game.Snapshot
	decode(t, do(t, router, http.MethodGet, "/games/"+id, nil), &snap)
	if !snap.Over || snap.Winner.String() != "black" || len(snap.Moves) != 4 || snap.Moves[3] != "Qh4" {
		t.Errorf("snapshot = %+v", snap)
	}

	resp = do(t, router, http.MethodPost, "/games/"+id+"/resign", nil)
	if resp.Code != http.StatusConflict {
		t.Errorf("resign after mate: expected 409, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodGet, "/games/"+id+"/analysis", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("analysis: %d %s", resp.Code, resp.Body.String())
	}
	var report struct {
		Entries []map[string]any `json:"entries"`
		Summary struct {
			White map[string]int `json:"white"`
			Black map[string]int `json:"black"`
		} `json:"summary"`
	}
	decode(t, resp, &report)
	if len(report.Entries) != 4 || report.Summary.White["good"] != 2 || report.Summary.Black["good"] != 2 {
		t.Errorf("analysis = %+v", report)
	}

	resp = do(t, router, http.MethodGet, "/users/alice/history", nil)
	var history struct {
		Count int                  `json:"count"`
		Games []storage.GameRecord `json:"games"`
	}
	decode(t, resp, &history)
	if history.Count != 1 || history.Games[0].RatingChange != -16 {
		t.Fatalf("history = %+v", history)
	}

	resp = do(t, router, http.MethodGet, "/users/alice/history/"+history.Games[0].ID+"/pgn", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "0-1") {
		t.Errorf("pgn: %d %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/x-chess-pgn") {
		t.Errorf("content type = %q", ct)
	}
	resp = do(t, router, http.MethodGet, "/users/alice/history/missing/pgn", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("missing pgn: expected 404, got %d", resp.Code)
	}
}

func TestComputerGameAndChat(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/login", map[string]string{"username": "alice"})

	id := startGame(t, router, map[string]any{"username": "alice", "mode": "pvc", "difficulty": "easy"})

	resp := do(t, router, http.MethodPost, "/games/"+id+"/move", map[string]string{"from": "d2", "to": "d4"})
	if resp.Code != http.StatusOK {
		t.Fatalf("move: %d %s", resp.Code, resp.Body.String())
	}
	var moved struct {
		Game game.Snapshot `json:"game"`
	}
	decode(t, resp, &moved)
	if len(moved.Game.Moves) != 2 || moved.Game.Opponent.Name != "AI (Easy)" {
		t.Errorf("snapshot = %+v", moved.Game)
	}

	resp = do(t, router, http.MethodGet, "/games/"+id+"/analysis", nil)
	if resp.Code != http.StatusConflict {
		t.Errorf("analysis of running game: expected 409, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodPost, "/games/"+id+"/chat", map[string]string{"text": "  "})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("empty chat: expected 400, got %d", resp.Code)
	}
	resp = do(t, router, http.MethodPost, "/games/"+id+"/chat", map[string]string{"text": "hello"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("chat: %d %s", resp.Code, resp.Body.String())
	}

	var chat struct {
		Messages []game.Message `json:"messages"`
	}
	decode(t, do(t, router, http.MethodGet, "/games/"+id+"/chat", nil), &chat)
	if len(chat.Messages) != 2 || chat.Messages[0].Text != "hello" || chat.Messages[1].Sender != "AI (Easy)" {
		t.Errorf("chat = %+v", chat.Messages)
	}

	resp = do(t, router, http.MethodPost, "/games/"+id+"/draw", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("draw: %d %s", resp.Code, resp.Body.String())
	}
	var ended struct {
		Result game.Result `json:"result"`
	}
	decode(t, resp, &ended)
	if ended.Result.Winner.String() != "draw" || ended.Result.Reason.String() != "draw agreed" {
		t.Errorf("result = %+v", ended.Result)
	}

	resp = do(t, router, http.MethodDelete, "/games/"+id, nil)
	if resp.Code != http.StatusNoContent {
		t.Errorf("close: expected 204, got %d", resp.Code)
	}
	resp = do(t, router, http.MethodGet, "/games/"+id, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("closed game: expected 404, got %d", resp.Code)
	}
}

func TestStartGameErrors(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/login", map[string]string{"username": "alice"})

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown user", map[string]any{"username": "zed", "mode": "pvc"}, http.StatusNotFound},
		{"bad mode", map[string]any{"username": "alice", "mode": "blitz"}, http.StatusBadRequest},
		{"no opponent", map[string]any{"username": "alice", "mode": "pvp"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, router, http.MethodPost, "/games", tc.body)
			if resp.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}
