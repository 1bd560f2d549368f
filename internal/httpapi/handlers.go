package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hailam/chessclub/internal/analysis"
	"github.com/hailam/chessclub/internal/board"
	"github.com/hailam/chessclub/internal/game"
	"github.com/hailam/chessclub/internal/service"
	"github.com/hailam/chessclub/internal/storage"
)

// Handler serves the routes built by NewRouter.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

type loginRequest struct {
	Username string `json:"username"`
}

type friendRequest struct {
	Friend string `json:"friend"`
}

type selectRequest struct {
	Square string `json:"square"`
}

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type chatRequest struct {
	Text string `json:"text"`
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrGameNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyFriend),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, service.ErrGameInProgress):
		return http.StatusConflict
	case errors.Is(err, storage.ErrEmptyUsername),
		errors.Is(err, storage.ErrSelfFriend),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrOpponentRequired),
		errors.Is(err, game.ErrIllegalMove),
		errors.Is(err, game.ErrEmptyMessage),
		errors.Is(err, analysis.ErrIllegalReplay):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("handler error", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (h *Handler) session(c *gin.Context) (*game.Game, bool) {
	g, err := h.svc.Session(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return g, true
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Login creates or loads a user.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile, prefs, err := h.svc.Login(req.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":     profile,
		"preferences": prefs,
		"win_rate":    profile.GetWinRate(),
	})
}

// Profile returns a user's profile.
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.svc.Profile(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AddFriend adds a friend to the user's list.
func (h *Handler) AddFriend(c *gin.Context) {
	var req friendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	profile, err := h.svc.AddFriend(c.Param("name"), req.Friend)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// History returns the latest games, newest first. ?limit defaults to the
// dashboard size; limit=0 returns everything.
func (h *Handler) History(c *gin.Context) {
	limit := service.DashboardGames
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	games, err := h.svc.History(c.Param("name"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if games == nil {
		games = []storage.GameRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(games), "games": games})
}

// ExportPGN serves one recorded game as PGN text.
func (h *Handler) ExportPGN(c *gin.Context) {
	text, err := h.svc.ExportPGN(c.Param("name"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/x-chess-pgn", []byte(text))
}

// Lobby lists online players and friends of ?user.
func (h *Handler) Lobby(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		badRequest(c, "missing user")
		return
	}

	lobby, err := h.svc.Lobby(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lobby)
}

// StartGame starts a new session.
func (h *Handler) StartGame(c *gin.Context) {
	var req service.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	g, err := h.svc.StartGame(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": g.ID(), "game": g.Snapshot()})
}

// Snapshot returns the current state of a session.
func (h *Handler) Snapshot(c *gin.Context) {
	g, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}

// CloseGame abandons a session.
func (h *Handler) CloseGame(c *gin.Context) {
	if err := h.svc.CloseSession(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Select selects a square and returns the legal destinations of its piece.
func (h *Handler) Select(c *gin.Context) {
	g, ok := h.session(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	sq, err := board.ParseSquare(req.Square)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	destinations := g.SelectSquare(sq)
	if destinations == nil {
		destinations = []board.Square{}
	}
	c.JSON(http.StatusOK, gin.H{"selected": g.Selected(), "destinations": destinations})
}

// Move plays a move for the user.
func (h *Handler) Move(c *gin.Context) {
	g, ok := h.session(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	from, err := board.ParseSquare(req.From)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	to, err := board.ParseSquare(req.To)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	m, err := g.RequestMove(from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"move": m, "game": g.Snapshot()})
}

// Resign resigns for the side to move.
func (h *Handler) Resign(c *gin.Context) {
	h.end(c, (*game.Game).Resign)
}

// OfferDraw offers a draw, which is accepted.
func (h *Handler) OfferDraw(c *gin.Context) {
	h.end(c, (*game.Game).OfferDraw)
}

func (h *Handler) end(c *gin.Context, action func(*game.Game) error) {
	g, ok := h.session(c)
	if !ok {
		return
	}
	if err := action(g); err != nil {
		h.fail(c, err)
		return
	}
	res, _ := g.Result()
	c.JSON(http.StatusOK, gin.H{"result": res, "game": g.Snapshot()})
}

// SendChat posts a chat message from the user.
func (h *Handler) SendChat(c *gin.Context) {
	g, ok := h.session(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	msg, err := g.SendChat(req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Chat returns the chat log.
func (h *Handler) Chat(c *gin.Context) {
	g, ok := h.session(c)
	if !ok {
		return
	}
	messages := g.ChatMessages()
	if messages == nil {
		messages = []game.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Analysis returns the post-game analysis with a per-side summary.
func (h *Handler) Analysis(c *gin.Context) {
	entries, err := h.svc.Analyze(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	white, black := analysis.Summary(entries)
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"summary": gin.H{"white": white, "black": black},
	})
}
