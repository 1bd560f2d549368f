// Package service ties accounts, persistence and live game sessions together
// for the HTTP layer.
package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/chessclub/internal/analysis"
	"github.com/hailam/chessclub/internal/config"
	"github.com/hailam/chessclub/internal/engine"
	"github.com/hailam/chessclub/internal/game"
	"github.com/hailam/chessclub/internal/pgn"
	"github.com/hailam/chessclub/internal/storage"
)

// DashboardGames is the number of recent games shown on the dashboard.
const DashboardGames = 5

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrSessionNotFound  = errors.New("session not found")
	ErrGameInProgress   = errors.New("game is still in progress")
	ErrOpponentRequired = errors.New("an opponent is required for a two player game")
)

// Options configures a Service.
type Options struct {
	Game       config.GameConfig
	Logger     *zap.Logger
	Scheduler  game.Scheduler
	TickPeriod time.Duration
}

// Service owns the active sessions. Finished sessions stay available for
// analysis until they are closed.
type Service struct {
	store  *storage.Storage
	logger *zap.Logger
	opts   Options

	mu       sync.Mutex
	sessions map[string]*session
	games    int64
}

type session struct {
	game *game.Game
	user string

	mu       sync.Mutex
	analysis []analysis.Entry
}

// New creates a service on top of an open store.
func New(store *storage.Storage, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = game.RealScheduler{}
	}
	if opts.Game.Difficulty == "" {
		opts.Game.Difficulty = engine.Medium.String()
	}
	return &Service{
		store:    store,
		logger:   opts.Logger,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// Login returns the user's profile and saved preferences, creating the
// account on first use.
func (s *Service) Login(name string) (*storage.UserProfile, *storage.UserPreferences, error) {
	profile, created, err := s.store.LoginUser(name)
	if err != nil {
		return nil, nil, err
	}
	if created {
		s.logger.Info("user created", zap.String("user", profile.Username))
	}

	prefs, err := s.store.LoadPreferences(profile.Username)
	if err != nil {
		return nil, nil, err
	}
	return profile, prefs, nil
}

// Profile returns an existing user's profile.
func (s *Service) Profile(name string) (*storage.UserProfile, error) {
	return s.store.LoadUser(name)
}

// AddFriend adds friend to user's friends list.
func (s *Service) AddFriend(user, friend string) (*storage.UserProfile, error) {
	profile, err := s.store.AddFriend(user, friend)
	if err != nil {
		return nil, err
	}
	s.logger.Info("friend added", zap.String("user", profile.Username), zap.String("friend", strings.TrimSpace(friend)))
	return profile, nil
}

// Lobby lists who the user can play against.
type Lobby struct {
	Online  []game.Opponent `json:"online"`
	Friends []game.Opponent `json:"friends"`
}

// Lobby returns the simulated online players and the user's friends.
func (s *Service) Lobby(user string) (Lobby, error) {
	profile, err := s.store.LoadUser(user)
	if err != nil {
		return Lobby{}, err
	}

	lobby := Lobby{
		Online:  game.OnlinePlayers(profile.Username),
		Friends: make([]game.Opponent, 0, len(profile.Friends)),
	}
	for _, f := range profile.Friends {
		lobby.Friends = append(lobby.Friends, game.FriendOpponent(f))
	}
	return lobby, nil
}

// StartRequest describes a new game. Empty Mode and Difficulty fall back to
// the user's saved preferences.
type StartRequest struct {
	User           string `json:"username"`
	Mode           string `json:"mode"`
	Difficulty     string `json:"difficulty"`
	Opponent       string `json:"opponent"`
	OpponentRating int    `json:"rating"`
}

// StartGame creates and starts a session for an existing user.
func (s *Service) StartGame(req StartRequest) (*game.Game, error) {
	profile, err := s.store.LoadUser(req.User)
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.LoadPreferences(profile.Username)
	if err != nil {
		return nil, err
	}

	modeName := req.Mode
	if modeName == "" {
		modeName = string(prefs.GameMode)
	}
	mode, err := game.ParseMode(modeName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	diffName := req.Difficulty
	if diffName == "" {
		diffName = prefs.Difficulty
	}
	if diffName == "" {
		diffName = s.opts.Game.Difficulty
	}
	difficulty, err := engine.ParseDifficulty(diffName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var opponent game.Opponent
	if mode == game.ModePvP {
		if opponent, err = resolveOpponent(req); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.games++
	seed := s.opts.Game.Seed + s.games
	s.mu.Unlock()

	g := game.New(game.Options{
		User:        profile.Username,
		UserRating:  profile.Rating,
		Mode:        mode,
		Difficulty:  difficulty,
		Opponent:    opponent,
		GameSeconds: s.opts.Game.Seconds,
		AIDelay:     s.opts.Game.AIDelay,
		TickPeriod:  s.opts.TickPeriod,
		Seed:        seed,
		Scheduler:   s.opts.Scheduler,
		Logger:      s.logger,
	})
	g.OnFinish = s.record

	s.mu.Lock()
	s.sessions[g.ID()] = &session{game: g, user: profile.Username}
	s.mu.Unlock()

	prefs.GameMode = storage.GameMode(mode.String())
	prefs.Difficulty = difficulty.String()
	if err := s.store.SavePreferences(profile.Username, prefs); err != nil {
		s.logger.Warn("saving preferences failed", zap.String("user", profile.Username), zap.Error(err))
	}

	g.Start(game.Opponent{})
	return g, nil
}

func resolveOpponent(req StartRequest) (game.Opponent, error) {
	name := strings.TrimSpace(req.Opponent)
	if name == "" {
		return game.Opponent{}, ErrOpponentRequired
	}
	if name == strings.TrimSpace(req.User) {
		return game.Opponent{}, fmt.Errorf("%w: you cannot play against yourself", ErrInvalidInput)
	}

	opponent, ok := game.FindPlayer(name)
	if !ok {
		opponent = game.FriendOpponent(name)
	}
	if req.OpponentRating > 0 {
		opponent.Rating = req.OpponentRating
	}
	return opponent, nil
}

// Session returns a live or finished session.
func (s *Service) Session(id string) (*game.Game, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.game, nil
}

func (s *Service) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// CloseSession abandons a running game and forgets the session.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.game.Abandon()
	return nil
}

// Close abandons every running game.
func (s *Service) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.game.Abandon()
	}
}

// record persists a finished game. It is the OnFinish hook of every session.
func (s *Service) record(res game.Result) {
	rec := RecordOf(res)
	profile, rec, err := s.store.RecordResult(res.User, rec, res.RatingChange.White)
	if err != nil {
		s.logger.Error("recording game failed",
			zap.String("game_id", res.GameID),
			zap.String("user", res.User),
			zap.Error(err))
		return
	}
	s.logger.Info("game recorded",
		zap.String("game_id", rec.ID),
		zap.String("user", profile.Username),
		zap.String("outcome", rec.Outcome()),
		zap.Int("rating", profile.Rating))
}

// RecordOf converts a finished game into its history record.
func RecordOf(res game.Result) storage.GameRecord {
	rec := storage.GameRecord{
		ID:             res.GameID,
		Date:           res.Finished,
		Opponent:       res.Opponent.Name,
		OpponentRating: res.Opponent.Rating,
		Result:         res.Winner,
		Reason:         res.Reason,
		Moves:          res.Moves,
		Mode:           storage.GameMode(res.Mode.String()),
		UserColor:      res.UserColor,
		RatingChange:   res.RatingChange.White,
	}
	if res.Mode == game.ModePvC {
		rec.Difficulty = res.Difficulty.String()
	}
	return rec
}

// Analyze runs the post-game analysis of a finished session once and caches it.
func (s *Service) Analyze(id string) ([]analysis.Entry, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if !sess.game.IsOver() {
		return nil, ErrGameInProgress
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.analysis != nil {
		return sess.analysis, nil
	}

	start := time.Now()
	entries, err := analysis.Analyze(sess.game.History(), engine.NewEngine(s.opts.Game.Seed))
	if err != nil {
		return nil, err
	}
	sess.analysis = entries

	s.logger.Debug("game analyzed",
		zap.String("game_id", id),
		zap.Int("moves", len(entries)),
		zap.Duration("took", time.Since(start)))
	return entries, nil
}

// History returns up to limit of the user's latest games, newest first.
// A limit of zero or less returns the whole history.
func (s *Service) History(user string, limit int) ([]storage.GameRecord, error) {
	if _, err := s.store.LoadUser(user); err != nil {
		return nil, err
	}
	return s.store.RecentGames(user, limit)
}

// ExportPGN renders one recorded game as PGN.
func (s *Service) ExportPGN(user, id string) (string, error) {
	rec, err := s.store.FindGame(user, id)
	if err != nil {
		return "", err
	}
	return pgn.Export(rec, strings.TrimSpace(user))
}
