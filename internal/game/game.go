// Package game runs a single chess session: the position, move history,
// countdown clock, computer opponent and chat.
package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/chessclub/internal/board"
	"github.com/hailam/chessclub/internal/engine"
	"github.com/hailam/chessclub/internal/rating"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultGameSeconds = 600
	DefaultAIDelay     = time.Second
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNotYourTurn = errors.New("not your turn")
	ErrGameOver    = errors.New("game is over")
)

// Mode selects who plays black.
type Mode int

const (
	ModePvP Mode = iota // both sides moved by people
	ModePvC             // black is the engine
)

// String returns "pvp" or "pvc".
func (m Mode) String() string {
	if m == ModePvC {
		return "pvc"
	}
	return "pvp"
}

// ParseMode parses "pvp" or "pvc".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pvp":
		return ModePvP, nil
	case "pvc":
		return ModePvC, nil
	}
	return ModePvP, fmt.Errorf("unknown game mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Options configures a new Game.
type Options struct {
	User        string
	UserRating  int
	Mode        Mode
	Difficulty  engine.Difficulty
	Opponent    Opponent
	GameSeconds int
	AIDelay     time.Duration
	TickPeriod  time.Duration
	Seed        int64
	Scheduler   Scheduler
	Logger      *zap.Logger
}

// Result is the record of a finished game.
type Result struct {
	GameID       string            `json:"game_id"`
	User         string            `json:"user"`
	UserColor    board.Color       `json:"user_color"`
	Opponent     Opponent          `json:"opponent"`
	Mode         Mode              `json:"mode"`
	Difficulty   engine.Difficulty `json:"difficulty"`
	Winner       board.Winner      `json:"winner"`
	Reason       board.Reason      `json:"reason"`
	Moves        []board.Move      `json:"moves"`
	RatingChange rating.Change     `json:"rating_change"`
	Started      time.Time         `json:"started"`
	Finished     time.Time         `json:"finished"`
}

// Snapshot is a read-only view of the session for the presentation layer.
type Snapshot struct {
	ID         string            `json:"id"`
	FEN        string            `json:"fen"`
	Board      [8][8]board.Piece `json:"board"`
	SideToMove board.Color       `json:"side_to_move"`
	Over       bool              `json:"over"`
	Winner     board.Winner      `json:"winner"`
	Reason     board.Reason      `json:"reason"`
	Moves      []string          `json:"moves"`
	Selected   board.Square      `json:"selected"`
	Remaining  int               `json:"remaining"`
	Mode       Mode              `json:"mode"`
	Difficulty engine.Difficulty `json:"difficulty"`
	User       string            `json:"user"`
	UserRating int               `json:"user_rating"`
	Opponent   Opponent          `json:"opponent"`
}

// Game is one session. The user always plays white.
// A single mutex is held for the full duration of every engine operation,
// so speculative apply/revert cycles are never observed from outside.
type Game struct {
	mu sync.Mutex

	id       string
	position *board.Position
	history  []board.Move
	selected board.Square

	mode       Mode
	difficulty engine.Difficulty
	user       string
	userRating int
	opponent   Opponent

	engine    *engine.Engine
	clock     *Clock
	scheduler Scheduler
	pending   Timer
	chat      *Chat
	logger    *zap.Logger

	gameSeconds int
	tickPeriod  time.Duration
	aiDelay     time.Duration

	started  time.Time
	result   *Result
	notified bool

	// OnFinish is called once, outside the lock, when the game ends.
	OnFinish func(Result)
}

// New creates a game. Call Start to begin play.
func New(opts Options) *Game {
	if opts.GameSeconds <= 0 {
		opts.GameSeconds = DefaultGameSeconds
	}
	if opts.AIDelay <= 0 {
		opts.AIDelay = DefaultAIDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UserRating == 0 {
		opts.UserRating = rating.Initial
	}
	if opts.Mode == ModePvC {
		opts.Opponent = ComputerOpponent(opts.Difficulty)
	}

	id := uuid.NewString()
	eng := engine.NewEngine(opts.Seed)
	eng.SetDifficulty(opts.Difficulty)

	return &Game{
		id:          id,
		position:    board.NewPosition(),
		selected:    board.NoSquare,
		mode:        opts.Mode,
		difficulty:  opts.Difficulty,
		user:        opts.User,
		userRating:  opts.UserRating,
		opponent:    opts.Opponent,
		engine:      eng,
		scheduler:   opts.Scheduler,
		chat:        NewChat(opts.Scheduler, opts.Seed),
		logger:      opts.Logger.With(zap.String("game_id", id)),
		gameSeconds: opts.GameSeconds,
		tickPeriod:  opts.TickPeriod,
		aiDelay:     opts.AIDelay,
	}
}

// Start resets the board and history, sets the opponent and starts the clock.
func (g *Game) Start(opponent Opponent) {
	g.mu.Lock()
	g.cancelPendingLocked()
	if g.clock != nil {
		g.clock.Stop()
	}

	g.position.Reset()
	g.history = nil
	g.selected = board.NoSquare
	g.result = nil
	g.notified = false
	g.started = time.Now()
	if opponent.Name != "" {
		g.opponent = opponent
	}
	g.chat.Clear()

	clock := NewClock(g.gameSeconds, g.tickPeriod, nil)
	clock.onExpire = func() { g.forfeit(clock) }
	g.clock = clock
	name, mode := g.opponent.Name, g.mode
	g.mu.Unlock()

	g.logger.Info("game started",
		zap.String("user", g.user),
		zap.String("opponent", name),
		zap.Stringer("mode", mode))
	clock.Start()
}

// ID returns the session id.
func (g *Game) ID() string {
	return g.id
}

// SelectSquare selects a piece of the side to move and returns its legal
// destinations. Empty squares and the opponent's pieces are ignored.
// Selecting the selected square again clears the selection.
func (g *Game) SelectSquare(sq board.Square) []board.Square {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.position.IsOver() || !g.humanToMoveLocked() {
		return nil
	}
	if sq == g.selected {
		g.selected = board.NoSquare
		return nil
	}
	piece := g.position.PieceAt(sq)
	if piece.IsEmpty() || piece.Color != g.position.SideToMove {
		return nil
	}

	g.selected = sq
	return g.position.LegalDestinations(sq)
}

// Selected returns the selected square or NoSquare.
func (g *Game) Selected() board.Square {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// LegalDestinations returns the legal destinations of the piece on sq.
func (g *Game) LegalDestinations(sq board.Square) []board.Square {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position.LegalDestinations(sq)
}

// RequestMove plays a human move. An illegal move leaves the game unchanged.
func (g *Game) RequestMove(from, to board.Square) (board.Move, error) {
	g.mu.Lock()

	if g.position.IsOver() {
		g.mu.Unlock()
		return board.NoMove, ErrGameOver
	}
	if !g.humanToMoveLocked() {
		g.mu.Unlock()
		return board.NoMove, ErrNotYourTurn
	}
	if g.position.PieceAt(from).Color != g.position.SideToMove || !g.position.IsLegal(from, to) {
		g.mu.Unlock()
		return board.NoMove, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	m := g.playLocked(from, to)
	g.selected = board.NoSquare
	scheduleAI := g.computerToMoveLocked()
	g.mu.Unlock()

	g.notifyFinish()
	if scheduleAI {
		g.scheduleComputerMove()
	}
	return m, nil
}

// playLocked executes a legal move and finishes the game if it ended.
func (g *Game) playLocked(from, to board.Square) board.Move {
	m, status := g.position.MakeMove(from, to)
	g.history = append(g.history, m)

	g.logger.Debug("move played",
		zap.String("move", m.Notation),
		zap.Int("ply", len(g.history)),
		zap.Stringer("status", status))

	if g.position.IsOver() {
		g.finishLocked()
	}
	return m
}

func (g *Game) humanToMoveLocked() bool {
	return g.mode == ModePvP || g.position.SideToMove == board.White
}

func (g *Game) computerToMoveLocked() bool {
	return g.mode == ModePvC && !g.position.IsOver() && g.position.SideToMove == board.Black
}

func (g *Game) scheduleComputerMove() {
	g.mu.Lock()
	delay := g.aiDelay
	g.mu.Unlock()

	t := g.scheduler.AfterFunc(delay, g.computerMove)

	// The callback may already have run.
	g.mu.Lock()
	if g.computerToMoveLocked() {
		g.pending = t
	}
	g.mu.Unlock()
}

// computerMove is the scheduled engine reply.
func (g *Game) computerMove() {
	g.mu.Lock()
	if !g.computerToMoveLocked() {
		g.mu.Unlock()
		return
	}
	g.pending = nil

	move, ok := g.engine.Search(g.position)
	if !ok {
		if !g.position.IsOver() {
			g.logger.Error("engine found no move in an unfinished game",
				zap.String("fen", g.position.FEN()))
		}
		g.mu.Unlock()
		return
	}

	g.playLocked(move.From, move.To)
	g.mu.Unlock()

	g.notifyFinish()
}

// SetOpponentMode switches between a human and a computer opponent. A
// computer opponent handed over to a person becomes a rated guest.
func (g *Game) SetOpponentMode(mode Mode, difficulty engine.Difficulty) {
	g.mu.Lock()
	g.mode = mode
	g.difficulty = difficulty
	g.engine.SetDifficulty(difficulty)
	if mode == ModePvC {
		g.opponent = ComputerOpponent(difficulty)
	} else if g.opponent.Computer {
		g.opponent = GuestOpponent()
	}
	scheduleAI := g.computerToMoveLocked() && g.pending == nil
	g.mu.Unlock()

	if scheduleAI {
		g.scheduleComputerMove()
	}
}

// Resign ends the game with a loss for the side to move.
func (g *Game) Resign() error {
	return g.end(func(p *board.Position) {
		p.Conclude(board.WinnerOf(p.SideToMove.Other()), board.ReasonResignation)
	})
}

// OfferDraw offers a draw, which is always accepted.
func (g *Game) OfferDraw() error {
	return g.end(func(p *board.Position) {
		p.Conclude(board.WinnerDraw, board.ReasonDrawAgreed)
	})
}

func (g *Game) end(conclude func(*board.Position)) error {
	g.mu.Lock()
	if g.position.IsOver() {
		g.mu.Unlock()
		return ErrGameOver
	}
	conclude(g.position)
	g.finishLocked()
	g.mu.Unlock()

	g.notifyFinish()
	return nil
}

// Abandon leaves the game without a result. Nothing is recorded.
func (g *Game) Abandon() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.position.IsOver() {
		return
	}
	g.position.Conclude(board.WinnerNone, board.ReasonAbandoned)
	g.stopLocked()
	g.notified = true
}

// Tick counts one clock second and returns the seconds left.
func (g *Game) Tick() int {
	g.mu.Lock()
	clock := g.clock
	g.mu.Unlock()

	if clock == nil {
		return g.gameSeconds
	}
	clock.Tick()
	return clock.Remaining()
}

// forfeit ends the game on time: the side to move loses.
func (g *Game) forfeit(clock *Clock) {
	g.mu.Lock()
	if g.clock != clock || g.position.IsOver() {
		g.mu.Unlock()
		return
	}
	side := g.position.SideToMove
	g.position.Conclude(board.WinnerOf(side.Other()), board.ReasonTimeForfeit)
	g.finishLocked()
	g.mu.Unlock()

	g.logger.Info("time forfeit", zap.Stringer("loser", side))
	g.notifyFinish()
}

// finishLocked stops the clock and any pending engine move, then freezes the result.
func (g *Game) finishLocked() {
	g.stopLocked()

	res := Result{
		GameID:     g.id,
		User:       g.user,
		UserColor:  board.White,
		Opponent:   g.opponent,
		Mode:       g.mode,
		Difficulty: g.difficulty,
		Winner:     g.position.Winner,
		Reason:     g.position.Reason,
		Moves:      append([]board.Move(nil), g.history...),
		Started:    g.started,
		Finished:   time.Now(),
	}
	if g.mode == ModePvP {
		if outcome, ok := rating.OutcomeOf(res.Winner); ok {
			res.RatingChange = rating.Delta(g.userRating, g.opponent.Rating, outcome)
		}
	}
	g.result = &res

	g.logger.Info("game finished",
		zap.Stringer("winner", res.Winner),
		zap.Stringer("reason", res.Reason),
		zap.Int("moves", len(res.Moves)),
		zap.Int("rating_change", res.RatingChange.White))
}

func (g *Game) stopLocked() {
	if g.clock != nil {
		g.clock.Stop()
	}
	g.cancelPendingLocked()
}

func (g *Game) cancelPendingLocked() {
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
}

// notifyFinish calls OnFinish once for a finished game.
func (g *Game) notifyFinish() {
	g.mu.Lock()
	if g.result == nil || g.notified {
		g.mu.Unlock()
		return
	}
	g.notified = true
	res := *g.result
	fn := g.OnFinish
	g.mu.Unlock()

	if fn != nil {
		fn(res)
	}
}

// SendChat posts a message from the user. In computer games the opponent
// answers after a short delay.
func (g *Game) SendChat(text string) (Message, error) {
	msg, err := g.chat.Send(g.user, text)
	if err != nil {
		return msg, err
	}

	g.mu.Lock()
	pvc, name := g.mode == ModePvC, g.opponent.Name
	g.mu.Unlock()

	if pvc {
		g.chat.ReplyLater(name)
	}
	return msg, nil
}

// ChatMessages returns the chat log.
func (g *Game) ChatMessages() []Message {
	return g.chat.Messages()
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position.Copy()
}

// History returns a copy of the move history.
func (g *Game) History() []board.Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]board.Move(nil), g.history...)
}

// Notations returns the notation of every played move.
func (g *Game) Notations() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return board.Notations(g.history)
}

// IsOver returns true once the game has ended.
func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position.IsOver()
}

// Winner returns the winner of a finished game.
func (g *Game) Winner() board.Winner {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position.Winner
}

// Reason returns how the game ended.
func (g *Game) Reason() board.Reason {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position.Reason
}

// Result returns the finished game's record. ok is false while the game is
// running or after it was abandoned.
func (g *Game) Result() (res Result, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result == nil {
		return Result{}, false
	}
	return *g.result, true
}

// RatingChange returns the rating change of a finished pvp game.
func (g *Game) RatingChange() rating.Change {
	res, _ := g.Result()
	return res.RatingChange
}

// Remaining returns the seconds left on the clock.
func (g *Game) Remaining() int {
	g.mu.Lock()
	clock := g.clock
	g.mu.Unlock()
	if clock == nil {
		return g.gameSeconds
	}
	return clock.Remaining()
}

// Mode returns the opponent mode.
func (g *Game) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Snapshot returns the state shown to the presentation layer.
func (g *Game) Snapshot() Snapshot {
	remaining := g.Remaining()

	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		ID:         g.id,
		FEN:        g.position.FEN(),
		Board:      g.position.Board,
		SideToMove: g.position.SideToMove,
		Over:       g.position.Over,
		Winner:     g.position.Winner,
		Reason:     g.position.Reason,
		Moves:      board.Notations(g.history),
		Selected:   g.selected,
		Remaining:  remaining,
		Mode:       g.mode,
		Difficulty: g.difficulty,
		User:       g.user,
		UserRating: g.userRating,
		Opponent:   g.opponent,
	}
}
