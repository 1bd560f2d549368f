// Package uci implements a UCI front end for the engine.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/chessclub/internal/board"
	"github.com/hailam/chessclub/internal/engine"
)

// Name is reported by the "uci" command.
const Name = "ChessClub"

// UCI implements the Universal Chess Interface protocol.
// Protocol output goes to out; diagnostics go to the logger.
type UCI struct {
	engine   *engine.Engine
	position *board.Position
	logger   *zap.Logger

	outMu sync.Mutex
	out   io.Writer

	// Search state
	searching  bool
	searchDone chan struct{}
}

// New creates a new UCI protocol handler.
func New(eng *engine.Engine, out io.Writer, logger *zap.Logger) *UCI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UCI{
		engine:   eng,
		position: board.NewPosition(),
		logger:   logger,
		out:      out,
	}
}

// Run reads commands until "quit" or the end of input.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.waitSearch()
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.waitSearch()
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.waitSearch()
		case "quit":
			u.waitSearch()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.waitSearch()
			u.println(u.position.String())
			u.printf("Fen: %s\n", u.position.FEN())
		case "perft":
			u.waitSearch()
			u.handlePerft(args)
		case "eval":
			u.waitSearch()
			u.printf("Evaluation: %s (positive favours black)\n", engine.ScoreToString(engine.Evaluate(u.position)))
		default:
			u.logger.Debug("unknown command", zap.String("command", cmd))
		}
	}

	u.waitSearch()
	return scanner.Err()
}

func (u *UCI) println(s string) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name " + Name)
	u.println("id author ChessClub Team")
	u.println("")
	u.printf("option name Difficulty type combo default %s var easy var medium var hard\n", u.engine.Difficulty())
	u.println("uciok")
}

// handleNewGame resets the position for a new game.
func (u *UCI) handleNewGame() {
	u.waitSearch()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// A FEN without exactly one king per side is rejected and the previous
// position kept. An illegal move stops the move list; the moves before it
// are kept.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	fenEnd, moveStart := len(args), len(args)
	for i, arg := range args {
		if arg == "moves" {
			fenEnd, moveStart = i, i+1
			break
		}
	}

	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
	case "fen":
		pos, err := board.ParseFEN(strings.Join(args[1:fenEnd], " "))
		if err == nil {
			err = pos.Validate()
		}
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
		u.position = pos
	default:
		return
	}

	for _, moveStr := range args[moveStart:] {
		from, to, err := board.ParseUCI(moveStr)
		if err != nil || !u.legal(from, to) {
			u.printf("info string Invalid move: %s\n", moveStr)
			return
		}
		u.position.MakeMove(from, to)
	}
}

func (u *UCI) legal(from, to board.Square) bool {
	p := u.position
	return !p.IsOver() && p.PieceAt(from).Color == p.SideToMove && p.IsLegal(from, to)
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth int
}

// parseGoOptions parses "go" command arguments. Time controls are accepted
// and ignored: the search is bounded by depth only.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "wtime", "btime", "winc", "binc", "movestogo", "movetime", "nodes":
			i++
		}
	}

	return opts
}

// handleGo starts a search with the given parameters. Without a depth the
// configured difficulty decides.
func (u *UCI) handleGo(args []string) {
	u.waitSearch()
	opts := parseGoOptions(args)

	limits := engine.DifficultySettings[u.engine.Difficulty()]
	if opts.Depth > 0 {
		limits = engine.SearchLimits{Depth: opts.Depth}
	}

	pos := u.position.Copy()
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(pos.SideToMove, info)
	}

	u.searching = true
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)

		move, _, ok := u.engine.SearchWithLimits(pos, limits)
		if !ok {
			// Only send 0000 for checkmate/stalemate (no legal moves)
			u.println("bestmove 0000")
			return
		}
		u.printf("bestmove %s\n", move.UCI())
	}()
}

// waitSearch blocks until a running search has printed its move.
func (u *UCI) waitSearch() {
	if u.searching {
		<-u.searchDone
		u.searching = false
	}
}

// sendInfo outputs search info in UCI format. Scores are reported in
// centipawns from the side to move's point of view.
func (u *UCI) sendInfo(us board.Color, info engine.SearchInfo) {
	cp := info.Score * 100
	if us == board.White {
		cp = -cp
	}

	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		fmt.Sprintf("score cp %d", cp),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 && info.Nodes > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if !info.Move.IsNone() {
		parts = append(parts, "pv "+info.Move.UCI())
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "difficulty":
		d, err := engine.ParseDifficulty(value)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		u.waitSearch()
		u.engine.SetDifficulty(d)
		u.logger.Info("difficulty set", zap.Stringer("difficulty", d))
	default:
		u.logger.Debug("unknown option", zap.String("name", name))
	}
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d >= 0 {
			depth = d
		}
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
