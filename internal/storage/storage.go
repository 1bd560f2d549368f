package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/hailam/chessclub/internal/board"
	"github.com/hailam/chessclub/internal/rating"
)

// Storage key prefixes
const (
	prefixUser        = "user:"
	prefixHistory     = "history:"
	prefixPreferences = "preferences:"
)

var (
	ErrEmptyUsername = errors.New("please enter a username")
	ErrSelfFriend    = errors.New("you cannot add yourself as a friend")
	ErrAlreadyFriend = errors.New("user is already in your friends list")
	ErrUserNotFound  = errors.New("user not found")
	ErrGameNotFound  = errors.New("game not found")
)

// GameMode represents the game mode
type GameMode string

const (
	ModePvP GameMode = "pvp"
	ModePvC GameMode = "pvc"
)

// UserProfile stores a player's rating, friends and totals.
type UserProfile struct {
	Username    string    `json:"username"`
	Rating      int       `json:"rating"`
	Friends     []string  `json:"friends"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	Draws       int       `json:"draws"`
	Losses      int       `json:"losses"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// NewUserProfile returns a fresh profile at the initial rating.
func NewUserProfile(name string) *UserProfile {
	now := time.Now()
	return &UserProfile{
		Username:  name,
		Rating:    rating.Initial,
		Friends:   []string{},
		CreatedAt: now,
		LastSeen:  now,
	}
}

// HasFriend reports whether name is in the friends list.
func (p *UserProfile) HasFriend(name string) bool {
	for _, f := range p.Friends {
		if f == name {
			return true
		}
	}
	return false
}

// GetWinRate returns the win rate as a percentage (0-100)
func (p *UserProfile) GetWinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.GamesPlayed) * 100
}

// UserPreferences stores the settings last used to start a game.
type UserPreferences struct {
	Difficulty   string    `json:"difficulty"`
	GameMode     GameMode  `json:"game_mode"`
	SoundEnabled bool      `json:"sound_enabled"`
	LastPlayed   time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Difficulty:   "medium",
		GameMode:     ModePvC,
		SoundEnabled: true,
	}
}

// GameRecord is a finished game in a user's history. Records are appended
// once and never modified.
type GameRecord struct {
	ID             string       `json:"id"`
	Date           time.Time    `json:"date"`
	Opponent       string       `json:"opponent"`
	OpponentRating int          `json:"opponent_rating,omitempty"`
	Result         board.Winner `json:"result"`
	Reason         board.Reason `json:"reason"`
	Moves          []board.Move `json:"moves"`
	Mode           GameMode     `json:"game_mode"`
	Difficulty     string       `json:"difficulty,omitempty"`
	UserColor      board.Color  `json:"user_color"`
	RatingChange   int          `json:"rating_change"`
}

// Outcome returns "Won", "Lost" or "Draw" from the user's side.
func (r GameRecord) Outcome() string {
	switch r.Result {
	case board.WinnerOf(r.UserColor):
		return "Won"
	case board.WinnerDraw:
		return "Draw"
	default:
		return "Lost"
	}
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database in dir, or in the platform data directory when dir is empty.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyUsername
	}
	return name, nil
}

// getJSON decodes the value at key into v. found is false if the key is missing.
func getJSON(txn *badger.Txn, key string, v any) (found bool, err error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// LoginUser loads a profile, creating it on first use.
func (s *Storage) LoginUser(name string) (profile *UserProfile, created bool, err error) {
	name, err = normalize(name)
	if err != nil {
		return nil, false, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		profile = &UserProfile{}
		found, err := getJSON(txn, prefixUser+name, profile)
		if err != nil {
			return err
		}
		if !found {
			profile = NewUserProfile(name)
			created = true
		}
		profile.LastSeen = time.Now()
		return setJSON(txn, prefixUser+name, profile)
	})
	if err != nil {
		return nil, false, err
	}
	return profile, created, nil
}

// LoadUser loads an existing profile.
func (s *Storage) LoadUser(name string) (*UserProfile, error) {
	name, err := normalize(name)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{}
	err = s.db.View(func(txn *badger.Txn) error {
		found, err := getJSON(txn, prefixUser+name, profile)
		if err == nil && !found {
			return ErrUserNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveUser writes a profile.
func (s *Storage) SaveUser(profile *UserProfile) error {
	name, err := normalize(profile.Username)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, prefixUser+name, profile)
	})
}

// AddFriend adds friend to user's friends list. The friend does not need an
// account. A rejected request leaves the profile unchanged.
func (s *Storage) AddFriend(user, friend string) (*UserProfile, error) {
	user, err := normalize(user)
	if err != nil {
		return nil, err
	}
	friend, err = normalize(friend)
	if err != nil {
		return nil, err
	}
	if friend == user {
		return nil, ErrSelfFriend
	}

	profile := &UserProfile{}
	err = s.db.Update(func(txn *badger.Txn) error {
		found, err := getJSON(txn, prefixUser+user, profile)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}
		if profile.HasFriend(friend) {
			return ErrAlreadyFriend
		}
		profile.Friends = append(profile.Friends, friend)
		return setJSON(txn, prefixUser+user, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// AppendGame adds a record to the user's history, assigning an id and date
// when missing.
func (s *Storage) AppendGame(user string, rec GameRecord) (GameRecord, error) {
	user, err := normalize(user)
	if err != nil {
		return rec, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		rec, err = appendGame(txn, user, rec)
		return err
	})
	return rec, err
}

func appendGame(txn *badger.Txn, user string, rec GameRecord) (GameRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date.IsZero() {
		rec.Date = time.Now()
	}

	var history []GameRecord
	if _, err := getJSON(txn, prefixHistory+user, &history); err != nil {
		return rec, err
	}
	history = append(history, rec)
	return rec, setJSON(txn, prefixHistory+user, history)
}

// History returns every recorded game of user, oldest first.
func (s *Storage) History(user string) ([]GameRecord, error) {
	user, err := normalize(user)
	if err != nil {
		return nil, err
	}

	var history []GameRecord
	err = s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, prefixHistory+user, &history)
		return err
	})
	return history, err
}

// RecentGames returns up to n of the latest games, newest first.
func (s *Storage) RecentGames(user string, n int) ([]GameRecord, error) {
	history, err := s.History(user)
	if err != nil {
		return nil, err
	}
	if n > len(history) || n <= 0 {
		n = len(history)
	}

	recent := make([]GameRecord, 0, n)
	for i := len(history) - 1; i >= len(history)-n; i-- {
		recent = append(recent, history[i])
	}
	return recent, nil
}

// FindGame returns one recorded game by id.
func (s *Storage) FindGame(user, id string) (GameRecord, error) {
	history, err := s.History(user)
	if err != nil {
		return GameRecord{}, err
	}
	for _, rec := range history {
		if rec.ID == id {
			return rec, nil
		}
	}
	return GameRecord{}, ErrGameNotFound
}

// RecordResult stores a finished game in one transaction. For pvp games the
// rating delta and the win/draw/loss totals are applied to the profile first;
// computer games are only appended to the history.
func (s *Storage) RecordResult(user string, rec GameRecord, ratingDelta int) (*UserProfile, GameRecord, error) {
	user, err := normalize(user)
	if err != nil {
		return nil, rec, err
	}

	profile := &UserProfile{}
	err = s.db.Update(func(txn *badger.Txn) error {
		found, err := getJSON(txn, prefixUser+user, profile)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}

		if rec.Mode == ModePvP {
			profile.Rating += ratingDelta
			profile.GamesPlayed++
			switch rec.Outcome() {
			case "Won":
				profile.Wins++
			case "Draw":
				profile.Draws++
			default:
				profile.Losses++
			}
			if err := setJSON(txn, prefixUser+user, profile); err != nil {
				return err
			}
			rec.RatingChange = ratingDelta
		}

		rec, err = appendGame(txn, user, rec)
		return err
	})
	if err != nil {
		return nil, rec, err
	}
	return profile, rec, nil
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(user string, prefs *UserPreferences) error {
	user, err := normalize(user)
	if err != nil {
		return err
	}
	prefs.LastPlayed = time.Now()

	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, prefixPreferences+user, prefs)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences(user string) (*UserPreferences, error) {
	user, err := normalize(user)
	if err != nil {
		return nil, err
	}
	prefs := DefaultPreferences()

	err = s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, prefixPreferences+user, prefs)
		return err
	})

	return prefs, err
}
