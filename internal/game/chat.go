package game

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ErrEmptyMessage is returned for blank chat messages.
var ErrEmptyMessage = errors.New("empty chat message")

// Replies are the canned answers of a simulated opponent.
var Replies = []string{
	"Good move!",
	"Interesting strategy",
	"Nice game!",
	"Well played",
	"That was unexpected",
}

// Message is one chat line.
type Message struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// Chat is the message log of one game.
type Chat struct {
	mu        sync.Mutex
	messages  []Message
	rng       *rand.Rand
	scheduler Scheduler
}

// NewChat creates an empty chat.
func NewChat(s Scheduler, seed int64) *Chat {
	return &Chat{
		rng:       rand.New(rand.NewSource(seed)),
		scheduler: s,
	}
}

// Send appends a trimmed message.
func (c *Chat) Send(sender, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	msg := Message{Sender: sender, Text: text, At: time.Now()}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg, nil
}

// ReplyLater schedules a canned reply from sender after one to three seconds.
func (c *Chat) ReplyLater(sender string) Timer {
	c.mu.Lock()
	delay := time.Second + time.Duration(c.rng.Int63n(int64(2*time.Second)))
	reply := Replies[c.rng.Intn(len(Replies))]
	c.mu.Unlock()

	return c.scheduler.AfterFunc(delay, func() {
		_, _ = c.Send(sender, reply)
	})
}

// Messages returns a copy of the log.
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Clear empties the log.
func (c *Chat) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}
