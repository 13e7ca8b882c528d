package session

import (
	"sync"
	"time"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Message is one entry of the conversation.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Transcript is a fixed-size ring of chat messages. When full the oldest
// message is overwritten.
type Transcript struct {
	buf  []Message
	size int
	head int // next write position
	full bool
	mu   sync.RWMutex
}

// NewTranscript creates a ring holding up to size messages (default 200).
func NewTranscript(size int) *Transcript {
	if size <= 0 {
		size = 200
	}
	return &Transcript{buf: make([]Message, size), size: size}
}

// Append adds m, overwriting the oldest entry when full.
func (t *Transcript) Append(m Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf[t.head] = m
	t.head = (t.head + 1) % t.size
	if t.head == 0 {
		t.full = true
	}
}

// Messages returns the retained messages, oldest first.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		out := make([]Message, t.head)
		copy(out, t.buf[:t.head])
		return out
	}
	out := make([]Message, 0, t.size)
	out = append(out, t.buf[t.head:]...)
	return append(out, t.buf[:t.head]...)
}

// Len returns the number of retained messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.full {
		return t.size
	}
	return t.head
}

// Reset clears the ring.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.head = 0
	t.full = false
}

// Capacity returns the maximum number of retained messages.
func (t *Transcript) Capacity() int {
	return t.size
}
