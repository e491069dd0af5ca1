package core

import (
	"sync"
	"time"
)

// Conversation is the ordered, append-only history of a single session. It is
// owned by exactly one workflow session; turns are strictly ordered by
// timestamp and never mutated after insertion.
//
// Contract:
//   - Append assigns the timestamp internally and guarantees strict
//     monotonic ordering even when the wall clock does not advance
//   - Turns returns a defensive copy so callers cannot mutate history
//   - Recent returns the newest n turns for bounded model context windows
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation { return &Conversation{} }

// Append records a new turn authored by role and returns a copy of it. The
// timestamp is bumped by a nanosecond when the clock has not advanced past
// the previous turn, preserving strict ordering.
func (c *Conversation) Append(role Role, text string) Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := NewTurn(role, text)
	if n := len(c.turns); n > 0 {
		last := c.turns[n-1].Timestamp
		if !t.Timestamp.After(last) {
			t.Timestamp = last.Add(time.Nanosecond)
		}
	}
	c.turns = append(c.turns, t)

	return t
}

// Turns returns a copy of the full turn history.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	turns := make([]Turn, len(c.turns))
	copy(turns, c.turns)
	return turns
}

// Recent returns a copy of the newest n turns. A non-positive n returns the
// full history.
func (c *Conversation) Recent(n int) []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 || n >= len(c.turns) {
		turns := make([]Turn, len(c.turns))
		copy(turns, c.turns)
		return turns
	}
	turns := make([]Turn, n)
	copy(turns, c.turns[len(c.turns)-n:])
	return turns
}

// Len reports the number of turns recorded so far.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Last returns the newest turn and true, or a zero turn and false when the
// conversation is empty.
func (c *Conversation) Last() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}
