package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn submitted by the end user.
	RoleUser Role = "user"
	// RoleAgent marks a turn produced by the supervisor or a specialist on
	// the system's behalf.
	RoleAgent Role = "agent"
	// RoleSystem marks an internal annotation turn. System turns are never
	// forwarded to the reasoning capability as conversational context.
	RoleSystem Role = "system"
)

// Turn is a single message exchanged in a conversation. After it has been
// appended to a Conversation it must be treated as immutable.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn authored by role with a fresh ID and a UTC timestamp.
func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:        NewID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a unique identifier for turns, sessions and runs.
func NewID() string { return uuid.NewString() }
