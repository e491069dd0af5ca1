// Package driver runs the conversation loop: a state machine that accepts
// user input, routes it through the supervisor, dispatches to a specialist or
// the fallback path, and records the exchange in the session's conversation.
package driver

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/specialist"
	"github.com/deskmesh/deskmesh/supervisor"
)

// State identifies a phase of the conversation loop.
type State int

const (
	// StateAwaitingInput means the session is idle between turns.
	StateAwaitingInput State = iota
	// StateRouting means the supervisor is classifying the query.
	StateRouting
	// StateDispatching means a routed specialist is handling the query.
	StateDispatching
	// StateFallback means the supervisor is answering the query itself.
	StateFallback
	// StateResponding means the exchange is being recorded.
	StateResponding
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateRouting:
		return "routing"
	case StateDispatching:
		return "dispatching"
	case StateFallback:
		return "fallback"
	case StateResponding:
		return "responding"
	default:
		return "unknown"
	}
}

// Options configures a Session.
type Options struct {
	// ID overrides the generated session identifier.
	ID string

	// Dispatcher overrides the default routing dispatch strategy.
	Dispatcher Dispatcher

	// Logger for session activity.
	Logger logging.Logger
}

// Session drives one sequential conversation. Turns are processed strictly
// one at a time; Submit serializes concurrent callers.
type Session struct {
	id         string
	dispatcher Dispatcher
	logger     logging.Logger

	mu           sync.Mutex
	state        State
	started      bool
	ended        bool
	conversation *core.Conversation
	lastDecision *core.RoutingDecision
}

var tracer = otel.Tracer("github.com/deskmesh/deskmesh/driver")

// NewSession creates a session over the supervisor and registry. The session
// must be started before queries can be submitted.
func NewSession(sup *supervisor.Supervisor, reg *specialist.Registry, optFns ...func(o *Options)) *Session {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = core.NewID()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewRoutingDispatcher(sup, reg)
	}

	return &Session{
		id:           opts.ID,
		dispatcher:   opts.Dispatcher,
		logger:       logging.OrNoOp(opts.Logger),
		state:        StateAwaitingInput,
		conversation: core.NewConversation(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start makes the session accept queries. Starting twice is a no-op;
// starting an ended session is an error.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return core.ErrSessionEnded
	}

	s.started = true
	s.logger.Info("session started", "session_id", s.id)
	return nil
}

// End closes the session. Further submissions fail with
// core.ErrSessionEnded. The conversation remains readable.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}

	s.ended = true
	s.logger.Info("session ended", "session_id", s.id, "turns", s.conversation.Len())
}

// State returns the current loop state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conversation returns the session's conversation.
func (s *Session) Conversation() *core.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// LastDecision returns the routing decision of the most recent completed
// turn, or false when no turn has completed.
func (s *Session) LastDecision() (core.RoutingDecision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastDecision == nil {
		return core.RoutingDecision{}, false
	}
	return *s.lastDecision, true
}

// Submit runs one full turn of the conversation loop and returns the reply
// text. On any error the conversation is left untouched, so a failed turn can
// simply be retried.
func (s *Session) Submit(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return "", core.ErrSessionEnded
	}
	if !s.started {
		return "", core.ErrSessionNotStarted
	}

	ctx, span := tracer.Start(ctx, "session.submit", trace.WithAttributes(
		attribute.String("session.id", s.id),
	))
	defer span.End()

	s.logger.Debug("turn started", "session_id", s.id, "query", text)

	transition := func(next State) {
		s.state = next
		s.logger.Debug("state transition", "session_id", s.id, "state", next.String())
	}

	decision, resp, err := s.dispatcher.Dispatch(ctx, text, s.conversation, transition)
	if err != nil {
		s.state = StateAwaitingInput
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("turn failed", "session_id", s.id, "error", err)
		return "", err
	}

	transition(StateResponding)

	s.conversation.Append(core.RoleUser, text)
	s.conversation.Append(core.RoleAgent, resp.Text)
	s.lastDecision = &decision

	span.SetAttributes(
		attribute.Bool("turn.routed", decision.Routed()),
		attribute.String("turn.specialist", decision.Target),
	)

	s.state = StateAwaitingInput
	s.logger.Info("turn completed",
		"session_id", s.id,
		"routed", decision.Routed(),
		"specialist", decision.Target,
	)

	return resp.Text, nil
}
