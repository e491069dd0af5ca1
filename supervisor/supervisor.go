// Package supervisor implements the routing brain of a conversation: it
// classifies each user query against the registered specialist roster and
// produces general-knowledge fallback replies for queries no specialist
// covers.
package supervisor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
	"github.com/deskmesh/deskmesh/specialist"
)

// Options configures a Supervisor.
type Options struct {
	// Instruction overrides the default routing persona prefix.
	Instruction string

	// MaxHistoryTurns limits how much conversation history is sent to the
	// model. Zero means the full history.
	MaxHistoryTurns int

	// Logger for routing activity.
	Logger logging.Logger
}

// Supervisor routes user queries to specialists and answers unroutable ones
// itself.
type Supervisor struct {
	model    model.Model
	registry *specialist.Registry
	opts     Options
	logger   logging.Logger
}

const defaultInstruction = "You are a supervisor coordinating a team of specialist agents."

// New creates a Supervisor over the given model and specialist registry.
func New(m model.Model, reg *specialist.Registry, optFns ...func(o *Options)) *Supervisor {
	opts := Options{
		Instruction: defaultInstruction,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Supervisor{
		model:    m,
		registry: reg,
		opts:     opts,
		logger:   logging.OrNoOp(opts.Logger),
	}
}

// routeVerdict is the JSON contract the routing prompt asks the model for.
type routeVerdict struct {
	Specialist string `json:"specialist"`
	Rationale  string `json:"rationale"`
}

// Route classifies the query against the specialist roster. Exactly one
// decision is produced per call; a query no specialist covers yields a
// decision with core.TargetNone. A malformed verdict or an unknown specialist
// ID also maps to core.TargetNone rather than an error, keeping the
// conversation alive on model sloppiness.
func (s *Supervisor) Route(ctx context.Context, query string, conv *core.Conversation) (core.RoutingDecision, error) {
	req := model.Request{
		Instructions: s.routingInstructions(),
		Contents:     append(s.history(conv), model.UserText(query)),
	}

	resp, err := model.GenerateText(ctx, s.model, req)
	if err != nil {
		return core.RoutingDecision{}, core.NewCapabilityError("supervisor.route", err)
	}

	verdict := parseVerdict(resp.Content.Text())

	decision := core.RoutingDecision{
		Target:    core.TargetNone,
		Rationale: verdict.Rationale,
	}

	switch target := normalizeTarget(verdict.Specialist); target {
	case core.TargetNone:
		s.logger.Debug("no specialist matched", "query", query, "rationale", verdict.Rationale)
	default:
		if _, ok := s.registry.Get(target); ok {
			decision.Target = target
			s.logger.Debug("routed query", "specialist", target, "rationale", verdict.Rationale)
		} else {
			s.logger.Warn("model proposed unknown specialist", "specialist", target)
		}
	}

	return decision, nil
}

// FallbackReply answers the query directly from the supervisor's own
// knowledge. It is used when routing found no specialist or the routed
// specialist declined. The reply is always considered handled.
func (s *Supervisor) FallbackReply(ctx context.Context, query string, conv *core.Conversation) (core.Response, error) {
	req := model.Request{
		Instructions: s.fallbackInstructions(),
		Contents:     append(s.history(conv), model.UserText(query)),
	}

	resp, err := model.GenerateText(ctx, s.model, req)
	if err != nil {
		return core.Response{}, core.NewCapabilityError("supervisor.fallback", err)
	}

	return core.Response{
		Text:    strings.TrimSpace(resp.Content.Text()),
		Handled: true,
	}, nil
}

func (s *Supervisor) history(conv *core.Conversation) []model.Content {
	if conv == nil {
		return nil
	}
	if n := s.opts.MaxHistoryTurns; n > 0 {
		return model.FromTurns(conv.Recent(n))
	}
	return model.FromTurns(conv.Turns())
}

func (s *Supervisor) routingInstructions() string {
	var b strings.Builder
	b.WriteString(s.opts.Instruction)
	b.WriteString("\n\nAvailable specialists:\n")
	for _, sp := range s.registry.All() {
		b.WriteString("- ")
		b.WriteString(sp.ID())
		b.WriteString(": ")
		b.WriteString(sp.Description())
		b.WriteString("\n")
	}
	b.WriteString("\nDecide which single specialist, if any, should handle the user's latest message. ")
	b.WriteString("Respond with JSON only, no prose: ")
	b.WriteString(`{"specialist": "<id or none>", "rationale": "<one sentence>"}`)
	return b.String()
}

func (s *Supervisor) fallbackInstructions() string {
	var b strings.Builder
	b.WriteString(s.opts.Instruction)
	b.WriteString("\n\nNo specialist covers the user's latest message. ")
	b.WriteString("Answer it yourself, concisely, from general knowledge. ")
	b.WriteString("If you cannot answer, say so plainly.")
	return b.String()
}

// parseVerdict extracts the routing verdict from model output, tolerating
// markdown code fences around the JSON.
func parseVerdict(text string) routeVerdict {
	text = stripFences(strings.TrimSpace(text))

	var v routeVerdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return routeVerdict{Specialist: core.TargetNone}
	}
	return v
}

func normalizeTarget(target string) string {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", "none", "null", "general":
		return core.TargetNone
	default:
		return strings.TrimSpace(target)
	}
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
