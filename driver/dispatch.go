package driver

import (
	"context"
	"fmt"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/model"
	"github.com/deskmesh/deskmesh/specialist"
	"github.com/deskmesh/deskmesh/supervisor"
)

// Dispatcher runs the route-then-respond phase of a turn. Implementations
// call transition to report state changes as the phase progresses, produce
// exactly one routing decision, and return the handled response that will be
// surfaced to the user.
type Dispatcher interface {
	Dispatch(ctx context.Context, query string, conv *core.Conversation, transition func(State)) (core.RoutingDecision, core.Response, error)
}

// RoutingDispatcher is the default dispatch strategy: an explicit routing
// round with the supervisor, then either a specialist handoff or the
// supervisor's own fallback reply. A specialist that declines also falls
// through to the fallback, and its declined text is discarded.
type RoutingDispatcher struct {
	supervisor *supervisor.Supervisor
	registry   *specialist.Registry
}

var _ Dispatcher = (*RoutingDispatcher)(nil)

// NewRoutingDispatcher creates the default dispatcher.
func NewRoutingDispatcher(sup *supervisor.Supervisor, reg *specialist.Registry) *RoutingDispatcher {
	return &RoutingDispatcher{supervisor: sup, registry: reg}
}

// Dispatch implements the Dispatcher interface.
func (d *RoutingDispatcher) Dispatch(ctx context.Context, query string, conv *core.Conversation, transition func(State)) (core.RoutingDecision, core.Response, error) {
	transition(StateRouting)

	decision, err := d.supervisor.Route(ctx, query, conv)
	if err != nil {
		return core.RoutingDecision{}, core.Response{}, err
	}

	if decision.Routed() {
		sp, ok := d.registry.Get(decision.Target)
		if !ok {
			// Registry changed between routing and dispatch.
			return decision, core.Response{}, core.NewCapabilityError(
				"driver.dispatch",
				fmt.Errorf("specialist %q not registered", decision.Target),
			)
		}

		transition(StateDispatching)

		resp, err := sp.Handle(ctx, query, conv)
		if err != nil {
			return decision, core.Response{}, err
		}
		if resp.Handled {
			return decision, resp, nil
		}
	}

	transition(StateFallback)

	resp, err := d.supervisor.FallbackReply(ctx, query, conv)
	if err != nil {
		return decision, core.Response{}, err
	}

	return decision, resp, nil
}

// ToolCallingDispatcher routes and responds in a single supervisor model
// call by exposing each specialist as a callable tool. The model either
// invokes one specialist tool, whose answer is surfaced, or answers directly,
// which is recorded as a fallback.
type ToolCallingDispatcher struct {
	model    model.Model
	registry *specialist.Registry
}

var _ Dispatcher = (*ToolCallingDispatcher)(nil)

// NewToolCallingDispatcher creates the agents-as-tools dispatch strategy.
func NewToolCallingDispatcher(m model.Model, reg *specialist.Registry) *ToolCallingDispatcher {
	return &ToolCallingDispatcher{model: m, registry: reg}
}

// Dispatch implements the Dispatcher interface.
func (d *ToolCallingDispatcher) Dispatch(ctx context.Context, query string, conv *core.Conversation, transition func(State)) (core.RoutingDecision, core.Response, error) {
	transition(StateRouting)

	req := model.Request{
		Instructions: d.instructions(),
		Contents:     append(model.FromTurns(conv.Turns()), model.UserText(query)),
		Tools:        d.specialistTools(),
	}

	resp, err := model.GenerateText(ctx, d.model, req)
	if err != nil {
		return core.RoutingDecision{}, core.Response{}, core.NewCapabilityError("supervisor.route", err)
	}

	calls := resp.Content.ToolCalls()
	if len(calls) == 0 {
		// The supervisor answered directly.
		transition(StateFallback)
		return core.RoutingDecision{Target: core.TargetNone, Rationale: "supervisor answered directly"},
			core.Response{Text: resp.Content.Text(), Handled: true}, nil
	}

	call := calls[0]
	decision := core.RoutingDecision{Target: call.Name, Rationale: "supervisor delegated via tool call"}

	sp, ok := d.registry.Get(call.Name)
	if !ok {
		return decision, core.Response{}, core.NewCapabilityError(
			"driver.dispatch",
			fmt.Errorf("specialist %q not registered", call.Name),
		)
	}

	transition(StateDispatching)

	spResp, err := sp.Handle(ctx, query, conv)
	if err != nil {
		return decision, core.Response{}, err
	}
	if spResp.Handled {
		return decision, spResp, nil
	}

	transition(StateFallback)

	// The delegate declined; ask the supervisor model to answer directly.
	req.Tools = nil
	req.Instructions = d.instructions() + "\nAnswer the user's latest message yourself."
	fallback, err := model.GenerateText(ctx, d.model, req)
	if err != nil {
		return decision, core.Response{}, core.NewCapabilityError("supervisor.fallback", err)
	}

	return decision, core.Response{Text: fallback.Content.Text(), Handled: true}, nil
}

func (d *ToolCallingDispatcher) instructions() string {
	return "You are a supervisor coordinating a team of specialist agents. " +
		"Delegate the user's latest message to at most one of your specialist tools, " +
		"or answer it yourself if no specialist fits."
}

func (d *ToolCallingDispatcher) specialistTools() []model.ToolDefinition {
	specialists := d.registry.All()
	defs := make([]model.ToolDefinition, 0, len(specialists))
	for _, sp := range specialists {
		defs = append(defs, model.ToolDefinition{
			Name:        sp.ID(),
			Description: sp.Description(),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The user query to hand to this specialist",
					},
				},
				"required": []string{"query"},
			},
		})
	}
	return defs
}
