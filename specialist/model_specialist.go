package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
	"github.com/deskmesh/deskmesh/tool"
)

// DeclineMarker is the text prefix a model specialist emits to refuse a
// query outside its domain. Responses starting with it are reported as
// unhandled and their text is never surfaced to the user.
const DeclineMarker = "OUT_OF_SCOPE:"

const defaultMaxToolRounds = 5

// Options configures a ModelSpecialist.
type Options struct {
	// Instruction is the specialist's system prompt. It travels per request
	// and is never written into the conversation.
	Instruction string

	// Tools the specialist may call while answering.
	Tools []tool.Tool

	// MaxToolRounds bounds the generate/execute loop. Defaults to 5.
	MaxToolRounds int

	// MaxHistoryTurns limits how much conversation history is sent to the
	// model. Zero means the full history.
	MaxHistoryTurns int

	// Logger for specialist activity.
	Logger logging.Logger
}

// ModelSpecialist answers queries with an LLM, optionally calling tools.
type ModelSpecialist struct {
	id          string
	description string
	model       model.Model
	opts        Options
	tools       map[string]tool.Tool
	logger      logging.Logger
}

var _ Specialist = (*ModelSpecialist)(nil)

// New creates a model-backed specialist. The instruction is extended with the
// decline protocol so the specialist can hand back queries outside its
// domain.
func New(id, description string, m model.Model, optFns ...func(o *Options)) *ModelSpecialist {
	opts := Options{
		MaxToolRounds: defaultMaxToolRounds,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make(map[string]tool.Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		tools[t.Name()] = t
	}

	return &ModelSpecialist{
		id:          id,
		description: description,
		model:       m,
		opts:        opts,
		tools:       tools,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// ID implements the Specialist interface.
func (s *ModelSpecialist) ID() string { return s.id }

// Description implements the Specialist interface.
func (s *ModelSpecialist) Description() string { return s.description }

// Handle implements the Specialist interface. It runs a bounded
// generate/execute loop: when the model requests tool calls they are executed
// sequentially, their results fed back, and generation resumed until the
// model produces text or the round budget runs out.
func (s *ModelSpecialist) Handle(ctx context.Context, query string, conv *core.Conversation) (core.Response, error) {
	contents := s.buildContents(query, conv)

	req := model.Request{
		Instructions: s.instructions(),
		Contents:     contents,
		Tools:        s.toolDefinitions(),
	}

	for round := 0; round <= s.opts.MaxToolRounds; round++ {
		resp, err := model.GenerateText(ctx, s.model, req)
		if err != nil {
			return core.Response{}, core.NewCapabilityError("specialist."+s.id, err)
		}

		calls := resp.Content.ToolCalls()
		if len(calls) == 0 {
			return s.finalize(resp.Content.Text()), nil
		}

		req.Contents = append(req.Contents, resp.Content)
		for _, call := range calls {
			result := s.execute(ctx, call)
			req.Contents = append(req.Contents, model.ToolResultContent(result))
		}
	}

	return core.Response{}, core.NewCapabilityError(
		"specialist."+s.id,
		fmt.Errorf("tool round limit of %d exceeded", s.opts.MaxToolRounds),
	)
}

func (s *ModelSpecialist) buildContents(query string, conv *core.Conversation) []model.Content {
	var turns []core.Turn
	if conv != nil {
		if n := s.opts.MaxHistoryTurns; n > 0 {
			turns = conv.Recent(n)
		} else {
			turns = conv.Turns()
		}
	}

	contents := model.FromTurns(turns)
	return append(contents, model.UserText(query))
}

func (s *ModelSpecialist) instructions() string {
	var b strings.Builder
	b.WriteString(s.opts.Instruction)
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString("If the query is outside your area of expertise, reply with exactly \"")
	b.WriteString(DeclineMarker)
	b.WriteString("\" followed by a one-line reason. Do not attempt to answer it.")
	return b.String()
}

func (s *ModelSpecialist) toolDefinitions() []model.ToolDefinition {
	if len(s.opts.Tools) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(s.opts.Tools))
	for _, t := range s.opts.Tools {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// execute runs a single tool call. Failures are not fatal to the turn: the
// error goes back to the model as the tool result so it can recover or
// explain.
func (s *ModelSpecialist) execute(ctx context.Context, call model.ToolCall) model.ToolResult {
	result := model.ToolResult{ID: call.ID, Name: call.Name}

	t, ok := s.tools[call.Name]
	if !ok {
		result.Error = fmt.Sprintf("unknown tool: %s", call.Name)
		s.logger.Warn("unknown tool requested", "specialist", s.id, "tool", call.Name)
		return result
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			result.Error = fmt.Sprintf("invalid tool arguments: %v", err)
			return result
		}
	}

	s.logger.Debug("executing tool", "specialist", s.id, "tool", call.Name)

	out, err := t.Call(ctx, args)
	if err != nil {
		result.Error = err.Error()
		s.logger.Warn("tool execution failed", "specialist", s.id, "tool", call.Name, "error", err)
		return result
	}

	result.Result = out
	return result
}

func (s *ModelSpecialist) finalize(text string) core.Response {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, DeclineMarker) {
		reason := strings.TrimSpace(strings.TrimPrefix(trimmed, DeclineMarker))
		s.logger.Info("specialist declined query", "specialist", s.id, "reason", reason)
		return core.Response{Text: reason, Handled: false}
	}
	return core.Response{Text: trimmed, Handled: true}
}
