package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockModel is a lightweight in-memory Model useful for tests & examples.
//
// Responses are selected in this order:
//  1. When the last content carries a tool result, the follow-up registered
//     for that tool name (AddToolFollowUp)
//  2. A canned tool call registered for the last user/assistant text
//     (AddToolCall)
//  3. A canned text completion whose key is contained in the request
//     instructions (AddInstructionResponse)
//  4. A canned text completion keyed by the exact last text (AddResponse)
//  5. A generic echo of the input
type MockModel struct {
	mu            sync.Mutex
	info          Info
	responses     map[string]string
	instrRules    []instrRule
	toolCalls     map[string][]ToolCall
	toolFollowUps map[string]string
	failure       error
	requests      []Request
}

type instrRule struct {
	contains string
	response string
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		responses:     make(map[string]string),
		toolCalls:     make(map[string][]ToolCall),
		toolFollowUps: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input text.
func (m *MockModel) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// AddInstructionResponse registers a canned completion returned whenever the
// request instructions contain the given substring. Instruction rules take
// precedence over exact-input responses and are matched in registration
// order.
func (m *MockModel) AddInstructionResponse(contains, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instrRules = append(m.instrRules, instrRule{contains: contains, response: response})
}

// AddToolCall registers a canned tool call emitted when the given input text
// is seen. The follow-up after the tool result is configured separately via
// AddToolFollowUp.
func (m *MockModel) AddToolCall(input string, call ToolCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if call.ID == "" {
		call.ID = fmt.Sprintf("call-%d", len(m.toolCalls[input])+1)
	}
	m.toolCalls[input] = append(m.toolCalls[input], call)
}

// AddToolFollowUp registers the text completion returned after a result for
// the named tool has been observed.
func (m *MockModel) AddToolFollowUp(toolName, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolFollowUps[toolName] = response
}

// FailWith makes every subsequent Generate call fail with err. Pass nil to
// restore normal behavior.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// Requests returns a copy of every request this model has served, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// LastRequest returns the most recent request and true, or false when the
// model has not been called.
func (m *MockModel) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// Generate implements Model; emits optional streaming chunks then the final
// response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}

		m.mu.Lock()
		failure := m.failure
		m.mu.Unlock()
		if failure != nil {
			errCh <- failure
			return
		}

		final := m.resolve(req)

		if req.Stream {
			for _, part := range final.Content.Parts {
				tp, ok := part.(TextPart)
				if !ok {
					continue
				}
				for _, r := range tp.Text {
					select {
					case <-ctx.Done():
						errCh <- ctx.Err()
						return
					case respCh <- Response{
						Partial: true,
						Content: AssistantText(string(r)),
					}:
					}
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- final:
		}
	}()

	return respCh, errCh
}

// Info implements the Model interface.
func (m *MockModel) Info() Info { return m.info }

func (m *MockModel) resolve(req Request) Response {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	last := req.Contents[len(req.Contents)-1]

	if results := last.ToolResults(); len(results) > 0 {
		if text, ok := m.toolFollowUps[results[0].Name]; ok {
			return textResponse(text)
		}
		return textResponse(fmt.Sprintf("Observed result of %s", results[0].Name))
	}

	input := last.Text()

	if calls, ok := m.toolCalls[input]; ok {
		parts := make([]Part, 0, len(calls))
		for _, c := range calls {
			parts = append(parts, ToolCallPart{Call: c})
		}
		return Response{
			Content:      Content{Role: "assistant", Parts: parts},
			FinishReason: "tool_calls",
		}
	}

	for _, rule := range m.instrRules {
		if strings.Contains(req.Instructions, rule.contains) {
			return textResponse(rule.response)
		}
	}

	if text, ok := m.responses[input]; ok {
		return textResponse(text)
	}

	return textResponse(fmt.Sprintf("Mock response to: %s", input))
}

func textResponse(text string) Response {
	return Response{
		Content:      AssistantText(text),
		FinishReason: "stop",
		Usage:        &TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
	}
}
