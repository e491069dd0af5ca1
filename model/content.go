package model

import (
	"strings"

	"github.com/deskmesh/deskmesh/core"
)

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ToolCall describes a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // Serialized JSON payload
}

// ToolCallPart wraps a ToolCall as a content part.
type ToolCallPart struct {
	Call ToolCall
}

func (ToolCallPart) isPart() {}

// ToolResult describes the outcome of a previously requested tool call.
type ToolResult struct {
	ID     string `json:"id,omitempty"` // Matches the originating ToolCall ID
	Name   string `json:"name"`
	Result any    `json:"result,omitempty"` // Successful result (any JSON-serializable shape)
	Error  string `json:"error,omitempty"`  // Populated on failure
}

// ToolResultPart wraps a ToolResult as a content part.
type ToolResultPart struct {
	Result ToolResult
}

func (ToolResultPart) isPart() {}

// Content holds a conversation role plus ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"` // "user", "assistant", "tool", "system"
	Parts []Part `json:"parts"`
}

// Text concatenates all text parts in order.
func (c Content) Text() string {
	var b strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// ToolCalls returns any tool call parts preserving their original order.
func (c Content) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range c.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.Call)
		}
	}
	return calls
}

// ToolResults returns any tool result parts preserving their original order.
func (c Content) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range c.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.Result)
		}
	}
	return results
}

// UserText builds a single-part user content.
func UserText(text string) Content {
	return Content{Role: "user", Parts: []Part{TextPart{Text: text}}}
}

// AssistantText builds a single-part assistant content.
func AssistantText(text string) Content {
	return Content{Role: "assistant", Parts: []Part{TextPart{Text: text}}}
}

// ToolResultContent builds a tool-role content carrying one result.
func ToolResultContent(result ToolResult) Content {
	return Content{Role: "tool", Parts: []Part{ToolResultPart{Result: result}}}
}

// FromTurns converts conversation turns into model contents. User turns map
// to the "user" role and agent turns to "assistant". System turns are
// dropped: per-request instructions travel in Request.Instructions so one
// responder's system prompt never leaks into another's context.
func FromTurns(turns []core.Turn) []Content {
	contents := make([]Content, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case core.RoleUser:
			contents = append(contents, UserText(t.Text))
		case core.RoleAgent:
			contents = append(contents, AssistantText(t.Text))
		}
	}
	return contents
}
