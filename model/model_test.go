package model

import (
	"context"
	"testing"

	"github.com/deskmesh/deskmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTextReturnsFinalResponse(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("hello", "hi there")

	resp, err := GenerateText(context.Background(), m, Request{
		Contents: []Content{UserText("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content.Text())
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestGenerateTextDiscardsPartials(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("stream me", "chunked")

	resp, err := GenerateText(context.Background(), m, Request{
		Contents: []Content{UserText("stream me")},
		Stream:   true,
	})
	require.NoError(t, err)
	assert.False(t, resp.Partial)
	assert.Equal(t, "chunked", resp.Content.Text())
}

func TestGenerateTextEmptyContents(t *testing.T) {
	m := NewMockModel("test")

	_, err := GenerateText(context.Background(), m, Request{})
	assert.Error(t, err)
}

func TestGenerateTextCancellation(t *testing.T) {
	m := NewMockModel("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateText(ctx, m, Request{Contents: []Content{UserText("x")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModelToolCallRound(t *testing.T) {
	m := NewMockModel("test")
	m.AddToolCall("create a task", ToolCall{Name: "create_task", Arguments: `{"name":"demo"}`})
	m.AddToolFollowUp("create_task", "Task created.")

	resp, err := GenerateText(context.Background(), m, Request{
		Contents: []Content{UserText("create a task")},
	})
	require.NoError(t, err)
	calls := resp.Content.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "create_task", calls[0].Name)
	assert.Equal(t, "tool_calls", resp.FinishReason)

	follow, err := GenerateText(context.Background(), m, Request{
		Contents: []Content{
			UserText("create a task"),
			ToolResultContent(ToolResult{ID: calls[0].ID, Name: "create_task", Result: "ok"}),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Task created.", follow.Content.Text())
}

func TestMockModelInstructionRulePrecedence(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("query", "by input")
	m.AddInstructionResponse("classifier", "by instruction")

	resp, err := GenerateText(context.Background(), m, Request{
		Instructions: "You are a classifier for support teams.",
		Contents:     []Content{UserText("query")},
	})
	require.NoError(t, err)
	assert.Equal(t, "by instruction", resp.Content.Text())

	resp, err = GenerateText(context.Background(), m, Request{
		Instructions: "Something else.",
		Contents:     []Content{UserText("query")},
	})
	require.NoError(t, err)
	assert.Equal(t, "by input", resp.Content.Text())
}

func TestFromTurnsDropsSystemTurns(t *testing.T) {
	turns := []core.Turn{
		core.NewTurn(core.RoleUser, "question"),
		core.NewTurn(core.RoleAgent, "answer"),
		core.NewTurn(core.RoleSystem, "internal note"),
	}

	contents := FromTurns(turns)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "question", contents[0].Text())
	assert.Equal(t, "assistant", contents[1].Role)
}

func TestContentHelpers(t *testing.T) {
	c := Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "a"},
		ToolCallPart{Call: ToolCall{ID: "1", Name: "x"}},
		TextPart{Text: "b"},
	}}

	assert.Equal(t, "ab", c.Text())
	require.Len(t, c.ToolCalls(), 1)
	assert.Empty(t, c.ToolResults())
}
