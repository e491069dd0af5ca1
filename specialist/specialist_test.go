package specialist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/model"
	"github.com/deskmesh/deskmesh/tool"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	m := model.NewMockModel("test-model")

	billing := New("billing", "Handles billing questions", m)
	technical := New("technical", "Handles technical questions", m)

	require.NoError(t, reg.Register(billing, technical))
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"billing", "technical"}, reg.IDs())

	got, ok := reg.Get("billing")
	require.True(t, ok)
	assert.Equal(t, "billing", got.ID())

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	err := reg.Register(New("billing", "Duplicate", m))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "billing", all[0].ID())
	assert.Equal(t, "technical", all[1].ID())
}

func TestModelSpecialist_Handle(t *testing.T) {
	m := model.NewMockModel("test-model")
	m.AddResponse("Why is my bill so high?", "Your bill includes a one-time setup fee.")

	sp := New("billing", "Handles billing questions", m, func(o *Options) {
		o.Instruction = "You are a billing support agent."
	})

	resp, err := sp.Handle(context.Background(), "Why is my bill so high?", core.NewConversation())
	require.NoError(t, err)
	assert.True(t, resp.Handled)
	assert.Equal(t, "Your bill includes a one-time setup fee.", resp.Text)

	req, ok := m.LastRequest()
	require.True(t, ok)
	assert.Contains(t, req.Instructions, "You are a billing support agent.")
	assert.Contains(t, req.Instructions, DeclineMarker)
}

func TestModelSpecialist_Decline(t *testing.T) {
	m := model.NewMockModel("test-model")
	m.AddResponse("What is the weather?", DeclineMarker+" weather is not a billing topic")

	sp := New("billing", "Handles billing questions", m)

	resp, err := sp.Handle(context.Background(), "What is the weather?", core.NewConversation())
	require.NoError(t, err)
	assert.False(t, resp.Handled)
	assert.Equal(t, "weather is not a billing topic", resp.Text)
}

func TestModelSpecialist_IncludesHistory(t *testing.T) {
	m := model.NewMockModel("test-model")

	conv := core.NewConversation()
	conv.Append(core.RoleUser, "My account number is 42.")
	conv.Append(core.RoleAgent, "Thanks, noted.")

	sp := New("billing", "Handles billing questions", m)

	_, err := sp.Handle(context.Background(), "What was my account number?", conv)
	require.NoError(t, err)

	req, ok := m.LastRequest()
	require.True(t, ok)
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Equal(t, "My account number is 42.", req.Contents[0].Text())
	assert.Equal(t, "assistant", req.Contents[1].Role)
	assert.Equal(t, "What was my account number?", req.Contents[2].Text())
}

func TestModelSpecialist_ToolLoop(t *testing.T) {
	lookups := 0
	lookup := tool.NewFunctionTool("lookup_invoice", "Looks up an invoice", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{"type": "string"},
		},
		"required": []string{"id"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		lookups++
		return map[string]any{"id": args["id"], "amount": 99.50}, nil
	})

	m := model.NewMockModel("test-model")
	m.AddToolCall("How much was invoice INV-7?", model.ToolCall{
		Name:      "lookup_invoice",
		Arguments: `{"id": "INV-7"}`,
	})
	m.AddToolFollowUp("lookup_invoice", "Invoice INV-7 was 99.50 EUR.")

	sp := New("billing", "Handles billing questions", m, func(o *Options) {
		o.Tools = []tool.Tool{lookup}
	})

	resp, err := sp.Handle(context.Background(), "How much was invoice INV-7?", core.NewConversation())
	require.NoError(t, err)
	assert.True(t, resp.Handled)
	assert.Equal(t, "Invoice INV-7 was 99.50 EUR.", resp.Text)
	assert.Equal(t, 1, lookups)

	req, ok := m.LastRequest()
	require.True(t, ok)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "lookup_invoice", req.Tools[0].Name)
}

func TestModelSpecialist_ToolErrorFedBack(t *testing.T) {
	failing := tool.NewFunctionTool("lookup_invoice", "Looks up an invoice", nil,
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("invoice service unavailable")
		})

	m := model.NewMockModel("test-model")
	m.AddToolCall("How much was invoice INV-7?", model.ToolCall{Name: "lookup_invoice"})
	m.AddToolFollowUp("lookup_invoice", "I could not reach the invoice service.")

	sp := New("billing", "Handles billing questions", m, func(o *Options) {
		o.Tools = []tool.Tool{failing}
	})

	resp, err := sp.Handle(context.Background(), "How much was invoice INV-7?", core.NewConversation())
	require.NoError(t, err)
	assert.Equal(t, "I could not reach the invoice service.", resp.Text)

	req, ok := m.LastRequest()
	require.True(t, ok)
	results := req.Contents[len(req.Contents)-1].ToolResults()
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "invoice service unavailable")
}

func TestModelSpecialist_ModelErrorIsCapabilityError(t *testing.T) {
	m := model.NewMockModel("test-model")
	m.FailWith(errors.New("upstream timeout"))

	sp := New("billing", "Handles billing questions", m)

	_, err := sp.Handle(context.Background(), "Anything", core.NewConversation())
	require.Error(t, err)

	var capErr *core.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "specialist.billing", capErr.Op)
}
