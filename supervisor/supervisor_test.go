package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/model"
	"github.com/deskmesh/deskmesh/specialist"
)

func newRegistry(t *testing.T) *specialist.Registry {
	t.Helper()

	m := model.NewMockModel("specialist-model")
	reg := specialist.NewRegistry()
	require.NoError(t, reg.Register(
		specialist.New("billing", "Handles billing and account questions", m),
		specialist.New("technical", "Handles technical support questions", m),
	))
	return reg
}

func TestSupervisor_Route(t *testing.T) {
	tests := []struct {
		name       string
		verdict    string
		wantTarget string
	}{
		{
			name:       "routes to known specialist",
			verdict:    `{"specialist": "billing", "rationale": "billing question"}`,
			wantTarget: "billing",
		},
		{
			name:       "none maps to no target",
			verdict:    `{"specialist": "none", "rationale": "general chit-chat"}`,
			wantTarget: core.TargetNone,
		},
		{
			name:       "unknown specialist maps to no target",
			verdict:    `{"specialist": "weather", "rationale": "weather question"}`,
			wantTarget: core.TargetNone,
		},
		{
			name:       "fenced JSON is tolerated",
			verdict:    "```json\n{\"specialist\": \"technical\", \"rationale\": \"modem issue\"}\n```",
			wantTarget: "technical",
		},
		{
			name:       "malformed verdict maps to no target",
			verdict:    "I think billing should handle this.",
			wantTarget: core.TargetNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.NewMockModel("supervisor-model")
			m.AddResponse("My router keeps dropping.", tt.verdict)

			sup := New(m, newRegistry(t))

			decision, err := sup.Route(context.Background(), "My router keeps dropping.", core.NewConversation())
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, decision.Target)
			assert.Equal(t, tt.wantTarget != core.TargetNone, decision.Routed())
		})
	}
}

func TestSupervisor_RoutePromptContainsRoster(t *testing.T) {
	m := model.NewMockModel("supervisor-model")
	sup := New(m, newRegistry(t))

	_, err := sup.Route(context.Background(), "Hello", core.NewConversation())
	require.NoError(t, err)

	req, ok := m.LastRequest()
	require.True(t, ok)
	assert.Contains(t, req.Instructions, "billing: Handles billing and account questions")
	assert.Contains(t, req.Instructions, "technical: Handles technical support questions")
	assert.Contains(t, req.Instructions, `"specialist"`)
}

func TestSupervisor_RouteModelError(t *testing.T) {
	m := model.NewMockModel("supervisor-model")
	m.FailWith(errors.New("connection refused"))

	sup := New(m, newRegistry(t))

	_, err := sup.Route(context.Background(), "Hello", core.NewConversation())
	require.Error(t, err)

	var capErr *core.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "supervisor.route", capErr.Op)
}

func TestSupervisor_FallbackReply(t *testing.T) {
	m := model.NewMockModel("supervisor-model")
	m.AddResponse("What is the capital of France?", "The capital of France is Paris.")

	sup := New(m, newRegistry(t))

	resp, err := sup.FallbackReply(context.Background(), "What is the capital of France?", core.NewConversation())
	require.NoError(t, err)
	assert.True(t, resp.Handled)
	assert.Equal(t, "The capital of France is Paris.", resp.Text)

	req, ok := m.LastRequest()
	require.True(t, ok)
	assert.Contains(t, req.Instructions, "No specialist covers")
}

func TestSupervisor_FallbackModelError(t *testing.T) {
	m := model.NewMockModel("supervisor-model")
	m.FailWith(errors.New("connection refused"))

	sup := New(m, newRegistry(t))

	_, err := sup.FallbackReply(context.Background(), "Hello", core.NewConversation())
	require.Error(t, err)

	var capErr *core.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "supervisor.fallback", capErr.Op)
}

func TestSupervisor_HistoryForwarded(t *testing.T) {
	m := model.NewMockModel("supervisor-model")
	sup := New(m, newRegistry(t), func(o *Options) {
		o.MaxHistoryTurns = 2
	})

	conv := core.NewConversation()
	conv.Append(core.RoleUser, "first")
	conv.Append(core.RoleAgent, "first reply")
	conv.Append(core.RoleUser, "second")
	conv.Append(core.RoleAgent, "second reply")

	_, err := sup.Route(context.Background(), "third", core.NewConversation())
	require.NoError(t, err)

	_, err = sup.Route(context.Background(), "third", conv)
	require.NoError(t, err)

	req, ok := m.LastRequest()
	require.True(t, ok)
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "second", req.Contents[0].Text())
	assert.Equal(t, "second reply", req.Contents[1].Text())
	assert.Equal(t, "third", req.Contents[2].Text())
}
