package chain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/model"
)

func TestChain_Run(t *testing.T) {
	m := model.NewMockModel("chain-model")
	m.AddResponse("Which country is Paris in? Reply with the country only.", "France")
	m.AddResponse("Give one interesting fact about France.", "France has more time zones than any other country.")

	c := New("city-insights", []Step{
		{
			Name:      "country",
			Model:     m,
			Prompt:    "Which country is {{.city}} in? Reply with the country only.",
			OutputKey: "country",
		},
		{
			Name:   "fact",
			Model:  m,
			Prompt: "Give one interesting fact about {{.country}}.",
		},
	})

	result, err := c.Run(context.Background(), State{"city": "Paris"})
	require.NoError(t, err)
	assert.Equal(t, "France", result.State["country"])
	assert.Contains(t, result.State["fact"], "time zones")
	assert.Equal(t, 4, result.Usage.TotalTokens)
}

func TestChain_Halt(t *testing.T) {
	m := model.NewMockModel("chain-model")
	m.AddResponse("Classify: spam or ham?", "spam")

	second := 0
	c := New("triage", []Step{
		{
			Name:   "classify",
			Model:  m,
			Prompt: "Classify: spam or ham?",
			Halt: func(_ State, output string) bool {
				return strings.Contains(output, "spam")
			},
		},
		{
			Name:   "respond",
			Model:  m,
			Prompt: "Draft a reply.",
			Halt: func(_ State, _ string) bool {
				second++
				return false
			},
		},
	})

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "spam", result.State["classify"])
	assert.NotContains(t, result.State, "respond")
	assert.Zero(t, second)
}

func TestChain_EmptyOutputStops(t *testing.T) {
	m := model.NewMockModel("chain-model")
	m.AddResponse("Extract the city name.", "")

	c := New("extract", []Step{
		{Name: "city", Model: m, Prompt: "Extract the city name."},
		{Name: "detail", Model: m, Prompt: "Describe {{.city}}."},
	})

	result, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.NotContains(t, result.State, "city")
	assert.NotContains(t, result.State, "detail")
}

func TestChain_StepErrorNamesStep(t *testing.T) {
	m := model.NewMockModel("chain-model")
	m.FailWith(errors.New("quota exceeded"))

	c := New("city-insights", []Step{
		{Name: "country", Model: m, Prompt: "Which country?"},
	})

	_, err := c.Run(context.Background(), nil)
	require.Error(t, err)

	var capErr *core.CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "chain.city-insights.country", capErr.Op)
}

func TestChain_InitialStateNotMutated(t *testing.T) {
	m := model.NewMockModel("chain-model")

	c := New("noop", []Step{
		{Name: "step", Model: m, Prompt: "Say hi to {{.name}}."},
	})

	initial := State{"name": "Ada"}
	result, err := c.Run(context.Background(), initial)
	require.NoError(t, err)

	assert.Len(t, initial, 1)
	assert.Contains(t, result.State, "step")
}
