package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionTool_Call(t *testing.T) {
	tl := NewFunctionTool("add", "Adds two numbers", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	assert.Equal(t, "add", tl.Name())
	assert.Equal(t, "Adds two numbers", tl.Description())

	result, err := tl.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	tl := NewFunctionTool("greet", "Greets a user", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		return "hello " + args["name"].(string), nil
	})

	_, err := tl.Call(context.Background(), map[string]any{})
	require.Error(t, err)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "VALIDATION_ERROR", te.Code)
	assert.Equal(t, "greet", te.Tool)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	tl := NewFunctionTool("boom", "Always fails", nil, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("kaput")
	})

	_, err := tl.Call(context.Background(), nil)
	require.Error(t, err)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "EXECUTION_ERROR", te.Code)
	assert.Contains(t, te.Message, "kaput")
}

func TestFunctionTool_PassThroughToolError(t *testing.T) {
	want := NewToolError("custom", "not found", "EXECUTION_ERROR")
	tl := NewFunctionTool("custom", "Returns a typed error", nil, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, want
	})

	_, err := tl.Call(context.Background(), nil)
	require.Error(t, err)
	assert.Same(t, want, err)
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	type params struct {
		City string `json:"city" description:"City name"`
		Days *int   `json:"days,omitempty" description:"Forecast days"`
	}

	tl := NewFunctionToolFromStruct("weather", "Looks up the weather", params{}, func(_ context.Context, args map[string]any) (any, error) {
		return "sunny in " + args["city"].(string), nil
	})

	schema := tl.Parameters()
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "days")

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"city"}, required)

	result, err := tl.Call(context.Background(), map[string]any{"city": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Berlin", result)
}
