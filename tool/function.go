package tool

import (
	"context"
	"fmt"

	"github.com/deskmesh/deskmesh/internal/util"
)

// FunctionTool wraps a Go function as a Tool, handling schema exposure and
// argument validation so the wrapped function only sees well-formed input.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

var _ Tool = (*FunctionTool)(nil)

// NewFunctionTool creates a tool from a function and an explicit JSON schema.
func NewFunctionTool(name, description string, parameters map[string]any, fn func(ctx context.Context, args map[string]any) (any, error)) *FunctionTool {
	if parameters == nil {
		parameters = map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct creates a tool whose parameter schema is derived
// from the given struct type via reflection. Struct fields use `json` tags
// for property names and `description` tags for documentation; pointer and
// omitempty fields are treated as optional.
func NewFunctionToolFromStruct(name, description string, structType any, fn func(ctx context.Context, args map[string]any) (any, error)) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name implements the Tool interface.
func (t *FunctionTool) Name() string { return t.name }

// Description implements the Tool interface.
func (t *FunctionTool) Description() string { return t.description }

// Parameters implements the Tool interface.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the tool's schema and invokes the wrapped
// function. Validation failures and function errors are both reported as
// *ToolError.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if te, ok := err.(*ToolError); ok {
			return nil, te
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	return result, nil
}
