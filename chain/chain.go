// Package chain implements sequential prompt pipelines: each step renders a
// prompt template over shared state, runs a model, and stores the output for
// later steps. Useful for decomposition workflows such as extracting a fact
// and then elaborating on it.
package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/deskmesh/deskmesh/core"
	"github.com/deskmesh/deskmesh/internal/util"
	"github.com/deskmesh/deskmesh/logging"
	"github.com/deskmesh/deskmesh/model"
)

// State is the shared key/value store steps read from and write to.
type State map[string]any

// Step is one stage of a chain.
type Step struct {
	// Name identifies the step in logs and errors.
	Name string

	// Model runs the step. Required.
	Model model.Model

	// Instruction is the step's system prompt. Optional.
	Instruction string

	// Prompt is a text/template rendered over the chain state to produce the
	// user message.
	Prompt string

	// OutputKey stores the step output in the state. Defaults to the step
	// name.
	OutputKey string

	// Halt, when set, stops the chain after this step if it returns true for
	// the step's output. Earlier outputs are preserved.
	Halt func(state State, output string) bool
}

// Result carries the final chain state plus accumulated token usage.
type Result struct {
	State State
	Usage model.TokenUsage
}

// Chain runs steps in order over a shared state.
type Chain struct {
	name   string
	steps  []Step
	logger logging.Logger
}

// Options configures a Chain.
type Options struct {
	Logger logging.Logger
}

// New creates a chain.
func New(name string, steps []Step, optFns ...func(o *Options)) *Chain {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Chain{
		name:   name,
		steps:  steps,
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Run executes the chain over a copy of the initial state. A step failure
// aborts the run with a capability error naming the step; a step that
// produces no output stops the chain, preserving earlier outputs.
func (c *Chain) Run(ctx context.Context, initial State) (Result, error) {
	state := State{}
	for k, v := range initial {
		state[k] = v
	}

	result := Result{State: state}

	for _, step := range c.steps {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		prompt, err := util.RenderTemplate(step.Prompt, state)
		if err != nil {
			return result, core.NewCapabilityError(
				fmt.Sprintf("chain.%s.%s", c.name, step.Name),
				fmt.Errorf("render prompt: %w", err),
			)
		}

		resp, err := model.GenerateText(ctx, step.Model, model.Request{
			Instructions: step.Instruction,
			Contents:     []model.Content{model.UserText(prompt)},
		})
		if err != nil {
			return result, core.NewCapabilityError(
				fmt.Sprintf("chain.%s.%s", c.name, step.Name), err)
		}

		output := strings.TrimSpace(resp.Content.Text())
		if resp.Usage != nil {
			result.Usage.Add(*resp.Usage)
		}

		if output == "" {
			c.logger.Warn("chain step produced no output, stopping", "chain", c.name, "step", step.Name)
			break
		}

		key := step.OutputKey
		if key == "" {
			key = step.Name
		}
		state[key] = output

		c.logger.Debug("chain step completed", "chain", c.name, "step", step.Name)

		if step.Halt != nil && step.Halt(state, output) {
			c.logger.Info("chain halted early", "chain", c.name, "step", step.Name)
			break
		}
	}

	return result, nil
}
