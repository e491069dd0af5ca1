// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/deskmesh/deskmesh/model"
)

// Options configures the Anthropic model adapter.
type Options struct {
	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey      string
	Temperature float64
	// MaxTokens caps completion length. Zero means 4096.
	MaxTokens int
}

// Model wraps the Anthropic Messages API behind the generic model.Model
// interface.
type Model struct {
	client *anthropic.Client
	name   anthropic.Model
	opts   Options
}

var _ model.Model = (*Model)(nil)

// New creates an Anthropic model using the official client. An empty name
// selects Claude 3.5 Sonnet.
func New(name string, optFns ...func(o *Options)) *Model {
	opts := Options{
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	if name == "" {
		name = string(anthropic.ModelClaude3_5Sonnet20241022)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		name:   anthropic.Model(name),
		opts:   opts,
	}
}

// Generate implements the Model interface. Streaming is not supported yet;
// requests with Stream set fail.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if req.Stream {
			// TODO: implement streaming via anthropic.MessageStreamEvent
			// aggregation.
			errCh <- fmt.Errorf("streaming not yet implemented for Anthropic model")
			return
		}

		params := anthropic.MessageNewParams{
			Model:       m.name,
			Messages:    buildMessages(req.Contents),
			MaxTokens:   int64(m.opts.MaxTokens),
			Temperature: anthropic.Float(m.opts.Temperature),
		}

		if req.Instructions != "" {
			params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
		}

		if len(req.Tools) > 0 {
			params.Tools = buildTools(req.Tools)
		}

		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic api error: %w", err)
			return
		}

		var parts []model.Part
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				textBlock := block.AsText()
				if textBlock.Text != "" {
					parts = append(parts, model.TextPart{Text: textBlock.Text})
				}
			case "tool_use":
				toolBlock := block.AsToolUse()
				args := ""
				if toolBlock.Input != nil {
					if argsBytes, err := json.Marshal(toolBlock.Input); err == nil {
						args = string(argsBytes)
					}
				}
				parts = append(parts, model.ToolCallPart{Call: model.ToolCall{
					ID:        toolBlock.ID,
					Name:      toolBlock.Name,
					Arguments: args,
				}})
			}
		}

		finishReason := "stop"
		if resp.StopReason != "" {
			finishReason = string(resp.StopReason)
		}

		out <- model.Response{
			Content:      model.Content{Role: "assistant", Parts: parts},
			FinishReason: finishReason,
			Usage: &model.TokenUsage{
				PromptTokens:     int(resp.Usage.InputTokens),
				CompletionTokens: int(resp.Usage.OutputTokens),
				TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			},
		}
	}()

	return out, errCh
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.name),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

// buildMessages converts normalized contents to Anthropic message format.
// Tool results become tool_result blocks appended to the assistant message
// carrying their originating calls.
func buildMessages(contents []model.Content) []anthropic.MessageParam {
	toolResults := make(map[string]model.ToolResult)
	for _, c := range contents {
		if c.Role != "tool" {
			continue
		}
		for _, result := range c.ToolResults() {
			if result.ID != "" {
				toolResults[result.ID] = result
			}
		}
	}

	var messages []anthropic.MessageParam
	for _, c := range contents {
		switch c.Role {
		case "tool", "system":
			continue
		case "assistant":
			if blocks := assistantBlocks(c, toolResults); len(blocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(blocks...))
			}
		default:
			if text := c.Text(); text != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
			}
		}
	}

	return messages
}

func assistantBlocks(c model.Content, toolResults map[string]model.ToolResult) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	var callIDs []string

	for _, p := range c.Parts {
		switch part := p.(type) {
		case model.TextPart:
			if part.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		case model.ToolCallPart:
			var input any
			if part.Call.Arguments != "" {
				if err := json.Unmarshal([]byte(part.Call.Arguments), &input); err != nil {
					input = part.Call.Arguments
				}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(part.Call.ID, input, part.Call.Name))
			callIDs = append(callIDs, part.Call.ID)
		}
	}

	for _, id := range callIDs {
		result, ok := toolResults[id]
		if !ok {
			continue
		}
		text := ""
		isError := false
		if result.Error != "" {
			text = result.Error
			isError = true
		} else if s, ok := result.Result.(string); ok {
			text = s
		} else {
			text = fmt.Sprintf("%v", result.Result)
		}
		blocks = append(blocks, anthropic.NewToolResultBlock(id, text, isError))
		delete(toolResults, id)
	}

	return blocks
}

// buildTools converts tool definitions to Anthropic tool format.
func buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if tdef.Parameters != nil {
			if properties, exists := tdef.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			switch required := tdef.Parameters["required"].(type) {
			case []string:
				inputSchema.Required = required
			case []any:
				for _, r := range required {
					if s, ok := r.(string); ok {
						inputSchema.Required = append(inputSchema.Required, s)
					}
				}
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParamOfTool(inputSchema, tdef.Name)
	}

	return anthropicTools
}
