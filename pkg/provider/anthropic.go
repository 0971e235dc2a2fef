// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// AnthropicConfig configures a direct (non-Bedrock) Anthropic provider.
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultAnthropicMaxTokens = 4096

// Anthropic implements types.LLMProvider directly against Anthropic's
// Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropic builds an Anthropic provider from cfg.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic provider: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultAnthropicMaxTokens
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (a *Anthropic) Name() string  { return "anthropic" }
func (a *Anthropic) Model() string { return a.model }

// Chat sends messages and tools to Anthropic's Messages API and returns the
// assistant's reply.
func (a *Anthropic) Chat(ctx context.Context, messages []types.Message, tools []shuttle.Tool) (*types.LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
	}

	var systemPrompt string
	for _, msg := range messages {
		if msg.Role == "system" && msg.Content != "" {
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += msg.Content
		}
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	msgParams, err := a.convertMessages(messages)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: convert messages: %w", err)
	}
	params.Messages = msgParams

	if len(tools) > 0 {
		toolParams, err := a.convertTools(tools)
		if err != nil {
			return nil, fmt.Errorf("anthropic chat: convert tools: %w", err)
		}
		params.Tools = toolParams
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}

	out := &types.LLMResponse{
		StopReason: string(resp.StopReason),
		Usage: types.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
		Metadata: map[string]interface{}{"model": a.model},
	}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			var input map[string]interface{}
			if len(block.Input) > 0 {
				_ = json.Unmarshal(block.Input, &input)
			}
			out.ToolCalls = append(out.ToolCalls, types.ToolCall{ID: block.ID, Name: block.Name, Input: input})
		}
	}
	return out, nil
}

func (a *Anthropic) convertMessages(messages []types.Message) ([]anthropic.MessageParam, error) {
	var result []anthropic.MessageParam

	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}

		var content []anthropic.ContentBlockParamUnion
		if msg.Content != "" {
			content = append(content, anthropic.NewTextBlock(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			content = append(content, anthropic.NewToolUseBlock(tc.ID, tc.Input, tc.Name))
		}
		if msg.Role == "tool" {
			content = append(content, anthropic.NewToolResultBlock(msg.ToolUseID, msg.Content, false))
		}
		if len(content) == 0 {
			continue
		}

		if msg.Role == "assistant" {
			result = append(result, anthropic.NewAssistantMessage(content...))
		} else {
			result = append(result, anthropic.NewUserMessage(content...))
		}
	}
	return result, nil
}

func (a *Anthropic) convertTools(tools []shuttle.Tool) ([]anthropic.ToolUnionParam, error) {
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		schemaJSON, err := json.Marshal(map[string]interface{}{
			"type":       "object",
			"properties": convertSchemaProperties(schemaPropertiesOf(tool)),
			"required":   schemaRequiredOf(tool),
		})
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", tool.ID(), err)
		}

		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(schemaJSON, &schema); err != nil {
			return nil, fmt.Errorf("invalid schema for %s: %w", tool.ID(), err)
		}

		toolParam := anthropic.ToolUnionParamOfTool(schema, tool.ID())
		if toolParam.OfTool != nil {
			toolParam.OfTool.Description = anthropic.String(tool.Description())
		}
		result = append(result, toolParam)
	}
	return result, nil
}

func schemaPropertiesOf(tool shuttle.Tool) map[string]*shuttle.JSONSchema {
	if s := tool.InputSchema(); s != nil {
		return s.Properties
	}
	return nil
}

func schemaRequiredOf(tool shuttle.Tool) []string {
	if s := tool.InputSchema(); s != nil {
		return s.Required
	}
	return nil
}
