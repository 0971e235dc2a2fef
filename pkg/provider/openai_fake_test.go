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
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// fakeOpenAIProvider is a types.LLMProvider built on go-openai's wire
// types rather than a live client. It exists to pin the adapter contract
// (Anthropic, Bedrock, and any future OpenAI-compatible backend must all
// fit one types.LLMProvider shape) against a third concrete vocabulary,
// so a change to types.Message/LLMResponse that only happens to still
// satisfy Anthropic's and Bedrock's conversions gets caught here too.
type fakeOpenAIProvider struct {
	model     string
	responses []openai.ChatCompletionResponse
	call      int
}

func (f *fakeOpenAIProvider) Name() string  { return "openai" }
func (f *fakeOpenAIProvider) Model() string { return f.model }

func (f *fakeOpenAIProvider) Chat(_ context.Context, messages []types.Message, tools []shuttle.Tool) (*types.LLMResponse, error) {
	if _, err := toOpenAIMessages(messages); err != nil {
		return nil, err
	}
	if len(tools) > 0 {
		_ = toOpenAITools(tools)
	}
	if f.call >= len(f.responses) {
		return &types.LLMResponse{Content: "done"}, nil
	}
	resp := f.responses[f.call]
	f.call++
	return fromOpenAIResponse(resp)
}

// toOpenAIMessages mirrors the shape of an OpenAI chat completion request's
// message list closely enough to exercise role and tool-result framing.
func toOpenAIMessages(messages []types.Message) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "tool":
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				ToolCallID: m.ToolUseID,
			})
		case "assistant":
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content}
			for _, tc := range m.ToolCalls {
				args, err := json.Marshal(tc.Input)
				if err != nil {
					return nil, err
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, msg)
		default:
			out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
		}
	}
	return out, nil
}

func toOpenAITools(tools []shuttle.Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.ID(),
				Description: t.Description(),
			},
		})
	}
	return out
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) (*types.LLMResponse, error) {
	if len(resp.Choices) == 0 {
		return &types.LLMResponse{}, nil
	}
	choice := resp.Choices[0]
	out := &types.LLMResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: types.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		var input map[string]interface{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				return nil, err
			}
		}
		out.ToolCalls = append(out.ToolCalls, types.ToolCall{ID: tc.ID, Name: tc.Function.Name, Input: input})
	}
	return out, nil
}

func TestFakeOpenAIProvider_ChatRoundTripsToolCalls(t *testing.T) {
	fake := &fakeOpenAIProvider{
		model: "gpt-4o",
		responses: []openai.ChatCompletionResponse{
			{
				Choices: []openai.ChatCompletionChoice{{
					FinishReason: openai.FinishReasonToolCalls,
					Message: openai.ChatCompletionMessage{
						Role: openai.ChatMessageRoleAssistant,
						ToolCalls: []openai.ToolCall{{
							ID:   "call_1",
							Type: openai.ToolTypeFunction,
							Function: openai.FunctionCall{
								Name:      "list_files",
								Arguments: `{"path":"."}`,
							},
						}},
					},
				}},
				Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 4},
			},
		},
	}

	var _ types.LLMProvider = fake

	resp, err := fake.Chat(context.Background(), []types.Message{
		{Role: "user", Content: "list the workspace files"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "list_files", resp.ToolCalls[0].Name)
	assert.Equal(t, ".", resp.ToolCalls[0].Input["path"])
	assert.Equal(t, "tool_calls", resp.StopReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)
}

func TestFakeOpenAIProvider_ToolResultMessageUsesToolCallID(t *testing.T) {
	messages := []types.Message{
		{Role: "tool", ToolUseID: "call_1", Content: `{"files":["a.md"]}`},
	}
	converted, err := toOpenAIMessages(messages)
	require.NoError(t, err)
	require.Len(t, converted, 1)
	assert.Equal(t, openai.ChatMessageRoleTool, converted[0].Role)
	assert.Equal(t, "call_1", converted[0].ToolCallID)
}
