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

// Package provider adapts external LLM APIs to types.LLMProvider, the
// single contract the Chat Engine drives. Each file is one backend; the
// Active provider is selected at startup from configuration, never
// switched mid-session.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// BedrockConfig configures a Bedrock-backed provider.
type BedrockConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
	ModelID         string
	MaxTokens       int
	Temperature     float64
}

const (
	defaultBedrockModelID   = "us.anthropic.claude-sonnet-4-5-20250929-v1:0"
	defaultBedrockRegion    = "us-west-2"
	defaultBedrockMaxTokens = 4096
)

// Bedrock implements types.LLMProvider over AWS Bedrock's InvokeModel API,
// using Anthropic's Messages API request/response shape (the format every
// Claude model on Bedrock accepts).
type Bedrock struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float64

	// toolNameMap recovers the original tool name after Bedrock's
	// ^[a-zA-Z0-9_-]{1,64}$ name restriction forces sanitization; populated
	// fresh on every Chat call since tool sets vary per turn.
	toolNameMap map[string]string
}

// NewBedrock builds a Bedrock provider, loading AWS credentials from cfg or,
// absent those, the default SDK credential chain (environment, profile, IAM
// role).
func NewBedrock(ctx context.Context, cfg BedrockConfig) (*Bedrock, error) {
	if cfg.ModelID == "" {
		cfg.ModelID = defaultBedrockModelID
	}
	if cfg.Region == "" {
		cfg.Region = defaultBedrockRegion
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultBedrockMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 1.0
	}

	var awsCfg aws.Config
	var err error
	switch {
	case cfg.AccessKeyID != "" && cfg.SecretAccessKey != "":
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)),
		)
	case cfg.Profile != "":
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region), config.WithSharedConfigProfile(cfg.Profile))
	default:
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Bedrock{
		client:      bedrockruntime.NewFromConfig(awsCfg),
		modelID:     cfg.ModelID,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		toolNameMap: make(map[string]string),
	}, nil
}

func (b *Bedrock) Name() string  { return "bedrock" }
func (b *Bedrock) Model() string { return b.modelID }

// Chat sends messages and the enabled tool set to Bedrock and returns the
// assistant's reply, decoded tool calls included.
func (b *Bedrock) Chat(ctx context.Context, messages []types.Message, tools []shuttle.Tool) (*types.LLMResponse, error) {
	systemPrompt, apiMessages := b.convertMessages(messages)
	if len(apiMessages) == 0 {
		return nil, fmt.Errorf("bedrock chat: no messages to send")
	}

	request := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        b.maxTokens,
		"temperature":       b.temperature,
		"messages":          apiMessages,
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}
	if len(tools) > 0 {
		request["tools"] = b.convertTools(tools)
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("bedrock chat: marshal request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invocation: %w", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("bedrock chat: unmarshal response: %w", err)
	}
	return b.convertResponse(&resp), nil
}

func (b *Bedrock) convertMessages(messages []types.Message) (string, []map[string]interface{}) {
	var systemPrompts []string
	var apiMessages []map[string]interface{}

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if msg.Content != "" {
				systemPrompts = append(systemPrompts, msg.Content)
			}

		case "user":
			if len(msg.ContentBlocks) > 0 {
				var content []map[string]interface{}
				for _, block := range msg.ContentBlocks {
					switch block.Type {
					case "text":
						if block.Text != "" {
							content = append(content, map[string]interface{}{"type": "text", "text": block.Text})
						}
					case "image":
						if block.Image != nil {
							src := map[string]interface{}{"type": block.Image.Source.Type, "media_type": block.Image.Source.MediaType}
							if block.Image.Source.Type == "base64" {
								src["data"] = block.Image.Source.Data
							} else if block.Image.Source.Type == "url" {
								src["url"] = block.Image.Source.URL
							}
							content = append(content, map[string]interface{}{"type": "image", "source": src})
						}
					}
				}
				if len(content) > 0 {
					apiMessages = append(apiMessages, map[string]interface{}{"role": "user", "content": content})
				}
			} else if msg.Content != "" {
				apiMessages = append(apiMessages, map[string]interface{}{
					"role":    "user",
					"content": []map[string]interface{}{{"type": "text", "text": msg.Content}},
				})
			}

		case "assistant":
			var content []map[string]interface{}
			if msg.Content != "" {
				content = append(content, map[string]interface{}{"type": "text", "text": msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Input
				if input == nil {
					input = map[string]interface{}{}
				}
				content = append(content, map[string]interface{}{
					"type": "tool_use", "id": tc.ID, "name": sanitizeToolName(tc.Name), "input": input,
				})
			}
			if len(content) > 0 {
				apiMessages = append(apiMessages, map[string]interface{}{"role": "assistant", "content": content})
			}

		case "tool":
			apiMessages = append(apiMessages, map[string]interface{}{
				"role": "user",
				"content": []map[string]interface{}{{
					"type": "tool_result", "tool_use_id": msg.ToolUseID, "content": msg.Content,
				}},
			})
		}
	}

	return strings.Join(systemPrompts, "\n\n"), apiMessages
}

func (b *Bedrock) convertTools(tools []shuttle.Tool) []map[string]interface{} {
	apiTools := make([]map[string]interface{}, 0, len(tools))
	b.toolNameMap = make(map[string]string)

	for _, tool := range tools {
		sanitized := sanitizeToolName(tool.ID())
		b.toolNameMap[sanitized] = tool.ID()

		apiTool := map[string]interface{}{
			"name":        sanitized,
			"description": tool.Description(),
		}
		if schema := tool.InputSchema(); schema != nil {
			schemaType := schema.Type
			if schemaType == "" {
				schemaType = "object"
			}
			apiTool["input_schema"] = map[string]interface{}{
				"type":       schemaType,
				"properties": convertSchemaProperties(schema.Properties),
				"required":   schema.Required,
			}
		}
		apiTools = append(apiTools, apiTool)
	}
	return apiTools
}

func convertSchemaProperties(props map[string]*shuttle.JSONSchema) map[string]interface{} {
	if props == nil {
		return nil
	}
	result := make(map[string]interface{}, len(props))
	for key, schema := range props {
		p := map[string]interface{}{"type": schema.Type}
		if schema.Description != "" {
			p["description"] = schema.Description
		}
		if schema.Enum != nil {
			p["enum"] = schema.Enum
		}
		if schema.Default != nil {
			p["default"] = schema.Default
		}
		if schema.Properties != nil {
			p["properties"] = convertSchemaProperties(schema.Properties)
		}
		if schema.Items != nil {
			p["items"] = convertSchemaProperties(map[string]*shuttle.JSONSchema{"items": schema.Items})["items"]
		}
		result[key] = p
	}
	return result
}

func (b *Bedrock) convertResponse(resp *bedrockResponse) *types.LLMResponse {
	out := &types.LLMResponse{
		StopReason: resp.StopReason,
		Usage: types.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		Metadata: map[string]interface{}{"model": b.modelID, "stop_reason": resp.StopReason},
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			name := block.Name
			if original, ok := b.toolNameMap[block.Name]; ok {
				name = original
			}
			out.ToolCalls = append(out.ToolCalls, types.ToolCall{ID: block.ID, Name: name, Input: block.Input})
		}
	}
	return out
}

var toolNamePattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// sanitizeToolName rewrites a tool id to satisfy Bedrock's
// ^[a-zA-Z0-9_-]{1,64}$ constraint (Loom tool ids use a "namespace:name"
// convention Bedrock's name field rejects).
func sanitizeToolName(name string) string {
	sanitized := toolNamePattern.ReplaceAllString(name, "_")
	if len(sanitized) > 64 {
		sanitized = sanitized[:64]
	}
	if sanitized == "" {
		return "tool"
	}
	return sanitized
}

type bedrockResponse struct {
	Content    []bedrockContentBlock `json:"content"`
	StopReason string                `json:"stop_reason"`
	Usage      bedrockUsage          `json:"usage"`
}

type bedrockContentBlock struct {
	Type  string                 `json:"type"`
	Text  string                 `json:"text,omitempty"`
	ID    string                 `json:"id,omitempty"`
	Name  string                 `json:"name,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`
}

type bedrockUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
