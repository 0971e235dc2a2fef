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

// Package types holds the shared LLM adapter contract and message shapes
// that both the Chat Engine and Prompt Assembler depend on, without either
// importing the other. The concrete adapters (Anthropic and Bedrock
// clients) live in pkg/provider and implement the interfaces here.
package types

import (
	"context"
	"sync"
	"time"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
)

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// ContentBlock is a piece of multi-modal message content.
type ContentBlock struct {
	Type  string // "text" or "image"
	Text  string
	Image *ImageContent
}

// ImageContent is an image attached to a message.
type ImageContent struct {
	Type   string
	Source ImageSource
}

// ImageSource holds the actual image bytes or reference.
type ImageSource struct {
	Type      string // "base64" or "url"
	MediaType string
	Data      string
	URL       string
}

// Message is a single turn of conversation passed to and from an LLM
// adapter. Content and Think are kept separate so that chain-of-thought
// never leaks into the rendered reply.
type Message struct {
	ID            string
	Role          string // user, assistant, system, tool
	Content       string
	Think         string
	ContentBlocks []ContentBlock
	ToolCalls     []ToolCall
	ToolUseID     string
	ToolResult    *shuttle.Result
	Timestamp     time.Time
	TokenCount    int
	CostUSD       float64
}

// Usage tracks LLM token usage and cost for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// LLMResponse is the result of one (non-streaming) LLM call.
type LLMResponse struct {
	Content    string
	Think      string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
	Metadata   map[string]interface{}
}

// LLMProvider is the adapter contract the Chat Engine drives; the concrete
// implementations (Anthropic and Bedrock) live in pkg/provider.
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message, tools []shuttle.Tool) (*LLMResponse, error)
	Name() string
	Model() string
}

// TokenCallback receives one streamed chunk. Implementations must be
// lightweight and non-blocking.
type TokenCallback func(token string)

// StreamingLLMProvider extends LLMProvider with token streaming.
type StreamingLLMProvider interface {
	LLMProvider
	ChatStream(ctx context.Context, messages []Message, tools []shuttle.Tool, tokenCallback TokenCallback) (*LLMResponse, error)
}

// SupportsStreaming reports whether provider implements StreamingLLMProvider.
func SupportsStreaming(provider LLMProvider) bool {
	_, ok := provider.(StreamingLLMProvider)
	return ok
}

// Session is an in-memory, thread-safe conversation history. It is the
// flat message list a LiveSession (Session Manager, C7) keeps alongside its
// tool manager and context session.
type Session struct {
	mu sync.RWMutex

	ID        string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time

	TotalCostUSD float64
	TotalTokens  int
}

// AddMessage appends msg to the session history.
func (s *Session) AddMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
	s.TotalCostUSD += msg.CostUSD
	s.TotalTokens += msg.TokenCount
}

// MutateLastMessage applies fn to the most recent message in place, e.g. to
// append a cancellation suffix after streaming stops mid-reply. A no-op on
// an empty history.
func (s *Session) MutateLastMessage(fn func(*Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Messages) == 0 {
		return
	}
	fn(&s.Messages[len(s.Messages)-1])
}

// GetMessages returns a copy of the conversation history.
func (s *Session) GetMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]Message, len(s.Messages))
	copy(messages, s.Messages)
	return messages
}

// MessageCount returns the number of messages, capped at math.MaxInt32.
func (s *Session) MessageCount() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SafeInt32(len(s.Messages))
}

// SafeInt32 converts n to int32, clamping at the int32 bounds.
func SafeInt32(n int) int32 {
	const maxInt32 = 2147483647
	const minInt32 = -2147483648
	if n > maxInt32 {
		return maxInt32
	}
	if n < minInt32 {
		return minInt32
	}
	return int32(n)
}
