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

package streaming

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/pkg/chatengine"
)

// Wire event names, per the named SSE vocabulary the Streaming Bridge
// exposes to clients.
const (
	wireMetadata   = "metadata"
	wireDelta      = "delta"
	wireThought    = "thought"
	wireToolCall   = "tool_call"
	wireToolResult = "tool_result"
	wireCompletion = "completion"
	wireError      = "error"
)

type deltaPayload struct {
	Text string `json:"text"`
}

type toolResultPayload struct {
	Name   string `json:"name"`
	Output string `json:"output"`
}

type completionPayload struct {
	Content   string           `json:"content"`
	Think     string           `json:"think,omitempty"`
	ToolCalls []toolCallPayload `json:"toolCalls,omitempty"`
}

type toolCallPayload struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Bridge relays one turn's ChatEvents to an HTTP client as Server-Sent
// Events. Cancel is called if a write fails (client gone), so the Chat
// Engine stops generating against a dead connection instead of running to
// completion unheard.
type Bridge struct {
	w      *writer
	cancel context.CancelFunc
	done   bool
}

// NewBridge opens the SSE response on w and returns a Bridge whose Emit
// method is a chatengine.Emitter. cancel is invoked on the first write
// failure.
func NewBridge(w http.ResponseWriter, cancel context.CancelFunc) (*Bridge, error) {
	sw, err := newWriter(w)
	if err != nil {
		return nil, err
	}
	sw.open()
	return &Bridge{w: sw, cancel: cancel}, nil
}

// Emit implements chatengine.Emitter.
func (b *Bridge) Emit(event chatengine.ChatEvent) {
	if b.done {
		return
	}

	var (
		name    string
		payload any
	)
	switch event.Kind {
	case chatengine.EventStreamStart:
		return
	case chatengine.EventStreamEnd:
		b.done = true
		return
	case chatengine.EventMetadata:
		name, payload = wireMetadata, event.Metadata
	case chatengine.EventDelta:
		name, payload = wireDelta, deltaPayload{Text: event.Delta}
	case chatengine.EventThought:
		name, payload = wireThought, deltaPayload{Text: event.Delta}
	case chatengine.EventToolCallDelta:
		if event.ToolCall == nil {
			return
		}
		name, payload = wireToolCall, toolCallPayload{ID: event.ToolCall.ID, Name: event.ToolCall.Name, Input: event.ToolCall.Input}
	case chatengine.EventToolResult:
		if event.ToolResult == nil {
			return
		}
		name, payload = wireToolResult, toolResultPayload{Name: event.ToolResult.Name, Output: event.ToolResult.Output}
	case chatengine.EventMessage:
		if event.Message == nil {
			return
		}
		calls := make([]toolCallPayload, 0, len(event.Message.ToolCalls))
		for _, c := range event.Message.ToolCalls {
			calls = append(calls, toolCallPayload{ID: c.ID, Name: c.Name, Input: c.Input})
		}
		name, payload = wireCompletion, completionPayload{Content: event.Message.Content, Think: event.Message.Think, ToolCalls: calls}
	case chatengine.EventError:
		msg := ""
		if event.Err != nil {
			msg = event.Err.Error()
		}
		name, payload = wireError, errorPayload{Message: msg}
	default:
		return
	}

	b.send(name, payload)
}

func (b *Bridge) send(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshal sse payload", zap.String("event", name), zap.Error(err))
		return
	}
	if err := b.w.writeEvent(name, data); err != nil {
		b.done = true
		if b.cancel != nil {
			b.cancel()
		}
	}
}
