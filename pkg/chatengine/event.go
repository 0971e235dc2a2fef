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

// Package chatengine runs the per-turn ReAct loop: stream the LLM, parse
// tool calls out of the wire format in use, execute tools through the
// Tool Registry, feed results back, and emit a stream of ChatEvents for
// the Streaming Bridge to relay.
package chatengine

import "github.com/teradata-labs/loom-assistant/pkg/types"

// EventKind discriminates a ChatEvent's payload.
type EventKind int

const (
	EventStreamStart EventKind = iota
	EventMetadata
	EventDelta
	EventThought
	EventToolCallDelta
	EventToolResult
	EventMessage
	EventStreamEnd
	EventError
)

// Metadata accompanies EventMetadata, emitted once at the start of a turn.
type Metadata struct {
	RecalledMemories []string `json:"recalledMemories,omitempty"`
	Files            []string `json:"files,omitempty"`
}

// ToolResultPayload accompanies EventToolResult.
type ToolResultPayload struct {
	Name   string
	Output string
}

// ChatEvent is one item in the engine's output stream.
type ChatEvent struct {
	Kind EventKind

	Delta      string
	Metadata   *Metadata
	ToolCall   *types.ToolCall
	ToolResult *ToolResultPayload
	Message    *types.Message
	Err        error
}
