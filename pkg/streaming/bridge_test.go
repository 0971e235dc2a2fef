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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/loom-assistant/pkg/chatengine"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// mockResponseWriter layers a Flush counter over httptest.ResponseRecorder;
// its Flush shadows the recorder's own, so every flush is counted.
type mockResponseWriter struct {
	*httptest.ResponseRecorder
	flushed int
}

func (m *mockResponseWriter) Flush() { m.flushed++ }

func newMockResponseWriter() *mockResponseWriter {
	return &mockResponseWriter{ResponseRecorder: httptest.NewRecorder()}
}

func TestBridge_EmitDeltaWritesNamedSSEEvent(t *testing.T) {
	w := newMockResponseWriter()
	b, err := NewBridge(w, func() {})
	require.NoError(t, err)

	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventDelta, Delta: "hello"})

	body := w.Body.String()
	assert.Contains(t, body, "event: delta\n")
	assert.Contains(t, body, `"text":"hello"`)
	assert.True(t, w.flushed >= 2, "expected at least the open()+event flush")
}

func TestBridge_EmitStreamStartAndEndAreSilent(t *testing.T) {
	w := newMockResponseWriter()
	b, err := NewBridge(w, func() {})
	require.NoError(t, err)

	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventStreamStart})
	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventStreamEnd})

	assert.NotContains(t, w.Body.String(), "event:")
}

func TestBridge_EmitAfterStreamEndIsNoop(t *testing.T) {
	w := newMockResponseWriter()
	b, err := NewBridge(w, func() {})
	require.NoError(t, err)

	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventStreamEnd})
	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventDelta, Delta: "too late"})

	assert.NotContains(t, w.Body.String(), "too late")
}

func TestBridge_EmitMessageWritesCompletionWithToolCalls(t *testing.T) {
	w := newMockResponseWriter()
	b, err := NewBridge(w, func() {})
	require.NoError(t, err)

	msg := &types.Message{
		Content:   "done",
		ToolCalls: []types.ToolCall{{ID: "c1", Name: "read_file", Input: map[string]any{"path": "a.md"}}},
	}
	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventMessage, Message: msg})

	body := w.Body.String()
	assert.Contains(t, body, "event: completion\n")
	assert.Contains(t, body, `"content":"done"`)
	assert.Contains(t, body, `"read_file"`)
}

func TestBridge_EmitErrorWritesErrorEvent(t *testing.T) {
	w := newMockResponseWriter()
	b, err := NewBridge(w, func() {})
	require.NoError(t, err)

	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventError, Err: assertError("boom")})

	body := w.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.Contains(t, body, "boom")
}

// failingResponseWriter always fails its Write call, simulating a client
// that has gone away mid-stream.
type failingResponseWriter struct {
	header http.Header
}

func (f *failingResponseWriter) Header() http.Header         { return f.header }
func (f *failingResponseWriter) WriteHeader(int)             {}
func (f *failingResponseWriter) Write([]byte) (int, error)   { return 0, errors.New("broken pipe") }
func (f *failingResponseWriter) Flush()                      {}

func newFailingResponseWriter() *failingResponseWriter {
	return &failingResponseWriter{header: make(http.Header)}
}

func TestBridge_WriteFailureCancelsContext(t *testing.T) {
	w := newFailingResponseWriter()
	ctx, cancel := context.WithCancel(context.Background())
	b, err := NewBridge(w, cancel)
	require.NoError(t, err)

	b.Emit(chatengine.ChatEvent{Kind: chatengine.EventDelta, Delta: "x"})

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected cancel to be called after a write failure")
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
