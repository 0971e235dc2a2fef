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

// Package streaming is the Streaming Bridge: it converts chatengine.ChatEvents
// into a text/event-stream response, flushing after every event so a user
// never waits on server-side batching to see a token.
package streaming

import (
	"fmt"
	"net/http"

	"github.com/r3labs/sse/v2"
)

// writer wraps an http.ResponseWriter for hand-flushed SSE output. Unlike
// r3labs/sse's own Server (a pub-sub hub meant for long-lived broadcast
// topics), a turn's events are produced synchronously by the Chat Engine in
// the same goroutine that owns this writer, so writer only borrows the
// library's Event envelope for wire formatting and drives the flush itself.
type writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

// newWriter prepares w for SSE output. It fails if the underlying
// ResponseWriter cannot be flushed incrementally.
func newWriter(w http.ResponseWriter) (*writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by response writer")
	}
	return &writer{w: w, flusher: flusher, rc: http.NewResponseController(w)}, nil
}

// open sends the SSE response headers and flushes them immediately so the
// client's connection is established before the first real event.
func (s *writer) open() {
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.Header().Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.flush()
}

// writeEvent formats one named event with a JSON payload and flushes it.
func (s *writer) writeEvent(name string, payload []byte) error {
	ev := sse.Event{Event: []byte(name), Data: payload}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", ev.Event, ev.Data); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *writer) flush() {
	if err := s.rc.Flush(); err != nil {
		s.flusher.Flush()
	}
}
