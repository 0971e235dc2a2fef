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

package chatengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThinkState_NoThinkTag(t *testing.T) {
	s := newThinkState()
	c, th := s.feed("hello world")
	assert.Equal(t, "hello world", c)
	assert.Empty(t, th)
	assert.Equal(t, "hello world", s.Content())
}

func TestThinkState_FullSpanInOneChunk(t *testing.T) {
	s := newThinkState()
	c, th := s.feed("before <think>reasoning</think> after")
	assert.Equal(t, "before  after", c)
	assert.Equal(t, "reasoning", th)
}

func TestThinkState_SpanSplitAcrossChunks(t *testing.T) {
	s := newThinkState()
	var content, thought string
	for _, chunk := range []string{"before <thi", "nk>reaso", "ning</thi", "nk> after"} {
		c, th := s.feed(chunk)
		content += c
		thought += th
	}
	assert.Equal(t, "before  after", content)
	assert.Equal(t, "reasoning", thought)
}

func TestThinkState_MultipleSpans(t *testing.T) {
	s := newThinkState()
	c, th := s.feed("a<think>x</think>b<think>y</think>c")
	assert.Equal(t, "abc", c)
	assert.Equal(t, "xy", th)
}

func TestThinkState_UnterminatedSpanHeldBack(t *testing.T) {
	s := newThinkState()
	c, th := s.feed("text <thi")
	assert.Equal(t, "text ", c)
	assert.Empty(t, th)
	// The partial tag is pending, not yet classified as content or thought.
	c2, _ := s.feed("nk>")
	assert.Empty(t, c2)
	assert.Equal(t, "text ", s.Content())
}
