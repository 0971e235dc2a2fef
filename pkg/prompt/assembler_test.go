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

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teradata-labs/loom-assistant/pkg/types"
)

func TestCharDiv4Estimator(t *testing.T) {
	e := CharDiv4Estimator{}
	assert.Equal(t, 0, e.EstimateTokens(""))
	assert.Equal(t, 1, e.EstimateTokens("ab"))
	assert.Equal(t, 3, e.EstimateTokens("0123456789"))
}

func TestAssemble_FitsEverythingUnderBudget(t *testing.T) {
	a := NewAssembler(nil)
	out := a.Assemble(Input{
		MaxTokens: 10000,
		System:    "be helpful",
		ContextNotes: "some notes",
		Memories:  "memory one",
		Tools:     "tool catalogue",
		UserQuery: "hello",
		History: []types.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello there"},
		},
	})

	assert.Contains(t, out.System, "be helpful")
	assert.Contains(t, out.System, "some notes")
	assert.Contains(t, out.System, "tool catalogue")
	assert.Contains(t, out.System, "hello")
	assert.Empty(t, out.Dropped)
	assert.Len(t, out.Messages, 2)
}

func TestAssemble_PinnedStatesPrependedToSystem(t *testing.T) {
	a := NewAssembler(nil)
	out := a.Assemble(Input{
		MaxTokens:    10000,
		System:       "base instructions",
		PinnedStates: []string{"pinned: research mode active"},
	})

	idx := strings.Index(out.System, "pinned: research mode active")
	require := idx >= 0
	assert.True(t, require)
	assert.True(t, strings.Index(out.System, "base instructions") > idx)
}

func TestAssemble_MemoriesSummarizedWhenOverBudget(t *testing.T) {
	a := NewAssembler(nil)
	longMemories := strings.Repeat("x", 1000)
	out := a.Assemble(Input{
		MaxTokens:       20,
		System:          "s",
		Memories:        longMemories,
		MemoriesSummary: "short summary",
		UserQuery:       "q",
	})
	assert.Contains(t, out.System, "short summary")
	assert.NotContains(t, out.System, longMemories)
}

func TestAssemble_MemoriesDroppedWhenOverBudgetWithNoSummary(t *testing.T) {
	a := NewAssembler(nil)
	longMemories := strings.Repeat("x", 1000)
	out := a.Assemble(Input{
		MaxTokens: 20,
		System:    "s",
		Memories:  longMemories,
		UserQuery: "q",
	})
	assert.Contains(t, out.Dropped, SectionMemories)
	assert.NotContains(t, out.System, longMemories)
}

func TestAssemble_ContextNotesTruncatedFromTail(t *testing.T) {
	a := NewAssembler(nil)
	notes := strings.Repeat("a", 2000) + "TAIL_MARKER"
	out := a.Assemble(Input{
		MaxTokens:    50,
		System:       "s",
		ContextNotes: notes,
		UserQuery:    "q",
	})
	assert.NotContains(t, out.System, "TAIL_MARKER", "tail should be cut off")
}

func TestAssemble_SystemNeverShrinksEvenOverBudget(t *testing.T) {
	a := NewAssembler(nil)
	bigSystem := strings.Repeat("s", 10000)
	out := a.Assemble(Input{
		MaxTokens: 1,
		System:    bigSystem,
	})
	assert.Contains(t, out.System, bigSystem, "Keep sections never shrink even in deficit")
}

func TestAssemble_ChatHistoryDropsOldestFirst(t *testing.T) {
	a := NewAssembler(nil)
	history := []types.Message{
		{Role: "user", Content: strings.Repeat("old", 500)},
		{Role: "assistant", Content: "recent reply"},
	}
	out := a.Assemble(Input{
		MaxTokens: 200,
		System:    "s",
		History:   history,
	})
	for _, m := range out.Messages {
		assert.NotContains(t, m.Content, "oldoldold")
	}
}

func TestAssemble_EmptySectionsAreOmittedFromSystem(t *testing.T) {
	a := NewAssembler(nil)
	out := a.Assemble(Input{
		MaxTokens: 10000,
		System:    "only this",
	})
	assert.Equal(t, "only this", out.System)
}
