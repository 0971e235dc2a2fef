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

// Strategy is the compression behavior applied to a Section once its
// estimated size exceeds the budget remaining when the assembler reaches it.
type Strategy int

const (
	// Keep never shrinks; the section may push the assembler into deficit.
	Keep Strategy = iota
	// TruncateTail cuts characters from the end until the section fits.
	TruncateTail
	// TruncateHead cuts characters from the start until the section fits.
	TruncateHead
	// Summarize substitutes a pre-computed summary if supplied, else Drop.
	Summarize
	// Drop skips the section entirely.
	Drop
)

// Section ids in the well-known canonical order; chatHistory is rendered
// separately as a message list rather than text.
const (
	SectionSystem        = "system"
	SectionContextNotes   = "context_notes"
	SectionMemories       = "memories"
	SectionTools          = "tools"
	SectionChatHistory    = "chat_history"
	SectionUserQuery      = "user_query"
)

// defaultPriority is the well-known priority for each canonical section id.
var defaultPriority = map[string]int{
	SectionSystem:       100,
	SectionContextNotes:  90,
	SectionMemories:      85,
	SectionTools:         80,
	SectionChatHistory:   70,
	SectionUserQuery:     10,
}

// defaultStrategy is the well-known strategy for each canonical section id.
var defaultStrategy = map[string]Strategy{
	SectionSystem:       Keep,
	SectionContextNotes:  TruncateTail,
	SectionMemories:      Summarize,
	SectionTools:         Keep,
	SectionChatHistory:   TruncateHead,
	SectionUserQuery:     Keep,
}

// Section is one piece of prompt content. Text-bearing sections (everything
// but chat_history) are reassembled into the final system string in
// canonical order; chat_history is rendered as a message list instead.
type Section struct {
	ID       string
	Priority int
	Strategy Strategy
	Text     string
	// Summary is the pre-computed substitute used by the Summarize
	// strategy. If empty, Summarize behaves like Drop.
	Summary string
}

// NewSection builds a Section for a canonical id, defaulting Priority and
// Strategy from the well-known table; callers only need to set Text.
func NewSection(id, text string) Section {
	return Section{
		ID:       id,
		Priority: defaultPriority[id],
		Strategy: defaultStrategy[id],
		Text:     text,
	}
}
