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
	"sort"
	"strings"

	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// canonicalOrder is the reassembly order for text sections, independent of
// the priority-sorted walk order used for budgeting.
var canonicalOrder = []string{
	SectionSystem,
	SectionContextNotes,
	SectionMemories,
	SectionTools,
	SectionUserQuery,
}

// Assembler builds a token-budgeted prompt from sections plus chat history.
type Assembler struct {
	estimator Estimator
}

// NewAssembler builds an Assembler using the given token estimator. A nil
// estimator defaults to CharDiv4Estimator.
func NewAssembler(estimator Estimator) *Assembler {
	if estimator == nil {
		estimator = CharDiv4Estimator{}
	}
	return &Assembler{estimator: estimator}
}

// Input is everything the assembler needs for one turn.
type Input struct {
	MaxTokens          int
	ReserveForResponse int

	// PinnedStates are prepended to the system section at priority 100.
	PinnedStates []string

	System        string
	ContextNotes  string
	Memories      string
	MemoriesSummary string
	Tools         string
	UserQuery     string

	// History is chat history oldest-first, excluding the just-appended
	// user message (which belongs in UserQuery).
	History []types.Message
}

// Output is the assembled prompt: a system string plus a separate message
// list for chat history.
type Output struct {
	System   string
	Messages []types.Message
	// Dropped lists section ids removed entirely (Drop, or Summarize with
	// no summary available).
	Dropped []string
}

// Assemble runs the budget algorithm described by the Prompt Assembler: sort
// sections by priority desc, walk them allocating from the remaining budget,
// applying each section's strategy once it no longer fits, then reassembles
// in canonical order. Chat history is handled separately as a message list,
// oldest dropped first.
func (a *Assembler) Assemble(in Input) Output {
	system := in.System
	if len(in.PinnedStates) > 0 {
		system = strings.Join(append(append([]string{}, in.PinnedStates...), system), "\n\n")
	}

	sections := []Section{
		NewSection(SectionSystem, system),
		NewSection(SectionContextNotes, in.ContextNotes),
		withSummary(NewSection(SectionMemories, in.Memories), in.MemoriesSummary),
		NewSection(SectionTools, in.Tools),
		NewSection(SectionUserQuery, in.UserQuery),
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Priority > sections[j].Priority })

	budget := in.MaxTokens - in.ReserveForResponse
	texts := make(map[string]string, len(sections))
	var dropped []string

	for _, s := range sections {
		estimate := a.estimator.EstimateTokens(s.Text)
		if estimate <= budget || s.Strategy == Keep {
			texts[s.ID] = s.Text
			budget -= estimate
			continue
		}

		switch s.Strategy {
		case TruncateTail:
			texts[s.ID] = a.truncate(s.Text, budget, false)
			budget = 0
		case TruncateHead:
			texts[s.ID] = a.truncate(s.Text, budget, true)
			budget = 0
		case Summarize:
			if s.Summary != "" {
				texts[s.ID] = s.Summary
				budget -= a.estimator.EstimateTokens(s.Summary)
				if budget < 0 {
					budget = 0
				}
			} else {
				dropped = append(dropped, s.ID)
			}
		case Drop:
			dropped = append(dropped, s.ID)
		}
	}

	var parts []string
	for _, id := range canonicalOrder {
		if text, ok := texts[id]; ok && text != "" {
			parts = append(parts, text)
		}
	}

	// Chat history: priority 70, truncate(head) — drop oldest messages
	// first until the remaining set's estimated size fits what's left of
	// the budget after every text section above, user_query included, has
	// been accounted for.
	historyBudget := budget
	messages := a.fitHistory(in.History, historyBudget)

	return Output{
		System:   strings.Join(parts, "\n\n"),
		Messages: messages,
		Dropped:  dropped,
	}
}

func withSummary(s Section, summary string) Section {
	s.Summary = summary
	return s
}

// truncate cuts text to fit within budget tokens, from the tail (fromHead
// false) or head (fromHead true).
func (a *Assembler) truncate(text string, budget int, fromHead bool) string {
	if budget <= 0 {
		return ""
	}
	for a.estimator.EstimateTokens(text) > budget && len(text) > 0 {
		cut := len(text) / 10
		if cut < 1 {
			cut = 1
		}
		if fromHead {
			if cut > len(text) {
				cut = len(text)
			}
			text = text[cut:]
		} else {
			if cut > len(text) {
				cut = len(text)
			}
			text = text[:len(text)-cut]
		}
	}
	return text
}

// fitHistory drops the oldest messages until the remaining ordered list's
// estimated size fits budget tokens.
func (a *Assembler) fitHistory(history []types.Message, budget int) []types.Message {
	if budget <= 0 {
		return nil
	}
	start := 0
	for start < len(history) {
		if a.estimateMessages(history[start:]) <= budget {
			break
		}
		start++
	}
	return history[start:]
}

func (a *Assembler) estimateMessages(messages []types.Message) int {
	total := 0
	for _, m := range messages {
		total += a.estimator.EstimateTokens(m.Content) + a.estimator.EstimateTokens(m.Think)
	}
	return total
}
