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

package archiver

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// maxTags bounds both the heuristic and LLM tag lists.
const maxTags = 5

// stopWords are filtered out of the heuristic frequency count; common
// function words carry no topical signal for a memory tag.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"he": true, "her": true, "his": true, "i": true, "in": true, "is": true,
	"it": true, "its": true, "of": true, "on": true, "or": true, "our": true,
	"she": true, "that": true, "the": true, "their": true, "they": true,
	"this": true, "to": true, "was": true, "we": true, "were": true, "will": true,
	"with": true, "you": true, "your": true,
}

// tagger generates topical tags for memory content, preferring a utility
// LLM when one is configured and falling back to a heuristic
// frequent-term extractor otherwise.
type tagger struct{}

func newTagger() *tagger { return &tagger{} }

// tags returns up to maxTags tags for content. utility may be nil.
func (t *tagger) tags(ctx context.Context, content string, utility types.LLMProvider) []string {
	if utility != nil {
		if tags, err := t.llmTags(ctx, content, utility); err == nil && len(tags) > 0 {
			return tags
		} else if err != nil {
			log.Warn("archiver: llm tag generation failed, using heuristic extractor", zap.Error(err))
		}
	}
	return t.heuristicTags(content)
}

func (t *tagger) llmTags(ctx context.Context, content string, utility types.LLMProvider) ([]string, error) {
	prompt := []types.Message{
		{Role: "user", Content: "List up to five single-word or short-phrase topical tags for the following text, comma separated, lowercase, no explanation:\n\n" + content},
	}
	resp, err := utility.Chat(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(resp.Content, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		tags = append(tags, p)
		if len(tags) == maxTags {
			break
		}
	}
	return tags, nil
}

// heuristicTags tokenizes content and returns the most frequent non-stopword
// terms longer than two characters, ties broken by first appearance.
func (t *tagger) heuristicTags(content string) []string {
	words := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	order := make([]string, 0)
	counts := make(map[string]int)
	for _, w := range words {
		if len(w) <= 2 || stopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxTags {
		order = order[:maxTags]
	}
	return order
}
