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

package embedding

import (
	"context"
	"fmt"

	"github.com/teradata-labs/loom-assistant/pkg/storage"
)

// MemorySearcher is the slice of storage.Store the Recaller needs; satisfied
// by *sqlite.Store without importing it here.
type MemorySearcher interface {
	SearchMemoriesByEmbedding(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]storage.ScoredMemory, error)
}

// Recaller is the sole source of "relevant memories" injected into prompts.
type Recaller struct {
	provider Provider
	store    MemorySearcher
}

// NewRecaller builds a Recaller over an embedding provider and a memory
// search backend.
func NewRecaller(provider Provider, store MemorySearcher) *Recaller {
	return &Recaller{provider: provider, store: store}
}

// Recall embeds the query and returns the top-k memories by cosine
// similarity, filtered to >= minSimilarity and ordered highest-cosine
// first with ties broken by updatedAt desc, both enforced by the store.
func (r *Recaller) Recall(ctx context.Context, query string, topK int, minSimilarity float64) ([]storage.ScoredMemory, error) {
	vec, err := r.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("recall: embed query: %w", err)
	}
	results, err := r.store.SearchMemoriesByEmbedding(ctx, vec, topK, minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("recall: search memories: %w", err)
	}
	return results, nil
}
