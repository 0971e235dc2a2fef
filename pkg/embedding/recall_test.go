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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
)

type fakeSearcher struct {
	lastEmbedding []float32
	results       []storage.ScoredMemory
}

func (f *fakeSearcher) SearchMemoriesByEmbedding(_ context.Context, embedding []float32, _ int, _ float64) ([]storage.ScoredMemory, error) {
	f.lastEmbedding = embedding
	return f.results, nil
}

func TestRecaller_EmbedsQueryAndDelegates(t *testing.T) {
	provider := NewFake(16)
	searcher := &fakeSearcher{results: []storage.ScoredMemory{
		{Memory: storage.Memory{ID: "m1"}, Similarity: 0.9},
	}}
	recaller := NewRecaller(provider, searcher)

	results, err := recaller.Recall(context.Background(), "hello world", 5, 0.5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "m1", results[0].Memory.ID)
	assert.NotNil(t, searcher.lastEmbedding)
	assert.Equal(t, provider.Dimension(), len(searcher.lastEmbedding))
}

func TestFakeEmbed_DeterministicAndNormalized(t *testing.T) {
	p := NewFake(32)
	v1, err := p.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	v2, err := p.Embed(context.Background(), "the quick brown fox")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	var norm float64
	for _, x := range v1 {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, norm, 1e-6)
}
