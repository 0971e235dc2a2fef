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
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/pkg/embedding"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"github.com/teradata-labs/loom-assistant/pkg/storage/sqlite"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := sqlite.Open(context.Background(), filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedSession(t *testing.T, store storage.Store, id string) {
	t.Helper()
	require.NoError(t, store.CreateSession(context.Background(), storage.SessionRow{ID: id, CreatedAt: 1, UpdatedAt: 1}))
}

func TestArchiver_ArchivePersistsMessagesAndTitles(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store, "s1")
	a := New(store, WithEmbedder(embedding.NewFake(16)))

	turn := []types.Message{
		{ID: "m1", Role: "user", Content: "What does the archiver do when a session closes out its turn?"},
		{ID: "m2", Role: "assistant", Content: "It persists messages, indexes memories, and marks the session archived."},
	}

	row, err := a.Archive(context.Background(), "s1", turn)
	require.NoError(t, err)
	assert.True(t, row.IsArchived)
	assert.NotEmpty(t, row.Title)

	msgs, err := store.FetchMessages(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.NotEmpty(t, msgs[1].MemoryID, "long assistant message should have been indexed as a memory")
}

func TestArchiver_ShortMessagesAreNotIndexed(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store, "s1")
	a := New(store, WithEmbedder(embedding.NewFake(16)))

	turn := []types.Message{
		{ID: "m1", Role: "user", Content: "hi"},
	}

	_, err := a.Archive(context.Background(), "s1", turn)
	require.NoError(t, err)

	msgs, err := store.FetchMessages(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].MemoryID)
}

func TestArchiver_WithoutEmbedderSkipsMemoryIndexing(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store, "s1")
	a := New(store)

	turn := []types.Message{
		{ID: "m1", Role: "assistant", Content: "This message is plenty long enough to qualify for memory indexing."},
	}

	_, err := a.Archive(context.Background(), "s1", turn)
	require.NoError(t, err)

	memories, err := store.FetchMemories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, memories)
}

func TestArchiver_TitleFallsBackToTruncatedFirstUserMessage(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store, "s1")
	a := New(store)

	turn := []types.Message{
		{ID: "m1", Role: "user", Content: "short question"},
	}
	row, err := a.Archive(context.Background(), "s1", turn)
	require.NoError(t, err)
	assert.Equal(t, "short question", row.Title)
}

func TestArchiver_ExistingTitleIsNotOverwritten(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateSession(context.Background(), storage.SessionRow{ID: "s1", Title: "Keep Me", CreatedAt: 1, UpdatedAt: 1}))
	a := New(store)

	row, err := a.Archive(context.Background(), "s1", []types.Message{{ID: "m1", Role: "user", Content: "anything"}})
	require.NoError(t, err)
	assert.Equal(t, "Keep Me", row.Title)
}

func TestArchiver_VacuumRunsWhenEnabled(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store, "s1")
	a := New(store, WithEmbedder(embedding.NewFake(16)), WithVacuumOnArchive(MemoryVacuumThreshold))

	turn := []types.Message{
		{ID: "m1", Role: "assistant", Content: "Vacuum should run after this archive completes without error."},
	}
	_, err := a.Archive(context.Background(), "s1", turn)
	require.NoError(t, err)
}

func TestArchiver_ArchiveUnknownSessionReturnsError(t *testing.T) {
	store := newTestStore(t)
	a := New(store)
	_, err := a.Archive(context.Background(), "ghost", nil)
	require.Error(t, err)
	var perr *storage.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, storage.NotFound, perr.Kind)
}

func TestArchiver_TaggerHeuristicFiltersStopWords(t *testing.T) {
	tg := newTagger()
	tags := tg.heuristicTags("The archiver indexes memories and archives sessions for the assistant")
	assert.NotEmpty(t, tags)
	for _, tag := range tags {
		assert.False(t, stopWords[tag])
	}
}
