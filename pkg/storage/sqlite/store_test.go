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

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(context.Background(), filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSessionLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sess := storage.SessionRow{ID: "s1", Title: "hello", CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, st.CreateSession(ctx, sess))

	got, err := st.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.False(t, got.IsArchived)

	got.Title = "renamed"
	got.UpdatedAt = 2
	require.NoError(t, st.SaveSession(ctx, got))

	got2, err := st.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got2.Title)

	require.NoError(t, st.ArchiveSession(ctx, "s1"))
	archived, err := st.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	err = st.DeleteSession(ctx, "s1")
	var persistErr *storage.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, storage.Immutable, persistErr.Kind)
}

func TestGetSession_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetSession(context.Background(), "missing")
	var persistErr *storage.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, storage.NotFound, persistErr.Kind)
}

func TestMessageImmutabilityOnArchivedSession(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSession(ctx, storage.SessionRow{ID: "s1", CreatedAt: 1, UpdatedAt: 1}))
	require.NoError(t, st.AppendMessage(ctx, storage.MessageRow{ID: "m1", SessionID: "s1", Role: "user", Content: "hi", CreatedAt: 1}))

	msgs, err := st.FetchMessages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)

	require.NoError(t, st.ArchiveSession(ctx, "s1"))

	_, err = st.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "immutable")
}

func TestMemoryPreventSimilarPolicy(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id1, err := st.SaveMemory(ctx, storage.Memory{
		Content: "first", Embedding: []float32{1, 0, 0}, CreatedAt: 1, UpdatedAt: 1,
	}, storage.AlwaysSave)
	require.NoError(t, err)

	id2, err := st.SaveMemory(ctx, storage.Memory{
		Content: "near duplicate", Embedding: []float32{0.99, 0.01, 0}, CreatedAt: 2, UpdatedAt: 2,
	}, storage.PreventSimilar(0.9))
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "near-duplicate save should return the existing id")

	id3, err := st.SaveMemory(ctx, storage.Memory{
		Content: "unrelated", Embedding: []float32{0, 1, 0}, CreatedAt: 3, UpdatedAt: 3,
	}, storage.PreventSimilar(0.9))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	all, err := st.FetchMemories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSearchMemoriesByEmbedding_OrderingAndFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.SaveMemory(ctx, storage.Memory{ID: "close", Content: "a", Embedding: []float32{1, 0}, CreatedAt: 1, UpdatedAt: 1}, storage.AlwaysSave)
	require.NoError(t, err)
	_, err = st.SaveMemory(ctx, storage.Memory{ID: "far", Content: "b", Embedding: []float32{0, 1}, CreatedAt: 2, UpdatedAt: 2}, storage.AlwaysSave)
	require.NoError(t, err)

	results, err := st.SearchMemoriesByEmbedding(ctx, []float32{1, 0}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "close", results[0].Memory.ID)
}

func TestVacuumMemories_IdempotentAndGreedy(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.SaveMemory(ctx, storage.Memory{ID: "newest", Content: "a", Embedding: []float32{1, 0}, CreatedAt: 3, UpdatedAt: 3}, storage.AlwaysSave)
	require.NoError(t, err)
	_, err = st.SaveMemory(ctx, storage.Memory{ID: "dup", Content: "a-dup", Embedding: []float32{0.999, 0.001}, CreatedAt: 2, UpdatedAt: 2}, storage.AlwaysSave)
	require.NoError(t, err)
	_, err = st.SaveMemory(ctx, storage.Memory{ID: "distinct", Content: "b", Embedding: []float32{0, 1}, CreatedAt: 1, UpdatedAt: 1}, storage.AlwaysSave)
	require.NoError(t, err)

	removed, err := st.VacuumMemories(ctx, 0.92)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	remaining, err := st.FetchMemories(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	removedAgain, err := st.VacuumMemories(ctx, 0.92)
	require.NoError(t, err)
	assert.Equal(t, 0, removedAgain, "second vacuum at the same threshold must remove nothing")
}

func TestWorkspaceLockSingleHolder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AcquireLock(ctx, "ws1", "session-a", 1))

	err := st.AcquireLock(ctx, "ws1", "session-b", 2)
	var persistErr *storage.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, storage.Conflict, persistErr.Kind)

	require.NoError(t, st.ReleaseLock(ctx, "ws1", "session-a"))
	require.NoError(t, st.AcquireLock(ctx, "ws1", "session-b", 3))

	lock, err := st.GetLock(ctx, "ws1")
	require.NoError(t, err)
	require.NotNil(t, lock)
	assert.Equal(t, "session-b", lock.HeldBy)
}

func TestJobQueueOrdering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateSession(ctx, storage.SessionRow{ID: "s1", CreatedAt: 1, UpdatedAt: 1}))

	require.NoError(t, st.CreateJob(ctx, storage.Job{ID: "low", SessionID: "s1", Priority: 1, Status: storage.JobPending, CreatedAt: 1, UpdatedAt: 1}))
	require.NoError(t, st.CreateJob(ctx, storage.Job{ID: "high", SessionID: "s1", Priority: 10, Status: storage.JobPending, CreatedAt: 2, UpdatedAt: 2}))
	require.NoError(t, st.CreateJob(ctx, storage.Job{ID: "high-later", SessionID: "s1", Priority: 10, Status: storage.JobPending, CreatedAt: 3, UpdatedAt: 3}))

	next, err := st.DequeueHighestPriority(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "high", next.ID, "highest priority, earliest createdAt wins")
	assert.Equal(t, storage.JobInProgress, next.Status)

	pending, err := st.FetchPendingJobs(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "high-later", pending[0].ID)
}

func TestWorkspaceReferenceUniqueness(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateSession(ctx, storage.SessionRow{ID: "s1", CreatedAt: 1, UpdatedAt: 1}))

	require.NoError(t, st.CreateWorkspace(ctx, storage.WorkspaceReference{
		ID: "w1", SessionID: "s1", URI: "file:///srv/ws/s1", HostType: storage.HostServerSession, CreatedAt: 1, UpdatedAt: 1,
	}))

	err := st.CreateWorkspace(ctx, storage.WorkspaceReference{
		ID: "w2", SessionID: "s1", URI: "file:///srv/ws/s1", HostType: storage.HostServerSession, CreatedAt: 2, UpdatedAt: 2,
	})
	var persistErr *storage.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, storage.Conflict, persistErr.Kind)
}

func TestTableDirectorySyncedByMigration(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tables, err := st.ListTables(ctx)
	require.NoError(t, err)

	names := make(map[string]bool, len(tables))
	for _, tbl := range tables {
		names[tbl.Name] = true
	}
	assert.True(t, names["sessions"])
	assert.True(t, names["messages"])
	assert.True(t, names["memories"])

	require.NoError(t, st.DescribeTable(ctx, "sessions", "chat sessions"))
	tables, err = st.ListTables(ctx)
	require.NoError(t, err)
	for _, tbl := range tables {
		if tbl.Name == "sessions" {
			assert.Equal(t, "chat sessions", tbl.Description)
		}
	}
}
