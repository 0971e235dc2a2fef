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

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"github.com/teradata-labs/loom-assistant/pkg/storage/sqlite"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	st, err := sqlite.Open(context.Background(), filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	wsRoot := filepath.Join(dir, "workspaces")
	return NewManager(st, wsRoot, workspace.NewFactory(nil), nil, 50*time.Millisecond)
}

func TestManager_OpenCreatesAndSeedsPrimaryWorkspace(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	ls, err := m.Open(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", ls.Session.ID)
	assert.NotEmpty(t, ls.Session.PrimaryWorkspaceID)
	require.NotNil(t, ls.ToolManager)

	content, err := ls.PrimaryWorkspace.ReadFile(ctx, "Notes/Welcome.md")
	require.NoError(t, err)
	assert.Contains(t, content, "Welcome")

	_, err = ls.PrimaryWorkspace.ReadFile(ctx, "Personas/Default.md")
	require.NoError(t, err)

	tools, err := ls.PrimaryWorkspace.ListTools(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tools, "built-in tools should be registered and enabled")
}

func TestManager_OpenTwiceReturnsSameLiveSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	first, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	second, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestManager_BeginEndTurnLocksWorkspace(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, m.BeginTurn(ctx, "s1"))

	// A second acquire on the same workspace id, before release, conflicts.
	ls, _ := m.live.get("s1")
	err = m.store.AcquireLock(ctx, ls.Session.PrimaryWorkspaceID, "someone-else", time.Now().Unix())
	var perr *storage.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, storage.Conflict, perr.Kind)

	require.NoError(t, m.EndTurn(ctx, "s1"))
}

func TestManager_BeginTurnReturnsErrBusyOnReentrantLock(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, m.BeginTurn(ctx, "s1"))
	err = m.BeginTurn(ctx, "s1")
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, m.EndTurn(ctx, "s1"))
}

func TestManager_CloseDropsLiveSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	m.Close("s1")

	_, ok := m.live.get("s1")
	assert.False(t, ok)
}

func TestManager_ReaperClosesIdleSessions(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	ls, _ := m.live.get("s1")
	ls.mu.Lock()
	ls.lastActive = time.Now().Add(-time.Hour)
	ls.mu.Unlock()

	m.reapIdle()

	_, ok := m.live.get("s1")
	assert.False(t, ok)
}

func TestManager_EndTurnWithoutHeldLockIsNoop(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Open(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, m.EndTurn(ctx, "s1"))
}

func TestManager_GetWorkspaceNotFoundSurfacesAsStorageError(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.store.GetWorkspace(ctx, "does-not-exist")
	var perr *storage.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, storage.NotFound, perr.Kind)
}
