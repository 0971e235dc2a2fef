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
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"github.com/teradata-labs/loom-assistant/pkg/tools"
	"github.com/teradata-labs/loom-assistant/pkg/types"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// ErrBusy is returned by BeginTurn when the primary workspace's lock is
// already held by another session.
var ErrBusy = errors.New("session busy: workspace lock held by another session")

// DefaultIdleTTL is how long a session may sit unused before the reaper
// closes it.
const DefaultIdleTTL = 30 * time.Minute

// seedFiles are written into a freshly created primary workspace, each
// written only if not already present. Paths are relative to the
// workspace root.
var seedFiles = map[string]string{
	"Notes/Welcome.md":           "_Description: introductory note for a new session._\n\nWelcome. Notes you create here live under Notes/ as markdown files.\n",
	"Notes/Project.md":           "_Description: scratch space for project context._\n\n",
	"Personas/Default.md":        "_Description: the default persona._\n\nRespond helpfully and concisely.\n",
	"Personas/ProductManager.md": "_Description: a product-management persona._\n\nFocus on user impact, scope, and tradeoffs before implementation detail.\n",
	"Personas/Architect.md":      "_Description: a systems-architecture persona._\n\nFocus on interfaces, failure modes, and long-term maintainability.\n",
}

// LiveSession holds everything kept in memory for an open session: its
// per-session tool manager, its workspaces, and bookkeeping for the idle
// reaper and workspace locking.
type LiveSession struct {
	mu sync.Mutex

	Session            Session
	ToolManager        *shuttle.SessionToolManager
	Executor           *shuttle.Executor
	PrimaryWorkspace   workspace.Workspace
	AttachedWorkspaces map[string]workspace.Workspace
	ChatSession        *types.Session

	lastActive time.Time
	lockHeld   bool

	notesCache   string
	notesFresh   bool
	notesWatcher *fsnotify.Watcher
}

func (l *LiveSession) touch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastActive = time.Now()
}

func (l *LiveSession) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastActive
}

// LockHeld reports whether this session currently holds its primary
// workspace's lock.
func (l *LiveSession) LockHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lockHeld
}

// Manager owns the live map of open sessions, bridging durable state in
// storage.Store to the in-memory collaborators (C4's tool manager and
// context session, C3's workspaces) a running turn needs. A background
// cron job closes sessions idle longer than idleTTL.
type Manager struct {
	store         storage.Store
	workspaceRoot string
	wsFactory     *workspace.Factory
	contexts      []*shuttle.ToolContext
	idleTTL       time.Duration

	live *liveMap

	cronEngine *cron.Cron
	cronEntry  cron.EntryID
}

// NewManager builds a Manager. workspaceRoot is the server directory under
// which primary workspaces for new sessions are created, one subdirectory
// per session id. contexts are the ToolContexts offered to every session's
// activate_context gateway tool (e.g. a research mode, a review mode).
func NewManager(store storage.Store, workspaceRoot string, wsFactory *workspace.Factory, contexts []*shuttle.ToolContext, idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Manager{
		store:         store,
		workspaceRoot: workspaceRoot,
		wsFactory:     wsFactory,
		contexts:      contexts,
		idleTTL:       idleTTL,
		live:          newLiveMap(),
	}
}

// StartReaper launches the idle-session reaper on a one-minute cron
// schedule. Call Stop to shut it down.
func (m *Manager) StartReaper() error {
	m.cronEngine = cron.New()
	entryID, err := m.cronEngine.AddFunc("@every 1m", m.reapIdle)
	if err != nil {
		return fmt.Errorf("schedule idle reaper: %w", err)
	}
	m.cronEntry = entryID
	m.cronEngine.Start()
	return nil
}

// Stop halts the idle reaper, waiting for any in-flight run to finish.
func (m *Manager) Stop() {
	if m.cronEngine != nil {
		ctx := m.cronEngine.Stop()
		<-ctx.Done()
	}
}

func (m *Manager) reapIdle() {
	cutoff := time.Now().Add(-m.idleTTL)
	for _, id := range m.live.ids() {
		ls, ok := m.live.get(id)
		if !ok {
			continue
		}
		if ls.idleSince().Before(cutoff) {
			log.Info("closing idle session", zap.String("sessionId", id))
			m.Close(id)
		}
	}
}

// Open loads a session from persistence (creating its row if absent),
// instantiates its live collaborators, and ensures its primary workspace
// exists and is seeded.
func (m *Manager) Open(ctx context.Context, sessionID string) (*LiveSession, error) {
	if ls, ok := m.live.get(sessionID); ok {
		ls.touch()
		return ls, nil
	}

	row, err := m.store.GetSession(ctx, sessionID)
	var perr *storage.PersistenceError
	if errors.As(err, &perr) && perr.Kind == storage.NotFound {
		now := time.Now().Unix()
		row = storage.SessionRow{ID: sessionID, Title: "New session", CreatedAt: now, UpdatedAt: now}
		if err := m.store.CreateSession(ctx, row); err != nil {
			return nil, fmt.Errorf("create session %q: %w", sessionID, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}

	registry := shuttle.NewRegistry()
	toolMgr := shuttle.NewSessionToolManager(registry)
	executor := shuttle.NewExecutor(registry)

	ws, ref, err := m.ensurePrimaryWorkspace(ctx, row, registry)
	if err != nil {
		return nil, err
	}
	tools.RegisterBuiltins(registry, ws, toolMgr.ContextSession(), m.contexts)
	for _, id := range registry.List() {
		toolMgr.SetEnabled(id, true)
	}

	row.PrimaryWorkspaceID = ref.ID
	if err := m.store.SaveSession(ctx, row); err != nil {
		return nil, fmt.Errorf("save session %q: %w", sessionID, err)
	}

	ls := &LiveSession{
		Session:            fromRow(row),
		ToolManager:        toolMgr,
		Executor:           executor,
		PrimaryWorkspace:   ws,
		AttachedWorkspaces: make(map[string]workspace.Workspace),
		ChatSession:        &types.Session{ID: sessionID, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		lastActive:         time.Now(),
	}
	m.live.set(sessionID, ls)
	startNotesWatcher(ls, ws)
	return ls, nil
}

// ensurePrimaryWorkspace returns the existing primary workspace reference
// for row, or creates and seeds a new server-owned one. registry is the
// tool registry the workspace's own listTools/executeTool delegate to.
func (m *Manager) ensurePrimaryWorkspace(ctx context.Context, row storage.SessionRow, registry *shuttle.Registry) (workspace.Workspace, storage.WorkspaceReference, error) {
	if row.PrimaryWorkspaceID != "" {
		if ref, err := m.store.GetWorkspace(ctx, row.PrimaryWorkspaceID); err == nil {
			ws, buildErr := m.wsFactory.Build(ref, registry)
			if buildErr != nil {
				return nil, storage.WorkspaceReference{}, buildErr
			}
			return ws, ref, nil
		}
	}

	now := time.Now().Unix()
	root := filepath.Join(m.workspaceRoot, row.ID)
	ref := storage.WorkspaceReference{
		ID:         row.ID + "-primary",
		SessionID:  row.ID,
		URI:        "file://" + root,
		HostType:   storage.HostServerSession,
		RootPath:   root,
		TrustLevel: "standard",
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.CreateWorkspace(ctx, ref); err != nil {
		return nil, storage.WorkspaceReference{}, fmt.Errorf("create primary workspace for %q: %w", row.ID, err)
	}

	ws, err := m.wsFactory.Build(ref, registry)
	if err != nil {
		return nil, storage.WorkspaceReference{}, err
	}
	if err := seedWorkspace(ctx, ws); err != nil {
		return nil, storage.WorkspaceReference{}, fmt.Errorf("seed primary workspace for %q: %w", row.ID, err)
	}
	return ws, ref, nil
}

func seedWorkspace(ctx context.Context, ws workspace.Workspace) error {
	for path, content := range seedFiles {
		if _, err := ws.ReadFile(ctx, path); err == nil {
			continue
		}
		if err := ws.WriteFile(ctx, path, content); err != nil {
			return err
		}
	}
	return nil
}

// BeginTurn acquires the primary workspace's lock for sessionID, failing
// ErrBusy if another session holds it.
func (m *Manager) BeginTurn(ctx context.Context, sessionID string) error {
	ls, ok := m.live.get(sessionID)
	if !ok {
		return fmt.Errorf("session %q is not open", sessionID)
	}
	if err := m.store.AcquireLock(ctx, ls.Session.PrimaryWorkspaceID, sessionID, time.Now().Unix()); err != nil {
		var perr *storage.PersistenceError
		if errors.As(err, &perr) && perr.Kind == storage.Conflict {
			return ErrBusy
		}
		return fmt.Errorf("acquire lock for %q: %w", sessionID, err)
	}
	ls.mu.Lock()
	ls.lockHeld = true
	ls.mu.Unlock()
	ls.touch()
	return nil
}

// EndTurn releases the primary workspace's lock and updates lastActive.
func (m *Manager) EndTurn(ctx context.Context, sessionID string) error {
	ls, ok := m.live.get(sessionID)
	if !ok {
		return fmt.Errorf("session %q is not open", sessionID)
	}
	ls.mu.Lock()
	held := ls.lockHeld
	ls.lockHeld = false
	ls.mu.Unlock()

	if held {
		if err := m.store.ReleaseLock(ctx, ls.Session.PrimaryWorkspaceID, sessionID); err != nil {
			return fmt.Errorf("release lock for %q: %w", sessionID, err)
		}
	}
	ls.touch()
	return nil
}

// Count returns the number of currently open sessions, for the
// sessions_active gauge.
func (m *Manager) Count() int {
	return len(m.live.ids())
}

// LocksHeld returns the number of open sessions currently holding their
// primary workspace's lock, for the workspace_locks_held gauge.
func (m *Manager) LocksHeld() int {
	held := 0
	for _, id := range m.live.ids() {
		if ls, ok := m.live.get(id); ok && ls.LockHeld() {
			held++
		}
	}
	return held
}

// Close deactivates any non-persistent tool context and drops the
// session's live state. Durable state is untouched.
func (m *Manager) Close(sessionID string) {
	if ls, ok := m.live.get(sessionID); ok {
		if active := ls.ToolManager.ContextSession().Active(); active != nil && !active.Persistent {
			ls.ToolManager.ContextSession().Deactivate()
		}
		stopNotesWatcher(ls)
	}
	m.live.delete(sessionID)
}

func fromRow(row storage.SessionRow) Session {
	return Session{
		ID:                   row.ID,
		Title:                row.Title,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
		CompletionTokens:     row.CompletionTokens,
		PromptTokens:         row.PromptTokens,
		Cost:                 row.Cost,
		IsArchived:           row.IsArchived,
		PrimaryWorkspaceID:   row.PrimaryWorkspaceID,
		AttachedWorkspaceIDs: row.AttachedWorkspaceIDs,
		PersonaID:            row.PersonaID,
	}
}
