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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// notesDir is the workspace-relative directory the context_notes prompt
// section is assembled from.
const notesDir = "Notes"

// ContextNotes returns the session's cached context_notes prompt section,
// rebuilding it from Notes/ on a cache miss. The cache is invalidated by
// the session's fsnotify watcher the moment a note file changes, so a
// hit never serves content stale with respect to the workspace on disk.
func (l *LiveSession) ContextNotes(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.notesFresh {
		cached := l.notesCache
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	built, err := buildContextNotes(ctx, l.PrimaryWorkspace)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.notesCache = built
	l.notesFresh = l.notesWatcher != nil
	l.mu.Unlock()
	return built, nil
}

func buildContextNotes(ctx context.Context, ws workspace.Workspace) (string, error) {
	names, err := ws.ListFiles(ctx, notesDir)
	if err != nil {
		return "", fmt.Errorf("list notes: %w", err)
	}
	var b strings.Builder
	for _, name := range names {
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		content, err := ws.ReadFile(ctx, notesDir+"/"+name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", name, content)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// invalidateNotes marks the cached context_notes section stale. Called
// from the fsnotify watch loop whenever Notes/ changes on disk.
func (l *LiveSession) invalidateNotes() {
	l.mu.Lock()
	l.notesFresh = false
	l.mu.Unlock()
}

// startNotesWatcher watches ws's Notes/ directory for changes, invalidating
// ls's cached context_notes on every event. Only a LocalWorkspace exposes a
// real filesystem root to watch; remote and other non-local workspaces are
// left uncached (ContextNotes always rebuilds for them).
func startNotesWatcher(ls *LiveSession, ws workspace.Workspace) {
	local, ok := ws.(*workspace.LocalWorkspace)
	if !ok {
		return
	}
	dir := filepath.Join(local.Root(), notesDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("notes watcher: create failed", zap.Error(err))
		return
	}
	if err := watcher.Add(dir); err != nil {
		log.Warn("notes watcher: watch failed", zap.String("dir", dir), zap.Error(err))
		_ = watcher.Close()
		return
	}

	ls.mu.Lock()
	ls.notesWatcher = watcher
	ls.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					ls.invalidateNotes()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("notes watcher error", zap.Error(err))
			}
		}
	}()
}

// stopNotesWatcher closes ls's fsnotify watcher, if any, ending its event
// goroutine.
func stopNotesWatcher(ls *LiveSession) {
	ls.mu.Lock()
	watcher := ls.notesWatcher
	ls.notesWatcher = nil
	ls.mu.Unlock()
	if watcher != nil {
		_ = watcher.Close()
	}
}
