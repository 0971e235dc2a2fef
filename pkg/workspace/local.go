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

package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofrs/flock"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
)

// lockTimeout bounds how long a mutating operation waits on the
// cross-process file lock backstop before giving up.
const lockTimeout = 5 * time.Second

// lockFileName is the flock backstop's lock file, sitting directly under
// the workspace root alongside the directories it protects.
const lockFileName = ".workspace.lock"

// LocalWorkspace is backed by a filesystem root. Every path is
// canonicalized and must resolve under that root. Mutating operations are
// serialized; reads proceed concurrently.
type LocalWorkspace struct {
	root       string
	trustLevel string

	mu       sync.RWMutex
	registry *shuttle.Registry

	// flock is a cross-process backstop alongside mu: mu only serializes
	// writers within this process, so a second process pointed at the same
	// workspace root (another server instance, a maintenance CLI run
	// directly against the directory) also takes this OS-level lock before
	// mutating.
	flock *flock.Flock
}

var _ Workspace = (*LocalWorkspace)(nil)

// NewLocalWorkspace creates a workspace jailed to root. The root is itself
// resolved (symlinks included) once at construction time so later jail
// checks compare against the real path.
func NewLocalWorkspace(root, trustLevel string, registry *shuttle.Registry) (*LocalWorkspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root %q: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %q: %w", root, err)
	}
	if trustLevel == "" {
		trustLevel = "standard"
	}
	return &LocalWorkspace{
		root:       resolved,
		trustLevel: trustLevel,
		registry:   registry,
		flock:      flock.New(filepath.Join(resolved, lockFileName)),
	}, nil
}

// Root returns the jailed root directory.
func (w *LocalWorkspace) Root() string { return w.root }

// resolve canonicalizes a workspace-relative (or absolute) path and checks
// it falls under the workspace root. A ".." that climbs above the root, a
// symlink escape, or an absolute path outside the root fails with
// ErrPathEscape — uniformly,
// regardless of which of those three shapes triggered it.
func (w *LocalWorkspace) resolve(path string) (string, error) {
	var candidate string
	if filepath.IsAbs(path) {
		candidate = filepath.Clean(path)
	} else {
		candidate = filepath.Join(w.root, path)
	}

	// Resolve symlinks on whatever portion of the path already exists so a
	// symlink planted inside the root cannot point back outside it. Walk
	// up from the full candidate until a path segment exists on disk.
	resolved, err := resolveExistingPrefix(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %q: %v", ErrPathEscape, path, err)
	}

	rel, err := filepath.Rel(w.root, resolved)
	if err != nil || hasDotDotSegment(rel) {
		return "", fmt.Errorf("%w: %q escapes workspace root", ErrPathEscape, path)
	}
	return resolved, nil
}

func hasDotDotSegment(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == ".." {
		return true
	}
	for _, seg := range splitPath(rel) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func splitPath(p string) []string {
	var out []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			out = append(out, p[start:i])
			start = i + 1
		}
	}
	out = append(out, p[start:])
	return out
}

// resolveExistingPrefix resolves symlinks on the longest existing prefix of
// candidate, then rejoins the remaining (not-yet-created) suffix.
func resolveExistingPrefix(candidate string) (string, error) {
	dir := candidate
	var suffix []string
	for {
		if _, err := os.Lstat(dir); err == nil {
			resolved, err := filepath.EvalSymlinks(dir)
			if err != nil {
				return "", err
			}
			for i := len(suffix) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, suffix[i])
			}
			return resolved, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Nothing on disk at all; fall back to lexical cleaning.
			return candidate, nil
		}
		suffix = append(suffix, filepath.Base(dir))
		dir = parent
	}
}

func (w *LocalWorkspace) ReadFile(_ context.Context, path string) (string, error) {
	full, err := w.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read file %q: %w", path, err)
	}
	return string(data), nil
}

func (w *LocalWorkspace) WriteFile(_ context.Context, path string, content string) error {
	if w.trustLevel == "readonly" {
		return fmt.Errorf("workspace is readonly: cannot write %q", path)
	}
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	unlock, err := w.acquireCrossProcessLock()
	if err != nil {
		return err
	}
	defer unlock()
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}

// acquireCrossProcessLock takes the flock backstop, returning a release
// func. Callers must already hold w.mu: this only adds cross-process
// exclusion on top of it.
func (w *LocalWorkspace) acquireCrossProcessLock() (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := w.flock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil || !locked {
		return nil, fmt.Errorf("%w: workspace lock file %q", ErrLockTimeout, w.flock.Path())
	}
	return func() { _ = w.flock.Unlock() }, nil
}

func (w *LocalWorkspace) DeleteFile(_ context.Context, path string) error {
	if w.trustLevel == "readonly" {
		return fmt.Errorf("workspace is readonly: cannot delete %q", path)
	}
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	unlock, err := w.acquireCrossProcessLock()
	if err != nil {
		return err
	}
	defer unlock()
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("delete file %q: %w", path, err)
	}
	return nil
}

// isGlobPattern reports whether path contains doublestar/glob metacharacters,
// so ListFiles can tell a plain directory listing from a glob query.
func isGlobPattern(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

func (w *LocalWorkspace) ListFiles(_ context.Context, path string) ([]string, error) {
	if isGlobPattern(path) {
		return w.globFiles(path)
	}
	full, err := w.resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("list files %q: %w", path, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out, nil
}

// globFiles matches path as a doublestar pattern (e.g. "**/*.md") against
// the workspace root, jailed the same way plain listings are: matches are
// resolved from an os.DirFS rooted at w.root, so ".." segments in the
// pattern can't walk the result outside the workspace.
func (w *LocalWorkspace) globFiles(pattern string) ([]string, error) {
	pattern = filepath.ToSlash(strings.TrimPrefix(pattern, "./"))
	if hasDotDotSegment(pattern) {
		return nil, fmt.Errorf("%w: %q escapes workspace root", ErrPathEscape, pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(w.root), pattern)
	if err != nil {
		return nil, fmt.Errorf("list files %q: %w", pattern, err)
	}
	return matches, nil
}

func (w *LocalWorkspace) ListTools(_ context.Context) ([]shuttle.ToolDefinition, error) {
	if w.registry == nil {
		return nil, nil
	}
	tools := w.registry.ListTools()
	defs := make([]shuttle.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		if t.CanExecute() {
			defs = append(defs, shuttle.Define(t))
		}
	}
	return defs, nil
}

func (w *LocalWorkspace) ExecuteTool(ctx context.Context, id string, params map[string]interface{}) (*shuttle.Result, error) {
	if w.registry == nil {
		return nil, fmt.Errorf("workspace has no tool registry")
	}
	tool, ok := w.registry.Get(id)
	if !ok {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "not_found", Message: "tool not found: " + id}}, nil
	}
	return tool.Execute(ctx, params)
}

func (w *LocalWorkspace) HealthCheck(_ context.Context) bool {
	info, err := os.Stat(w.root)
	return err == nil && info.IsDir()
}
