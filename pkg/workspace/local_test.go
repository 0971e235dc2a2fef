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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) (*LocalWorkspace, string) {
	t.Helper()
	root := t.TempDir()
	ws, err := NewLocalWorkspace(root, "standard", nil)
	require.NoError(t, err)
	return ws, root
}

func TestLocalWorkspace_WriteReadRoundtrip(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()

	require.NoError(t, ws.WriteFile(ctx, "Notes/Welcome.md", "hello"))
	content, err := ws.ReadFile(ctx, "Notes/Welcome.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	files, err := ws.ListFiles(ctx, "Notes")
	require.NoError(t, err)
	assert.Contains(t, files, "Welcome.md")
}

func TestLocalWorkspace_RejectsDotDotEscape(t *testing.T) {
	ws, root := newTestWorkspace(t)
	ctx := context.Background()

	err := ws.WriteFile(ctx, "../outside.txt", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathEscape))

	_, statErr := os.Stat(filepath.Join(filepath.Dir(root), "outside.txt"))
	assert.True(t, os.IsNotExist(statErr), "no file should be created outside the root")
}

func TestLocalWorkspace_RejectsAbsolutePathOutsideRoot(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()

	_, err := ws.ReadFile(ctx, "/etc/passwd")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathEscape))
}

func TestLocalWorkspace_RejectsSymlinkEscape(t *testing.T) {
	ws, root := newTestWorkspace(t)
	ctx := context.Background()

	outsideDir := t.TempDir()
	outsideFile := filepath.Join(outsideDir, "secret.txt")
	require.NoError(t, os.WriteFile(outsideFile, []byte("secret"), 0o644))

	link := filepath.Join(root, "escape-link")
	require.NoError(t, os.Symlink(outsideDir, link))

	_, err := ws.ReadFile(ctx, "escape-link/secret.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathEscape))
}

func TestLocalWorkspace_ReadonlyTrustLevelBlocksWrites(t *testing.T) {
	root := t.TempDir()
	ws, err := NewLocalWorkspace(root, "readonly", nil)
	require.NoError(t, err)

	err = ws.WriteFile(context.Background(), "x.txt", "data")
	require.Error(t, err)
}

func TestLocalWorkspace_HealthCheck(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	assert.True(t, ws.HealthCheck(context.Background()))
}

func TestLocalWorkspace_ListFilesGlobMatchesNestedPattern(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ctx := context.Background()

	require.NoError(t, ws.WriteFile(ctx, "Notes/Welcome.md", "hi"))
	require.NoError(t, ws.WriteFile(ctx, "Notes/sub/Deep.md", "deep"))
	require.NoError(t, ws.WriteFile(ctx, "Notes/Welcome.txt", "not markdown"))

	matches, err := ws.ListFiles(ctx, "**/*.md")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Notes/Welcome.md", "Notes/sub/Deep.md"}, matches)
}

func TestLocalWorkspace_ListFilesGlobRejectsDotDotEscape(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	_, err := ws.ListFiles(context.Background(), "../*.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPathEscape))
}

func TestLocalWorkspace_WriteFileReleasesCrossProcessLock(t *testing.T) {
	ws, root := newTestWorkspace(t)
	require.NoError(t, ws.WriteFile(context.Background(), "a.txt", "hi"))

	other := flock.New(filepath.Join(root, lockFileName))
	locked, err := other.TryLock()
	require.NoError(t, err)
	assert.True(t, locked, "lock should be released after WriteFile returns")
	_ = other.Unlock()
}
