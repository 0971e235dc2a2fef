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

// Package tools holds the built-in shuttle.Tool implementations that wrap a
// workspace.Workspace: file access and note management. Every tool here is
// a thin adapter — the jailing, trust-level, and RPC-vs-local dispatch all
// live in pkg/workspace.
package tools

import (
	"context"
	"fmt"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// ReadFileTool reads a single file from a workspace.
type ReadFileTool struct {
	ws workspace.Workspace
}

// NewReadFileTool wraps ws in a read_file tool.
func NewReadFileTool(ws workspace.Workspace) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

var _ shuttle.Tool = (*ReadFileTool)(nil)

func (t *ReadFileTool) ID() string          { return "read_file" }
func (t *ReadFileTool) DisplayName() string { return "Read File" }
func (t *ReadFileTool) Description() string {
	return "Read the contents of a file in the active workspace by path."
}

func (t *ReadFileTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Arguments for read_file", map[string]*shuttle.JSONSchema{
		"path": shuttle.NewStringSchema("Workspace-relative path to the file"),
	}, []string{"path"})
}

func (t *ReadFileTool) RequiresPermission() bool { return false }
func (t *ReadFileTool) CanExecute() bool         { return t.ws.HealthCheck(context.Background()) }

func (t *ReadFileTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_argument", Message: "path is required"}}, nil
	}
	content, err := t.ws.ReadFile(ctx, path)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "read_failed", Message: err.Error()}}, nil
	}
	return &shuttle.Result{Success: true, Data: content}, nil
}

// WriteFileTool writes a single file to a workspace.
type WriteFileTool struct {
	ws workspace.Workspace
}

// NewWriteFileTool wraps ws in a write_file tool.
func NewWriteFileTool(ws workspace.Workspace) *WriteFileTool {
	return &WriteFileTool{ws: ws}
}

var _ shuttle.Tool = (*WriteFileTool)(nil)

func (t *WriteFileTool) ID() string          { return "write_file" }
func (t *WriteFileTool) DisplayName() string { return "Write File" }
func (t *WriteFileTool) Description() string {
	return "Write (creating or overwriting) a file in the active workspace by path."
}

func (t *WriteFileTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Arguments for write_file", map[string]*shuttle.JSONSchema{
		"path":    shuttle.NewStringSchema("Workspace-relative path to the file"),
		"content": shuttle.NewStringSchema("File content to write"),
	}, []string{"path", "content"})
}

func (t *WriteFileTool) RequiresPermission() bool { return true }
func (t *WriteFileTool) CanExecute() bool         { return t.ws.HealthCheck(context.Background()) }

func (t *WriteFileTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	path, _ := params["path"].(string)
	content, _ := params["content"].(string)
	if path == "" {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_argument", Message: "path is required"}}, nil
	}
	if err := t.ws.WriteFile(ctx, path, content); err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "write_failed", Message: err.Error()}}, nil
	}
	return &shuttle.Result{Success: true, Data: fmt.Sprintf("wrote %d bytes to %s", len(content), path)}, nil
}

// ListFilesTool lists the entries under a workspace directory.
type ListFilesTool struct {
	ws workspace.Workspace
}

// NewListFilesTool wraps ws in a list_files tool.
func NewListFilesTool(ws workspace.Workspace) *ListFilesTool {
	return &ListFilesTool{ws: ws}
}

var _ shuttle.Tool = (*ListFilesTool)(nil)

func (t *ListFilesTool) ID() string          { return "list_files" }
func (t *ListFilesTool) DisplayName() string { return "List Files" }
func (t *ListFilesTool) Description() string {
	return "List the files and subdirectories under a workspace directory, or match a glob pattern such as \"**/*.md\"."
}

func (t *ListFilesTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Arguments for list_files", map[string]*shuttle.JSONSchema{
		"path": shuttle.NewStringSchema("Workspace-relative directory path, or a doublestar glob pattern like \"**/*.md\"").WithDefault("."),
	}, nil)
}

func (t *ListFilesTool) RequiresPermission() bool { return false }
func (t *ListFilesTool) CanExecute() bool         { return t.ws.HealthCheck(context.Background()) }

func (t *ListFilesTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	path, _ := params["path"].(string)
	if path == "" {
		path = "."
	}
	files, err := t.ws.ListFiles(ctx, path)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "list_failed", Message: err.Error()}}, nil
	}
	return &shuttle.Result{Success: true, Data: files}, nil
}
