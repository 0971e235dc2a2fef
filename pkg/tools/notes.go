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

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// notesDir is the workspace-relative directory every note lives under.
const notesDir = "Notes"

func noteFilename(name string) string {
	if strings.HasSuffix(name, ".md") {
		return notesDir + "/" + name
	}
	return notesDir + "/" + name + ".md"
}

// CreateNoteTool writes a new note file under Notes/.
type CreateNoteTool struct {
	ws workspace.Workspace
}

// NewCreateNoteTool wraps ws in a create_note tool.
func NewCreateNoteTool(ws workspace.Workspace) *CreateNoteTool {
	return &CreateNoteTool{ws: ws}
}

var _ shuttle.Tool = (*CreateNoteTool)(nil)

func (t *CreateNoteTool) ID() string          { return "create_note" }
func (t *CreateNoteTool) DisplayName() string { return "Create Note" }
func (t *CreateNoteTool) Description() string {
	return "Create a note in the workspace's Notes directory, refusing to overwrite an existing one."
}

func (t *CreateNoteTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Arguments for create_note", map[string]*shuttle.JSONSchema{
		"name":    shuttle.NewStringSchema("Note name, without the Notes/ prefix or .md suffix"),
		"content": shuttle.NewStringSchema("Note body"),
	}, []string{"name", "content"})
}

func (t *CreateNoteTool) RequiresPermission() bool { return false }
func (t *CreateNoteTool) CanExecute() bool         { return t.ws.HealthCheck(context.Background()) }

func (t *CreateNoteTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	name, _ := params["name"].(string)
	content, _ := params["content"].(string)
	if name == "" {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_argument", Message: "name is required"}}, nil
	}
	path := noteFilename(name)
	if _, err := t.ws.ReadFile(ctx, path); err == nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "already_exists", Message: fmt.Sprintf("note %q already exists", name)}}, nil
	}
	if err := t.ws.WriteFile(ctx, path, content); err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "write_failed", Message: err.Error()}}, nil
	}
	return &shuttle.Result{Success: true, Data: path}, nil
}

// ReadNoteTool reads a note from Notes/ by name.
type ReadNoteTool struct {
	ws workspace.Workspace
}

// NewReadNoteTool wraps ws in a read_note tool.
func NewReadNoteTool(ws workspace.Workspace) *ReadNoteTool {
	return &ReadNoteTool{ws: ws}
}

var _ shuttle.Tool = (*ReadNoteTool)(nil)

func (t *ReadNoteTool) ID() string          { return "read_note" }
func (t *ReadNoteTool) DisplayName() string { return "Read Note" }
func (t *ReadNoteTool) Description() string {
	return "Read a note from the workspace's Notes directory by name."
}

func (t *ReadNoteTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Arguments for read_note", map[string]*shuttle.JSONSchema{
		"name": shuttle.NewStringSchema("Note name, without the Notes/ prefix or .md suffix"),
	}, []string{"name"})
}

func (t *ReadNoteTool) RequiresPermission() bool { return false }
func (t *ReadNoteTool) CanExecute() bool         { return t.ws.HealthCheck(context.Background()) }

func (t *ReadNoteTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	name, _ := params["name"].(string)
	if name == "" {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_argument", Message: "name is required"}}, nil
	}
	content, err := t.ws.ReadFile(ctx, noteFilename(name))
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "not_found", Message: err.Error()}}, nil
	}
	return &shuttle.Result{Success: true, Data: content}, nil
}

// SearchNotesTool substring-searches every note under Notes/ for a query,
// matching filename or content case-insensitively.
type SearchNotesTool struct {
	ws workspace.Workspace
}

// NewSearchNotesTool wraps ws in a search_notes tool.
func NewSearchNotesTool(ws workspace.Workspace) *SearchNotesTool {
	return &SearchNotesTool{ws: ws}
}

var _ shuttle.Tool = (*SearchNotesTool)(nil)

func (t *SearchNotesTool) ID() string          { return "search_notes" }
func (t *SearchNotesTool) DisplayName() string { return "Search Notes" }
func (t *SearchNotesTool) Description() string {
	return "Search the workspace's Notes directory for a substring match in note names or content."
}

func (t *SearchNotesTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Arguments for search_notes", map[string]*shuttle.JSONSchema{
		"query": shuttle.NewStringSchema("Substring to search for"),
	}, []string{"query"})
}

func (t *SearchNotesTool) RequiresPermission() bool { return false }
func (t *SearchNotesTool) CanExecute() bool         { return t.ws.HealthCheck(context.Background()) }

// NoteMatch is one search_notes hit.
type NoteMatch struct {
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

func (t *SearchNotesTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_argument", Message: "query is required"}}, nil
	}
	names, err := t.ws.ListFiles(ctx, notesDir)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "list_failed", Message: err.Error()}}, nil
	}

	lowerQuery := strings.ToLower(query)
	var matches []NoteMatch
	for _, name := range names {
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		matched := strings.Contains(strings.ToLower(name), lowerQuery)
		content, err := t.ws.ReadFile(ctx, notesDir+"/"+name)
		if err != nil {
			continue
		}
		idx := strings.Index(strings.ToLower(content), lowerQuery)
		if idx >= 0 {
			matched = true
		}
		if !matched {
			continue
		}
		matches = append(matches, NoteMatch{Name: name, Snippet: snippetAround(content, idx)})
	}
	return &shuttle.Result{Success: true, Data: matches}, nil
}

func snippetAround(content string, idx int) string {
	if idx < 0 {
		if len(content) > 120 {
			return content[:120]
		}
		return content
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + 80
	if end > len(content) {
		end = len(content)
	}
	return content[start:end]
}
