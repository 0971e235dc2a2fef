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
package shuttle

import "sync"

// SessionToolManager holds the static tool set plus a reference to a
// ToolContextSession for one session. By default all known
// tools are enabled; registering a new tool auto-enables it.
type SessionToolManager struct {
	mu      sync.RWMutex
	static  *Registry
	enabled map[string]bool
	ctxSess *ToolContextSession
}

// NewSessionToolManager creates a manager over the given static tool set,
// with every currently-registered tool enabled.
func NewSessionToolManager(static *Registry) *SessionToolManager {
	m := &SessionToolManager{
		static:  static,
		enabled: make(map[string]bool),
		ctxSess: NewToolContextSession(),
	}
	for _, id := range static.List() {
		m.enabled[id] = true
	}
	return m
}

// ContextSession returns the per-session tool context session.
func (m *SessionToolManager) ContextSession() *ToolContextSession {
	return m.ctxSess
}

// RegisterTool adds a tool to the static registry and enables it.
func (m *SessionToolManager) RegisterTool(tool Tool) {
	m.static.Register(tool)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled[tool.ID()] = true
}

// SetEnabled toggles whether a tool id is part of EnabledTools.
func (m *SessionToolManager) SetEnabled(toolID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled[toolID] = enabled
}

// IsEnabled reports whether a tool id is currently enabled.
func (m *SessionToolManager) IsEnabled(toolID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled[toolID]
}

// EnabledTools returns the tools available for the current turn: every
// enabled tool from the static set, plus the context tools surfaced by the
// active/pinned tool contexts (included even when disabled in the static
// set), deduplicated.
func (m *SessionToolManager) EnabledTools() []Tool {
	m.mu.RLock()
	enabledStatic := make(map[string]bool, len(m.enabled))
	for k, v := range m.enabled {
		enabledStatic[k] = v
	}
	m.mu.RUnlock()

	seen := make(map[string]bool)
	var tools []Tool
	for _, id := range m.static.List() {
		if !enabledStatic[id] {
			continue
		}
		if tool, ok := m.static.Get(id); ok {
			seen[id] = true
			tools = append(tools, tool)
		}
	}
	for _, id := range m.ctxSess.GetContextTools() {
		if seen[id] {
			continue
		}
		if tool, ok := m.static.Get(id); ok {
			seen[id] = true
			tools = append(tools, tool)
		}
	}
	return tools
}

// Registry exposes the underlying static registry.
func (m *SessionToolManager) Registry() *Registry {
	return m.static
}
