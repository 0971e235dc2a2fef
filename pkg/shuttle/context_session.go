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

// ToolContext is a scoped set of tools activated by a gateway tool; at most
// one is active within a ToolContextSession at a time.
type ToolContext struct {
	ID          string
	DisplayName string
	Persistent  bool
	Pinned      bool
	ContextTools []string

	OnActivate   func()
	OnDeactivate func()

	// FormatState returns the state string injected into the prompt while
	// this context is active.
	FormatState func() string

	// FormatPinnedState returns the state string injected into the prompt
	// even when this context is not active, if Pinned is true.
	FormatPinnedState func() string
}

// ToolContextSession tracks which ToolContext, if any, is currently active
// for a session, plus the set of pinned contexts that always contribute
// state to the prompt.
type ToolContextSession struct {
	mu      sync.Mutex
	active  *ToolContext
	pinned  map[string]*ToolContext
	all     map[string]*ToolContext
}

// NewToolContextSession creates an empty context session.
func NewToolContextSession() *ToolContextSession {
	return &ToolContextSession{
		pinned: make(map[string]*ToolContext),
		all:    make(map[string]*ToolContext),
	}
}

// Register makes a context known to the session without activating it.
func (s *ToolContextSession) Register(ctx *ToolContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all[ctx.ID] = ctx
	if ctx.Pinned {
		s.pinned[ctx.ID] = ctx
	}
}

// Activate switches the active context. If the current active context is
// not persistent, it is deactivated first; if it is persistent, it stays
// active and ctx is not activated.
func (s *ToolContextSession) Activate(ctx *ToolContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active.ID == ctx.ID {
		return
	}
	if s.active != nil && !s.active.Persistent {
		if s.active.OnDeactivate != nil {
			s.active.OnDeactivate()
		}
		s.active = nil
	}
	if s.active == nil {
		s.all[ctx.ID] = ctx
		if ctx.Pinned {
			s.pinned[ctx.ID] = ctx
		}
		s.active = ctx
		if ctx.OnActivate != nil {
			ctx.OnActivate()
		}
	}
}

// Deactivate clears the active context, invoking its OnDeactivate hook
// regardless of whether it is persistent (explicit deactivation is always
// honored; only implicit deactivation-on-switch respects Persistent).
func (s *ToolContextSession) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return
	}
	if s.active.OnDeactivate != nil {
		s.active.OnDeactivate()
	}
	s.active = nil
}

// Active returns the currently active context, or nil.
func (s *ToolContextSession) Active() *ToolContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// IsContextTool reports whether a tool id belongs to the active context,
// or to any pinned context.
func (s *ToolContextSession) IsContextTool(toolID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		for _, id := range s.active.ContextTools {
			if id == toolID {
				return true
			}
		}
	}
	for _, ctx := range s.pinned {
		for _, id := range ctx.ContextTools {
			if id == toolID {
				return true
			}
		}
	}
	return false
}

// GetContextTools returns the tool ids surfaced by the active context plus
// any pinned contexts").
func (s *ToolContextSession) GetContextTools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var ids []string
	add := func(list []string) {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if s.active != nil {
		add(s.active.ContextTools)
	}
	for _, ctx := range s.pinned {
		add(ctx.ContextTools)
	}
	return ids
}

// FormatPinnedStates returns the non-empty pinned-state strings from every
// pinned context, regardless of which context (if any) is active.
func (s *ToolContextSession) FormatPinnedStates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, ctx := range s.pinned {
		if ctx.FormatPinnedState == nil {
			continue
		}
		if str := ctx.FormatPinnedState(); str != "" {
			out = append(out, str)
		}
	}
	return out
}

// FormatActiveState returns the active context's state string, or "".
func (s *ToolContextSession) FormatActiveState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.FormatState == nil {
		return ""
	}
	return s.active.FormatState()
}
