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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterGetUnregister(t *testing.T) {
	r := NewRegistry()
	tool := &MockTool{MockID: "alpha"}

	r.Register(tool)
	assert.True(t, r.IsRegistered("alpha"))
	assert.Equal(t, 1, r.Count())

	got, ok := r.Get("alpha")
	assert.True(t, ok)
	assert.Same(t, tool, got)

	r.Unregister("alpha")
	assert.False(t, r.IsRegistered("alpha"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_RegisterReplacesExisting(t *testing.T) {
	r := NewRegistry()
	first := &MockTool{MockID: "dup", MockDescription: "first"}
	second := &MockTool{MockID: "dup", MockDescription: "second"}

	r.Register(first)
	r.Register(second)

	assert.Equal(t, 1, r.Count())
	got, _ := r.Get("dup")
	assert.Equal(t, "second", got.Description())
}

func TestRegistry_ListAndListTools(t *testing.T) {
	r := NewRegistry()
	r.Register(&MockTool{MockID: "a"})
	r.Register(&MockTool{MockID: "b"})

	assert.ElementsMatch(t, []string{"a", "b"}, r.List())
	assert.Len(t, r.ListTools(), 2)
}

func TestRegistry_MustGetPanicsOnMissing(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.MustGet("missing")
	})
}

func TestRegistry_GetMissingReturnsFalse(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("nope")
	assert.False(t, ok)
}
