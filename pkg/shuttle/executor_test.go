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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_SuccessfulExecution(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "echo"})
	executor := NewExecutor(registry)

	result, err := executor.Execute(context.Background(), ToolCall{Name: "echo", Arguments: map[string]interface{}{"input": "x"}})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestExecutor_UnknownToolReturnsNotFound(t *testing.T) {
	executor := NewExecutor(NewRegistry())
	result, err := executor.Execute(context.Background(), ToolCall{Name: "missing"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "not_found", result.Error.Code)
}

func TestExecutor_LoopDetectionTripsOnThirdIdenticalCall(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "list_files"})
	executor := NewExecutor(registry)

	call := ToolCall{Name: "list_files", Arguments: map[string]interface{}{"path": "/etc"}}

	for i := 0; i < 2; i++ {
		result, err := executor.Execute(context.Background(), call)
		require.NoError(t, err)
		assert.True(t, result.Success, "call %d should succeed", i+1)
	}

	result, err := executor.Execute(context.Background(), call)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "loop_detected", result.Error.Code)
}

func TestExecutor_ResetTurnClearsLoopCounters(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "t"})
	executor := NewExecutor(registry)
	call := ToolCall{Name: "t", Arguments: map[string]interface{}{"a": 1}}

	executor.Execute(context.Background(), call)
	executor.Execute(context.Background(), call)
	executor.ResetTurn()

	result, err := executor.Execute(context.Background(), call)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestExecutor_DifferentArgumentsDoNotTripLoopDetection(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "t"})
	executor := NewExecutor(registry)

	for i := 0; i < 5; i++ {
		result, err := executor.Execute(context.Background(), ToolCall{
			Name:      "t",
			Arguments: map[string]interface{}{"i": i},
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
	}
}

func TestExecutor_UnavailableToolFails(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{MockID: "remote_tool", MockCanExecute: func() bool { return false }})
	executor := NewExecutor(registry)

	result, err := executor.Execute(context.Background(), ToolCall{Name: "remote_tool"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "unavailable", result.Error.Code)
}

func TestExecutor_PermissionDeniedBlocksExecution(t *testing.T) {
	registry := NewRegistry()
	tool := &MockTool{MockID: "dangerous", MockRequiresPerm: true}
	registry.Register(tool)
	executor := NewExecutor(registry)
	executor.SetPermissionChecker(NewPermissionChecker(PermissionConfig{RequireApproval: true}))

	result, err := executor.Execute(context.Background(), ToolCall{Name: "dangerous"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "permission_denied", result.Error.Code)
	assert.Equal(t, 0, tool.ExecuteCount)
}

func TestExecutor_InvalidArgumentsFailValidationBeforeExecute(t *testing.T) {
	registry := NewRegistry()
	tool := &MockTool{
		MockID: "typed",
		MockSchema: NewObjectSchema("typed args", map[string]*JSONSchema{
			"count": NewNumberSchema("a count"),
		}, []string{"count"}),
	}
	registry.Register(tool)
	executor := NewExecutor(registry)

	result, err := executor.Execute(context.Background(), ToolCall{Name: "typed", Arguments: map[string]interface{}{}})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "invalid_argument", result.Error.Code)
	assert.Equal(t, 0, tool.ExecuteCount, "tool must not execute when validation fails")
}
