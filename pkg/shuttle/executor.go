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
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultLoopThreshold is the number of consecutive identical calls that
// trips loop detection.
const DefaultLoopThreshold = 3

// ToolCall is a single invocation requested by the model within a turn.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// Executor runs tools with permission checking and per-turn loop detection.
// Loop detection counters are scoped to a single Executor instance; callers
// reset them at the start of every user turn via ResetTurn.
type Executor struct {
	registry          *Registry
	permissionChecker *PermissionChecker
	loopThreshold     int

	mu     sync.Mutex
	counts map[string]int
	last   string
}

// NewExecutor creates a new tool executor bound to a registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry:      registry,
		loopThreshold: DefaultLoopThreshold,
		counts:        make(map[string]int),
	}
}

// SetPermissionChecker configures permission checking for tool execution.
func (e *Executor) SetPermissionChecker(checker *PermissionChecker) {
	e.permissionChecker = checker
}

// SetLoopThreshold overrides the default consecutive-repeat threshold.
func (e *Executor) SetLoopThreshold(n int) {
	if n > 0 {
		e.loopThreshold = n
	}
}

// ResetTurn clears loop-detection counters. Call once per user turn.
func (e *Executor) ResetTurn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.counts = make(map[string]int)
	e.last = ""
}

func callKey(name string, args map[string]interface{}) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	normalized := make(map[string]interface{}, len(args))
	for _, k := range keys {
		normalized[k] = args[k]
	}
	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(append([]byte(name+"\x00"), b...))
	return fmt.Sprintf("%x", sum)
}

// Execute runs a tool by id, applying loop detection, the executability
// check, the permission gate, and argument validation in that order.
func (e *Executor) Execute(ctx context.Context, call ToolCall) (*Result, error) {
	start := time.Now()

	key := callKey(call.Name, call.Arguments)
	e.mu.Lock()
	if key == e.last {
		e.counts[key]++
	} else {
		e.counts[key] = 1
		e.last = key
	}
	count := e.counts[key]
	e.mu.Unlock()

	if count >= e.loopThreshold {
		return &Result{
			Success: false,
			Error: &Error{
				Code:    "loop_detected",
				Message: fmt.Sprintf("Loop detected: %q called with identical arguments %d times in a row. Change your approach instead of repeating this call.", call.Name, count),
			},
		}, nil
	}

	tool, ok := e.registry.Get(call.Name)
	if !ok {
		return &Result{
			Success: false,
			Error:   &Error{Code: "not_found", Message: fmt.Sprintf("tool not found: %s", call.Name)},
		}, nil
	}

	if !tool.CanExecute() {
		return &Result{
			Success: false,
			Error:   &Error{Code: "unavailable", Message: fmt.Sprintf("tool %q is not currently executable", call.Name)},
		}, nil
	}

	if tool.RequiresPermission() && e.permissionChecker != nil {
		if err := e.permissionChecker.CheckPermission(ctx, call.Name, call.Arguments); err != nil {
			return &Result{
				Success: false,
				Error:   &Error{Code: "permission_denied", Message: err.Error()},
			}, nil
		}
	}

	if err := ValidateArguments(tool.InputSchema(), call.Arguments); err != nil {
		return &Result{
			Success: false,
			Error:   &Error{Code: "invalid_argument", Message: err.Error()},
		}, nil
	}

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		return &Result{
			Success: false,
			Error:   &Error{Code: "execution_error", Message: err.Error()},
		}, nil
	}
	if result == nil {
		result = &Result{Success: true}
	}
	result.ExecutionTimeMs = time.Since(start).Milliseconds()
	return result, nil
}
