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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateArguments validates tool call arguments against a tool's declared
// JSON Schema before execution.
func ValidateArguments(schema *JSONSchema, args map[string]interface{}) error {
	if schema == nil {
		return nil
	}

	raw, err := NormalizeSchema(schema).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tool.json", bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("tool.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(argsJSON, &v); err != nil {
		return fmt.Errorf("unmarshal arguments: %w", err)
	}

	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("argument validation failed: %w", err)
	}
	return nil
}
