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

package chatengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIToolCallParser_NeverExtractsFromText(t *testing.T) {
	p := NewToolCallParser(FormatOpenAI)
	calls, stripped := p.Parse(`<tool_call>{"name": "x"}</tool_call>`)
	assert.Empty(t, calls)
	assert.Equal(t, `<tool_call>{"name": "x"}</tool_call>`, stripped)
}

func TestJSONToolCallParser_ExtractsSingleCall(t *testing.T) {
	p := NewToolCallParser(FormatJSON)
	content := `Sure, let me check. <tool_call>{"name": "read_file", "arguments": {"path": "Notes/a.md"}}</tool_call>`
	calls, stripped := p.Parse(content)
	require.Len(t, calls, 1)
	assert.Equal(t, "read_file", calls[0].Name)
	assert.Equal(t, "Notes/a.md", calls[0].Input["path"])
	assert.Equal(t, "Sure, let me check. ", stripped)
}

func TestJSONToolCallParser_ExtractsMultipleCalls(t *testing.T) {
	p := NewToolCallParser(FormatJSON)
	content := `<tool_call>{"name": "a", "arguments": {}}</tool_call>mid<tool_call>{"name": "b", "arguments": {}}</tool_call>`
	calls, stripped := p.Parse(content)
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Name)
	assert.Equal(t, "b", calls[1].Name)
	assert.Equal(t, "mid", stripped)
}

func TestJSONToolCallParser_MalformedBodyIsSkipped(t *testing.T) {
	p := NewToolCallParser(FormatJSON)
	calls, _ := p.Parse(`<tool_call>not json</tool_call>`)
	assert.Empty(t, calls)
}

func TestXMLToolCallParser_ExtractsCall(t *testing.T) {
	p := NewToolCallParser(FormatXML)
	content := `<tool_call><name>search_notes</name><arguments>{"query": "budget"}</arguments></tool_call>done`
	calls, stripped := p.Parse(content)
	require.Len(t, calls, 1)
	assert.Equal(t, "search_notes", calls[0].Name)
	assert.Equal(t, "budget", calls[0].Input["query"])
	assert.Equal(t, "done", stripped)
}

func TestJSONToolCallParser_NoCallsReturnsOriginalText(t *testing.T) {
	p := NewToolCallParser(FormatJSON)
	calls, stripped := p.Parse("just plain text")
	assert.Empty(t, calls)
	assert.Equal(t, "just plain text", stripped)
}
