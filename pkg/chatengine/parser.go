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
	"encoding/json"
	"encoding/xml"
	"strings"

	"github.com/google/uuid"

	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// ToolFormat names a wire format a provider emits tool calls in.
type ToolFormat string

const (
	FormatOpenAI ToolFormat = "openai"
	FormatJSON   ToolFormat = "json"
	FormatXML    ToolFormat = "xml"
)

// ToolCallParser extracts tool calls embedded in assistant text. Providers
// that emit tool calls out-of-band (native structured responses) never
// invoke this; it exists for the two text-embedded formats and is kept
// interchangeable so a third format is a matter of adding an implementation.
type ToolCallParser interface {
	// Parse scans content for embedded tool-call markers and returns the
	// calls found plus content with the markers stripped out.
	Parse(content string) (calls []types.ToolCall, stripped string)
}

// NewToolCallParser selects a parser for the given format. Unknown formats
// fall back to FormatOpenAI, which performs no text scanning since OpenAI's
// wire format delivers tool calls as structured fields rather than markup.
func NewToolCallParser(format ToolFormat) ToolCallParser {
	switch format {
	case FormatJSON:
		return jsonToolCallParser{}
	case FormatXML:
		return xmlToolCallParser{}
	default:
		return openAIToolCallParser{}
	}
}

// openAIToolCallParser is a no-op: native tool calls arrive as structured
// fields on the provider response, never embedded in the text content.
type openAIToolCallParser struct{}

func (openAIToolCallParser) Parse(content string) ([]types.ToolCall, string) {
	return nil, content
}

const (
	jsonToolCallOpen  = "<tool_call>"
	jsonToolCallClose = "</tool_call>"
)

// jsonToolCallParser parses <tool_call>{"name": "...", "arguments": {...}}</tool_call>
// markers, the format used by several open tool-calling model families.
type jsonToolCallParser struct{}

type jsonToolCallBody struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (jsonToolCallParser) Parse(content string) ([]types.ToolCall, string) {
	var calls []types.ToolCall
	var out strings.Builder
	rest := content

	for {
		start := strings.Index(rest, jsonToolCallOpen)
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], jsonToolCallClose)
		if end < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])
		body := strings.TrimSpace(rest[start+len(jsonToolCallOpen) : start+end])
		rest = rest[start+end+len(jsonToolCallClose):]

		var parsed jsonToolCallBody
		if err := json.Unmarshal([]byte(body), &parsed); err != nil {
			continue
		}
		calls = append(calls, types.ToolCall{
			ID:    uuid.NewString(),
			Name:  parsed.Name,
			Input: parsed.Arguments,
		})
	}
	return calls, out.String()
}

// xmlToolCallParser parses <tool_call><name>x</name><arguments>{...}</arguments></tool_call>
// markers, the format used by providers that avoid raw JSON in generated text.
type xmlToolCallParser struct{}

type xmlToolCallElement struct {
	XMLName   xml.Name `xml:"tool_call"`
	Name      string   `xml:"name"`
	Arguments string   `xml:"arguments"`
}

func (xmlToolCallParser) Parse(content string) ([]types.ToolCall, string) {
	var calls []types.ToolCall
	var out strings.Builder
	rest := content

	for {
		start := strings.Index(rest, jsonToolCallOpen)
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], jsonToolCallClose)
		if end < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])
		block := rest[start : start+end+len(jsonToolCallClose)]
		rest = rest[start+end+len(jsonToolCallClose):]

		var el xmlToolCallElement
		if err := xml.Unmarshal([]byte(block), &el); err != nil {
			continue
		}
		var args map[string]interface{}
		if el.Arguments != "" {
			_ = json.Unmarshal([]byte(el.Arguments), &args)
		}
		calls = append(calls, types.ToolCall{
			ID:    uuid.NewString(),
			Name:  el.Name,
			Input: args,
		})
	}
	return calls, out.String()
}
