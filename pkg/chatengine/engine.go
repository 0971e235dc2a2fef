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
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"

	"github.com/teradata-labs/loom-assistant/pkg/embedding"
	"github.com/teradata-labs/loom-assistant/pkg/prompt"
	"github.com/teradata-labs/loom-assistant/pkg/shuttle"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// Config tunes one Engine's turn loop.
type Config struct {
	// MaxTurns bounds ReAct iterations within a single user turn before the
	// engine gives up and tells the user so.
	// Default: 10
	MaxTurns int

	// MaxTokens is the model's total context budget handed to the Prompt
	// Assembler.
	// Default: 8192
	MaxTokens int

	// ReserveForResponse is tokens held back for the model's own reply.
	// Default: 1024
	ReserveForResponse int

	// RecallTopK is how many memories to recall per turn. 0 disables recall.
	RecallTopK int

	// RecallMinSimilarity is the cosine floor for recalled memories.
	RecallMinSimilarity float64

	// Format selects which ToolCallParser decodes text-embedded tool calls.
	Format ToolFormat

	Retry RetryPolicy
}

// DefaultConfig returns sane defaults for Config.
func DefaultConfig() Config {
	return Config{
		MaxTurns:            10,
		MaxTokens:           8192,
		ReserveForResponse:  1024,
		RecallTopK:          5,
		RecallMinSimilarity: 0.75,
		Format:              FormatOpenAI,
		Retry:               DefaultRetryPolicy(),
	}
}

func sanitizeConfig(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaults.MaxTurns
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.ReserveForResponse < 0 {
		cfg.ReserveForResponse = defaults.ReserveForResponse
	}
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	if cfg.Retry.MaxTries == 0 {
		cfg.Retry = defaults.Retry
	}
	return cfg
}

// Emitter receives ChatEvents as a turn progresses.
type Emitter func(ChatEvent)

// Engine runs the per-turn ReAct loop described by the Chat Engine
// component: stream the LLM, split content from chain-of-thought, parse
// tool calls, dispatch them through the Tool Registry, feed results back,
// and repeat until the model stops calling tools or the turn limit trips.
type Engine struct {
	provider  types.LLMProvider
	executor  *shuttle.Executor
	toolMgr   *shuttle.SessionToolManager
	assembler *prompt.Assembler
	recaller  *embedding.Recaller
	cfg       Config
}

// NewEngine wires an Engine from its collaborators. recaller may be nil,
// in which case no memories are recalled for the prompt.
func NewEngine(provider types.LLMProvider, executor *shuttle.Executor, toolMgr *shuttle.SessionToolManager, assembler *prompt.Assembler, recaller *embedding.Recaller, cfg Config) *Engine {
	return &Engine{
		provider:  provider,
		executor:  executor,
		toolMgr:   toolMgr,
		assembler: assembler,
		recaller:  recaller,
		cfg:       sanitizeConfig(cfg),
	}
}

// TurnInput is everything specific to one user turn, as opposed to the
// session-lifetime collaborators an Engine is built with.
type TurnInput struct {
	System       string
	ContextNotes string
	ToolsCatalogue string
	PinnedStates []string
	UserQuery    string
}

// RunTurn appends the user's message to session, runs the ReAct loop, and
// emits events through emit. It returns once the turn is finished,
// cancelled, or terminates on error.
func (e *Engine) RunTurn(ctx context.Context, session *types.Session, in TurnInput, emit Emitter) {
	session.AddMessage(types.Message{Role: "user", Content: in.UserQuery})
	userIdx := int(session.MessageCount()) - 1
	e.executor.ResetTurn()

	emit(ChatEvent{Kind: EventStreamStart})

	meta := &Metadata{}
	memoriesText, memoriesSummary := "", ""
	if e.recaller != nil && e.cfg.RecallTopK > 0 {
		results, err := e.recaller.Recall(ctx, in.UserQuery, e.cfg.RecallTopK, e.cfg.RecallMinSimilarity)
		if err == nil {
			for _, r := range results {
				meta.RecalledMemories = append(meta.RecalledMemories, r.Memory.Title)
				memoriesText += r.Memory.Content + "\n\n"
			}
		}
	}
	emit(ChatEvent{Kind: EventMetadata, Metadata: meta})

	parser := NewToolCallParser(e.cfg.Format)

	for turn := 1; ; turn++ {
		if ctx.Err() != nil {
			e.finalizeCancelled(session, emit)
			return
		}

		if turn > e.cfg.MaxTurns {
			msg := types.Message{Role: "assistant", Content: "loop limit reached"}
			session.AddMessage(msg)
			emit(ChatEvent{Kind: EventMessage, Message: &msg})
			emit(ChatEvent{Kind: EventStreamEnd})
			return
		}

		history := historyExcluding(session.GetMessages(), userIdx)
		tools := e.toolMgr.EnabledTools()
		out := e.assembler.Assemble(prompt.Input{
			MaxTokens:          e.cfg.MaxTokens,
			ReserveForResponse: e.cfg.ReserveForResponse,
			PinnedStates:       append(in.PinnedStates, e.toolMgr.ContextSession().FormatPinnedStates()...),
			System:             in.System,
			ContextNotes:       in.ContextNotes,
			Memories:           memoriesText,
			MemoriesSummary:    memoriesSummary,
			Tools:              in.ToolsCatalogue,
			UserQuery:          in.UserQuery,
			History:            history,
		})

		messages := make([]types.Message, 0, len(out.Messages)+1)
		messages = append(messages, types.Message{Role: "system", Content: out.System})
		messages = append(messages, out.Messages...)

		resp, yielded, err := e.streamOnce(ctx, messages, tools, emit)
		if err != nil {
			if !yielded && isTransient(err) {
				err = retryPreYield(ctx, e.cfg.Retry, func() error {
					var retryErr error
					resp, yielded, retryErr = e.streamOnce(ctx, messages, tools, emit)
					if retryErr != nil && yielded {
						return backoff.Permanent(retryErr)
					}
					return retryErr
				})
			}
			if err != nil {
				emit(ChatEvent{Kind: EventError, Err: err})
				return
			}
		}

		if ctx.Err() != nil {
			e.finalizeCancelled(session, emit)
			return
		}

		calls := resp.ToolCalls
		content := resp.Content
		think := resp.Think
		if e.cfg.Format != FormatOpenAI {
			parsedCalls, stripped := parser.Parse(content)
			calls = append(calls, parsedCalls...)
			content = stripped
		}

		assistantMsg := types.Message{Role: "assistant", Content: content, Think: think, ToolCalls: calls}
		session.AddMessage(assistantMsg)
		emit(ChatEvent{Kind: EventMessage, Message: &assistantMsg})

		if len(calls) == 0 {
			emit(ChatEvent{Kind: EventStreamEnd})
			return
		}

		for _, call := range calls {
			if ctx.Err() != nil {
				e.finalizeCancelled(session, emit)
				return
			}
			e.dispatchToolCall(ctx, session, call, emit)
		}
	}
}

func (e *Engine) streamOnce(ctx context.Context, messages []types.Message, tools []shuttle.Tool, emit Emitter) (*types.LLMResponse, bool, error) {
	streaming, ok := e.provider.(types.StreamingLLMProvider)
	if !ok {
		resp, err := e.provider.Chat(ctx, messages, tools)
		return resp, false, err
	}

	think := newThinkState()
	yielded := false
	resp, err := streaming.ChatStream(ctx, messages, tools, func(token string) {
		contentDelta, thoughtDelta := think.feed(token)
		if contentDelta != "" {
			yielded = true
			emit(ChatEvent{Kind: EventDelta, Delta: contentDelta})
		}
		if thoughtDelta != "" {
			emit(ChatEvent{Kind: EventThought, Delta: thoughtDelta})
		}
	})
	if err != nil {
		return nil, yielded, err
	}
	if resp.Content == "" {
		resp.Content = think.Content()
	}
	if resp.Think == "" {
		resp.Think = think.Think()
	}
	return resp, yielded, nil
}

func (e *Engine) dispatchToolCall(ctx context.Context, session *types.Session, call types.ToolCall, emit Emitter) {
	result, err := e.executor.Execute(ctx, shuttle.ToolCall{ID: call.ID, Name: call.Name, Arguments: call.Input})
	output := ""
	switch {
	case err != nil:
		output = fmt.Sprintf("Error: %s", err.Error())
	case result.Success:
		output = fmt.Sprintf("%v", result.Data)
	default:
		output = fmt.Sprintf("Error: %s", result.Error.Message)
	}

	// A gateway tool activates its context as a side effect of Execute;
	// result.SubagentContext is informational only by the time we see it.

	emit(ChatEvent{Kind: EventToolResult, ToolResult: &ToolResultPayload{Name: call.Name, Output: output}})

	toolMsg := types.Message{Role: "tool", Content: output, ToolUseID: call.ID}
	session.AddMessage(toolMsg)
}

func (e *Engine) finalizeCancelled(session *types.Session, emit Emitter) {
	session.MutateLastMessage(func(m *types.Message) {
		if m.Role == "assistant" {
			m.Content += " [Generation cancelled]"
		}
	})
	emit(ChatEvent{Kind: EventStreamEnd})
}

// historyExcluding returns messages without the entry at idx: this turn's
// user message, which the assembler receives as UserQuery instead.
func historyExcluding(messages []types.Message, idx int) []types.Message {
	if idx < 0 || idx >= len(messages) {
		return messages
	}
	out := make([]types.Message, 0, len(messages)-1)
	out = append(out, messages[:idx]...)
	return append(out, messages[idx+1:]...)
}

// isTransient reports whether err is worth a pre-yield retry. Context
// cancellation and deadline errors are never retried.
func isTransient(err error) bool {
	return err != nil && err != context.Canceled && err != context.DeadlineExceeded
}
