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

// Package archiver implements the Archiver (C10): the finalization path
// that turns a session's in-memory turn into durable, searchable state and
// seals the session against further mutation.
package archiver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/pkg/embedding"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// minMemoryContentLength is the floor below which a message is considered
// too slight to be worth embedding as a standalone memory.
const minMemoryContentLength = 20

// MemoryVacuumThreshold is the cosine-similarity cutoff used both for
// save-time dedup and for VacuumMemories, kept identical everywhere per
// the project's single vacuum-threshold decision.
const MemoryVacuumThreshold = 0.92

// titleMaxLen bounds the truncated-first-message fallback title.
const titleMaxLen = 60

// Archiver turns a finished turn into persisted messages and memories and
// seals the owning session.
type Archiver struct {
	store    storage.Store
	embedder embedding.Provider
	utility  types.LLMProvider
	tagger   *tagger

	vacuumOnArchive bool
	vacuumThreshold float64
}

// Option configures an Archiver at construction time.
type Option func(*Archiver)

// WithEmbedder supplies the provider used to embed memory content. Without
// one, messages are still persisted and tagged but never saved as Memory
// rows (there is nothing to search them by).
func WithEmbedder(p embedding.Provider) Option {
	return func(a *Archiver) { a.embedder = p }
}

// WithUtilityModel supplies a small/fast LLM used for title and tag
// generation. Without one, both fall back to their heuristic paths.
func WithUtilityModel(p types.LLMProvider) Option {
	return func(a *Archiver) { a.utility = p }
}

// WithVacuumOnArchive enables a VacuumMemories sweep, at threshold, after
// every successful archive.
func WithVacuumOnArchive(threshold float64) Option {
	return func(a *Archiver) {
		a.vacuumOnArchive = true
		a.vacuumThreshold = threshold
	}
}

// New builds an Archiver. store must be non-nil.
func New(store storage.Store, opts ...Option) *Archiver {
	a := &Archiver{store: store, vacuumThreshold: MemoryVacuumThreshold}
	a.tagger = newTagger()
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Archive runs the five-step archive sequence against sessionID: generate a
// title if one is missing, persist turnMessages, index each long-enough
// message as a Memory, mark the session archived, and optionally vacuum.
// turnMessages is the batch of messages produced by the turn being closed
// out; earlier turns are assumed already persisted via the Chat Engine's own
// append-message path.
func (a *Archiver) Archive(ctx context.Context, sessionID string, turnMessages []types.Message) (storage.SessionRow, error) {
	row, err := a.store.GetSession(ctx, sessionID)
	if err != nil {
		return storage.SessionRow{}, fmt.Errorf("archiver: load session %q: %w", sessionID, err)
	}

	if row.Title == "" {
		row.Title = a.title(ctx, turnMessages)
		row.UpdatedAt = time.Now().Unix()
		if err := a.store.SaveSession(ctx, row); err != nil {
			return storage.SessionRow{}, fmt.Errorf("archiver: save title for %q: %w", sessionID, err)
		}
	}

	for _, msg := range turnMessages {
		memoryID, err := a.persistMessage(ctx, sessionID, msg)
		if err != nil {
			return storage.SessionRow{}, err
		}
		_ = memoryID
	}

	if err := a.store.ArchiveSession(ctx, sessionID); err != nil {
		return storage.SessionRow{}, fmt.Errorf("archiver: archive %q: %w", sessionID, err)
	}

	if a.vacuumOnArchive {
		removed, err := a.store.VacuumMemories(ctx, a.vacuumThreshold)
		if err != nil {
			log.Warn("archiver: vacuum failed", zap.String("sessionId", sessionID), zap.Error(err))
		} else {
			log.Info("archiver: vacuumed memories", zap.String("sessionId", sessionID), zap.Int("removed", removed))
		}
	}

	row, err = a.store.GetSession(ctx, sessionID)
	if err != nil {
		return storage.SessionRow{}, fmt.Errorf("archiver: reload session %q: %w", sessionID, err)
	}
	return row, nil
}

// persistMessage appends msg to the message log and, when it clears the
// minimum content length, indexes it as a Memory linked back to the message.
func (a *Archiver) persistMessage(ctx context.Context, sessionID string, msg types.Message) (string, error) {
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}

	var memoryID string
	if len(msg.Content) > minMemoryContentLength {
		var err error
		memoryID, err = a.indexMemory(ctx, msg)
		if err != nil {
			log.Warn("archiver: memory indexing failed, message still persisted",
				zap.String("sessionId", sessionID), zap.String("messageId", id), zap.Error(err))
		}
	}

	toolCalls := make([]storage.ToolCallRow, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		toolCalls = append(toolCalls, storage.ToolCallRow{ID: tc.ID, Name: tc.Name, Arguments: tc.Input})
	}

	row := storage.MessageRow{
		ID:        id,
		SessionID: sessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		Think:     msg.Think,
		ToolCalls: toolCalls,
		MemoryID:  memoryID,
		CreatedAt: msg.Timestamp.Unix(),
	}
	if row.CreatedAt == 0 {
		row.CreatedAt = time.Now().Unix()
	}

	if err := a.store.AppendMessage(ctx, row); err != nil {
		return "", fmt.Errorf("archiver: append message %q: %w", id, err)
	}
	return memoryID, nil
}

// indexMemory tags and embeds msg and saves it under the dedup policy. It
// returns "" without error when no embedder is configured.
func (a *Archiver) indexMemory(ctx context.Context, msg types.Message) (string, error) {
	if a.embedder == nil {
		return "", nil
	}

	tags := a.tagger.tags(ctx, msg.Content, a.utility)
	vec, err := a.embedder.Embed(ctx, msg.Content)
	if err != nil {
		return "", fmt.Errorf("embed: %w", err)
	}

	now := time.Now().Unix()
	mem := storage.Memory{
		ID:        uuid.NewString(),
		Title:     truncate(msg.Content, titleMaxLen),
		Content:   msg.Content,
		Tags:      tags,
		Embedding: vec,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := a.store.SaveMemory(ctx, mem, storage.PreventSimilar(a.vacuumThreshold))
	if err != nil {
		return "", fmt.Errorf("save memory: %w", err)
	}
	return id, nil
}

// title generates a session title, preferring the utility model and
// falling back to the truncated first user message on any failure.
func (a *Archiver) title(ctx context.Context, turnMessages []types.Message) string {
	firstUser := ""
	for _, msg := range turnMessages {
		if msg.Role == "user" && msg.Content != "" {
			firstUser = msg.Content
			break
		}
	}

	if a.utility != nil && firstUser != "" {
		prompt := []types.Message{
			{Role: "user", Content: "Summarize the following message as a short title (max six words, no punctuation at the end):\n\n" + firstUser},
		}
		resp, err := a.utility.Chat(ctx, prompt, nil)
		if err == nil && resp.Content != "" {
			return truncate(resp.Content, titleMaxLen)
		}
		log.Warn("archiver: title generation failed, falling back to truncation", zap.Error(err))
	}

	if firstUser == "" {
		return "Untitled session"
	}
	return truncate(firstUser, titleMaxLen)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
