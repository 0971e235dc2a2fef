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

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/teradata-labs/loom-assistant/internal/sqlitedriver" // registers "sqlite3" driver
	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"go.uber.org/zap"
)

// Store is the SQLite-backed implementation of storage.Store. Single
// writer, many readers: callers are expected to funnel
// writes through one *Store per database file.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens (creating if necessary) a SQLite database at path, runs
// pending migrations, and returns a ready Store.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", path+"?_fk=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// SQLite allows only one writer; cap pool size to avoid SQLITE_BUSY storms
	// under concurrent readers + the single writer.
	db.SetMaxOpenConns(8)

	migrator, err := NewMigrator(db, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build migrator: %w", err)
	}
	if err := migrator.MigrateUp(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// NewStore wraps an already-open, already-migrated *sql.DB.
func NewStore(db *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

func (s *Store) Close() error { return s.db.Close() }

func isImmutableViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "immutable:")
}

func classify(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if isImmutableViolation(err) {
		return &storage.PersistenceError{Kind: storage.Immutable, Op: op, Entity: entity, ID: id, Wrapped: err}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &storage.PersistenceError{Kind: storage.NotFound, Op: op, Entity: entity, ID: id, Wrapped: err}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &storage.PersistenceError{Kind: storage.Conflict, Op: op, Entity: entity, ID: id, Wrapped: err}
	}
	return &storage.PersistenceError{Kind: storage.Io, Op: op, Entity: entity, ID: id, Wrapped: err}
}

// --- Sessions -----------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, sess storage.SessionRow) error {
	attached, err := json.Marshal(sess.AttachedWorkspaceIDs)
	if err != nil {
		return classify("create", "session", sess.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, is_archived, primary_workspace_id, attached_workspace_ids, persona_id,
			completion_tokens, prompt_tokens, cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Title, boolToInt(sess.IsArchived), sess.PrimaryWorkspaceID, string(attached), sess.PersonaID,
		sess.CompletionTokens, sess.PromptTokens, sess.Cost, sess.CreatedAt, sess.UpdatedAt)
	return classify("create", "session", sess.ID, err)
}

func (s *Store) GetSession(ctx context.Context, id string) (storage.SessionRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, is_archived, primary_workspace_id, attached_workspace_ids, persona_id,
			completion_tokens, prompt_tokens, cost, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if err != nil {
		return storage.SessionRow{}, classify("get", "session", id, err)
	}
	return sess, nil
}

func (s *Store) ListSessions(ctx context.Context, includeArchived bool) ([]storage.SessionRow, error) {
	query := `SELECT id, title, is_archived, primary_workspace_id, attached_workspace_ids, persona_id,
		completion_tokens, prompt_tokens, cost, created_at, updated_at FROM sessions`
	if !includeArchived {
		query += " WHERE is_archived = 0"
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("list", "session", "", err)
	}
	defer rows.Close()

	var out []storage.SessionRow
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, classify("list", "session", "", err)
		}
		out = append(out, sess)
	}
	return out, classify("list", "session", "", rows.Err())
}

func (s *Store) SaveSession(ctx context.Context, sess storage.SessionRow) error {
	attached, err := json.Marshal(sess.AttachedWorkspaceIDs)
	if err != nil {
		return classify("save", "session", sess.ID, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET title = ?, primary_workspace_id = ?, attached_workspace_ids = ?, persona_id = ?,
			completion_tokens = ?, prompt_tokens = ?, cost = ?, updated_at = ?
		WHERE id = ?
	`, sess.Title, sess.PrimaryWorkspaceID, string(attached), sess.PersonaID,
		sess.CompletionTokens, sess.PromptTokens, sess.Cost, sess.UpdatedAt, sess.ID)
	if err != nil {
		return classify("save", "session", sess.ID, err)
	}
	return checkAffected(res, "save", "session", sess.ID)
}

func (s *Store) ArchiveSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET is_archived = 1 WHERE id = ? AND is_archived = 0`, id)
	if err != nil {
		return classify("archive", "session", id, err)
	}
	return checkAffected(res, "archive", "session", id)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return classify("delete", "session", id, err)
	}
	return checkAffected(res, "delete", "session", id)
}

func scanSession(row interface{ Scan(...any) error }) (storage.SessionRow, error) {
	var sess storage.SessionRow
	var isArchived int
	var attached string
	if err := row.Scan(&sess.ID, &sess.Title, &isArchived, &sess.PrimaryWorkspaceID, &attached, &sess.PersonaID,
		&sess.CompletionTokens, &sess.PromptTokens, &sess.Cost, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return storage.SessionRow{}, err
	}
	sess.IsArchived = isArchived != 0
	_ = json.Unmarshal([]byte(attached), &sess.AttachedWorkspaceIDs)
	return sess, nil
}

// --- Messages ------------------------------------------------------------

func (s *Store) AppendMessage(ctx context.Context, m storage.MessageRow) error {
	toolCalls, err := json.Marshal(m.ToolCalls)
	if err != nil {
		return classify("append", "message", m.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, parent_id, role, content, think, tool_calls, memory_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.SessionID, m.ParentID, m.Role, m.Content, m.Think, string(toolCalls), m.MemoryID, m.CreatedAt)
	return classify("append", "message", m.ID, err)
}

func (s *Store) FetchMessages(ctx context.Context, sessionID string) ([]storage.MessageRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, parent_id, role, content, think, tool_calls, memory_id, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, classify("fetchAll", "message", sessionID, err)
	}
	defer rows.Close()

	var out []storage.MessageRow
	for rows.Next() {
		var m storage.MessageRow
		var toolCalls string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.ParentID, &m.Role, &m.Content, &m.Think, &toolCalls, &m.MemoryID, &m.CreatedAt); err != nil {
			return nil, classify("fetchAll", "message", sessionID, err)
		}
		_ = json.Unmarshal([]byte(toolCalls), &m.ToolCalls)
		out = append(out, m)
	}
	return out, classify("fetchAll", "message", sessionID, rows.Err())
}

// --- Memories --------------------------------------------------------------

func (s *Store) SaveMemory(ctx context.Context, m storage.Memory, policy storage.MemoryPolicy) (string, error) {
	if policy.PreventSimilar {
		existing, err := s.FetchMemories(ctx)
		if err != nil {
			return "", err
		}
		best := -1.0
		var bestID string
		for _, e := range existing {
			sim := cosineSimilarity(m.Embedding, e.Embedding)
			if sim > best {
				best = sim
				bestID = e.ID
			}
		}
		if best >= policy.Threshold {
			return bestID, nil
		}
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return "", classify("save", "memory", m.ID, err)
	}
	embedding, err := json.Marshal(m.Embedding)
	if err != nil {
		return "", classify("save", "memory", m.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (id, title, content, tags, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, m.Content, string(tags), embedding, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return "", classify("save", "memory", m.ID, err)
	}
	return m.ID, nil
}

func (s *Store) FetchMemories(ctx context.Context) ([]storage.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, tags, embedding, created_at, updated_at FROM memories ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, classify("fetchAll", "memory", "", err)
	}
	defer rows.Close()

	var out []storage.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, classify("fetchAll", "memory", "", err)
		}
		out = append(out, m)
	}
	return out, classify("fetchAll", "memory", "", rows.Err())
}

func (s *Store) SearchMemoriesByText(ctx context.Context, query string) ([]storage.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, tags, embedding, created_at, updated_at FROM memories
		WHERE content LIKE ? OR title LIKE ?
		ORDER BY updated_at DESC
	`, "%"+query+"%", "%"+query+"%")
	if err != nil {
		return nil, classify("search", "memory", "", err)
	}
	defer rows.Close()

	var out []storage.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, classify("search", "memory", "", err)
		}
		out = append(out, m)
	}
	return out, classify("search", "memory", "", rows.Err())
}

// SearchMemoriesByEmbedding implements cosine-similarity recall: results are sorted by similarity desc, ties broken
// by updatedAt desc, filtered to >= minSimilarity, capped at limit.
func (s *Store) SearchMemoriesByEmbedding(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]storage.ScoredMemory, error) {
	all, err := s.FetchMemories(ctx)
	if err != nil {
		return nil, err
	}

	var scored []storage.ScoredMemory
	for _, m := range all {
		sim := cosineSimilarity(embedding, m.Embedding)
		if sim >= minSimilarity {
			scored = append(scored, storage.ScoredMemory{Memory: m, Similarity: sim})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Memory.UpdatedAt > scored[j].Memory.UpdatedAt
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return classify("delete", "memory", id, err)
	}
	return checkAffected(res, "delete", "memory", id)
}

// VacuumMemories greedily collapses near-duplicates. Scans newest-first; a row is dropped the
// moment its max cosine similarity against any row already kept reaches
// the threshold.
func (s *Store) VacuumMemories(ctx context.Context, threshold float64) (int, error) {
	all, err := s.FetchMemories(ctx) // already ordered by updated_at desc
	if err != nil {
		return 0, err
	}

	var kept []storage.Memory
	var dropped []string
	for _, m := range all {
		isDup := false
		for _, k := range kept {
			if cosineSimilarity(m.Embedding, k.Embedding) >= threshold {
				isDup = true
				break
			}
		}
		if isDup {
			dropped = append(dropped, m.ID)
		} else {
			kept = append(kept, m)
		}
	}

	if len(dropped) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify("vacuum", "memory", "", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM memories WHERE id = ?`)
	if err != nil {
		return 0, classify("vacuum", "memory", "", err)
	}
	defer stmt.Close()

	for _, id := range dropped {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return 0, classify("vacuum", "memory", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, classify("vacuum", "memory", "", err)
	}
	return len(dropped), nil
}

func scanMemory(row interface{ Scan(...any) error }) (storage.Memory, error) {
	var m storage.Memory
	var tags, embedding string
	if err := row.Scan(&m.ID, &m.Title, &m.Content, &tags, &embedding, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return storage.Memory{}, err
	}
	_ = json.Unmarshal([]byte(tags), &m.Tags)
	_ = json.Unmarshal([]byte(embedding), &m.Embedding)
	return m, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// --- Jobs ------------------------------------------------------------------

func (s *Store) CreateJob(ctx context.Context, j storage.Job) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, session_id, parent_job_id, title, description, priority, status, agent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.SessionID, j.ParentJobID, j.Title, j.Description, j.Priority, string(j.Status), j.AgentID, j.CreatedAt, j.UpdatedAt)
	return classify("create", "job", j.ID, err)
}

func (s *Store) GetJob(ctx context.Context, id string) (storage.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, parent_job_id, title, description, priority, status, agent_id, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)
	j, err := scanJob(row)
	if err != nil {
		return storage.Job{}, classify("get", "job", id, err)
	}
	return j, nil
}

func (s *Store) SaveJob(ctx context.Context, j storage.Job) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET title = ?, description = ?, priority = ?, status = ?, agent_id = ?, updated_at = ?
		WHERE id = ?
	`, j.Title, j.Description, j.Priority, string(j.Status), j.AgentID, j.UpdatedAt, j.ID)
	if err != nil {
		return classify("save", "job", j.ID, err)
	}
	return checkAffected(res, "save", "job", j.ID)
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return classify("delete", "job", id, err)
	}
	return checkAffected(res, "delete", "job", id)
}

func (s *Store) FetchPendingJobs(ctx context.Context, sessionID string) ([]storage.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, parent_job_id, title, description, priority, status, agent_id, created_at, updated_at
		FROM jobs WHERE session_id = ? AND status = 'pending'
		ORDER BY priority DESC, created_at ASC
	`, sessionID)
	if err != nil {
		return nil, classify("fetchPending", "job", sessionID, err)
	}
	defer rows.Close()

	var out []storage.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, classify("fetchPending", "job", sessionID, err)
		}
		out = append(out, j)
	}
	return out, classify("fetchPending", "job", sessionID, rows.Err())
}

// DequeueHighestPriority atomically claims the next pending job:
// the inProgress flip happens inside the same transaction as the select so
// two concurrent dequeues never claim the same job.
func (s *Store) DequeueHighestPriority(ctx context.Context, sessionID string) (*storage.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("dequeue", "job", sessionID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx, `
		SELECT id, session_id, parent_job_id, title, description, priority, status, agent_id, created_at, updated_at
		FROM jobs WHERE session_id = ? AND status = 'pending'
		ORDER BY priority DESC, created_at ASC LIMIT 1
	`, sessionID)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("dequeue", "job", sessionID, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET status = 'inProgress', updated_at = ? WHERE id = ?`, j.UpdatedAt, j.ID); err != nil {
		return nil, classify("dequeue", "job", j.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("dequeue", "job", j.ID, err)
	}
	j.Status = storage.JobInProgress
	return &j, nil
}

func scanJob(row interface{ Scan(...any) error }) (storage.Job, error) {
	var j storage.Job
	var status string
	if err := row.Scan(&j.ID, &j.SessionID, &j.ParentJobID, &j.Title, &j.Description, &j.Priority, &status, &j.AgentID, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return storage.Job{}, err
	}
	j.Status = storage.JobStatus(status)
	return j, nil
}

// --- Workspaces --------------------------------------------------------------

func (s *Store) CreateWorkspace(ctx context.Context, w storage.WorkspaceReference) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	toolDefs, err := json.Marshal(w.ToolDefinitions)
	if err != nil {
		return classify("create", "workspace", w.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspace_references (id, session_id, uri, host_type, owner_id, tool_definitions, root_path,
			trust_level, last_modified_by, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.SessionID, w.URI, string(w.HostType), w.OwnerID, string(toolDefs), w.RootPath,
		w.TrustLevel, w.LastModifiedBy, string(w.Status), w.CreatedAt, w.UpdatedAt)
	return classify("create", "workspace", w.ID, err)
}

func (s *Store) GetWorkspace(ctx context.Context, id string) (storage.WorkspaceReference, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, uri, host_type, owner_id, tool_definitions, root_path, trust_level,
			last_modified_by, status, created_at, updated_at
		FROM workspace_references WHERE id = ?
	`, id)
	w, err := scanWorkspace(row)
	if err != nil {
		return storage.WorkspaceReference{}, classify("get", "workspace", id, err)
	}
	return w, nil
}

func (s *Store) SaveWorkspace(ctx context.Context, w storage.WorkspaceReference) error {
	toolDefs, err := json.Marshal(w.ToolDefinitions)
	if err != nil {
		return classify("save", "workspace", w.ID, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE workspace_references SET tool_definitions = ?, trust_level = ?, last_modified_by = ?,
			status = ?, updated_at = ? WHERE id = ?
	`, string(toolDefs), w.TrustLevel, w.LastModifiedBy, string(w.Status), w.UpdatedAt, w.ID)
	if err != nil {
		return classify("save", "workspace", w.ID, err)
	}
	return checkAffected(res, "save", "workspace", w.ID)
}

func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspace_references WHERE id = ?`, id)
	if err != nil {
		return classify("delete", "workspace", id, err)
	}
	return checkAffected(res, "delete", "workspace", id)
}

func (s *Store) ListWorkspaces(ctx context.Context, sessionID string) ([]storage.WorkspaceReference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, uri, host_type, owner_id, tool_definitions, root_path, trust_level,
			last_modified_by, status, created_at, updated_at
		FROM workspace_references WHERE session_id = ? ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, classify("list", "workspace", sessionID, err)
	}
	defer rows.Close()

	var out []storage.WorkspaceReference
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, classify("list", "workspace", sessionID, err)
		}
		out = append(out, w)
	}
	return out, classify("list", "workspace", sessionID, rows.Err())
}

func scanWorkspace(row interface{ Scan(...any) error }) (storage.WorkspaceReference, error) {
	var w storage.WorkspaceReference
	var hostType, status, toolDefs string
	if err := row.Scan(&w.ID, &w.SessionID, &w.URI, &hostType, &w.OwnerID, &toolDefs, &w.RootPath,
		&w.TrustLevel, &w.LastModifiedBy, &status, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return storage.WorkspaceReference{}, err
	}
	w.HostType = storage.HostType(hostType)
	w.Status = storage.WorkspaceStatus(status)
	_ = json.Unmarshal([]byte(toolDefs), &w.ToolDefinitions)
	return w, nil
}

// AcquireLock enforces a single lock per workspace via the workspace_locks
// primary key: a second acquire for the same workspace id fails Conflict
// until released.
func (s *Store) AcquireLock(ctx context.Context, workspaceID, heldBy string, acquiredAt int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workspace_locks (workspace_id, held_by, acquired_at) VALUES (?, ?, ?)
	`, workspaceID, heldBy, acquiredAt)
	return classify("acquireLock", "workspace_lock", workspaceID, err)
}

func (s *Store) ReleaseLock(ctx context.Context, workspaceID, heldBy string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM workspace_locks WHERE workspace_id = ? AND held_by = ?
	`, workspaceID, heldBy)
	if err != nil {
		return classify("releaseLock", "workspace_lock", workspaceID, err)
	}
	return checkAffected(res, "releaseLock", "workspace_lock", workspaceID)
}

func (s *Store) GetLock(ctx context.Context, workspaceID string) (*storage.WorkspaceLock, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT workspace_id, held_by, acquired_at FROM workspace_locks WHERE workspace_id = ?
	`, workspaceID)
	var lock storage.WorkspaceLock
	err := row.Scan(&lock.WorkspaceID, &lock.HeldBy, &lock.AcquiredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("getLock", "workspace_lock", workspaceID, err)
	}
	return &lock, nil
}

// --- Table directory ---------------------------------------------------------

func (s *Store) ListTables(ctx context.Context) ([]storage.TableDirectoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, created_at, deleted_at, description FROM tables ORDER BY name`)
	if err != nil {
		return nil, classify("list", "table", "", err)
	}
	defer rows.Close()

	var out []storage.TableDirectoryEntry
	for rows.Next() {
		var e storage.TableDirectoryEntry
		var deletedAt sql.NullInt64
		if err := rows.Scan(&e.Name, &e.CreatedAt, &deletedAt, &e.Description); err != nil {
			return nil, classify("list", "table", "", err)
		}
		if deletedAt.Valid {
			e.DeletedAt = &deletedAt.Int64
		}
		out = append(out, e)
	}
	return out, classify("list", "table", "", rows.Err())
}

func (s *Store) DescribeTable(ctx context.Context, name, description string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tables SET description = ? WHERE name = ?`, description, name)
	if err != nil {
		return classify("describe", "table", name, err)
	}
	return checkAffected(res, "describe", "table", name)
}

// --- helpers -----------------------------------------------------------------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkAffected(res sql.Result, op, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, entity, id, err)
	}
	if n == 0 {
		return &storage.PersistenceError{Kind: storage.NotFound, Op: op, Entity: entity, ID: id}
	}
	return nil
}
