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

package storage

import "context"

// Memory is a durable, embedded piece of conversational knowledge.
type Memory struct {
	ID        string
	Title     string
	Content   string
	Tags      []string
	Embedding []float32
	CreatedAt int64
	UpdatedAt int64
}

// MemoryPolicy governs how SaveMemory treats near-duplicate content.
type MemoryPolicy struct {
	// PreventSimilar, when true, rejects (returns the existing id of) a save
	// whose embedding has cosine similarity >= Threshold against any
	// existing memory, instead of inserting a new row.
	PreventSimilar bool
	Threshold      float64
}

// AlwaysSave is the trivial policy: every SaveMemory call inserts a new row.
var AlwaysSave = MemoryPolicy{}

// PreventSimilar builds a policy that collapses near-duplicate memories at
// save time.
func PreventSimilar(threshold float64) MemoryPolicy {
	return MemoryPolicy{PreventSimilar: true, Threshold: threshold}
}

// ScoredMemory pairs a recalled Memory with its similarity to the query.
type ScoredMemory struct {
	Memory     Memory
	Similarity float64
}

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "inProgress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Job is a unit of agent work tracked against a session.
type Job struct {
	ID           string
	SessionID    string
	ParentJobID  string
	Title        string
	Description  string
	Priority     int
	Status       JobStatus
	AgentID      string
	CreatedAt    int64
	UpdatedAt    int64
}

// HostType classifies who owns the filesystem/tooling behind a workspace
// reference.
type HostType string

const (
	HostServer        HostType = "server"
	HostServerSession HostType = "serverSession"
	HostClient        HostType = "client"
)

// WorkspaceStatus reflects the last-known reachability of a workspace.
type WorkspaceStatus string

const (
	WorkspaceActive  WorkspaceStatus = "active"
	WorkspaceMissing WorkspaceStatus = "missing"
	WorkspaceUnknown WorkspaceStatus = "unknown"
)

// WorkspaceReference is the durable row describing a workspace.
type WorkspaceReference struct {
	ID              string
	SessionID       string
	URI             string
	HostType        HostType
	OwnerID         string
	ToolDefinitions []string
	RootPath        string
	TrustLevel      string
	LastModifiedBy  string
	Status          WorkspaceStatus
	CreatedAt       int64
	UpdatedAt       int64
}

// WorkspaceLock records exclusive ownership of a workspace during a
// generating turn.
type WorkspaceLock struct {
	WorkspaceID string
	HeldBy      string
	AcquiredAt  int64
}

// TableDirectoryEntry is one row of the self-describing table directory.
type TableDirectoryEntry struct {
	Name        string
	CreatedAt   int64
	DeletedAt   *int64
	Description string
}

// SessionStore is the Sessions slice of the persistence contract.
type SessionStore interface {
	CreateSession(ctx context.Context, s SessionRow) error
	GetSession(ctx context.Context, id string) (SessionRow, error)
	ListSessions(ctx context.Context, includeArchived bool) ([]SessionRow, error)
	SaveSession(ctx context.Context, s SessionRow) error
	ArchiveSession(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
}

// MessageStore is the Messages slice of the persistence contract.
type MessageStore interface {
	AppendMessage(ctx context.Context, m MessageRow) error
	FetchMessages(ctx context.Context, sessionID string) ([]MessageRow, error)
}

// MemoryStore is the Memories slice of the persistence contract.
type MemoryStore interface {
	SaveMemory(ctx context.Context, m Memory, policy MemoryPolicy) (string, error)
	FetchMemories(ctx context.Context) ([]Memory, error)
	SearchMemoriesByText(ctx context.Context, query string) ([]Memory, error)
	SearchMemoriesByEmbedding(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]ScoredMemory, error)
	DeleteMemory(ctx context.Context, id string) error
	VacuumMemories(ctx context.Context, threshold float64) (int, error)
}

// JobStore is the Jobs slice of the persistence contract.
type JobStore interface {
	CreateJob(ctx context.Context, j Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	SaveJob(ctx context.Context, j Job) error
	DeleteJob(ctx context.Context, id string) error
	FetchPendingJobs(ctx context.Context, sessionID string) ([]Job, error)
	DequeueHighestPriority(ctx context.Context, sessionID string) (*Job, error)
}

// WorkspaceStore is the Workspaces slice of the persistence contract.
type WorkspaceStore interface {
	CreateWorkspace(ctx context.Context, w WorkspaceReference) error
	GetWorkspace(ctx context.Context, id string) (WorkspaceReference, error)
	SaveWorkspace(ctx context.Context, w WorkspaceReference) error
	DeleteWorkspace(ctx context.Context, id string) error
	ListWorkspaces(ctx context.Context, sessionID string) ([]WorkspaceReference, error)

	AcquireLock(ctx context.Context, workspaceID, heldBy string, acquiredAt int64) error
	ReleaseLock(ctx context.Context, workspaceID, heldBy string) error
	GetLock(ctx context.Context, workspaceID string) (*WorkspaceLock, error)
}

// TableDirectory is the self-describing schema catalogue.
type TableDirectory interface {
	ListTables(ctx context.Context) ([]TableDirectoryEntry, error)
	DescribeTable(ctx context.Context, name, description string) error
}

// Store is the complete Persistence Store contract (C1): every mutating or
// reading operation the rest of the system performs against durable state.
type Store interface {
	SessionStore
	MessageStore
	MemoryStore
	JobStore
	WorkspaceStore
	TableDirectory

	Close() error
}

// SessionRow and MessageRow are the wire shapes Store implementations read
// and write; they are kept distinct from internal/session.Session and
// pkg/types.Message (the live, mutation-friendly in-memory types) so that
// the storage layer never depends on the Session Manager's package:
// references across components are by id only.
type SessionRow struct {
	ID                   string
	Title                string
	IsArchived           bool
	PrimaryWorkspaceID   string
	AttachedWorkspaceIDs []string
	PersonaID            string
	CompletionTokens     int
	PromptTokens         int
	Cost                 float64
	CreatedAt            int64
	UpdatedAt            int64
}

type MessageRow struct {
	ID        string
	SessionID string
	ParentID  string
	Role      string
	Content   string
	Think     string
	ToolCalls []ToolCallRow
	MemoryID  string
	CreatedAt int64
}

// ToolCallRow is the persisted shape of a ToolCall.
type ToolCallRow struct {
	ID        string
	Name      string
	Arguments map[string]any
	CallID    string
}
