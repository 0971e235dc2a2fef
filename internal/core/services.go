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

// Package core holds the single dependency-injection surface the rest of
// the server is built from: one Services value, constructed once at
// startup, threaded into every component's constructor instead of each
// component reaching for its own globals or building its own collaborators.
package core

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/pkg/embedding"
	"github.com/teradata-labs/loom-assistant/pkg/rpcbridge"
	"github.com/teradata-labs/loom-assistant/pkg/storage"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

// Services bundles every cross-cutting collaborator the server's components
// are built from.
type Services struct {
	Logger           *zap.Logger
	Store            storage.Store
	Embedder         embedding.Provider
	WorkspaceFactory *workspace.Factory
	Connections      *rpcbridge.Bridge

	// Clock and IDGen are indirections over time.Now/uuid.NewString so
	// components can be driven deterministically in tests.
	Clock func() time.Time
	IDGen func() string
}

// New builds a Services value, filling Clock/IDGen with their real
// implementations when the caller leaves them nil.
func New(logger *zap.Logger, store storage.Store, embedder embedding.Provider, wsFactory *workspace.Factory, conns *rpcbridge.Bridge) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		Logger:           logger,
		Store:            store,
		Embedder:         embedder,
		WorkspaceFactory: wsFactory,
		Connections:      conns,
		Clock:            time.Now,
		IDGen:            uuid.NewString,
	}
}
