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

// Package httpapi is the server's external HTTP surface (C6's chat turns,
// C1/C2's session and memory CRUD, C4's tool catalogue, C3's workspace file
// access, and C9's RPC/echo WebSocket upgrades), built the way
// go-opencode's internal/server package builds its router: chi for routing
// and middleware, a uniform JSON envelope for errors, Server-Sent Events
// for anything that streams.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/archiver"
	"github.com/teradata-labs/loom-assistant/internal/core"
	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/internal/session"
	"github.com/teradata-labs/loom-assistant/pkg/chatengine"
	"github.com/teradata-labs/loom-assistant/pkg/embedding"
	"github.com/teradata-labs/loom-assistant/pkg/prompt"
	"github.com/teradata-labs/loom-assistant/pkg/rpcbridge"
	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// Config tunes the HTTP server's transport and auth behavior.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	EnableCORS   bool
	Auth         AuthConfig
}

// DefaultConfig returns sane defaults for Config.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // chat turns stream indefinitely; no fixed write deadline
		EnableCORS:   true,
		Auth:         AuthConfig{Mode: AuthModeAPIKey},
	}
}

// Server wires the Session Manager, Archiver, Chat Engine, and RPC Bridge
// behind one chi router.
type Server struct {
	cfg      Config
	services *core.Services
	sessions *session.Manager
	archiver *archiver.Archiver
	rpc      *rpcbridge.Bridge

	chatProvider types.LLMProvider
	assembler    *prompt.Assembler
	recaller     *embedding.Recaller
	engineCfg    chatengine.Config

	router  *chi.Mux
	httpSrv *http.Server
	metrics *metrics
	started time.Time
}

// Collaborators bundles the Chat Engine's per-turn-constant pieces: the
// active model provider, the prompt assembler, and the memory recaller
// (nil disables recall). Every turn builds a fresh chatengine.Engine from
// these plus the session's own Executor/ToolManager, since those two are
// the only collaborators that vary per session.
type Collaborators struct {
	Provider  types.LLMProvider
	Assembler *prompt.Assembler
	Recaller  *embedding.Recaller
	EngineCfg chatengine.Config
}

// NewServer builds a Server and its route tree. rpc may be nil if the
// deployment doesn't expose the RPC Bridge's WebSocket endpoints.
func NewServer(cfg Config, services *core.Services, sessions *session.Manager, arch *archiver.Archiver, rpc *rpcbridge.Bridge, collab Collaborators) *Server {
	s := &Server{
		cfg:          cfg,
		services:     services,
		sessions:     sessions,
		archiver:     arch,
		rpc:          rpc,
		chatProvider: collab.Provider,
		assembler:    collab.Assembler,
		recaller:     collab.Recaller,
		engineCfg:    collab.EngineCfg,
		router:       chi.NewRouter(),
		metrics:      newMetrics(prometheus.DefaultRegisterer),
		started:      time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(zapRequestLogger)
	s.router.Use(middleware.Recoverer)

	if s.cfg.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// zapRequestLogger logs each request at Info once it completes, mirroring
// chi's own middleware.Logger but through the project's zap logger instead
// of the standard library logger chi defaults to.
func zapRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/status", s.handleStatus)
	r.Get("/metrics", s.handleMetrics)

	if s.rpc != nil {
		r.Get("/ws/rpc", s.handleRPCUpgrade)
		r.Get("/ws/echo", rpcbridge.EchoHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(s.cfg.Auth))

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/archive", s.handleArchiveSession)
				r.Post("/chat", s.handleChat)
				r.Get("/messages", s.handleListMessages)
			})
		})

		r.Route("/memories", func(r chi.Router) {
			r.Get("/", s.handleListMemories)
			r.Post("/", s.handleCreateMemory)
			r.Post("/search", s.handleSearchMemories)
			r.Delete("/{memoryID}", s.handleDeleteMemory)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", s.handleListTools)
			r.Post("/execute", s.handleExecuteTool)
		})

		r.Route("/workspaces/{sessionID}/files", func(r chi.Router) {
			r.Get("/", s.handleListWorkspaceFiles)
			r.Get("/*", s.handleReadWorkspaceFile)
			r.Put("/*", s.handleWriteWorkspaceFile)
			r.Delete("/*", s.handleDeleteWorkspaceFile)
		})
	})
}

// Router exposes the underlying chi router, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start runs the HTTP server until the process is asked to stop, blocking
// until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	log.Info("http server listening", zap.String("addr", s.cfg.Addr))
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
