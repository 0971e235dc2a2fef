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
package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/archiver"
	"github.com/teradata-labs/loom-assistant/internal/config"
	"github.com/teradata-labs/loom-assistant/internal/core"
	"github.com/teradata-labs/loom-assistant/internal/httpapi"
	"github.com/teradata-labs/loom-assistant/internal/log"
	"github.com/teradata-labs/loom-assistant/internal/session"
	"github.com/teradata-labs/loom-assistant/pkg/chatengine"
	"github.com/teradata-labs/loom-assistant/pkg/embedding"
	"github.com/teradata-labs/loom-assistant/pkg/embedding/bedrock"
	"github.com/teradata-labs/loom-assistant/pkg/prompt"
	"github.com/teradata-labs/loom-assistant/pkg/provider"
	"github.com/teradata-labs/loom-assistant/pkg/rpcbridge"
	"github.com/teradata-labs/loom-assistant/pkg/storage/sqlite"
	"github.com/teradata-labs/loom-assistant/pkg/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := sqlite.Open(ctx, cfg.DB.Path, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	embedder, err := bedrock.New(ctx, bedrock.Config{Region: cfg.LLM.BedrockRegion})
	if err != nil {
		return err
	}

	rpc := rpcbridge.NewBridge(rpcbridge.DefaultRequestTimeout, rpcbridge.DefaultRateLimit, rpcbridge.DefaultRateBurst)
	wsFactory := workspace.NewFactory(rpc)

	services := core.New(logger, store, embedder, wsFactory, rpc)

	settings := provider.Settings{
		ActiveProvider:   cfg.LLM.ActiveProvider,
		ProviderEndpoint: cfg.LLM.ProviderEndpoint,
		APIKey:           cfg.LLM.APIKey,
		ModelName:        cfg.LLM.ModelName,
		FastModel:        cfg.LLM.FastModel,
		UtilityModel:     cfg.LLM.UtilityModel,
		BedrockRegion:    cfg.LLM.BedrockRegion,
	}
	active, fast, _, err := provider.NewFromSettings(ctx, settings)
	if err != nil {
		return err
	}

	estimator, err := prompt.NewTiktokenEstimator(cfg.LLM.ModelName)
	if err != nil {
		return err
	}
	assembler := prompt.NewAssembler(estimator)
	recaller := embedding.NewRecaller(embedder, store)

	engineCfg := chatengine.DefaultConfig()
	engineCfg.RecallTopK = cfg.LLM.MemoryContextLimit
	engineCfg.Format = chatengine.ToolFormat(cfg.LLM.ToolFormat)

	idleTTL := time.Duration(cfg.Server.SessionIdleTTLSeconds) * time.Second
	sessions := session.NewManager(store, cfg.Server.WorkspaceRoot, wsFactory, nil, idleTTL)
	if err := sessions.StartReaper(); err != nil {
		return err
	}

	// The fast tier, not the utility tier NewFromSettings also returns, backs
	// archival title/tag generation: it's the cheaper/quicker model and
	// archiving runs off the hot path, so latency from the primary model
	// isn't worth spending there.
	arch := archiver.New(store,
		archiver.WithEmbedder(embedder),
		archiver.WithUtilityModel(fast),
		archiver.WithVacuumOnArchive(archiver.MemoryVacuumThreshold),
	)

	httpCfg := httpapi.DefaultConfig()
	httpCfg.Addr = cfg.Server.HTTPAddr
	httpCfg.ReadTimeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	httpCfg.EnableCORS = cfg.Server.EnableCORS
	httpCfg.Auth = authConfigFrom(cfg.Auth)

	collab := httpapi.Collaborators{
		Provider:  active,
		Assembler: assembler,
		Recaller:  recaller,
		EngineCfg: engineCfg,
	}
	srv := httpapi.NewServer(httpCfg, services, sessions, arch, rpc, collab)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
		cancel()
	}()

	return srv.Start()
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	level := zap.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			stdlog.Printf("logging: unrecognized level %q, defaulting to info", cfg.Level)
		} else {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
	}
	return zapCfg.Build(zap.AddStacktrace(zap.ErrorLevel))
}

func authConfigFrom(cfg config.AuthConfig) httpapi.AuthConfig {
	mode := httpapi.AuthModeAPIKey
	if cfg.Mode == "jwt" {
		mode = httpapi.AuthModeJWT
	}
	return httpapi.AuthConfig{
		Mode:      mode,
		APIKey:    cfg.APIKey,
		JWTSecret: cfg.JWTSecret,
		DevMode:   cfg.DevMode,
	}
}
