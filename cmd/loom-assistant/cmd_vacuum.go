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
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/archiver"
	"github.com/teradata-labs/loom-assistant/internal/config"
	"github.com/teradata-labs/loom-assistant/pkg/storage/sqlite"
)

var vacuumThreshold float64
var vacuumBackupFirst bool

var vacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Collapse near-duplicate memories out of the active recall set",
	RunE:  runVacuum,
}

func init() {
	vacuumCmd.Flags().Float64Var(&vacuumThreshold, "threshold", archiver.MemoryVacuumThreshold,
		"cosine similarity at or above which a newer memory is dropped as a near-duplicate of one already kept")
	vacuumCmd.Flags().BoolVar(&vacuumBackupFirst, "backup-first", false, "VACUUM INTO a verified backup copy before vacuuming")
}

func runVacuum(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if vacuumBackupFirst {
		backupPath, err := sqlite.Backup(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("vacuum: backup-first: %w", err)
		}
		fmt.Printf("backed up %s to %s\n", cfg.DB.Path, backupPath)
	}

	store, err := sqlite.Open(context.Background(), cfg.DB.Path, zap.NewNop())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := store.VacuumMemories(context.Background(), vacuumThreshold)
	if err != nil {
		return err
	}
	fmt.Printf("vacuumed %d near-duplicate memories at cosine threshold %.2f\n", n, vacuumThreshold)
	return nil
}
