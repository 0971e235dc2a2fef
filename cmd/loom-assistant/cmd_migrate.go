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
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teradata-labs/loom-assistant/internal/config"
	_ "github.com/teradata-labs/loom-assistant/internal/sqlitedriver"
	"github.com/teradata-labs/loom-assistant/pkg/storage/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect and apply database schema migrations",
}

var migrateUpBackupFirst bool
var migrateDownBackupFirst bool

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(migrateUpBackupFirst, func(ctx context.Context, m *sqlite.Migrator) error {
			return m.MigrateUp(ctx)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back the given number of migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("migrate down: invalid step count %q", args[0])
			}
			steps = n
		}
		return withMigrator(migrateDownBackupFirst, func(ctx context.Context, m *sqlite.Migrator) error {
			return m.MigrateDown(ctx, steps)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(false, func(ctx context.Context, m *sqlite.Migrator) error {
			version, err := m.CurrentVersion(ctx)
			if err != nil {
				return err
			}
			pending, err := m.PendingMigrations(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("current version: %d\n", version)
			if len(pending) == 0 {
				fmt.Println("no pending migrations")
				return nil
			}
			fmt.Printf("%d pending migration(s):\n", len(pending))
			for _, mig := range pending {
				fmt.Printf("  %d: %s\n", mig.Version, mig.Description)
			}
			return nil
		})
	},
}

func init() {
	migrateUpCmd.Flags().BoolVar(&migrateUpBackupFirst, "backup-first", false, "VACUUM INTO a verified backup copy before applying migrations")
	migrateDownCmd.Flags().BoolVar(&migrateDownBackupFirst, "backup-first", false, "VACUUM INTO a verified backup copy before rolling back migrations")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

// withMigrator opens the configured database file directly (bypassing
// sqlite.Open's own auto-migration) so these subcommands can apply, roll
// back, or report on migrations explicitly rather than as a side effect of
// server startup. When backupFirst is set, a verified backup copy is taken
// before the migrator touches the schema.
func withMigrator(backupFirst bool, fn func(ctx context.Context, m *sqlite.Migrator) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if backupFirst {
		backupPath, err := sqlite.Backup(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("migrate: backup-first: %w", err)
		}
		fmt.Printf("backed up %s to %s\n", cfg.DB.Path, backupPath)
	}

	db, err := sql.Open("sqlite3", cfg.DB.Path+"?_fk=1&_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("migrate: open %s: %w", cfg.DB.Path, err)
	}
	defer func() { _ = db.Close() }()

	migrator, err := sqlite.NewMigrator(db, zap.NewNop())
	if err != nil {
		return err
	}
	return fn(context.Background(), migrator)
}
