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

// Command loom-assistant is a headless, multi-session AI assistant server:
// it serves the HTTP API out of cmd_serve.go, and exposes cmd_migrate.go /
// cmd_vacuum.go as maintenance subcommands over the same SQLite store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/loom-assistant/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "loom-assistant",
	Short:   "Headless multi-session AI assistant server",
	Long:    `loom-assistant mediates chat sessions between clients and an LLM provider, with persistent memory, workspace file access, and tool calling.`,
	Version: version.Get(),
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./loom-assistant.yaml or /etc/loom-assistant/loom-assistant.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(vacuumCmd)
}
