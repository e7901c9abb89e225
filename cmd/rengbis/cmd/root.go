// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd is the rengbis CLI's command tree, the ambient front end
// around the schema core: it owns flags, diagnostic logging, and file
// I/O, none of which are part of the core's specification (spec §1).
// Grounded on cmd/cue/cmd's own tree (one newXCmd constructor per
// subcommand, cobra.Command.RunE returning the error rather than calling
// os.Exit directly) but considerably smaller, since the core exposes
// only load/validate/format operations rather than CUE's full
// package-evaluation surface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// New builds the rengbis root command.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:           "rengbis",
		Short:         "rengbis is a schema definition and validation tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if *verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	root.AddCommand(newFmtCmd())
	root.AddCommand(newLoadCmd())
	root.AddCommand(newValidateCmd())
	return root
}
