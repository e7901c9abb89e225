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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rengbis.dev/go/syntax"
)

func newFmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <file.rengbis>",
		Short: "parse a schema file and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := syntax.Parse(args[0], src)
			if err != nil {
				return err
			}

			var out string
			for _, def := range f.Definitions {
				if def.IsImport {
					out += fmt.Sprintf("%s => import \"%s\"\n", def.Name, def.ImportPath)
					continue
				}
				out += syntax.PrintDefinition(def.Name, def.Doc, def.Deprecated, def.Schema) + "\n"
			}
			if f.Root != nil {
				out += syntax.PrintRoot(f.Root.Doc, f.Root.Schema)
			}

			if write {
				return os.WriteFile(args[0], []byte(out), 0o644)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result to the source file instead of stdout")
	return cmd
}
