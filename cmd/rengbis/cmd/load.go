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
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"rengbis.dev/go/loader"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.rengbis>",
		Short: "resolve a schema file and its imports, printing the bundle's definition names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Debug("loading", "path", args[0])
			bundle, err := loader.NewOS().Load(args[0])
			if err != nil {
				return err
			}

			names := make([]string, 0, len(bundle.Definitions))
			for name := range bundle.Definitions {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			if bundle.Root != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "(root)")
			}
			return nil
		},
	}
}
