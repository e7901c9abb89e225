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
	"os"

	"github.com/spf13/cobra"

	"rengbis.dev/go/cmd/rengbis/internal/jsonvalue"
	"rengbis.dev/go/loader"
	"rengbis.dev/go/validator"
)

func newValidateCmd() *cobra.Command {
	var schemaName string
	cmd := &cobra.Command{
		Use:   "validate <schema.rengbis> <value.json>",
		Short: "validate a JSON document against a schema's root (or a named definition)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := loader.NewOS().Load(args[0])
			if err != nil {
				return err
			}

			schema := bundle.Root
			if schemaName != "" {
				var ok bool
				schema, ok = bundle.Definitions[schemaName]
				if !ok {
					return fmt.Errorf("rengbis: no definition named %q in %s", schemaName, args[0])
				}
			}
			if schema == nil {
				return fmt.Errorf("rengbis: %s declares no root schema; pass --definition", args[0])
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			value, err := jsonvalue.Decode(data)
			if err != nil {
				return err
			}

			v := validator.New(bundle.Definitions)
			result := v.Validate(schema, value)

			for _, w := range result.Warnings {
				slog.Warn(w)
			}
			for _, e := range result.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			if !result.IsValid() {
				return fmt.Errorf("rengbis: %s does not validate against %s", args[1], args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaName, "definition", "", "validate against this named definition instead of the file's root")
	return cmd
}
