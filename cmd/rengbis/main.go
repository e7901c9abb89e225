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

// Command rengbis is the CLI front end around the schema core: fmt,
// load, and validate. It is explicitly out of the core's specification
// (spec §1) and exists only to give the core components an executable
// entry point, the way cmd/cue is a thin driver over cuelang.org/go/cue.
package main

import (
	"fmt"
	"os"

	"rengbis.dev/go/cmd/rengbis/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
