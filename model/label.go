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

package model

// Label is the closed sum { Mandatory(name), Optional(name) } from spec §3.
// Equality between two Labels compares only Name: a field is Optional iff
// its wrapper is Optional, never by name alone.
type Label struct {
	Name     string
	Optional bool
}

// Mandatory constructs a required Label.
func Mandatory(name string) Label { return Label{Name: name} }

// OptionalLabel constructs an optional Label.
func OptionalLabel(name string) Label { return Label{Name: name, Optional: true} }
