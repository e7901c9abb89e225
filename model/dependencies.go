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

// RefKey identifies one free reference: a bare name for a same-file
// NamedRef, or a (namespace, name) pair for a cross-file ScopedRef. An
// empty Name with a non-empty Namespace denotes a reference to that
// namespace's root schema.
type RefKey struct {
	Namespace string
	Name      string
}

// Dependencies returns the set of free references in s: every NamedRef and
// ScopedRef reachable without crossing another definition boundary.
func Dependencies(s Schema) map[RefKey]struct{} {
	deps := map[RefKey]struct{}{}
	collectDependencies(s, deps)
	return deps
}

func collectDependencies(s Schema, out map[RefKey]struct{}) {
	switch v := s.(type) {
	case NamedRef:
		out[RefKey{Name: v.Name}] = struct{}{}
	case ScopedRef:
		out[RefKey{Namespace: v.Namespace, Name: v.Name}] = struct{}{}
	case List:
		collectDependencies(v.Item, out)
	case Tuple:
		for _, it := range v.Items {
			collectDependencies(it, out)
		}
	case Alternative:
		for _, it := range v.Options {
			collectDependencies(it, out)
		}
	case Object:
		for _, f := range v.Fields {
			collectDependencies(f.Type, out)
		}
	case Map:
		collectDependencies(v.ValueSchema, out)
	case Documented:
		collectDependencies(v.Inner, out)
	case Deprecated:
		collectDependencies(v.Inner, out)
	}
	// Base variants (Any, Fail, Boolean, Text, GivenText, Numeric, Binary,
	// Time, EnumValues) have no children and contribute no dependencies.
}
