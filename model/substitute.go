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

import (
	"sort"
	"strings"

	"rengbis.dev/go/errors"
)

// String renders k in the dotted form used as a table key: a bare name for
// a same-file reference, "namespace" for a reference to an imported file's
// root, or "namespace.name" otherwise.
func (k RefKey) String() string {
	switch {
	case k.Namespace == "":
		return k.Name
	case k.Name == "":
		return k.Namespace
	default:
		return k.Namespace + "." + k.Name
	}
}

// Substitute returns a new schema in which every NamedRef and ScopedRef
// whose dotted key (RefKey.String) appears in table is replaced by
// table[key]; unknown references are left untouched, per spec §4.1.
// Substitute never recurses into a value it has just spliced in (that is
// the Loader's fixpoint round to repeat, spec §4.3 step 4), which makes a
// single call trivially idempotent. It fails with CycleDetected if table
// itself contains a closed loop of definitions that would keep
// re-triggering expansion forever across repeated Loader rounds.
func Substitute(s Schema, table map[string]Schema) (Schema, error) {
	if err := checkTableCycles(table); err != nil {
		return nil, err
	}
	return substituteOnce(s, table), nil
}

// SubstituteOnce behaves like Substitute but skips the upfront cycle check
// over table. Callers that already know table may carry a closed,
// mutually-recursive group left in place on purpose (spec §9's recursive-
// schema strategy, e.g. the Loader's root substitution after
// resolveFixpoint has deliberately left such a group unexpanded) use this
// instead of Substitute: substituteOnce never recurses into a value it has
// just spliced in, so a single pass terminates finitely regardless of
// cycles in table.
func SubstituteOnce(s Schema, table map[string]Schema) Schema {
	return substituteOnce(s, table)
}

func substituteOnce(s Schema, table map[string]Schema) Schema {
	switch v := s.(type) {
	case NamedRef:
		if repl, ok := table[(RefKey{Name: v.Name}).String()]; ok {
			return repl
		}
		return v
	case ScopedRef:
		if repl, ok := table[(RefKey{Namespace: v.Namespace, Name: v.Name}).String()]; ok {
			return repl
		}
		return v
	case List:
		v.Item = substituteOnce(v.Item, table)
		return v
	case Tuple:
		items := make([]Schema, len(v.Items))
		for i, it := range v.Items {
			items[i] = substituteOnce(it, table)
		}
		v.Items = items
		return v
	case Alternative:
		opts := make([]Schema, len(v.Options))
		for i, it := range v.Options {
			opts[i] = substituteOnce(it, table)
		}
		v.Options = opts
		return v
	case Object:
		fields := make(map[string]Field, len(v.Fields))
		for name, f := range v.Fields {
			f.Type = substituteOnce(f.Type, table)
			fields[name] = f
		}
		v.Fields = fields
		return v
	case Map:
		v.ValueSchema = substituteOnce(v.ValueSchema, table)
		return v
	case Documented:
		v.Inner = substituteOnce(v.Inner, table)
		return v
	case Deprecated:
		v.Inner = substituteOnce(v.Inner, table)
		return v
	default:
		return s
	}
}

const (
	colorWhite = iota
	colorGray
	colorBlack
)

func checkTableCycles(table map[string]Schema) error {
	color := make(map[string]int, len(table))
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic error message across runs

	var stack []string
	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case colorBlack:
			return nil
		case colorGray:
			return errors.Newf(errors.CycleDetected, noPos(), "cycle detected: %s", strings.Join(append(append([]string{}, stack...), name), " -> "))
		}
		color[name] = colorGray
		stack = append(stack, name)
		if sch, ok := table[name]; ok {
			deps := make([]string, 0, len(Dependencies(sch)))
			for dep := range Dependencies(sch) {
				deps = append(deps, dep.String())
			}
			sort.Strings(deps)
			for _, dep := range deps {
				if _, present := table[dep]; present {
					if err := visit(dep); err != nil {
						return err
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = colorBlack
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
