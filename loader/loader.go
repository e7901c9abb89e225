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

// Package loader resolves a root rengbis file and its transitive imports
// into a single Bundle of fully-substituted definitions. Each file is
// resolved independently, bottom-up: an imported file's own definitions
// are fully substituted against its own import aliases before its
// results are handed to the file that imported it, so a diamond import
// is parsed and resolved exactly once no matter how many files reach it,
// and references never need to carry a path-shaped prefix through
// multiple levels of nesting.
package loader

import (
	"sort"

	digest "github.com/opencontainers/go-digest"

	"rengbis.dev/go/errors"
	"rengbis.dev/go/model"
	"rengbis.dev/go/syntax"
	"rengbis.dev/go/token"
)

// Bundle is the result of a successful Load: every named definition
// reachable from the root file, with cross-file references resolved, and
// the root schema (if the root file declares one).
type Bundle struct {
	Definitions map[string]model.Schema
	Root        model.Schema
}

// Loader loads one root file and its transitive imports. A Loader value
// may be reused: its cache of resolved files is scoped to one Load call,
// matching the "resolve once per load" contract of diamond imports.
type Loader struct {
	fs FileReader
}

// New returns a Loader that reads files through fs.
func New(fs FileReader) *Loader {
	return &Loader{fs: fs}
}

// NewOS returns a Loader reading from the real file system.
func NewOS() *Loader {
	return &Loader{fs: osFiles{}}
}

// Load parses path and every file it imports, transitively, and resolves
// all references into a single Bundle.
func (l *Loader) Load(path string) (*Bundle, error) {
	r := &run{fs: l.fs, resolved: map[digest.Digest]*Bundle{}, loading: map[digest.Digest]bool{}}
	return r.loadFile(path)
}

type run struct {
	fs       FileReader
	resolved map[digest.Digest]*Bundle
	loading  map[digest.Digest]bool
}

// loadFile parses and fully resolves the file at path, caching the
// result by the file's canonicalized path digest.
func (r *run) loadFile(path string) (*Bundle, error) {
	key, abs, err := fileKey(r.fs, path)
	if err != nil {
		return nil, errors.Newf(errors.ImportNotFound, token.NoPos, "cannot resolve %q: %s", path, err)
	}
	if b, ok := r.resolved[key]; ok {
		return b, nil
	}
	if r.loading[key] {
		return nil, errors.Newf(errors.CycleDetected, token.NoPos, "import cycle reaches %q again", abs)
	}
	r.loading[key] = true
	defer delete(r.loading, key)

	src, err := r.fs.ReadFile(abs)
	if err != nil {
		return nil, errors.Newf(errors.ImportNotFound, token.NoPos, "cannot read %q: %s", abs, err)
	}
	f, err := syntax.Parse(abs, src)
	if err != nil {
		return nil, err
	}

	dir := r.fs.Dir(abs)
	raw := map[string]model.Schema{}
	external := map[string]model.Schema{}
	seenNames := map[string]bool{}

	for _, def := range f.Definitions {
		if seenNames[def.Name] {
			return nil, errors.Newf(errors.DuplicateDefinition, def.Pos, "duplicate definition %q", def.Name)
		}
		seenNames[def.Name] = true

		if !def.IsImport {
			raw[def.Name] = def.Schema
			continue
		}

		sub, err := r.loadFile(r.fs.Join(dir, def.ImportPath))
		if err != nil {
			return nil, err
		}
		for name, sch := range sub.Definitions {
			external[def.Name+"."+name] = sch
		}
		if sub.Root != nil {
			external[def.Name] = sub.Root
		}
	}

	resolved, err := resolveFixpoint(raw, external)
	if err != nil {
		return nil, err
	}

	var root model.Schema
	if f.Root != nil {
		// resolveFixpoint may have left a closed, mutually-recursive group
		// of definitions in resolved with live NamedRef/ScopedRef leaves
		// (spec §9); SubstituteOnce resolves the root against that table
		// without re-running the cycle check Substitute would otherwise
		// fail on.
		table := mergeTables(resolved, external)
		for dep := range model.Dependencies(f.Root.Schema) {
			if _, ok := table[dep.String()]; !ok {
				return nil, errors.Newf(errors.UnresolvedReference, f.Root.Pos, "unresolved reference %q in root schema", dep.String())
			}
		}
		root = model.SubstituteOnce(f.Root.Schema, table)
	}

	b := &Bundle{Definitions: mergeTables(resolved, external), Root: root}
	r.resolved[key] = b
	return b, nil
}

// resolveFixpoint iteratively substitutes raw definitions whose
// dependencies are already resolved, either because they are already in
// the growing resolved set or because they are satisfied directly by
// external (definitions imported from other, already-resolved files).
// It terminates successfully when every name is resolved, fails with
// UnresolvedReference when a definite missing reference is found, and
// otherwise leaves a closed group of mutually recursive names in place
// as schemas whose references the Validator dereferences lazily.
func resolveFixpoint(raw, external map[string]model.Schema) (map[string]model.Schema, error) {
	resolved := map[string]model.Schema{}
	pending := make(map[string]model.Schema, len(raw))
	for k, v := range raw {
		pending[k] = v
	}

	for len(pending) > 0 {
		names := sortedKeys(pending)
		progress := false
		for _, name := range names {
			sch := pending[name]
			ready := true
			for dep := range model.Dependencies(sch) {
				key := dep.String()
				if _, ok := resolved[key]; ok {
					continue
				}
				if _, ok := external[key]; ok {
					continue
				}
				if _, ok := pending[key]; ok {
					ready = false
					break
				}
				return nil, errors.Newf(errors.UnresolvedReference, token.NoPos, "unresolved reference %q in definition %q", key, name)
			}
			if !ready {
				continue
			}
			out, err := model.Substitute(sch, mergeTables(resolved, external))
			if err != nil {
				return nil, err
			}
			resolved[name] = out
			delete(pending, name)
			progress = true
		}
		if len(pending) == 0 {
			break
		}
		if progress {
			continue
		}

		if missing := missingReferences(pending, resolved, external); len(missing) > 0 {
			return nil, errors.Newf(errors.UnresolvedReference, token.NoPos, "unresolved references: %v", missing)
		}
		// Every remaining name's dependencies resolve within the pending
		// group itself: a closed, mutually recursive set. Leave them as
		// schemas whose NamedRef/ScopedRef leaves are resolved lazily by
		// the Validator against the full Bundle.
		for name, sch := range pending {
			resolved[name] = sch
		}
		break
	}

	return resolved, nil
}

// ResolveTable resolves a flat table of named definitions with no
// cross-file imports to a fixpoint, using the same algorithm loadFile
// applies to a single file's own definitions (including the recursive-
// schema strategy of spec §9: a closed, mutually recursive group is left
// in place for lazy resolution rather than rejected). It is exported so
// other front ends that produce a table of named model.Schema
// definitions without going through a rengbis source file — such as
// encoding/protobuf's parser, whose messages reference each other by
// name the same way same-file NamedRefs do — can reuse the Loader's
// resolution instead of duplicating it.
func ResolveTable(raw map[string]model.Schema) (map[string]model.Schema, error) {
	return resolveFixpoint(raw, map[string]model.Schema{})
}

func missingReferences(pending, resolved, external map[string]model.Schema) []string {
	var missing []string
	seen := map[string]bool{}
	for _, sch := range pending {
		for dep := range model.Dependencies(sch) {
			key := dep.String()
			if _, ok := resolved[key]; ok {
				continue
			}
			if _, ok := external[key]; ok {
				continue
			}
			if _, ok := pending[key]; ok {
				continue
			}
			if !seen[key] {
				seen[key] = true
				missing = append(missing, key)
			}
		}
	}
	sort.Strings(missing)
	return missing
}

func mergeTables(a, b map[string]model.Schema) map[string]model.Schema {
	out := make(map[string]model.Schema, len(a)+len(b))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]model.Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
