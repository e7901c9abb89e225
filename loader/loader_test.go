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

package loader_test

import (
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/kr/pretty"
	"github.com/rogpeppe/go-internal/txtar"

	"rengbis.dev/go/loader"
	"rengbis.dev/go/model"
)

// requireSchemaEqual fails t with a field-by-field diff (via
// github.com/kr/pretty, the same failure-dump library the teacher's
// tests reach for over a bare reflect.DeepEqual mismatch) when got and
// want are not model.Equal.
func requireSchemaEqual(t *testing.T, got, want model.Schema) {
	t.Helper()
	if !model.Equal(got, want) {
		t.Fatalf("schemas differ:\n%s", strings.Join(pretty.Diff(got, want), "\n"))
	}
}

// memFS is an in-memory FileReader built from a txtar archive, the same
// multi-file fixture format cue/load's own tests use for package trees.
type memFS struct {
	files map[string][]byte
	reads map[string]int
}

func newMemFS(archive string) *memFS {
	ar := txtar.Parse([]byte(archive))
	fs := &memFS{files: map[string][]byte{}, reads: map[string]int{}}
	for _, f := range ar.Files {
		fs.files["/"+f.Name] = f.Data
	}
	return fs
}

func (fs *memFS) ReadFile(p string) ([]byte, error) {
	fs.reads[p]++
	data, ok := fs.files[p]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", p)
	}
	return data, nil
}

func (fs *memFS) Dir(p string) string         { return path.Dir(p) }
func (fs *memFS) Join(dir, name string) string { return path.Join(dir, name) }
func (fs *memFS) Abs(p string) (string, error) { return path.Clean(p), nil }

func TestLoadResolvesNamespacedImports(t *testing.T) {
	fs := newMemFS(`
-- root.rengbis --
shared => import "lib/shared.rengbis"

= { name: shared.Person, tag: shared.Tag }
-- lib/shared.rengbis --
Person = { first: text, last: text }

Tag = "a" | "b"
`)
	b, err := loader.New(fs).Load("/root.rengbis")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(b.Definitions, 2))

	person, ok := b.Definitions["shared.Person"].(model.Object)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.HasLen(person.Fields, 2))

	root, ok := b.Root.(model.Object)
	qt.Assert(t, qt.Equals(ok, true))
	_, stillRef := root.Fields["name"].Type.(model.ScopedRef)
	qt.Assert(t, qt.Equals(stillRef, false))
	requireSchemaEqual(t, root.Fields["name"].Type, person)
}

func TestLoadResolvesDiamondImportOnce(t *testing.T) {
	fs := newMemFS(`
-- root.rengbis --
a => import "a.rengbis"
b => import "b.rengbis"

= { x: a.Base, y: b.Base }
-- a.rengbis --
common => import "common.rengbis"

Base = common.Thing
-- b.rengbis --
common => import "common.rengbis"

Base = common.Thing
-- common.rengbis --
Thing = text
`)
	b, err := loader.New(fs).Load("/root.rengbis")
	qt.Assert(t, qt.IsNil(err))

	x := b.Definitions["a.Base"]
	y := b.Definitions["b.Base"]
	requireSchemaEqual(t, x, model.Text{})
	requireSchemaEqual(t, y, model.Text{})
	qt.Assert(t, qt.Equals(fs.reads["/common.rengbis"], 1))
}

func TestLoadDetectsDuplicateDefinition(t *testing.T) {
	fs := newMemFS(`
-- root.rengbis --
Name = text

Name = number
`)
	_, err := loader.New(fs).Load("/root.rengbis")
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestLoadDetectsUnresolvedReference(t *testing.T) {
	fs := newMemFS(`
-- root.rengbis --
= Missing
`)
	_, err := loader.New(fs).Load("/root.rengbis")
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestLoadKeepsMutuallyRecursiveDefinitionsAsReferences(t *testing.T) {
	fs := newMemFS(`
-- root.rengbis --
Node = { value: number, next?: Node }

= Node
`)
	b, err := loader.New(fs).Load("/root.rengbis")
	qt.Assert(t, qt.IsNil(err))

	node, ok := b.Definitions["Node"].(model.Object)
	qt.Assert(t, qt.Equals(ok, true))
	_, isRef := node.Fields["next"].Type.(model.NamedRef)
	qt.Assert(t, qt.Equals(isRef, true))
}

func TestLoadDetectsImportCycle(t *testing.T) {
	fs := newMemFS(`
-- root.rengbis --
other => import "other.rengbis"

= other
-- other.rengbis --
back => import "root.rengbis"

= back
`)
	_, err := loader.New(fs).Load("/root.rengbis")
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}
