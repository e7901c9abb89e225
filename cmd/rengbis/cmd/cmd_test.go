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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestFmtCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "person.rengbis")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("= { name: text , age ?: number }"), 0o644)))

	out, err := run(t, "fmt", path)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.StringContains(out, "age?: number"))
}

func TestLoadCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.rengbis")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("foo = number*\n= foo\n"), 0o644)))

	out, err := run(t, "load", path)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.StringContains(out, "foo"))
	qt.Assert(t, qt.StringContains(out, "(root)"))
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "person.rengbis")
	qt.Assert(t, qt.IsNil(os.WriteFile(schemaPath, []byte("= { name: text }"), 0o644)))
	valuePath := filepath.Join(dir, "value.json")
	qt.Assert(t, qt.IsNil(os.WriteFile(valuePath, []byte(`{"name":"John"}`), 0o644)))

	out, err := run(t, "validate", schemaPath, valuePath)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.StringContains(out, "valid"))
}

func TestValidateCmdFails(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "person.rengbis")
	qt.Assert(t, qt.IsNil(os.WriteFile(schemaPath, []byte("= { name: text }"), 0o644)))
	valuePath := filepath.Join(dir, "value.json")
	qt.Assert(t, qt.IsNil(os.WriteFile(valuePath, []byte(`{}`), 0o644)))

	_, err := run(t, "validate", schemaPath, valuePath)
	qt.Assert(t, qt.IsNotNil(err))
}
