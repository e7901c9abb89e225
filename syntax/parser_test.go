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

package syntax_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"rengbis.dev/go/model"
	"rengbis.dev/go/syntax"
)

func parseRoot(t *testing.T, src string) model.Schema {
	t.Helper()
	f, err := syntax.Parse("test.rengbis", []byte(src))
	qt.Assert(t, qt.IsNil(err))
	if f.Root == nil {
		t.Fatal("no root schema")
	}
	return f.Root.Schema
}

func TestParseBaseTypes(t *testing.T) {
	// S1
	num := parseRoot(t, "= number")
	qt.Assert(t, qt.Equals(model.Equal(num, model.Numeric{}), true))

	list := parseRoot(t, "= number*")
	qt.Assert(t, qt.Equals(model.Equal(list, model.List{Item: model.Numeric{}}), true))

	atLeastOne := parseRoot(t, "= number+")
	listWithMin, ok := atLeastOne.(model.List)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Not(qt.IsNil(listWithMin.Constraints.Size)))
	qt.Assert(t, qt.Not(qt.IsNil(listWithMin.Constraints.Size.Min)))
}

func TestParseObjectWithOptionalField(t *testing.T) {
	// S3
	schema := parseRoot(t, "= { name: text, age?: number }")
	obj, ok := schema.(model.Object)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.HasLen(obj.Fields, 2))
	qt.Assert(t, qt.Equals(obj.Fields["age"].Label.Optional, true))
	qt.Assert(t, qt.Equals(obj.Fields["name"].Label.Optional, false))
}

func TestParseEnum(t *testing.T) {
	// S4
	schema := parseRoot(t, `= "yes" | "no"`)
	enum, ok := schema.(model.EnumValues)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.DeepEquals(enum.Values, []string{"yes", "no"}))
}

func TestParseDeprecatedField(t *testing.T) {
	// S8
	schema := parseRoot(t, "= { @deprecated old: text, new: number }")
	obj := schema.(model.Object)
	_, isDeprecated := obj.Fields["old"].Type.(model.Deprecated)
	qt.Assert(t, qt.Equals(isDeprecated, true))
}

func TestAnnotationNormalization(t *testing.T) {
	src := "## legacy field\n@deprecated\nold = text"
	f, err := syntax.Parse("test.rengbis", []byte(src))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(f.Definitions, 1))

	doc, ok := f.Definitions[0].Schema.(model.Documented)
	qt.Assert(t, qt.Equals(ok, true))
	_, deprecatedInside := doc.Inner.(model.Deprecated)
	qt.Assert(t, qt.Equals(deprecatedInside, true))
}

func TestPrintRoundTrip(t *testing.T) {
	// S9
	regex := "^[a-z]+$"
	min := model.Bound{Op: model.MinInclusive}
	min.Value.SetInt64(10)
	max := model.Bound{Op: model.MaxInclusive}
	max.Value.SetInt64(100)
	size, err := model.NewSizeRange(&min, &max)
	qt.Assert(t, qt.IsNil(err))

	tc, err := model.NewTextConstraints(&size, &regex, nil)
	qt.Assert(t, qt.IsNil(err))
	original := model.Text{Constraints: tc}

	printed := syntax.Print(original)
	f, err := syntax.Parse("t.rengbis", []byte("= "+printed))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(model.Equal(f.Root.Schema, original), true))
}

func TestImportDefinition(t *testing.T) {
	f, err := syntax.Parse("t.rengbis", []byte(`common => import "shared.rengbis"`))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(f.Definitions, 1))
	qt.Assert(t, qt.Equals(f.Definitions[0].IsImport, true))
	qt.Assert(t, qt.Equals(f.Definitions[0].ImportPath, "shared.rengbis"))
}
