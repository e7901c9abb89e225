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

package model_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"rengbis.dev/go/model"
)

func TestObjectFieldOrderDoesNotAffectEquality(t *testing.T) {
	// spec §8 property 7: field order in the AST must not affect equality.
	a, err := model.NewObject([]model.Field{
		{Label: model.Mandatory("name"), Type: model.Text{}},
		{Label: model.OptionalLabel("age"), Type: model.Numeric{}},
	})
	qt.Assert(t, qt.IsNil(err))

	b, err := model.NewObject([]model.Field{
		{Label: model.OptionalLabel("age"), Type: model.Numeric{}},
		{Label: model.Mandatory("name"), Type: model.Text{}},
	})
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.Equals(model.Equal(a, b), true))
}

func TestObjectRejectsDuplicateLabel(t *testing.T) {
	_, err := model.NewObject([]model.Field{
		{Label: model.Mandatory("id"), Type: model.Text{}},
		{Label: model.OptionalLabel("id"), Type: model.Numeric{}},
	})
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestEnumValuesRejectsDuplicates(t *testing.T) {
	_, err := model.NewEnumValues([]string{"yes", "no", "yes"})
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestTupleRequiresAtLeastTwoItems(t *testing.T) {
	_, err := model.NewTuple([]model.Schema{model.Text{}})
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestDependenciesOfComposite(t *testing.T) {
	obj, err := model.NewObject([]model.Field{
		{Label: model.Mandatory("self"), Type: model.NamedRef{Name: "node"}},
		{Label: model.Mandatory("peer"), Type: model.ScopedRef{Namespace: "common", Name: "id"}},
	})
	qt.Assert(t, qt.IsNil(err))

	deps := model.Dependencies(obj)
	qt.Assert(t, qt.HasLen(deps, 2))
	_, hasSelf := deps[model.RefKey{Name: "node"}]
	_, hasPeer := deps[model.RefKey{Namespace: "common", Name: "id"}]
	qt.Assert(t, qt.Equals(hasSelf, true))
	qt.Assert(t, qt.Equals(hasPeer, true))
}

func TestSubstituteIsIdempotent(t *testing.T) {
	// spec §8 property 3.
	table := map[string]model.Schema{"node": model.Numeric{}}
	list := model.List{Item: model.NamedRef{Name: "node"}}

	once, err := model.Substitute(list, table)
	qt.Assert(t, qt.IsNil(err))
	twice, err := model.Substitute(once, table)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.Equals(model.Equal(once, twice), true))
}

func TestSubstituteLeavesUnknownRefsInPlace(t *testing.T) {
	table := map[string]model.Schema{}
	out, err := model.Substitute(model.NamedRef{Name: "missing"}, table)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(model.Equal(out, model.NamedRef{Name: "missing"}), true))
}

func TestSubstituteDetectsTableCycle(t *testing.T) {
	table := map[string]model.Schema{
		"a": model.NamedRef{Name: "b"},
		"b": model.NamedRef{Name: "a"},
	}
	_, err := model.Substitute(model.NamedRef{Name: "a"}, table)
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}
