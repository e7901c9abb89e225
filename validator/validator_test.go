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

package validator_test

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"rengbis.dev/go/model"
	"rengbis.dev/go/syntax"
	"rengbis.dev/go/validator"
)

func parseRoot(t *testing.T, src string) model.Schema {
	t.Helper()
	f, err := syntax.Parse("t.rengbis", []byte(src))
	qt.Assert(t, qt.IsNil(err))
	if f.Root == nil {
		t.Fatal("no root schema")
	}
	return f.Root.Schema
}

func TestAnyAlwaysValidFailAlwaysInvalid(t *testing.T) {
	v := validator.New(nil)
	r := v.Validate(model.Any{}, validator.Text{S: "anything"})
	qt.Assert(t, qt.Equals(r.IsValid(), true))

	r = v.Validate(model.Fail{}, validator.Text{S: "anything"})
	qt.Assert(t, qt.Equals(r.IsValid(), false))
}

func TestTextLengthRange(t *testing.T) {
	// S2
	schema := parseRoot(t, "= text [ 10 <= length <= 100 ]")
	v := validator.New(nil)

	ok := v.Validate(schema, validator.Text{S: "Joe Clipperz"})
	qt.Assert(t, qt.Equals(ok.IsValid(), true))

	bad := v.Validate(schema, validator.Text{S: "Joe"})
	qt.Assert(t, qt.Equals(bad.IsValid(), false))
	qt.Assert(t, qt.Equals(strings.Contains(bad.Errors[0], "length constraint not met"), true))
}

func TestObjectWithOptionalField(t *testing.T) {
	// S3
	schema := parseRoot(t, "= { name: text, age?: number }")
	v := validator.New(nil)

	r := v.Validate(schema, validator.Object{Fields: map[string]validator.Value{
		"name": validator.Text{S: "John"},
	}})
	qt.Assert(t, qt.Equals(r.IsValid(), true))

	r = v.Validate(schema, validator.Object{Fields: map[string]validator.Value{
		"name":    validator.Text{S: "John"},
		"age":     validator.NumberOf(30),
		"hobbies": validator.Array{Items: []validator.Value{validator.Text{S: "x"}}},
	}})
	qt.Assert(t, qt.Equals(r.IsValid(), true))

	r = v.Validate(schema, validator.Object{Fields: map[string]validator.Value{}})
	qt.Assert(t, qt.Equals(r.IsValid(), false))
	qt.Assert(t, qt.Equals(r.Errors[0], "Value is missing expected key name"))
}

func TestEnum(t *testing.T) {
	// S4
	schema := parseRoot(t, `= "yes" | "no"`)
	v := validator.New(nil)

	qt.Assert(t, qt.Equals(v.Validate(schema, validator.Text{S: "yes"}).IsValid(), true))
	qt.Assert(t, qt.Equals(v.Validate(schema, validator.Text{S: "no"}).IsValid(), true))
	qt.Assert(t, qt.Equals(v.Validate(schema, validator.Text{S: "maybe"}).IsValid(), false))
}

func TestBinaryEncodingAndSize(t *testing.T) {
	// S5
	schema := parseRoot(t, "= binary [ encoding = 'base64', bytes == 11 ]")
	v := validator.New(nil)

	r := v.Validate(schema, validator.Text{S: "SGVsbG8gV29ybGQ="})
	qt.Assert(t, qt.Equals(r.IsValid(), true))

	bad := v.Validate(schema, validator.Text{S: "SGVsbG8="})
	qt.Assert(t, qt.Equals(bad.IsValid(), false))
	qt.Assert(t, qt.Equals(strings.Contains(bad.Errors[0], "bytes constraint (11) not met: 5"), true))
}

func TestListUniquenessByField(t *testing.T) {
	// S6
	schema := parseRoot(t, `= { id: text, name: text }* [ unique = id ]`)
	v := validator.New(nil)

	good := validator.Array{Items: []validator.Value{
		validator.Object{Fields: map[string]validator.Value{"id": validator.Text{S: "1"}, "name": validator.Text{S: "A"}}},
		validator.Object{Fields: map[string]validator.Value{"id": validator.Text{S: "2"}, "name": validator.Text{S: "A"}}},
	}}
	qt.Assert(t, qt.Equals(v.Validate(schema, good).IsValid(), true))

	bad := validator.Array{Items: []validator.Value{
		validator.Object{Fields: map[string]validator.Value{"id": validator.Text{S: "1"}, "name": validator.Text{S: "A"}}},
		validator.Object{Fields: map[string]validator.Value{"id": validator.Text{S: "1"}, "name": validator.Text{S: "B"}}},
	}}
	qt.Assert(t, qt.Equals(v.Validate(schema, bad).IsValid(), false))
}

func TestDeprecationWarning(t *testing.T) {
	// S8
	schema := parseRoot(t, "= { @deprecated old: text, new: number }")
	v := validator.New(nil)

	r := v.Validate(schema, validator.Object{Fields: map[string]validator.Value{
		"old": validator.Text{S: "x"},
		"new": validator.NumberOf(42),
	}})
	qt.Assert(t, qt.Equals(r.IsValid(), true))
	qt.Assert(t, qt.Equals(r.HasWarnings(), true))

	// absent deprecated field: no warning
	r = v.Validate(schema, validator.Object{Fields: map[string]validator.Value{
		"new": validator.NumberOf(1),
	}})
	qt.Assert(t, qt.Equals(r.IsValid(), true))
	qt.Assert(t, qt.Equals(r.HasWarnings(), false))
}

func TestAlternativeShortCircuitsOnFirstSuccess(t *testing.T) {
	// property 6
	schema := parseRoot(t, "= number | text")
	v := validator.New(nil)

	qt.Assert(t, qt.Equals(v.Validate(schema, validator.NumberOf(3)).IsValid(), true))
	qt.Assert(t, qt.Equals(v.Validate(schema, validator.Text{S: "hi"}).IsValid(), true))
	qt.Assert(t, qt.Equals(v.Validate(schema, validator.Bool{B: true}).IsValid(), false))
}

func TestNumericAcceptsCoercibleText(t *testing.T) {
	schema := parseRoot(t, "= number [ integer ]")
	v := validator.New(nil)

	qt.Assert(t, qt.Equals(v.Validate(schema, validator.Text{S: " 30 "}).IsValid(), true))
	qt.Assert(t, qt.Equals(v.Validate(schema, validator.Text{S: "3.14"}).IsValid(), false))
}

func TestNamedReferenceResolvesAgainstDefinitions(t *testing.T) {
	// S7-flavored: a schema whose root is just a reference, resolved
	// through the definitions table a Loader would provide.
	root := parseRoot(t, "= Foo")
	defs := map[string]model.Schema{"Foo": model.Text{}}

	v := validator.New(defs)
	r := v.Validate(root, validator.Text{S: "hi"})
	qt.Assert(t, qt.Equals(r.IsValid(), true))
}
