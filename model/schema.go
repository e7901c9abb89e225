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

// Package model declares the algebraic schema AST at the center of ReNGBis,
// the closed sum of variants described in spec §3. It plays the same role
// for this module that cuelang.org/go/cue/ast plays for CUE: a set of
// immutable, structurally-equal value types that the Syntax, Loader and
// Validator components all build on and never mutate in place.
package model

import (
	"github.com/cockroachdb/apd/v3"

	"rengbis.dev/go/errors"
	"rengbis.dev/go/token"
)

// Schema is implemented by every variant of the closed sum described in
// spec §3. It is sealed: only types declared in this package may implement
// it, the same closed-world discipline cue/ast uses for its Expr and Decl
// interfaces.
type Schema interface {
	schemaNode()

	// String renders the schema in its canonical surface form. It is wired
	// to the syntax package's printer at init time to avoid an import
	// cycle between model and syntax; until that wiring runs it falls back
	// to a bare type name.
	String() string
}

// Printer is set by package syntax's init function to Print, giving Schema
// values a canonical textual form without model importing syntax.
var Printer func(Schema) string

type base struct{}

func (base) schemaNode() {}

// Any accepts every value.
type Any struct{ base }

func (Any) String() string { return printOrFallback(Any{}, "any") }

// Fail accepts no value.
type Fail struct{ base }

func (Fail) String() string { return printOrFallback(Fail{}, "fail") }

// Boolean accepts Value.Bool, with an optional default.
type Boolean struct {
	base
	Default *bool
}

func (b Boolean) String() string { return printOrFallback(b, "boolean") }

// GivenText accepts exactly the literal string Literal.
type GivenText struct {
	base
	Literal string
}

func (g GivenText) String() string { return printOrFallback(g, "\""+g.Literal+"\"") }

// Text accepts Value.Text subject to Constraints, with an optional default.
type Text struct {
	base
	Constraints TextConstraints
	Default     *string
}

func (t Text) String() string { return printOrFallback(t, "text") }

// Numeric accepts Value.Number, or a decimal-looking Value.Text (spec §4.4),
// subject to Constraints, with an optional default. Numeric values and
// bounds are arbitrary-precision decimals (github.com/cockroachdb/apd/v3),
// never float64, so that constraints like `value == 0.1` compare exactly.
type Numeric struct {
	base
	Constraints NumericConstraints
	Default     *apd.Decimal
}

func (n Numeric) String() string { return printOrFallback(n, "number") }

// Binary accepts Value.Text interpreted as an encoded byte string, subject
// to Constraints.
type Binary struct {
	base
	Constraints BinaryConstraints
}

func (b Binary) String() string { return printOrFallback(b, "binary") }

// Time accepts Value.Text parseable under Format.
type Time struct {
	base
	Format TimeFormat
}

func (t Time) String() string { return printOrFallback(t, "time") }

// EnumValues accepts Value.Text equal to one of Values. Construction
// enforces invariant I2: at least one value, all distinct.
type EnumValues struct {
	base
	Values []string
}

// NewEnumValues validates invariant I2 before returning an EnumValues.
func NewEnumValues(values []string) (EnumValues, error) {
	if len(values) == 0 {
		return EnumValues{}, errors.Newf(errors.InvalidSchema, noPos(), "EnumValues requires at least one value")
	}
	if dup, ok := firstDuplicate(values); ok {
		return EnumValues{}, errors.Newf(errors.InvalidSchema, noPos(), "EnumValues: duplicate value %q", dup)
	}
	cp := make([]string, len(values))
	copy(cp, values)
	return EnumValues{Values: cp}, nil
}

func (e EnumValues) String() string { return printOrFallback(e, "enum") }

// List accepts Value.Array whose items all validate against Item, subject
// to Constraints (size, uniqueness).
type List struct {
	base
	Item        Schema
	Constraints ListConstraints
}

func (l List) String() string { return printOrFallback(l, "list") }

// Tuple accepts a fixed-length, positionally-typed Value.Tuple or
// Value.Array. Construction enforces invariant I1: at least two items.
type Tuple struct {
	base
	Items []Schema
}

// NewTuple validates invariant I1 before returning a Tuple.
func NewTuple(items []Schema) (Tuple, error) {
	if len(items) < 2 {
		return Tuple{}, errors.Newf(errors.InvalidSchema, noPos(), "Tuple requires at least 2 items, got %d", len(items))
	}
	cp := make([]Schema, len(items))
	copy(cp, items)
	return Tuple{Items: cp}, nil
}

func (t Tuple) String() string { return printOrFallback(t, "tuple") }

// Alternative accepts a value iff at least one Option validates it.
// Construction enforces invariant I1: at least two options.
type Alternative struct {
	base
	Options []Schema
}

// NewAlternative validates invariant I1 before returning an Alternative.
func NewAlternative(options []Schema) (Alternative, error) {
	if len(options) < 2 {
		return Alternative{}, errors.Newf(errors.InvalidSchema, noPos(), "Alternative requires at least 2 options, got %d", len(options))
	}
	cp := make([]Schema, len(options))
	copy(cp, options)
	return Alternative{Options: cp}, nil
}

func (a Alternative) String() string { return printOrFallback(a, "alternative") }

// Object accepts Value.Object, validating each present field against its
// labeled Schema. Construction enforces invariant I3: no two labels share a
// name, regardless of Mandatory/Optional.
type Object struct {
	base
	Fields map[string]Field
}

// Field pairs a Label with the Schema it must satisfy.
type Field struct {
	Label Label
	Type  Schema
}

// NewObject validates invariant I3 before returning an Object. fields is
// keyed only by name for convenience; the Label (and thus Mandatory vs
// Optional) is carried in each Field.
func NewObject(fields []Field) (Object, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Label.Name
	}
	if dup, ok := firstDuplicate(names); ok {
		return Object{}, errors.Newf(errors.InvalidSchema, noPos(), "Object: duplicate field %q", dup)
	}
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Label.Name] = f
	}
	return Object{Fields: m}, nil
}

func (o Object) String() string { return printOrFallback(o, "object") }

// Map accepts Value.Object with arbitrary string keys, each validated
// against ValueSchema.
type Map struct {
	base
	ValueSchema Schema
}

func (m Map) String() string { return printOrFallback(m, "map") }

// Documented wraps Inner with a doc comment. It is transparent to every
// type-directed operation (validation, dependency extraction) except
// printing.
type Documented struct {
	base
	Doc   string
	Inner Schema
}

func (d Documented) String() string { return printOrFallback(d, d.Inner.String()) }

// Deprecated wraps Inner, marking it as deprecated; the Validator emits a
// warning whenever a Deprecated schema is used to accept a present value.
type Deprecated struct {
	base
	Inner Schema
}

func (d Deprecated) String() string { return printOrFallback(d, d.Inner.String()) }

// NamedRef refers to a definition named Name in the same file. The Loader
// replaces it via Substitute; a resolved schema contains none (invariant
// I4), except under the recursive-schema strategy described in spec §9.
type NamedRef struct {
	base
	Name string
}

func (r NamedRef) String() string { return printOrFallback(r, r.Name) }

// ScopedRef refers to a definition named Name inside the file imported
// under Namespace. An empty Name refers to that file's root schema.
type ScopedRef struct {
	base
	Namespace string
	Name      string
}

func (r ScopedRef) String() string {
	if r.Name == "" {
		return printOrFallback(r, r.Namespace)
	}
	return printOrFallback(r, r.Namespace+"."+r.Name)
}

func printOrFallback(s Schema, fallback string) string {
	if Printer != nil {
		return Printer(s)
	}
	return fallback
}

func noPos() token.Pos { return token.NoPos }
