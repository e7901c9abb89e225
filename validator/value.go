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

// Package validator walks a resolved schema against a generic, format
// agnostic Value tree and reports a ValidationResult. The Value shape is
// the boundary every format parser (JSON, YAML, XML, CSV, raw text)
// produces into, so the Validator itself never parses source text.
package validator

import "github.com/cockroachdb/apd/v3"

// Value is the closed set of generic data shapes a format parser
// produces, mirrored on model.Schema's own closed-sum pattern: an
// unexported marker method restricts implementers to this package.
type Value interface {
	valueNode()
}

type valueBase struct{}

func (valueBase) valueNode() {}

// Null is the JSON/YAML null / XML-absent value.
type Null struct{ valueBase }

// Bool is a boolean scalar.
type Bool struct {
	valueBase
	B bool
}

// Number is a numeric scalar, represented as an arbitrary-precision
// decimal so integer and fractional bounds compare exactly.
type Number struct {
	valueBase
	D apd.Decimal
}

// Text is a string scalar.
type Text struct {
	valueBase
	S string
}

// Array is an ordered, homogeneously-typed-by-schema sequence.
type Array struct {
	valueBase
	Items []Value
}

// Tuple is an ordered, positionally-typed sequence.
type Tuple struct {
	valueBase
	Items []Value
}

// Object is a string-keyed mapping.
type Object struct {
	valueBase
	Fields map[string]Value
}

// NumberOf is a convenience constructor for an integer-valued Number.
func NumberOf(n int64) Number {
	var d apd.Decimal
	d.SetInt64(n)
	return Number{D: d}
}
