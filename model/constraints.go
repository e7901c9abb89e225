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
	"regexp"

	"github.com/cockroachdb/apd/v3"

	"rengbis.dev/go/errors"
)

// BoundOp is one endpoint operator of a Bound, spec §3.
type BoundOp int

const (
	MinInclusive BoundOp = iota
	MinExclusive
	MaxInclusive
	MaxExclusive
	Exact
)

// Bound is one endpoint of a SizeRange or ValueRange. Value is an
// arbitrary-precision decimal (github.com/cockroachdb/apd/v3) regardless of
// whether it bounds an integer length or a fractional numeric value, so
// size and value constraints share one comparison path.
type Bound struct {
	Op    BoundOp
	Value apd.Decimal
}

// SizeRange constrains a length (runes, bytes, or list items) between an
// optional Min and Max.
type SizeRange struct {
	Min *Bound
	Max *Bound
}

// ValueRange constrains a Numeric value between an optional Min and Max.
type ValueRange = SizeRange

// NewSizeRange validates invariant I6 (min < max, or <= when both
// inclusive) before returning a SizeRange.
func NewSizeRange(min, max *Bound) (SizeRange, error) {
	if min != nil && max != nil {
		cmp := min.Value.Cmp(&max.Value)
		bothInclusive := isMinInclusive(min.Op) && isMaxInclusive(max.Op)
		if cmp > 0 || (cmp == 0 && !bothInclusive) {
			return SizeRange{}, errors.Newf(errors.ConstraintError, noPos(),
				"impossible range: %s .. %s", min.Value.String(), max.Value.String())
		}
	}
	return SizeRange{Min: min, Max: max}, nil
}

func isMinInclusive(op BoundOp) bool { return op == MinInclusive || op == Exact }
func isMaxInclusive(op BoundOp) bool { return op == MaxInclusive || op == Exact }

// Satisfied reports whether n falls within r.
func (r SizeRange) Satisfied(n *apd.Decimal) bool {
	if r.Min != nil && !boundSatisfiedLow(*r.Min, n) {
		return false
	}
	if r.Max != nil && !boundSatisfiedHigh(*r.Max, n) {
		return false
	}
	return true
}

func boundSatisfiedLow(b Bound, n *apd.Decimal) bool {
	c := n.Cmp(&b.Value)
	switch b.Op {
	case MinInclusive:
		return c >= 0
	case MinExclusive:
		return c > 0
	case Exact:
		return c == 0
	default:
		return true
	}
}

func boundSatisfiedHigh(b Bound, n *apd.Decimal) bool {
	c := n.Cmp(&b.Value)
	switch b.Op {
	case MaxInclusive:
		return c <= 0
	case MaxExclusive:
		return c < 0
	case Exact:
		return c == 0
	default:
		return true
	}
}

// TextConstraints constrains a Text schema's acceptable strings.
type TextConstraints struct {
	Size   *SizeRange
	Regex  *string
	regex  *regexp.Regexp // compiled by NewTextConstraints (invariant I5); nil when built without it
	Format *string
}

// NewTextConstraints validates invariant I5 (Regex, when present, compiles)
// before returning TextConstraints.
func NewTextConstraints(size *SizeRange, regex *string, format *string) (TextConstraints, error) {
	tc := TextConstraints{Size: size, Regex: regex, Format: format}
	if regex != nil {
		re, err := regexp.Compile("^(?:" + *regex + ")$")
		if err != nil {
			return TextConstraints{}, errors.Newf(errors.ConstraintError, noPos(), "invalid regex %q: %v", *regex, err)
		}
		tc.regex = re
	}
	return tc, nil
}

// CompiledRegex returns the compiled regexp backing c.Regex, or nil if
// unconstrained.
func (c TextConstraints) CompiledRegex() *regexp.Regexp { return c.regex }

// NumericConstraints constrains a Numeric schema's acceptable decimals.
type NumericConstraints struct {
	Value   *ValueRange
	Integer bool
}

// Encoding names a byte encoding alphabet for a Binary schema.
type Encoding int

const (
	Base64 Encoding = iota
	Base32
	Hex
)

// BinaryConstraints constrains a Binary schema's decoded byte string.
type BinaryConstraints struct {
	Encoding *Encoding
	Size     *SizeRange // in decoded bytes
}

// UniqueKind distinguishes the two forms of List uniqueness constraint.
type UniqueKind int

const (
	UniqueSimple UniqueKind = iota
	UniqueByFields
)

// UniqueClause is one `unique` clause attached to a List. Multiple clauses
// on the same List must each hold independently.
type UniqueClause struct {
	Kind   UniqueKind
	Fields []string // only meaningful when Kind == UniqueByFields
}

// ListConstraints constrains a List schema's acceptable arrays.
type ListConstraints struct {
	Size   *SizeRange
	Unique []UniqueClause
}

// NamedTimeFormat enumerates the built-in time formats spec §3 names.
type NamedTimeFormat int

const (
	ISO8601 NamedTimeFormat = iota
	ISO8601Date
	ISO8601Time
	RFC3339
)

// TimeFormat is either one of the built-in NamedTimeFormat values or a
// CustomPattern string (a date/time template, invariant I5).
type TimeFormat struct {
	Named   *NamedTimeFormat
	Pattern *string // CustomPattern, when Named == nil
}
