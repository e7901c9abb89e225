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

package syntax

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"rengbis.dev/go/model"
)

func rengbisErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// parseRangeClause parses one of:
//
//	keyword OP NUMBER
//	NUMBER OP keyword OP NUMBER
//
// matching any identifier in keywords, and returns which keyword matched
// together with the resulting range. scale, when non-nil, multiplies every
// parsed number (used for the KB/MB sugar on Binary's byte-size clause).
func (p *parser) parseRangeClause(keywords []string, scale *apd.Decimal) (string, model.SizeRange) {
	if p.at(IDENT) && containsStr(keywords, p.tok.Lit) {
		kw := p.tok.Lit
		p.next()
		op := p.parseComparator()
		val := p.scaleDecimal(p.parseDecimalLiteral(), scale)
		min, max := singleBoundField(op, val)
		return kw, model.SizeRange{Min: min, Max: max}
	}

	lowVal := p.scaleDecimal(p.parseDecimalLiteral(), scale)
	lowOp := p.parseComparator()
	if !p.at(IDENT) || !containsStr(keywords, p.tok.Lit) {
		p.errorf("expected one of %v in range clause, found %q", keywords, p.tok.Lit)
		return "", model.SizeRange{}
	}
	kw := p.tok.Lit
	p.next()
	highOp := p.parseComparator()
	highVal := p.scaleDecimal(p.parseDecimalLiteral(), scale)

	min := &model.Bound{Value: *lowVal}
	if lowOp == model.MaxInclusive { // '<=' before the keyword means keyword >= lowVal
		min.Op = model.MinInclusive
	} else {
		min.Op = model.MinExclusive
	}
	max := &model.Bound{Value: *highVal}
	if highOp == model.MaxInclusive {
		max.Op = model.MaxInclusive
	} else {
		max.Op = model.MaxExclusive
	}
	return kw, model.SizeRange{Min: min, Max: max}
}

func singleBoundField(op model.BoundOp, val *apd.Decimal) (min, max *model.Bound) {
	b := &model.Bound{Op: op, Value: *val}
	switch op {
	case model.MinInclusive, model.MinExclusive:
		return b, nil
	case model.MaxInclusive, model.MaxExclusive:
		return nil, b
	default: // Exact
		return b, &model.Bound{Op: op, Value: *val}
	}
}

func (p *parser) scaleDecimal(d *apd.Decimal, scale *apd.Decimal) *apd.Decimal {
	if scale == nil {
		return d
	}
	res := apd.New(0, 0)
	ctx := apd.BaseContext.WithPrecision(50)
	ctx.Mul(res, d, scale)
	return res
}

// parseComparator reads one of ==, >=, >, <=, < and returns the BoundOp it
// denotes when the keyword comes first (e.g. "length >= 3" -> MinInclusive).
func (p *parser) parseComparator() model.BoundOp {
	switch p.tok.Kind {
	case EQ:
		p.next()
		return model.Exact
	case GE:
		p.next()
		return model.MinInclusive
	case GT:
		p.next()
		return model.MinExclusive
	case LE:
		p.next()
		return model.MaxInclusive
	case LT:
		p.next()
		return model.MaxExclusive
	default:
		p.errorf("expected comparison operator, found %s %q", p.tok.Kind, p.tok.Lit)
		return model.Exact
	}
}

func containsStr(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

// parseTextConstraints implements the Text constraint surface: length
// comparisons/ranges, regex/pattern, and the glyph format string.
func (p *parser) parseTextConstraints() model.TextConstraints {
	p.expect(LBRACK)
	var size *model.SizeRange
	var regex, format *string
	for !p.at(RBRACK) && !p.at(EOF) {
		switch {
		case p.at(IDENT) && (p.tok.Lit == "length"):
			_, rng := p.parseRangeClause([]string{"length"}, nil)
			size = mergeSizeRange(size, rng)
		case p.at(NUMBER):
			_, rng := p.parseRangeClause([]string{"length"}, nil)
			size = mergeSizeRange(size, rng)
		case p.atIdent("regex") || p.atIdent("pattern"):
			p.next()
			p.expect(ASSIGN)
			s := unquote(p.expect(DQSTRING).Lit)
			regex = &s
		case p.atIdent("format"):
			p.next()
			p.expect(ASSIGN)
			s := unquote(p.expect(DQSTRING).Lit)
			format = &s
		default:
			p.errorf("unexpected text constraint %q", p.tok.Lit)
			p.next()
		}
		if p.at(COMMA) {
			p.next()
		}
	}
	p.expect(RBRACK)
	tc, err := model.NewTextConstraints(size, regex, format)
	if err != nil {
		p.errorf("%s", err)
		return model.TextConstraints{}
	}
	return tc
}

// parseNumericConstraints implements the Numeric constraint surface:
// `integer` and `value` comparisons/ranges.
func (p *parser) parseNumericConstraints() model.NumericConstraints {
	p.expect(LBRACK)
	nc := model.NumericConstraints{}
	var value *model.ValueRange
	for !p.at(RBRACK) && !p.at(EOF) {
		switch {
		case p.atIdent("integer"):
			p.next()
			nc.Integer = true
		case p.at(IDENT) && p.tok.Lit == "value":
			_, rng := p.parseRangeClause([]string{"value"}, nil)
			value = mergeSizeRange(value, rng)
		case p.at(NUMBER) || p.at(MINUS):
			_, rng := p.parseRangeClause([]string{"value"}, nil)
			value = mergeSizeRange(value, rng)
		default:
			p.errorf("unexpected numeric constraint %q", p.tok.Lit)
			p.next()
		}
		if p.at(COMMA) {
			p.next()
		}
	}
	p.expect(RBRACK)
	nc.Value = value
	return nc
}

var (
	scaleKB = decimalFromInt(1024)
	scaleMB = decimalFromInt(1024 * 1024)
)

func decimalFromInt(n int64) *apd.Decimal {
	return apd.New(n, 0)
}

// parseBinaryConstraints implements the Binary constraint surface:
// `encoding = '...'` and a byte-size clause in bytes, KB, or MB.
func (p *parser) parseBinaryConstraints() model.BinaryConstraints {
	p.expect(LBRACK)
	bc := model.BinaryConstraints{}
	var size *model.SizeRange
	for !p.at(RBRACK) && !p.at(EOF) {
		switch {
		case p.atIdent("encoding"):
			p.next()
			p.expect(ASSIGN)
			s := unquote(p.expect(SQSTRING).Lit)
			enc, err := parseEncoding(s)
			if err != nil {
				p.errorf("%s", err)
			}
			bc.Encoding = &enc
		case p.at(IDENT) && p.tok.Lit == "bytes":
			_, rng := p.parseRangeClause([]string{"bytes"}, nil)
			size = mergeSizeRange(size, rng)
		case p.at(IDENT) && p.tok.Lit == "KB":
			_, rng := p.parseRangeClause([]string{"KB"}, scaleKB)
			size = mergeSizeRange(size, rng)
		case p.at(IDENT) && p.tok.Lit == "MB":
			_, rng := p.parseRangeClause([]string{"MB"}, scaleMB)
			size = mergeSizeRange(size, rng)
		case p.at(NUMBER):
			_, rng := p.parseRangeClause([]string{"bytes", "KB", "MB"}, nil)
			size = mergeSizeRange(size, rng)
		default:
			p.errorf("unexpected binary constraint %q", p.tok.Lit)
			p.next()
		}
		if p.at(COMMA) {
			p.next()
		}
	}
	p.expect(RBRACK)
	bc.Size = size
	return bc
}

func parseEncoding(s string) (model.Encoding, error) {
	switch s {
	case "base64":
		return model.Base64, nil
	case "base32":
		return model.Base32, nil
	case "hex":
		return model.Hex, nil
	default:
		return 0, rengbisErrorf("unknown encoding %q", s)
	}
}

// parseListConstraints implements the List constraint surface: `size`
// comparisons/ranges and one or more `unique`/`unique = ...` clauses.
func (p *parser) parseListConstraints() model.ListConstraints {
	p.expect(LBRACK)
	lc := model.ListConstraints{}
	var size *model.SizeRange
	for !p.at(RBRACK) && !p.at(EOF) {
		switch {
		case p.atIdent("unique"):
			p.next()
			lc.Unique = append(lc.Unique, p.parseUniqueClause())
		case p.at(IDENT) && p.tok.Lit == "size":
			_, rng := p.parseRangeClause([]string{"size"}, nil)
			size = mergeSizeRange(size, rng)
		case p.at(NUMBER):
			_, rng := p.parseRangeClause([]string{"size"}, nil)
			size = mergeSizeRange(size, rng)
		default:
			p.errorf("unexpected list constraint %q", p.tok.Lit)
			p.next()
		}
		if p.at(COMMA) {
			p.next()
		}
	}
	p.expect(RBRACK)
	lc.Size = size
	return lc
}

func (p *parser) parseUniqueClause() model.UniqueClause {
	if !p.at(ASSIGN) {
		return model.UniqueClause{Kind: model.UniqueSimple}
	}
	p.next()
	if p.at(LPAREN) {
		p.next()
		var fields []string
		for !p.at(RPAREN) && !p.at(EOF) {
			fields = append(fields, p.expect(IDENT).Lit)
			if p.at(COMMA) {
				p.next()
			}
		}
		p.expect(RPAREN)
		return model.UniqueClause{Kind: model.UniqueByFields, Fields: fields}
	}
	field := p.expect(IDENT).Lit
	return model.UniqueClause{Kind: model.UniqueByFields, Fields: []string{field}}
}

// parseTimeConstraints implements Time's mandatory `format = ...` clause.
func (p *parser) parseTimeConstraints() model.TimeFormat {
	p.expect(LBRACK)
	var tf model.TimeFormat
	if p.atIdent("format") {
		p.next()
		p.expect(ASSIGN)
		switch p.tok.Kind {
		case SQSTRING:
			s := unquote(p.tok.Lit)
			p.next()
			named, err := parseNamedTimeFormat(s)
			if err != nil {
				p.errorf("%s", err)
			}
			tf.Named = &named
		case DQSTRING:
			s := unquote(p.tok.Lit)
			p.next()
			tf.Pattern = &s
		default:
			p.errorf("expected time format string, found %s", p.tok.Kind)
		}
	} else {
		p.errorf("expected 'format' in time constraints")
	}
	for p.at(COMMA) {
		p.next()
	}
	p.expect(RBRACK)
	return tf
}

func parseNamedTimeFormat(s string) (model.NamedTimeFormat, error) {
	switch s {
	case "iso8601":
		return model.ISO8601, nil
	case "iso8601-date":
		return model.ISO8601Date, nil
	case "iso8601-time":
		return model.ISO8601Time, nil
	case "rfc3339":
		return model.RFC3339, nil
	default:
		return 0, rengbisErrorf("unknown time format %q", s)
	}
}

func mergeSizeRange(existing *model.SizeRange, rng model.SizeRange) *model.SizeRange {
	if existing == nil {
		r := rng
		return &r
	}
	if rng.Min != nil {
		existing.Min = rng.Min
	}
	if rng.Max != nil {
		existing.Max = rng.Max
	}
	return existing
}
