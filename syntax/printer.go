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
	"sort"
	"strings"

	"rengbis.dev/go/model"
)

func init() {
	// Wire Schema.String() to Print without model importing syntax,
	// mirroring cue/ast nodes getting a String method from astinternal.
	model.Printer = func(s model.Schema) string { return Print(s) }
}

// Option configures the canonical printer, the way cue/format.Option
// configures cue/format.Node.
type Option func(*printer)

// IndentWidth sets the number of spaces used per nesting level inside
// object literals. The default is 2.
func IndentWidth(n int) Option {
	return func(p *printer) { p.indentWidth = n }
}

// OmitDocComments suppresses "##" doc comments from the output. Printed
// text without them no longer round-trips to an equal Documented schema,
// so this is for human-facing summaries, not storage.
func OmitDocComments() Option {
	return func(p *printer) { p.omitDocs = true }
}

type printer struct {
	b           strings.Builder
	indentWidth int
	omitDocs    bool
}

// Print renders s in ReNGBis canonical form: `= <body>` is not included —
// Print renders only the body expression, matching Schema.String(); use
// PrintDefinition/PrintRoot for whole-file output.
func Print(s model.Schema, opts ...Option) string {
	p := &printer{indentWidth: 2}
	for _, o := range opts {
		o(p)
	}
	p.printSchema(s, 0)
	return p.b.String()
}

// PrintRoot renders a full file's root definition: `= <body>`.
func PrintRoot(doc string, s model.Schema, opts ...Option) string {
	p := &printer{indentWidth: 2}
	for _, o := range opts {
		o(p)
	}
	if doc != "" && !p.omitDocs {
		p.printDoc(doc, 0)
	}
	p.b.WriteString("= ")
	p.printSchema(s, 0)
	p.b.WriteByte('\n')
	return p.b.String()
}

// PrintDefinition renders one named definition: `name = <body>`.
func PrintDefinition(name, doc string, deprecated bool, s model.Schema, opts ...Option) string {
	p := &printer{indentWidth: 2}
	for _, o := range opts {
		o(p)
	}
	if doc != "" && !p.omitDocs {
		p.printDoc(doc, 0)
	}
	if deprecated {
		p.b.WriteString("@deprecated\n")
	}
	fmt.Fprintf(&p.b, "%s = ", name)
	p.printSchema(s, 0)
	p.b.WriteByte('\n')
	return p.b.String()
}

func (p *printer) printDoc(doc string, indent int) {
	for _, line := range strings.Split(doc, "\n") {
		p.indent(indent)
		p.b.WriteString("## ")
		p.b.WriteString(line)
		p.b.WriteByte('\n')
	}
}

func (p *printer) indent(n int) {
	p.b.WriteString(strings.Repeat(" ", n*p.indentWidth))
}

func (p *printer) printSchema(s model.Schema, indent int) {
	switch v := s.(type) {
	case model.Documented:
		if !p.omitDocs {
			p.printDoc(v.Doc, indent)
		}
		p.printSchema(v.Inner, indent)
	case model.Deprecated:
		p.b.WriteString("@deprecated ")
		p.printSchema(v.Inner, indent)
	case model.Any:
		p.b.WriteString("any")
	case model.Fail:
		p.b.WriteString("fail")
	case model.Boolean:
		p.b.WriteString("boolean")
	case model.GivenText:
		p.b.WriteString(quote(v.Literal))
	case model.Text:
		p.b.WriteString("text")
		p.printTextConstraints(v.Constraints)
	case model.Numeric:
		p.b.WriteString("number")
		p.printNumericConstraints(v.Constraints)
		if v.Default != nil {
			fmt.Fprintf(&p.b, " ?= %s", v.Default.String())
		}
	case model.Binary:
		p.b.WriteString("binary")
		p.printBinaryConstraints(v.Constraints)
	case model.Time:
		p.b.WriteString("time")
		p.printTimeFormat(v.Format)
	case model.EnumValues:
		for i, val := range v.Values {
			if i > 0 {
				p.b.WriteString(" | ")
			}
			p.b.WriteString(quote(val))
		}
	case model.List:
		p.printListItem(v, indent)
	case model.Tuple:
		p.b.WriteByte('(')
		for i, it := range v.Items {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.printSchema(it, indent)
		}
		p.b.WriteByte(')')
	case model.Alternative:
		for i, it := range v.Options {
			if i > 0 {
				p.b.WriteString(" | ")
			}
			p.printSchema(it, indent)
		}
	case model.Object:
		p.printObject(v, indent)
	case model.Map:
		p.b.WriteString("{ ...: ")
		p.printSchema(v.ValueSchema, indent)
		p.b.WriteString(" }")
	case model.NamedRef:
		p.b.WriteString(v.Name)
	case model.ScopedRef:
		if v.Name == "" {
			p.b.WriteString(v.Namespace)
		} else {
			fmt.Fprintf(&p.b, "%s.%s", v.Namespace, v.Name)
		}
	default:
		fmt.Fprintf(&p.b, "/* unsupported schema %T */", s)
	}
}

// printListItem prints item["*"|"+"]constraints, collapsing a SizeRange
// whose only bound is an inclusive minimum of 1 back to the "+" sugar so
// that print then parse recovers an equal schema.
func (p *printer) printListItem(l model.List, indent int) {
	p.printSchema(l.Item, indent)
	plusSugar, rest := splitMinOneSugar(l.Constraints)
	if plusSugar {
		p.b.WriteByte('+')
	} else {
		p.b.WriteByte('*')
	}
	p.printListConstraints(rest)
}

func splitMinOneSugar(lc model.ListConstraints) (bool, model.ListConstraints) {
	if lc.Size == nil || lc.Size.Max != nil || lc.Size.Min == nil {
		return false, lc
	}
	min := lc.Size.Min
	if min.Op != model.MinInclusive || min.Value.Cmp(decimalFromInt(1)) != 0 {
		return false, lc
	}
	rest := lc
	rest.Size = nil
	return true, rest
}

func (p *printer) printTextConstraints(c model.TextConstraints) {
	var clauses []string
	if c.Size != nil {
		clauses = append(clauses, rangeClause("length", *c.Size))
	}
	if c.Regex != nil {
		clauses = append(clauses, fmt.Sprintf("regex = %s", quote(*c.Regex)))
	}
	if c.Format != nil {
		clauses = append(clauses, fmt.Sprintf("format = %s", quote(*c.Format)))
	}
	p.printBracketed(clauses)
}

func (p *printer) printNumericConstraints(c model.NumericConstraints) {
	var clauses []string
	if c.Integer {
		clauses = append(clauses, "integer")
	}
	if c.Value != nil {
		clauses = append(clauses, rangeClause("value", *c.Value))
	}
	p.printBracketed(clauses)
}

func (p *printer) printBinaryConstraints(c model.BinaryConstraints) {
	var clauses []string
	if c.Encoding != nil {
		clauses = append(clauses, fmt.Sprintf("encoding = %s", quoteSingle(encodingName(*c.Encoding))))
	}
	if c.Size != nil {
		clauses = append(clauses, rangeClause("bytes", *c.Size))
	}
	p.printBracketed(clauses)
}

func (p *printer) printTimeFormat(f model.TimeFormat) {
	var clause string
	switch {
	case f.Named != nil:
		clause = fmt.Sprintf("format = %s", quoteSingle(namedTimeFormatName(*f.Named)))
	case f.Pattern != nil:
		clause = fmt.Sprintf("format = %s", quote(*f.Pattern))
	}
	p.printBracketed([]string{clause})
}

func (p *printer) printListConstraints(lc model.ListConstraints) {
	var clauses []string
	if lc.Size != nil {
		clauses = append(clauses, rangeClause("size", *lc.Size))
	}
	for _, u := range lc.Unique {
		switch u.Kind {
		case model.UniqueSimple:
			clauses = append(clauses, "unique")
		case model.UniqueByFields:
			if len(u.Fields) == 1 {
				clauses = append(clauses, "unique = "+u.Fields[0])
			} else {
				clauses = append(clauses, "unique = ("+strings.Join(u.Fields, ", ")+")")
			}
		}
	}
	p.printBracketed(clauses)
}

func (p *printer) printBracketed(clauses []string) {
	clauses = nonEmpty(clauses)
	if len(clauses) == 0 {
		return
	}
	p.b.WriteString(" [ ")
	p.b.WriteString(strings.Join(clauses, ", "))
	p.b.WriteString(" ]")
}

func nonEmpty(ss []string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func rangeClause(name string, r model.SizeRange) string {
	switch {
	case r.Min != nil && r.Min.Op == model.Exact:
		return fmt.Sprintf("%s == %s", name, r.Min.Value.String())
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%s %s %s %s %s", r.Min.Value.String(), lowOpSym(r.Min.Op), name, highOpSym(r.Max.Op), r.Max.Value.String())
	case r.Min != nil:
		return fmt.Sprintf("%s %s %s", name, opSym(r.Min.Op), r.Min.Value.String())
	case r.Max != nil:
		return fmt.Sprintf("%s %s %s", name, opSym(r.Max.Op), r.Max.Value.String())
	default:
		return ""
	}
}

func opSym(op model.BoundOp) string {
	switch op {
	case model.MinInclusive:
		return ">="
	case model.MinExclusive:
		return ">"
	case model.MaxInclusive:
		return "<="
	case model.MaxExclusive:
		return "<"
	default:
		return "=="
	}
}

func lowOpSym(op model.BoundOp) string {
	if op == model.MinExclusive {
		return "<"
	}
	return "<="
}

func highOpSym(op model.BoundOp) string {
	if op == model.MaxExclusive {
		return "<"
	}
	return "<="
}

func encodingName(e model.Encoding) string {
	switch e {
	case model.Base64:
		return "base64"
	case model.Base32:
		return "base32"
	case model.Hex:
		return "hex"
	default:
		return "base64"
	}
}

func namedTimeFormatName(f model.NamedTimeFormat) string {
	switch f {
	case model.ISO8601:
		return "iso8601"
	case model.ISO8601Date:
		return "iso8601-date"
	case model.ISO8601Time:
		return "iso8601-time"
	case model.RFC3339:
		return "rfc3339"
	default:
		return "iso8601"
	}
}

// printObject prints fields sorted by label name, a determinism guarantee
// spec §4.2 requires since Object field order is not semantically
// significant (spec §8 property 7).
func (p *printer) printObject(o model.Object, indent int) {
	names := make([]string, 0, len(o.Fields))
	for n := range o.Fields {
		names = append(names, n)
	}
	sort.Strings(names)

	p.b.WriteString("{\n")
	for _, name := range names {
		f := o.Fields[name]
		p.printField(f, indent+1)
	}
	p.indent(indent)
	p.b.WriteByte('}')
}

func (p *printer) printField(f model.Field, indent int) {
	body := f.Type
	var doc string
	if d, ok := body.(model.Documented); ok {
		doc = d.Doc
		body = d.Inner
	}
	deprecated := false
	if d, ok := body.(model.Deprecated); ok {
		deprecated = true
		body = d.Inner
	}

	if doc != "" && !p.omitDocs {
		p.printDoc(doc, indent)
	}
	p.indent(indent)
	if deprecated {
		p.b.WriteString("@deprecated ")
	}
	p.b.WriteString(f.Label.Name)
	if f.Label.Optional {
		p.b.WriteByte('?')
	}
	p.b.WriteString(": ")
	p.printSchema(body, indent)
	p.b.WriteString(",\n")
}

func quoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
