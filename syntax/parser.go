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
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	rerrors "rengbis.dev/go/errors"
	"rengbis.dev/go/model"
	"rengbis.dev/go/token"
)

// Definition is one named entry of a parsed file: either a regular
// `name = body` definition or a `name => import "path"` import directive.
type Definition struct {
	Name            string
	Doc             string
	Deprecated      bool
	IsImport        bool
	ImportPath      string
	Schema          model.Schema // nil when IsImport
	Pos             token.Pos
}

// Root is a file's optional unnamed `= body` schema.
type Root struct {
	Doc    string
	Schema model.Schema
	Pos    token.Pos
}

// File is the result of parsing one .rengbis source file.
type File struct {
	Definitions []Definition
	Root        *Root
}

// Parse parses src (the content of the file named filename) into a File.
// It returns every error collected, not just the first, the same batching
// cue/parser.ParseFile offers its callers.
func Parse(filename string, src []byte) (*File, error) {
	src = normalizeSource(src)
	fset := token.NewFileSet()
	file := fset.AddFile(filename, len(src))

	p := &parser{file: file}
	var errs rerrors.List
	p.sc = newScanner(file, src, func(offset int, msg string) {
		errs.Addf(rerrors.ParseError, file.Pos(offset), "%s", msg)
	})
	p.errs = &errs
	p.next()

	f := p.parseFile()
	if errs.Len() > 0 {
		return nil, errs.Err()
	}
	return f, nil
}

// normalizeSource discards a UTF-8 BOM and normalizes line endings to '\n',
// per spec §6.
func normalizeSource(src []byte) []byte {
	s := string(src)
	s = strings.TrimPrefix(s, "﻿")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return []byte(s)
}

type parser struct {
	file *token.File
	sc   *scanner
	tok  Token
	errs *rerrors.List
}

func (p *parser) next() {
	p.tok = p.sc.Scan()
}

func (p *parser) pos() token.Pos { return p.file.Pos(p.tok.Pos) }

func (p *parser) errorf(format string, args ...interface{}) {
	p.errs.Addf(rerrors.ParseError, p.pos(), format, args...)
}

func (p *parser) expect(k Kind) Token {
	t := p.tok
	if t.Kind != k {
		p.errorf("expected %s, found %s %q", k, t.Kind, t.Lit)
	} else {
		p.next()
	}
	return t
}

func (p *parser) at(k Kind) bool { return p.tok.Kind == k }

func (p *parser) atIdent(name string) bool {
	return p.tok.Kind == IDENT && p.tok.Lit == name
}

// parseFile implements: file := (definition)* root?
func (p *parser) parseFile() *File {
	f := &File{}
	var pendingDoc string
	var pendingDeprecated bool

	for !p.at(EOF) {
		if p.at(DOC) {
			pendingDoc = joinDoc(pendingDoc, p.tok.Lit)
			p.next()
			continue
		}
		if p.at(AT) && p.peekIsDeprecated() {
			p.next() // '@'
			if p.atIdent("deprecated") {
				p.next()
			} else {
				p.errorf("expected 'deprecated' after '@'")
			}
			pendingDeprecated = true
			continue
		}
		if p.at(ASSIGN) {
			// root: ("##" doc)? "=" body
			pos := p.pos()
			p.next()
			body := p.parseBody()
			f.Root = &Root{Doc: pendingDoc, Schema: body, Pos: pos}
			pendingDoc = ""
			continue
		}
		if p.at(IDENT) {
			def := p.parseDefinition(pendingDoc, pendingDeprecated)
			f.Definitions = append(f.Definitions, def)
			pendingDoc = ""
			pendingDeprecated = false
			continue
		}
		p.errorf("expected definition or root, found %s %q", p.tok.Kind, p.tok.Lit)
		p.next()
	}
	return f
}

func (p *parser) peekIsDeprecated() bool {
	// The scanner is not relookahead-friendly for two tokens, so we accept
	// '@' unconditionally here and validate the identifier after consuming it.
	return true
}

// parseDefinition implements:
//
//	definition := name "=" body
//	            | name "=>" "import" (quotedString | unquotedPath)
func (p *parser) parseDefinition(doc string, deprecated bool) Definition {
	pos := p.pos()
	name := p.expect(IDENT).Lit

	switch {
	case p.at(ARROW):
		p.next()
		if p.atIdent("import") {
			p.next()
		} else {
			p.errorf("expected 'import' after '=>'")
		}
		path := p.parseImportPath()
		return Definition{Name: name, Doc: doc, Deprecated: deprecated, IsImport: true, ImportPath: path, Pos: pos}
	case p.at(ASSIGN):
		p.next()
		body := p.parseBody()
		body = wrapAnnotations(body, doc, deprecated)
		return Definition{Name: name, Doc: doc, Deprecated: deprecated, Schema: body, Pos: pos}
	default:
		p.errorf("expected '=' or '=>', found %s %q", p.tok.Kind, p.tok.Lit)
		return Definition{Name: name, Doc: doc, Deprecated: deprecated, Schema: model.Fail{}, Pos: pos}
	}
}

func (p *parser) parseImportPath() string {
	switch p.tok.Kind {
	case DQSTRING, SQSTRING:
		s := unquote(p.tok.Lit)
		p.next()
		return s
	case IDENT:
		// unquotedPath: a dotted/slashed bare path, read as a run of
		// identifiers joined by '.' or '/'.
		var b strings.Builder
		b.WriteString(p.tok.Lit)
		p.next()
		for p.at(DOT) {
			b.WriteByte('.')
			p.next()
			b.WriteString(p.expect(IDENT).Lit)
		}
		return b.String()
	default:
		p.errorf("expected import path, found %s %q", p.tok.Kind, p.tok.Lit)
		return ""
	}
}

// parseBody implements: body := item ("|" item)*
func (p *parser) parseBody() model.Schema {
	first := p.parseItem()
	if !p.at(PIPE) {
		return first
	}
	items := []model.Schema{first}
	for p.at(PIPE) {
		p.next()
		items = append(items, p.parseItem())
	}
	if allGivenText(items) {
		values := make([]string, len(items))
		for i, it := range items {
			values[i] = it.(model.GivenText).Literal
		}
		enum, err := model.NewEnumValues(values)
		if err != nil {
			p.errorf("%s", err)
			return model.Fail{}
		}
		return enum
	}
	alt, err := model.NewAlternative(items)
	if err != nil {
		p.errorf("%s", err)
		return model.Fail{}
	}
	return alt
}

func allGivenText(items []model.Schema) bool {
	for _, it := range items {
		if _, ok := it.(model.GivenText); !ok {
			return false
		}
	}
	return true
}

// parseItem implements:
//
//	item := atom ("*" | "+")? ("[" constraints "]")?
//	      | "(" body ("," body)+ ")"
func (p *parser) parseItem() model.Schema {
	if p.at(LPAREN) {
		return p.parseParenOrTuple()
	}

	doc, deprecated := p.consumeInlineAnnotations()
	atom := p.parseAtom()

	if p.at(STAR) || p.at(PLUS) {
		minOne := p.at(PLUS)
		p.next()
		lc := model.ListConstraints{}
		if p.at(LBRACK) {
			lc = p.parseListConstraints()
		}
		if minOne {
			lc = ensureMinSize(lc, 1)
		}
		atom = model.List{Item: atom, Constraints: lc}
	}

	return wrapAnnotations(atom, doc, deprecated)
}

// consumeInlineAnnotations parses an optional "@deprecated" and/or "##doc"
// pair preceding an atom, in the order the surface grammar allows before a
// field or definition.
func (p *parser) consumeInlineAnnotations() (doc string, deprecated bool) {
	for {
		switch {
		case p.at(AT):
			p.next()
			if p.atIdent("deprecated") {
				p.next()
			} else {
				p.errorf("expected 'deprecated' after '@'")
			}
			deprecated = true
		case p.at(DOC):
			doc = joinDoc(doc, p.tok.Lit)
			p.next()
		default:
			return doc, deprecated
		}
	}
}

// wrapAnnotations normalizes Deprecated(Documented(d,x)) and
// Documented(d,Deprecated(x)) to Documented(d,Deprecated(x)) per invariant
// I7: Documented is always the outermost wrapper.
func wrapAnnotations(inner model.Schema, doc string, deprecated bool) model.Schema {
	if deprecated {
		inner = model.Deprecated{Inner: inner}
	}
	if doc != "" {
		inner = model.Documented{Doc: doc, Inner: inner}
	}
	return inner
}

func ensureMinSize(lc model.ListConstraints, min int64) model.ListConstraints {
	if lc.Size != nil && lc.Size.Min != nil {
		return lc // an explicit size constraint wins over the `+` sugar
	}
	d := apd.Decimal{}
	d.SetInt64(min)
	b := &model.Bound{Op: model.MinInclusive, Value: d}
	if lc.Size == nil {
		lc.Size = &model.SizeRange{Min: b}
	} else {
		lc.Size.Min = b
	}
	return lc
}

// parseParenOrTuple implements: "(" body ("," body)+ ")" | "(" body ")"
func (p *parser) parseParenOrTuple() model.Schema {
	p.next() // '('
	first := p.parseBody()
	if !p.at(COMMA) {
		p.expect(RPAREN)
		return first
	}
	items := []model.Schema{first}
	for p.at(COMMA) {
		p.next()
		items = append(items, p.parseBody())
	}
	p.expect(RPAREN)
	tup, err := model.NewTuple(items)
	if err != nil {
		p.errorf("%s", err)
		return model.Fail{}
	}
	return tup
}

// parseAtom implements the atom production.
func (p *parser) parseAtom() model.Schema {
	switch {
	case p.atIdent("any"):
		p.next()
		return model.Any{}
	case p.atIdent("boolean"):
		p.next()
		return model.Boolean{}
	case p.atIdent("text"):
		p.next()
		tc := model.TextConstraints{}
		if p.at(LBRACK) {
			tc = p.parseTextConstraints()
		}
		return model.Text{Constraints: tc}
	case p.atIdent("number"):
		p.next()
		nc := model.NumericConstraints{}
		if p.at(LBRACK) {
			nc = p.parseNumericConstraints()
		}
		var def *apd.Decimal
		if p.at(DEFAULT) {
			p.next()
			def = p.parseDecimalLiteral()
		}
		return model.Numeric{Constraints: nc, Default: def}
	case p.atIdent("binary"):
		p.next()
		bc := model.BinaryConstraints{}
		if p.at(LBRACK) {
			bc = p.parseBinaryConstraints()
		}
		return model.Binary{Constraints: bc}
	case p.atIdent("time"):
		p.next()
		return model.Time{Format: p.parseTimeConstraints()}
	case p.atIdent("enum"):
		p.next()
		return p.parseEnumLiteral()
	case p.at(LBRACE):
		return p.parseBraceLiteral()
	case p.at(DQSTRING):
		lit := unquote(p.tok.Lit)
		p.next()
		return model.GivenText{Literal: lit}
	case p.at(IDENT):
		return p.parseRefName()
	default:
		p.errorf("expected schema atom, found %s %q", p.tok.Kind, p.tok.Lit)
		p.next()
		return model.Fail{}
	}
}

func (p *parser) parseRefName() model.Schema {
	name := p.expect(IDENT).Lit
	if p.at(DOT) {
		p.next()
		field := p.expect(IDENT).Lit
		return model.ScopedRef{Namespace: name, Name: field}
	}
	return model.NamedRef{Name: name}
}

// parseBraceLiteral distinguishes objectLiteral from mapLiteral by whether
// the first token after '{' is "...".
func (p *parser) parseBraceLiteral() model.Schema {
	p.expect(LBRACE)
	if p.at(ELLIPSIS) {
		p.next()
		p.expect(COLON)
		valueSchema := p.parseBody()
		p.expect(RBRACE)
		return model.Map{ValueSchema: valueSchema}
	}

	var fields []model.Field
	for !p.at(RBRACE) && !p.at(EOF) {
		fields = append(fields, p.parseField())
		if p.at(COMMA) {
			p.next()
			continue
		}
		if p.at(RBRACE) {
			break
		}
		// newline-separated field: nothing to consume, loop continues.
	}
	p.expect(RBRACE)
	obj, err := model.NewObject(fields)
	if err != nil {
		p.errorf("%s", err)
		return model.Fail{}
	}
	return obj
}

// parseField implements:
//
//	field := ("@deprecated")? docComment? name ("?")? ":" body
func (p *parser) parseField() model.Field {
	doc, deprecated := p.consumeInlineAnnotations()
	name := p.expect(IDENT).Lit
	optional := false
	if p.at(QUESTION) {
		optional = true
		p.next()
	}
	p.expect(COLON)
	body := p.parseBody()
	body = wrapAnnotations(body, doc, deprecated)

	label := model.Mandatory(name)
	if optional {
		label = model.OptionalLabel(name)
	}
	return model.Field{Label: label, Type: body}
}

func (p *parser) parseEnumLiteral() model.Schema {
	p.expect(LBRACE)
	var values []string
	for !p.at(RBRACE) && !p.at(EOF) {
		values = append(values, unquote(p.expect(DQSTRING).Lit))
		if p.at(COMMA) {
			p.next()
		}
	}
	p.expect(RBRACE)
	enum, err := model.NewEnumValues(values)
	if err != nil {
		p.errorf("%s", err)
		return model.Fail{}
	}
	return enum
}

func (p *parser) parseDecimalLiteral() *apd.Decimal {
	neg := false
	if p.at(MINUS) {
		neg = true
		p.next()
	}
	lit := p.expect(NUMBER).Lit
	if neg {
		lit = "-" + lit
	}
	d, _, err := apd.NewFromString(lit)
	if err != nil {
		p.errorf("invalid decimal literal %q: %v", lit, err)
		d = apd.New(0, 0)
	}
	return d
}

func joinDoc(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}

// unquote decodes the escapes in the raw content a scanString call
// captured: \n and \t become a newline and a tab, and a backslash before
// any other character (such as \\ or \<quote>) yields that character.
func unquote(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(raw[i])
			}
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// quote renders s back into a double-quoted ReNGBis string literal, the
// inverse of unquote, used by the printer.
func quote(s string) string {
	return strconv.Quote(s)
}
