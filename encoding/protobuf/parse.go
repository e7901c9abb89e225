// Copyright 2019 CUE Authors
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

// Package protobuf translates between protocol buffer message/enum
// definitions and the rengbis schema model, using
// github.com/emicklei/proto (the parser cue-lang-cue's own
// encoding/protobuf uses) and github.com/protocolbuffers/txtpbfmt
// (present in the teacher's go.mod but never imported by its sources) in
// this module's translator layer (spec §6: translators reuse the same
// Model and are specified only by the contracts the core exposes).
//
// Parse is grounded on encoding/protobuf's own proto-to-CUE extractor:
// the same dispatch over proto.Visitee kinds (Message, Enum,
// NormalField, MapField, Oneof, EnumField), the same scalar-type table,
// and the same deferred-error convention of collecting problems rather
// than panicking on the first one. It targets model.Schema directly
// instead of building an intermediate ast.File, since this module's
// Model already is the shared target every translator converges on.
package protobuf

import (
	"bytes"
	"strings"

	"github.com/emicklei/proto"

	"rengbis.dev/go/errors"
	"rengbis.dev/go/loader"
	"rengbis.dev/go/model"
	"rengbis.dev/go/token"
)

// Parse reads a .proto source file and converts its top-level message
// and enum declarations into a table of named model.Schema definitions,
// the same shape as a loader.Bundle's Definitions. Cross-message
// references are resolved to a fixpoint via loader.ResolveTable, so a
// self- or mutually-recursive set of messages (a tree node with a
// repeated field of its own type, for instance) comes back with its
// internal NamedRefs left intact for lazy resolution, exactly as spec §9
// describes for rengbis's own recursive schemas.
func Parse(filename string, src []byte) (map[string]model.Schema, error) {
	p := proto.NewParser(bytes.NewReader(src))
	p.Filename(filename)
	def, err := p.Parse()
	if err != nil {
		return nil, errors.Newf(errors.ParseError, token.NoPos, "protobuf: %s: %v", filename, err)
	}

	c := &converter{defs: map[string]model.Schema{}}
	for _, e := range def.Elements {
		c.topElement(e)
	}
	if len(c.errs) > 0 {
		return nil, c.errs[0]
	}

	resolved, err := loader.ResolveTable(c.defs)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

type converter struct {
	defs map[string]model.Schema
	errs []error
}

func (c *converter) fail(format string, args ...interface{}) {
	c.errs = append(c.errs, errors.Newf(errors.ParseError, token.NoPos, format, args...))
}

func (c *converter) define(name string, s model.Schema) {
	if _, ok := c.defs[name]; ok {
		c.errs = append(c.errs, errors.Newf(errors.DuplicateDefinition, token.NoPos, "protobuf: duplicate message or enum name %q", name))
		return
	}
	c.defs[name] = s
}

func (c *converter) topElement(v proto.Visitee) {
	switch x := v.(type) {
	case *proto.Message:
		c.message(x.Name, x)
	case *proto.Enum:
		c.enum(x.Name, x)
	case *proto.Syntax, *proto.Package, *proto.Option, *proto.Import, *proto.Comment:
		// carries no schema-level information
	case *proto.Service:
		// RPC method signatures have no analogue in a data schema
	default:
		c.fail("protobuf: unsupported top-level element %T", v)
	}
}

// message converts one message declaration to an Object definition named
// name. Nested messages and enums are hoisted to top-level definitions
// prefixed with their enclosing message's name, since the Model has no
// notion of nested named scopes the way a .proto file does.
func (c *converter) message(name string, m *proto.Message) {
	if m.IsExtend {
		return
	}

	var fields []model.Field
	for _, e := range m.Elements {
		switch x := e.(type) {
		case *proto.NormalField:
			fields = append(fields, c.normalField(x))
		case *proto.MapField:
			fields = append(fields, c.mapField(x))
		case *proto.Oneof:
			fields = append(fields, c.oneof(x))
		case *proto.Enum:
			c.enum(name+"_"+x.Name, x)
		case *proto.Message:
			c.message(name+"_"+x.Name, x)
		case *proto.Comment, *proto.Extensions, *proto.Reserved:
			// doc comments on the message itself are handled below; field
			// reservations have no validation-time meaning
		default:
			c.fail("protobuf: message %s: unsupported element %T", name, e)
		}
	}

	obj, err := model.NewObject(fields)
	if err != nil {
		c.fail("protobuf: message %s: %v", name, err)
		return
	}

	var s model.Schema = obj
	if doc := comment(m.Comment); doc != "" {
		s = model.Documented{Doc: doc, Inner: s}
	}
	c.define(name, s)
}

// enum converts one enum declaration to an EnumValues definition named
// name, whose values are the enum's value names (not their integer tags;
// the Model's EnumValues accepts Value.Text, spec §3).
func (c *converter) enum(name string, e *proto.Enum) {
	var values []string
	for _, el := range e.Elements {
		if f, ok := el.(*proto.EnumField); ok {
			values = append(values, f.Name)
		}
	}
	ev, err := model.NewEnumValues(values)
	if err != nil {
		c.fail("protobuf: enum %s: %v", name, err)
		return
	}

	var s model.Schema = ev
	if doc := comment(e.Comment); doc != "" {
		s = model.Documented{Doc: doc, Inner: s}
	}
	c.define(name, s)
}

// normalField converts a single scalar/message/repeated field to a
// model.Field. proto3 has no `required` keyword — every field is
// optional from the wire format's perspective — so every field is given
// an Optional Label regardless of its declared type, matching the wire
// semantics rather than treating message presence as mandatory.
func (c *converter) normalField(f *proto.NormalField) model.Field {
	var s model.Schema = c.resolveType(f.Type)
	if f.Repeated {
		s = model.List{Item: s}
	}
	if doc := comment(f.Comment); doc != "" {
		s = model.Documented{Doc: doc, Inner: s}
	}
	return model.Field{Label: model.OptionalLabel(f.Name), Type: s}
}

// mapField converts a `map<K, V>` field to a Map definition keyed under
// the field's own name; keys are always strings in the Model regardless
// of the proto map's declared key type, per spec §3's Map variant.
func (c *converter) mapField(f *proto.MapField) model.Field {
	var s model.Schema = model.Map{ValueSchema: c.resolveType(f.Type)}
	if doc := comment(f.Comment); doc != "" {
		s = model.Documented{Doc: doc, Inner: s}
	}
	return model.Field{Label: model.OptionalLabel(f.Name), Type: s}
}

// oneof converts a `oneof` group to a single Optional field whose Schema
// is an Alternative of single-field Objects, one per branch, so the
// chosen branch's field name survives validation instead of being
// erased the way a bare type union would.
func (c *converter) oneof(x *proto.Oneof) model.Field {
	var options []model.Schema
	for _, el := range x.Elements {
		of, ok := el.(*proto.OneOfField)
		if !ok {
			continue
		}
		branch, err := model.NewObject([]model.Field{c.normalField(&proto.NormalField{Field: of.Field})})
		if err != nil {
			c.fail("protobuf: oneof %s: %v", x.Name, err)
			continue
		}
		options = append(options, branch)
	}
	if len(options) < 2 {
		// a oneof with a single branch degrades to that branch's own Object
		if len(options) == 1 {
			return model.Field{Label: model.OptionalLabel(x.Name), Type: options[0]}
		}
		c.fail("protobuf: oneof %s has no fields", x.Name)
		return model.Field{Label: model.OptionalLabel(x.Name), Type: model.Fail{}}
	}
	alt, err := model.NewAlternative(options)
	if err != nil {
		c.fail("protobuf: oneof %s: %v", x.Name, err)
		return model.Field{Label: model.OptionalLabel(x.Name), Type: model.Fail{}}
	}
	return model.Field{Label: model.OptionalLabel(x.Name), Type: alt}
}

// resolveType maps one proto scalar type name to its Model equivalent,
// the same table encoding/protobuf's own protoToCUE uses, adapted to the
// five base Model kinds instead of CUE's wider numeric kind set: every
// fixed-width integer collapses to Numeric{Integer: true} since the
// Model has no bit-width-specific numeric variant. A name absent from
// the table is a reference to another message or enum in this same
// file, resolved by loader.ResolveTable once every top-level element has
// been visited.
func (c *converter) resolveType(typ string) model.Schema {
	switch typ {
	case "string":
		return model.Text{}
	case "bool":
		return model.Boolean{}
	case "bytes":
		return model.Binary{}
	case "float", "double":
		return model.Numeric{}
	case "int32", "int64", "uint32", "uint64",
		"sint32", "sint64", "fixed32", "fixed64", "sfixed32", "sfixed64":
		return model.Numeric{Constraints: model.NumericConstraints{Integer: true}}
	default:
		return model.NamedRef{Name: typ}
	}
}

// comment joins a proto.Comment's lines the way syntax.Parse joins
// consecutive leading `##` doc-comment lines: newline-separated, with
// the comment-marker prefix and surrounding whitespace stripped.
func comment(c *proto.Comment) string {
	if c == nil {
		return ""
	}
	lines := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}
