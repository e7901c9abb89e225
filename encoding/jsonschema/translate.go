// Copyright 2020 CUE Authors
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

// Package jsonschema translates a resolved schema into an OpenAPI 3
// document whose component schemas are, in turn, JSON Schema. This is a
// one-way, best-effort export used by tooling that needs to hand a
// rengbis schema to something that only understands JSON Schema/OpenAPI
// (a doc generator, an API gateway); it is not part of the validating
// core and its coverage is necessarily lossy for constructs JSON Schema
// has no equivalent for (Tuple's positional typing is approximated with
// a fixed-length array whose items are a oneOf of the slot schemas,
// Binary's encoding is kept only as a description note, and Text's glyph
// `format` is dropped).
package jsonschema

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"rengbis.dev/go/model"
)

// Translate builds an OpenAPI document whose Components.Schemas holds
// one entry per name in defs plus, when root is non-nil, an entry named
// "Root" for the file's root schema.
func Translate(defs map[string]model.Schema, root model.Schema) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: "rengbis schema export", Version: "0"},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &translator{defs: defs}
	for _, name := range names {
		s, err := t.convert(defs[name])
		if err != nil {
			return nil, fmt.Errorf("translating %q: %w", name, err)
		}
		doc.Components.Schemas[componentName(name)] = openapi3.NewSchemaRef("", s)
	}

	if root != nil {
		s, err := t.convert(root)
		if err != nil {
			return nil, fmt.Errorf("translating root: %w", err)
		}
		doc.Components.Schemas["Root"] = openapi3.NewSchemaRef("", s)
	}

	return doc, nil
}

// componentName maps a dotted rengbis name (e.g. "shared.Person", from a
// namespaced import) to a JSON-Schema-friendly component name, since
// OpenAPI component keys may not contain '.'.
func componentName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '.' {
			out = append(out, '_')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

type translator struct {
	defs     map[string]model.Schema
	visiting map[string]bool
}

func (t *translator) convert(schema model.Schema) (*openapi3.Schema, error) {
	switch s := schema.(type) {
	case model.Any:
		return openapi3.NewSchema(), nil
	case model.Fail:
		// No value satisfies Fail; the closest JSON Schema equivalent is
		// an empty enum, which by definition nothing validates against.
		return openapi3.NewSchema().WithEnum(), nil
	case model.Boolean:
		out := openapi3.NewBoolSchema()
		if s.Default != nil {
			out.Default = *s.Default
		}
		return out, nil
	case model.GivenText:
		return openapi3.NewStringSchema().WithEnum(s.Literal), nil
	case model.Text:
		out := openapi3.NewStringSchema()
		applyTextConstraints(out, s.Constraints)
		if s.Default != nil {
			out.Default = *s.Default
		}
		return out, nil
	case model.Numeric:
		out := openapi3.NewFloat64Schema()
		if s.Constraints.Integer {
			out = openapi3.NewIntegerSchema()
		}
		if s.Constraints.Value != nil {
			applyNumericRange(out, s.Constraints.Value)
		}
		return out, nil
	case model.Binary:
		out := openapi3.NewStringSchema().WithFormat("byte")
		if s.Constraints.Encoding != nil {
			out.Description = fmt.Sprintf("encoding: %s", encodingString(*s.Constraints.Encoding))
		}
		return out, nil
	case model.Time:
		return openapi3.NewStringSchema().WithFormat("date-time"), nil
	case model.EnumValues:
		vals := make([]interface{}, len(s.Values))
		for i, v := range s.Values {
			vals[i] = v
		}
		return openapi3.NewStringSchema().WithEnum(vals...), nil
	case model.List:
		item, err := t.convert(s.Item)
		if err != nil {
			return nil, err
		}
		out := openapi3.NewArraySchema().WithItems(item)
		if s.Constraints.Size != nil {
			applySizeRangeAsCount(out, s.Constraints.Size)
		}
		if len(s.Constraints.Unique) > 0 {
			out.UniqueItems = true
		}
		return out, nil
	case model.Tuple:
		// JSON Schema has no first-class positional tuple; approximate
		// with a fixed-length array whose items is a oneOf of the slot
		// schemas, noting the loss in the description.
		items := make([]*openapi3.Schema, len(s.Items))
		for i, it := range s.Items {
			sc, err := t.convert(it)
			if err != nil {
				return nil, err
			}
			items[i] = sc
		}
		out := openapi3.NewArraySchema()
		out.Items = openapi3.NewSchemaRef("", openapi3.NewOneOfSchema(items...))
		out.MinItems = uint64(len(items))
		out.MaxItems = uint64Ptr(uint64(len(items)))
		out.Description = "approximated tuple: JSON Schema has no positional item typing"
		return out, nil
	case model.Alternative:
		opts := make([]*openapi3.Schema, len(s.Options))
		for i, o := range s.Options {
			sc, err := t.convert(o)
			if err != nil {
				return nil, err
			}
			opts[i] = sc
		}
		return openapi3.NewOneOfSchema(opts...), nil
	case model.Object:
		out := openapi3.NewObjectSchema()
		var required []string
		names := make([]string, 0, len(s.Fields))
		for name := range s.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			field := s.Fields[name]
			fs, err := t.convert(field.Type)
			if err != nil {
				return nil, err
			}
			out.WithProperty(name, fs)
			if !field.Label.Optional {
				required = append(required, name)
			}
		}
		if len(required) > 0 {
			out.WithRequired(required)
		}
		return out, nil
	case model.Map:
		vs, err := t.convert(s.ValueSchema)
		if err != nil {
			return nil, err
		}
		out := openapi3.NewObjectSchema()
		out.AdditionalProperties = openapi3.AdditionalProperties{Schema: openapi3.NewSchemaRef("", vs)}
		return out, nil
	case model.Documented:
		out, err := t.convert(s.Inner)
		if err != nil {
			return nil, err
		}
		out.Description = s.Doc
		return out, nil
	case model.Deprecated:
		out, err := t.convert(s.Inner)
		if err != nil {
			return nil, err
		}
		out.Deprecated = true
		return out, nil
	case model.NamedRef:
		return t.convertRef(model.RefKey{Name: s.Name})
	case model.ScopedRef:
		return t.convertRef(model.RefKey{Namespace: s.Namespace, Name: s.Name})
	default:
		return nil, fmt.Errorf("unsupported schema node %T", schema)
	}
}

// convertRef inlines the referenced definition. Self/mutually recursive
// references are cut off at one level by emitting a bare object schema
// with a descriptive note, since inlining infinitely is not possible and
// OpenAPI's own $ref mechanism would require a second translation pass
// this exporter does not attempt.
func (t *translator) convertRef(key model.RefKey) (*openapi3.Schema, error) {
	name := key.String()
	target, ok := t.defs[name]
	if !ok {
		return nil, fmt.Errorf("unresolved reference %s", name)
	}
	if _, isRef := target.(model.NamedRef); isRef || t.visiting[name] {
		out := openapi3.NewObjectSchema()
		out.Description = fmt.Sprintf("recursive reference to %s", name)
		return out, nil
	}
	if t.visiting == nil {
		t.visiting = map[string]bool{}
	}
	t.visiting[name] = true
	defer delete(t.visiting, name)
	return t.convert(target)
}

func applyTextConstraints(out *openapi3.Schema, c model.TextConstraints) {
	if c.Size != nil {
		if c.Size.Min != nil {
			n, _ := c.Size.Min.Value.Int64()
			out.MinLength = uint64(n)
		}
		if c.Size.Max != nil {
			n, _ := c.Size.Max.Value.Int64()
			out.MaxLength = uint64Ptr(uint64(n))
		}
	}
	if c.Regex != nil {
		out.Pattern = *c.Regex
	}
}

func applyNumericRange(out *openapi3.Schema, r *model.ValueRange) {
	if r.Min != nil {
		f, _ := r.Min.Value.Float64()
		out.Min = &f
		out.ExclusiveMin = r.Min.Op == model.MinExclusive
	}
	if r.Max != nil {
		f, _ := r.Max.Value.Float64()
		out.Max = &f
		out.ExclusiveMax = r.Max.Op == model.MaxExclusive
	}
}

func applySizeRangeAsCount(out *openapi3.Schema, r *model.SizeRange) {
	if r.Min != nil {
		n, _ := r.Min.Value.Int64()
		out.MinItems = uint64(n)
	}
	if r.Max != nil {
		n, _ := r.Max.Value.Int64()
		out.MaxItems = uint64Ptr(uint64(n))
	}
}

func encodingString(e model.Encoding) string {
	switch e {
	case model.Base64:
		return "base64"
	case model.Base32:
		return "base32"
	case model.Hex:
		return "hex"
	default:
		return "unknown"
	}
}

func uint64Ptr(n uint64) *uint64 { return &n }
