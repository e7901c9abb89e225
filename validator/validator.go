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

package validator

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/unicode/norm"

	"rengbis.dev/go/model"
)

// ValidationResult is the outcome of one Validate call. IsValid and
// HasWarnings are derived from the Errors/Warnings slices, so callers may
// inspect either.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether no errors were collected.
func (r ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

// HasWarnings reports whether any warnings were collected.
func (r ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// Validator walks a schema against a Value tree. definitions resolves
// NamedRef/ScopedRef leaves that the Loader left symbolic — a recursive
// or mutually-recursive group of definitions is dereferenced lazily
// here rather than expanded eagerly, per the recursive-schema strategy
// recorded in DESIGN.md. A zero Validator (nil Definitions) is usable for
// schemas with no references.
type Validator struct {
	Definitions map[string]model.Schema
}

// New returns a Validator that resolves references against definitions
// (typically a loader.Bundle's Definitions table).
func New(definitions map[string]model.Schema) *Validator {
	return &Validator{Definitions: definitions}
}

// Validate walks schema against v and returns the collected result.
// Errors are emitted in deterministic pre-order traversal of the
// schema/value tree, and warnings (currently only from Deprecated) are
// accumulated orthogonally.
func (val *Validator) Validate(schema model.Schema, v Value) ValidationResult {
	w := &walker{defs: val.Definitions}
	w.walk(schema, v, "")
	return ValidationResult{Errors: w.errs, Warnings: w.warnings}
}

type walker struct {
	defs     map[string]model.Schema
	errs     []string
	warnings []string
}

func (w *walker) fail(path, format string, args ...interface{}) {
	w.errs = append(w.errs, locate(path, fmt.Sprintf(format, args...)))
}

func locate(path, msg string) string {
	if path == "" {
		return msg
	}
	return path + ": " + msg
}

func (w *walker) walk(schema model.Schema, v Value, path string) {
	schema = w.unwrapAnnotations(schema, path)

	switch s := schema.(type) {
	case model.Any:
		return
	case model.Fail:
		w.fail(path, "schema rejects all values")
	case model.Boolean:
		if _, ok := v.(Bool); !ok {
			w.fail(path, "expected boolean; %s found", kindName(v))
		}
	case model.GivenText:
		t, ok := v.(Text)
		if !ok {
			w.fail(path, "expected text; %s found", kindName(v))
			return
		}
		if t.S != s.Literal {
			w.fail(path, "expected text %q; found %q", s.Literal, t.S)
		}
	case model.Text:
		t, ok := v.(Text)
		if !ok {
			w.fail(path, "expected text; %s found", kindName(v))
			return
		}
		w.checkText(s.Constraints, t.S, path)
	case model.Numeric:
		d, ok := coerceNumber(v)
		if !ok {
			w.fail(path, "expected number; %s found", kindName(v))
			return
		}
		w.checkNumeric(s.Constraints, d, path)
	case model.Binary:
		t, ok := v.(Text)
		if !ok {
			w.fail(path, "expected text; %s found", kindName(v))
			return
		}
		w.checkBinary(s.Constraints, t.S, path)
	case model.Time:
		t, ok := v.(Text)
		if !ok {
			w.fail(path, "expected text; %s found", kindName(v))
			return
		}
		if !matchesTimeFormat(s.Format, t.S) {
			w.fail(path, "format (%s) not matching: %s", timeFormatName(s.Format), t.S)
		}
	case model.EnumValues:
		t, ok := v.(Text)
		if !ok {
			w.fail(path, "expected text; %s found", kindName(v))
			return
		}
		found := false
		for _, opt := range s.Values {
			if opt == t.S {
				found = true
				break
			}
		}
		if !found {
			w.fail(path, "enum type does not include provided value: '%s'", t.S)
		}
	case model.List:
		w.checkList(s, v, path)
	case model.Tuple:
		w.checkTuple(s, v, path)
	case model.Alternative:
		w.checkAlternative(s, v, path)
	case model.Object:
		w.checkObject(s, v, path)
	case model.Map:
		w.checkMap(s, v, path)
	case model.NamedRef:
		w.walk(w.resolveRef(model.RefKey{Name: s.Name}, path), v, path)
	case model.ScopedRef:
		w.walk(w.resolveRef(model.RefKey{Namespace: s.Namespace, Name: s.Name}, path), v, path)
	default:
		w.fail(path, "unsupported schema node %T", schema)
	}
}

// unwrapAnnotations strips Documented/Deprecated wrappers, recording
// exactly one warning per Deprecated layer actually walked (an absent
// optional field never reaches this call, so no warning is produced for
// it, satisfying the deprecation-warning invariant).
func (w *walker) unwrapAnnotations(schema model.Schema, path string) model.Schema {
	for {
		switch s := schema.(type) {
		case model.Documented:
			schema = s.Inner
			continue
		case model.Deprecated:
			w.warnings = append(w.warnings, locate(path, "use of deprecated field"))
			schema = s.Inner
			continue
		}
		return schema
	}
}

func (w *walker) resolveRef(key model.RefKey, path string) model.Schema {
	if w.defs == nil {
		w.fail(path, "unresolved reference %s", key.String())
		return model.Fail{}
	}
	sch, ok := w.defs[key.String()]
	if !ok {
		w.fail(path, "unresolved reference %s", key.String())
		return model.Fail{}
	}
	return sch
}

func (w *walker) checkText(c model.TextConstraints, s string, path string) {
	if c.Size != nil {
		n := textSize(s)
		length := decimalOf(int64(n))
		if !c.Size.Satisfied(&length) {
			w.fail(path, "length constraint not met: %d", n)
		}
	}
	if re := c.CompiledRegex(); re != nil {
		if !re.MatchString(s) {
			w.fail(path, "regex (%s) not matching", re.String())
		}
	}
	if c.Format != nil {
		if !matchesGlyphFormat(*c.Format, s) {
			w.fail(path, "format (%s) not matching", *c.Format)
		}
	}
}

func (w *walker) checkNumeric(c model.NumericConstraints, d *apd.Decimal, path string) {
	if c.Integer {
		var frac apd.Decimal
		_, _ = apd.BaseContext.Quantize(&frac, d, 0)
		if frac.Cmp(d) != 0 {
			w.fail(path, "integer constraint not met: %s", d.String())
		}
	}
	if c.Value != nil && !c.Value.Satisfied(d) {
		w.fail(path, "value constraint not met: %s", d.String())
	}
}

func (w *walker) checkBinary(c model.BinaryConstraints, s string, path string) {
	enc := model.Base64
	if c.Encoding != nil {
		enc = *c.Encoding
	}
	decoded, err := decodeBinary(enc, s)
	if err != nil {
		w.fail(path, "encoding (%s) not matching: %s", encodingName(enc), s)
		return
	}
	if c.Size != nil {
		n := decimalOf(int64(len(decoded)))
		if !c.Size.Satisfied(&n) {
			w.fail(path, "bytes constraint (%s) not met: %d", sizeRangeLabel(c.Size), len(decoded))
		}
	}
}

// sizeRangeLabel renders a SizeRange for error messages: a single bound
// value when the range is one-sided or an exact match, otherwise a
// "min..max" pair.
func sizeRangeLabel(sr *model.SizeRange) string {
	switch {
	case sr.Min != nil && sr.Max != nil && sr.Min.Value.Cmp(&sr.Max.Value) == 0:
		return sr.Min.Value.String()
	case sr.Min != nil && sr.Max == nil:
		return sr.Min.Value.String()
	case sr.Max != nil && sr.Min == nil:
		return sr.Max.Value.String()
	default:
		return sr.Min.Value.String() + ".." + sr.Max.Value.String()
	}
}

func (w *walker) checkList(s model.List, v Value, path string) {
	arr, ok := v.(Array)
	if !ok {
		w.fail(path, "expected array; %s found", kindName(v))
		return
	}
	if s.Constraints.Size != nil {
		n := decimalOf(int64(len(arr.Items)))
		if !s.Constraints.Size.Satisfied(&n) {
			w.fail(path, "size constraint not met: %d", len(arr.Items))
		}
	}
	for i, item := range arr.Items {
		w.walk(s.Item, item, fmt.Sprintf("%s[%d]", path, i))
	}
	for _, clause := range s.Constraints.Unique {
		w.checkUnique(clause, arr.Items, path)
	}
}

func (w *walker) checkUnique(clause model.UniqueClause, items []Value, path string) {
	seen := map[string]int{}
	for i, item := range items {
		key, ok := uniqueKey(clause, item)
		if !ok {
			continue
		}
		if first, dup := seen[key]; dup {
			w.fail(path, "uniqueness constraint violated between index %d and %d", first, i)
			continue
		}
		seen[key] = i
	}
}

func uniqueKey(clause model.UniqueClause, item Value) (string, bool) {
	if clause.Kind == model.UniqueSimple {
		return canonicalKey(item), true
	}
	obj, ok := item.(Object)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for _, f := range clause.Fields {
		writeCanonicalKey(&b, obj.Fields[f])
		b.WriteByte('\x00')
	}
	return b.String(), true
}

// canonicalKey renders v as a structural string suitable for the equality
// comparison List's unique constraint requires (spec §4.4): composites are
// serialized recursively field-by-field and item-by-item, rather than by a
// size-only summary, so two differently-shaped objects or arrays of the
// same size never collide on key.
func canonicalKey(v Value) string {
	var b strings.Builder
	writeCanonicalKey(&b, v)
	return b.String()
}

func writeCanonicalKey(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case Null:
		b.WriteString("null")
	case Bool:
		b.WriteString("bool:")
		b.WriteString(strconv.FormatBool(t.B))
	case Number:
		b.WriteString("number:")
		b.WriteString(t.D.String())
	case Text:
		b.WriteString("text:")
		b.WriteString(strconv.Quote(t.S))
	case Array:
		b.WriteString("array[")
		for i, item := range t.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalKey(b, item)
		}
		b.WriteByte(']')
	case Tuple:
		b.WriteString("tuple[")
		for i, item := range t.Items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalKey(b, item)
		}
		b.WriteByte(']')
	case Object:
		b.WriteString("object{")
		for i, name := range sortedObjectKeys(t.Fields) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(name))
			b.WriteByte(':')
			writeCanonicalKey(b, t.Fields[name])
		}
		b.WriteByte('}')
	default:
		b.WriteString("?")
	}
}

func (w *walker) checkTuple(s model.Tuple, v Value, path string) {
	var items []Value
	switch val := v.(type) {
	case Tuple:
		items = val.Items
	case Array:
		items = val.Items
	default:
		w.fail(path, "expected tuple; %s found", kindName(v))
		return
	}
	n := len(s.Items)
	if len(items) < n {
		n = len(items)
	}
	for i := 0; i < n; i++ {
		w.walk(s.Items[i], items[i], fmt.Sprintf("%s[%d]", path, i))
	}
	for i := len(items); i < len(s.Items); i++ {
		w.fail(path, "missing tuple element at index %d", i)
	}
	for i := len(s.Items); i < len(items); i++ {
		w.fail(path, "unexpected tuple element at index %d", i)
	}
}

func (w *walker) checkAlternative(s model.Alternative, v Value, path string) {
	for _, opt := range s.Options {
		sub := &walker{defs: w.defs}
		sub.walk(opt, v, path)
		if len(sub.errs) == 0 {
			w.warnings = append(w.warnings, sub.warnings...)
			return
		}
	}
	w.fail(path, "could not match value %s with any of the available options", describeValue(v))
}

func (w *walker) checkObject(s model.Object, v Value, path string) {
	obj, ok := v.(Object)
	if !ok {
		w.fail(path, "expected object; %s found", kindName(v))
		return
	}
	for _, name := range sortedFieldNames(s.Fields) {
		field := s.Fields[name]
		child := childPath(path, name)
		val, present := obj.Fields[name]
		if !present {
			if field.Label.Optional {
				continue
			}
			if hasDefault(field.Type) {
				continue
			}
			w.fail(path, "Value is missing expected key %s", name)
			continue
		}
		w.walk(field.Type, val, child)
	}
}

func (w *walker) checkMap(s model.Map, v Value, path string) {
	obj, ok := v.(Object)
	if !ok {
		w.fail(path, "expected object; %s found", kindName(v))
		return
	}
	for _, name := range sortedObjectKeys(obj.Fields) {
		w.walk(s.ValueSchema, obj.Fields[name], childPath(path, name))
	}
}

func hasDefault(schema model.Schema) bool {
	for {
		switch s := schema.(type) {
		case model.Documented:
			schema = s.Inner
			continue
		case model.Deprecated:
			schema = s.Inner
			continue
		}
		break
	}
	switch s := schema.(type) {
	case model.Boolean:
		return s.Default != nil
	case model.Text:
		return s.Default != nil
	case model.Numeric:
		return s.Default != nil
	}
	return false
}

func childPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func sortedFieldNames(fields map[string]model.Field) []string {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedObjectKeys(fields map[string]Value) []string {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func kindName(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case Text:
		return "text"
	case Array:
		return "array"
	case Tuple:
		return "tuple"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

func describeValue(v Value) string {
	switch t := v.(type) {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(t.B)
	case Number:
		return t.D.String()
	case Text:
		return strconv.Quote(t.S)
	case Array:
		return fmt.Sprintf("array(len=%d)", len(t.Items))
	case Tuple:
		return fmt.Sprintf("tuple(len=%d)", len(t.Items))
	case Object:
		return fmt.Sprintf("object(keys=%d)", len(t.Fields))
	default:
		return "?"
	}
}

func decimalOf(n int64) apd.Decimal {
	var d apd.Decimal
	d.SetInt64(n)
	return d
}

// textSize counts s in NFC-normalized runes rather than raw bytes or raw
// runes, so a combining-character sequence (e.g. "e" + combining acute)
// sizes the same as its precomposed form ("é") would, resolving spec
// §9's open question about how Text's size constraint should treat
// Unicode content the way a user typing in a composed script expects.
func textSize(s string) int {
	n := 0
	for range norm.NFC.String(s) {
		n++
	}
	return n
}

// coerceNumber implements the Numeric dispatch rule: a Value.Number is
// used directly; a Value.Text is accepted if its trimmed content parses
// as a decimal, so "30", " 30 ", and "3.14" all coerce but "thirty" does
// not.
func coerceNumber(v Value) (*apd.Decimal, bool) {
	switch t := v.(type) {
	case Number:
		d := t.D
		return &d, true
	case Text:
		trimmed := strings.TrimSpace(t.S)
		d, _, err := apd.NewFromString(trimmed)
		if err != nil {
			return nil, false
		}
		return d, true
	default:
		return nil, false
	}
}

func decodeBinary(enc model.Encoding, s string) ([]byte, error) {
	switch enc {
	case model.Base64:
		return base64.StdEncoding.DecodeString(s)
	case model.Base32:
		return base32.StdEncoding.DecodeString(s)
	case model.Hex:
		return hex.DecodeString(s)
	default:
		return nil, fmt.Errorf("unknown encoding %v", enc)
	}
}

func encodingName(enc model.Encoding) string {
	switch enc {
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

// matchesGlyphFormat implements the format mini-language: '#' a decimal
// digit, 'X' a letter, '@' alphanumeric, '*' any single character, and
// any other rune matched literally.
func matchesGlyphFormat(format, s string) bool {
	fr := []rune(format)
	sr := []rune(s)
	if len(fr) != len(sr) {
		return false
	}
	for i, f := range fr {
		c := sr[i]
		switch f {
		case '#':
			if !unicode.IsDigit(c) {
				return false
			}
		case 'X':
			if !unicode.IsLetter(c) {
				return false
			}
		case '@':
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
				return false
			}
		case '*':
			// any single character
		default:
			if f != c {
				return false
			}
		}
	}
	return true
}

func matchesTimeFormat(tf model.TimeFormat, s string) bool {
	if tf.Pattern != nil {
		re, err := regexp.Compile(*tf.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(s)
	}
	if tf.Named == nil {
		return false
	}
	layout := namedTimeLayout(*tf.Named)
	_, err := time.Parse(layout, s)
	return err == nil
}

func namedTimeLayout(n model.NamedTimeFormat) string {
	switch n {
	case model.ISO8601, model.RFC3339:
		return time.RFC3339
	case model.ISO8601Date:
		return "2006-01-02"
	case model.ISO8601Time:
		return "15:04:05"
	default:
		return time.RFC3339
	}
}

func timeFormatName(tf model.TimeFormat) string {
	if tf.Pattern != nil {
		return *tf.Pattern
	}
	if tf.Named != nil {
		switch *tf.Named {
		case model.ISO8601:
			return "iso8601"
		case model.ISO8601Date:
			return "iso8601-date"
		case model.ISO8601Time:
			return "iso8601-time"
		case model.RFC3339:
			return "rfc3339"
		}
	}
	return "unknown"
}
