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

// Package errors defines the shared error types produced by the rengbis
// schema core, modeled on cuelang.org/go/cue/errors: every error carries a
// position and a stable Kind so callers can match on failure mode without
// parsing message text.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"rengbis.dev/go/token"
)

// Kind identifies one of the stable error categories the core produces.
type Kind string

const (
	ParseError           Kind = "ParseError"
	ConstraintError      Kind = "ConstraintError"
	DuplicateField       Kind = "DuplicateField"
	InvalidSchema        Kind = "InvalidSchema"
	DuplicateDefinition  Kind = "DuplicateDefinition"
	UnresolvedReference  Kind = "UnresolvedReference"
	CycleDetected        Kind = "CycleDetected"
	ImportNotFound       Kind = "ImportNotFound"
)

// Error is the common interface implemented by every fatal error the core
// raises. Validation diagnostics are plain strings (see validator.Result)
// rather than Errors, since §7 of the spec classifies them as collected,
// not thrown.
type Error interface {
	error
	Position() token.Pos
	Kind() Kind
}

type posError struct {
	kind Kind
	pos  token.Pos
	msg  string
}

func (e *posError) Error() string {
	if e.pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.pos, e.msg)
	}
	return e.msg
}

func (e *posError) Position() token.Pos { return e.pos }
func (e *posError) Kind() Kind          { return e.kind }

// Newf creates a positioned Error of the given kind.
func Newf(kind Kind, pos token.Pos, format string, args ...interface{}) Error {
	return &posError{kind: kind, pos: pos, msg: fmt.Sprintf(format, args...)}
}

// List is an accumulator of Errors, sorted by position when printed, the
// way cue/errors.List collects diagnostics across a whole file.
type List struct {
	errs []Error
}

// Add appends err to the list, ignoring a nil err.
func (l *List) Add(err Error) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// Addf is a convenience wrapper around Add(Newf(...)).
func (l *List) Addf(kind Kind, pos token.Pos, format string, args ...interface{}) {
	l.Add(Newf(kind, pos, format, args...))
}

// Len reports the number of collected errors.
func (l *List) Len() int { return len(l.errs) }

// Errs returns the collected errors sorted by file position.
func (l *List) Errs() []Error {
	sorted := make([]Error, len(l.errs))
	copy(sorted, l.errs)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Position().Position(), sorted[j].Position().Position()
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
	return sorted
}

// Err returns nil if the list is empty, the single error if it holds
// exactly one, or the list itself (as an error) otherwise.
func (l *List) Err() error {
	switch len(l.errs) {
	case 0:
		return nil
	case 1:
		return l.errs[0]
	default:
		return l
	}
}

func (l *List) Error() string {
	var b strings.Builder
	for i, e := range l.Errs() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}
