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

// Package syntax implements the bidirectional grammar of spec §4.2: Scan
// and Parse turn .rengbis source text into a model.Schema plus a table of
// named definitions, and Print renders any model.Schema back to the
// canonical textual form, modeled on the split between
// cuelang.org/go/cue/scanner, cue/parser and cue/format.
package syntax

// Kind identifies one lexical token kind.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	NEWLINE

	IDENT
	NUMBER
	DQSTRING // "double quoted"
	SQSTRING // 'single quoted'
	DOC      // ## doc comment (text has ## stripped)

	ASSIGN    // =
	ARROW     // =>
	DEFAULT   // ?=
	PIPE      // |
	STAR      // *
	PLUS      // +
	QUESTION  // ?
	COLON     // :
	COMMA     // ,
	AT        // @
	DOT       // .
	ELLIPSIS  // ...
	LBRACE    // {
	RBRACE    // }
	LBRACK    // [
	RBRACK    // ]
	LPAREN    // (
	RPAREN    // )
	LE        // <=
	LT        // <
	GE        // >=
	GT        // >
	EQ        // ==
	MINUS     // -
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", NEWLINE: "newline",
	IDENT: "identifier", NUMBER: "number", DQSTRING: "string", SQSTRING: "string",
	DOC: "doc comment",
	ASSIGN: "=", ARROW: "=>", DEFAULT: "?=", PIPE: "|", STAR: "*", PLUS: "+",
	QUESTION: "?", COLON: ":", COMMA: ",", AT: "@", DOT: ".", ELLIPSIS: "...",
	LBRACE: "{", RBRACE: "}", LBRACK: "[", RBRACK: "]", LPAREN: "(", RPAREN: ")",
	LE: "<=", LT: "<", GE: ">=", GT: ">", EQ: "==", MINUS: "-",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Token is one lexical token produced by the Scanner.
type Token struct {
	Kind          Kind
	Lit           string
	Pos           int  // byte offset into the source
	NewlineBefore bool // a newline was skipped before this token
}
