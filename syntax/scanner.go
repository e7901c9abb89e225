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
	"strings"
	"unicode"
	"unicode/utf8"

	"rengbis.dev/go/token"
)

// scanner turns .rengbis source text into a stream of Tokens, the same
// next()/Scan() shape as cue/scanner.Scanner but over a much smaller token
// set.
type scanner struct {
	src  []byte
	file *token.File

	ch       rune
	offset   int
	rdOffset int

	errf func(offset int, msg string)
}

const bom = 0xFEFF

func newScanner(file *token.File, src []byte, errf func(offset int, msg string)) *scanner {
	s := &scanner{file: file, src: src, errf: errf}
	s.next()
	if s.ch == bom {
		s.next()
	}
	return s
}

func (s *scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		r, w := rune(s.src[s.rdOffset]), 1
		switch {
		case r == 0:
			s.error(s.offset, "illegal character NUL")
		case r >= utf8.RuneSelf:
			r, w = utf8.DecodeRune(s.src[s.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				s.error(s.offset, "illegal UTF-8 encoding")
			}
		}
		s.rdOffset += w
		s.ch = r
		return
	}
	s.offset = len(s.src)
	s.ch = -1
}

func (s *scanner) peek() byte {
	if s.rdOffset < len(s.src) {
		return s.src[s.rdOffset]
	}
	return 0
}

func (s *scanner) error(offset int, msg string) {
	if s.errf != nil {
		s.errf(offset, msg)
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}

// Scan returns the next token, skipping whitespace and '#' comments. No
// NEWLINE token is produced; a newline skipped before the token is
// recorded in its NewlineBefore flag instead.
func (s *scanner) Scan() Token {
	sawNewline := s.skipWhitespace()
	t := s.scan()
	t.NewlineBefore = t.NewlineBefore || sawNewline
	return t
}

func (s *scanner) scan() Token {
	offset := s.offset
	switch {
	case s.ch < 0:
		return Token{Kind: EOF, Pos: offset}
	case isLetter(s.ch):
		return s.scanIdent()
	case isDigit(s.ch):
		return s.scanNumber()
	}

	ch := s.ch
	switch ch {
	case '#':
		return s.scanComment()
	case '"':
		return s.scanString('"', DQSTRING)
	case '\'':
		return s.scanString('\'', SQSTRING)
	case '=':
		s.next()
		if s.ch == '>' {
			s.next()
			return Token{Kind: ARROW, Pos: offset}
		}
		if s.ch == '=' {
			s.next()
			return Token{Kind: EQ, Pos: offset}
		}
		return Token{Kind: ASSIGN, Pos: offset}
	case '?':
		s.next()
		if s.ch == '=' {
			s.next()
			return Token{Kind: DEFAULT, Pos: offset}
		}
		return Token{Kind: QUESTION, Pos: offset}
	case '|':
		s.next()
		return Token{Kind: PIPE, Pos: offset}
	case '*':
		s.next()
		return Token{Kind: STAR, Pos: offset}
	case '+':
		s.next()
		return Token{Kind: PLUS, Pos: offset}
	case '-':
		s.next()
		return Token{Kind: MINUS, Pos: offset}
	case ':':
		s.next()
		return Token{Kind: COLON, Pos: offset}
	case ',':
		s.next()
		return Token{Kind: COMMA, Pos: offset}
	case '@':
		s.next()
		return Token{Kind: AT, Pos: offset}
	case '{':
		s.next()
		return Token{Kind: LBRACE, Pos: offset}
	case '}':
		s.next()
		return Token{Kind: RBRACE, Pos: offset}
	case '[':
		s.next()
		return Token{Kind: LBRACK, Pos: offset}
	case ']':
		s.next()
		return Token{Kind: RBRACK, Pos: offset}
	case '(':
		s.next()
		return Token{Kind: LPAREN, Pos: offset}
	case ')':
		s.next()
		return Token{Kind: RPAREN, Pos: offset}
	case '<':
		s.next()
		if s.ch == '=' {
			s.next()
			return Token{Kind: LE, Pos: offset}
		}
		return Token{Kind: LT, Pos: offset}
	case '>':
		s.next()
		if s.ch == '=' {
			s.next()
			return Token{Kind: GE, Pos: offset}
		}
		return Token{Kind: GT, Pos: offset}
	case '.':
		s.next()
		if s.ch == '.' && s.peek() == '.' {
			s.next()
			s.next()
			return Token{Kind: ELLIPSIS, Pos: offset}
		}
		return Token{Kind: DOT, Pos: offset}
	default:
		s.next()
		s.error(offset, "illegal character "+string(ch))
		return Token{Kind: ILLEGAL, Pos: offset, Lit: string(ch)}
	}
}

// skipWhitespace consumes spaces, tabs, carriage returns and newlines,
// reporting whether at least one newline was seen (used to insert an
// implicit field separator in object literals). Every newline is also
// recorded in the file's line table so later Position lookups resolve to
// the correct line, not just line 1.
func (s *scanner) skipWhitespace() bool {
	saw := false
	for s.ch == ' ' || s.ch == '\t' || s.ch == '\n' || s.ch == '\r' {
		isNewline := s.ch == '\n'
		if isNewline {
			saw = true
		}
		s.next()
		if isNewline && s.file != nil {
			s.file.AddLine(s.offset)
		}
	}
	return saw
}

func (s *scanner) scanIdent() Token {
	offset := s.offset
	for isLetter(s.ch) || isDigit(s.ch) {
		s.next()
	}
	return Token{Kind: IDENT, Lit: string(s.src[offset:s.offset]), Pos: offset}
}

func (s *scanner) scanNumber() Token {
	offset := s.offset
	for isDigit(s.ch) {
		s.next()
	}
	if s.ch == '.' && isDigit(rune(s.peek())) {
		s.next()
		for isDigit(s.ch) {
			s.next()
		}
	}
	if s.ch == 'e' || s.ch == 'E' {
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		for isDigit(s.ch) {
			s.next()
		}
	}
	return Token{Kind: NUMBER, Lit: string(s.src[offset:s.offset]), Pos: offset}
}

// scanComment handles both '#' line comments (discarded; scanComment
// itself calls Scan to return the token after them) and '##' doc
// comments, which surface as a DOC
// token whose Lit is the trimmed text after the second '#'.
func (s *scanner) scanComment() Token {
	offset := s.offset
	s.next() // consume first '#'
	doc := false
	if s.ch == '#' {
		doc = true
		s.next()
	}
	start := s.offset
	for s.ch != '\n' && s.ch >= 0 {
		s.next()
	}
	text := strings.TrimRight(string(s.src[start:s.offset]), " \t\r")
	text = strings.TrimPrefix(text, " ")
	if !doc {
		return s.Scan()
	}
	return Token{Kind: DOC, Lit: text, Pos: offset}
}

// scanString reads a quoted literal delimited by quote, supporting \\ and
// \<quote> escapes; it returns the raw, still-escaped content (callers
// unescape via literal helpers in parser.go).
func (s *scanner) scanString(quote rune, kind Kind) Token {
	offset := s.offset
	s.next() // opening quote
	start := s.offset
	for s.ch != quote {
		if s.ch < 0 || s.ch == '\n' {
			s.error(offset, "string literal not terminated")
			break
		}
		if s.ch == '\\' {
			s.next()
		}
		s.next()
	}
	lit := string(s.src[start:s.offset])
	if s.ch == quote {
		s.next()
	}
	return Token{Kind: kind, Lit: lit, Pos: offset}
}
