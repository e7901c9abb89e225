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

// Package token holds source positions for the rengbis schema syntax,
// modeled after cuelang.org/go/cue/token but trimmed to what a single-file
// recursive-descent parser needs: a position is an offset into one named
// file, without the multi-layer priority bookkeeping CUE's FileSet carries.
package token

import (
	"fmt"
	"sort"
)

// Position describes a source location in a form suitable for printing in
// diagnostics.
type Position struct {
	Filename string
	Offset   int // byte offset, starting at 0
	Line     int // line number, starting at 1
	Column   int // rune column on the line, starting at 1
}

// IsValid reports whether the position has a known line.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	s := p.Filename
	if p.IsValid() {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	if s == "" {
		s = "-"
	}
	return s
}

// Pos is a compact, comparable reference into a File's line table.
type Pos struct {
	file   *File
	offset int
}

// NoPos is the zero value of Pos; it carries no location.
var NoPos = Pos{}

// IsValid reports whether p points into a File.
func (p Pos) IsValid() bool { return p.file != nil }

// Position expands p into its file/line/column form.
func (p Pos) Position() Position {
	if p.file == nil {
		return Position{}
	}
	return p.file.position(p.offset)
}

func (p Pos) String() string { return p.Position().String() }

// File tracks newline offsets for one source file so that byte offsets
// recorded during scanning can be expanded into line/column positions only
// when a diagnostic actually needs to be printed.
type File struct {
	name    string
	base    int
	size    int
	lines   []int // offset of each line start, line[0] == 0
}

// NewFile creates a File of the given size whose positions start at base.
// FileSet.AddFile is the registering counterpart.
func NewFile(name string, base, size int) *File {
	return &File{name: name, base: base, size: size, lines: []int{0}}
}

// Name returns the file's name.
func (f *File) Name() string { return f.name }

// AddLine records that a new line begins at the given byte offset. Offsets
// must be added in increasing order.
func (f *File) AddLine(offset int) {
	if n := len(f.lines); (n == 0 || f.lines[n-1] < offset) && offset < f.size {
		f.lines = append(f.lines, offset)
	}
}

// Pos returns the Pos for the given byte offset within the file.
func (f *File) Pos(offset int) Pos {
	return Pos{file: f, offset: offset}
}

func (f *File) position(offset int) Position {
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return Position{
		Filename: f.name,
		Offset:   offset,
		Line:     i + 1,
		Column:   offset - f.lines[i] + 1,
	}
}

// FileSet hands out Files with non-overlapping bases. syntax.Parse creates
// a fresh FileSet for every file it parses, so positions from different
// imported files are told apart by their file names.
type FileSet struct {
	files []*File
	base  int
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet { return &FileSet{base: 1} }

// AddFile creates and registers a new File of the given size.
func (s *FileSet) AddFile(name string, size int) *File {
	f := NewFile(name, s.base, size)
	s.base += size + 1
	s.files = append(s.files, f)
	return f
}
