package source

import (
	"os"
	"sort"
	"unicode/utf8"
)

// File holds one .p0 source and its line start offsets.
type File struct {
	Name        string
	Input       string
	lineOffsets []int // 0-based byte offsets of each line start
}

func NewFile(name string, input string) *File {
	f := &File{Name: name, Input: input}
	f.lineOffsets = []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// ReadFile loads path from disk.
func ReadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFile(path, string(b)), nil
}

// LineCol returns 1-based line/column for a byte offset.
// Column is counted in runes, not bytes.
func (f *File) LineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > len(f.Input) {
		off = len(f.Input)
	}
	i := sort.Search(len(f.lineOffsets), func(i int) bool { return f.lineOffsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	lineStart := f.lineOffsets[i]
	col := 1
	pos := lineStart
	for pos < off {
		_, sz := utf8.DecodeRuneInString(f.Input[pos:])
		if sz <= 0 {
			sz = 1
		}
		// An offset inside a multi-byte rune keeps the rune's column.
		if pos+sz > off {
			break
		}
		col++
		pos += sz
	}
	return i + 1, col
}

type Span struct {
	File       *File
	Start, End int // byte offsets [start, end)
}

func (s Span) LocStart() (filename string, line int, col int) {
	if s.File == nil {
		return "", 0, 0
	}
	line, col = s.File.LineCol(s.Start)
	return s.File.Name, line, col
}

// Text returns the source slice covered by s.
func (s Span) Text() string {
	if s.File == nil || s.Start < 0 || s.End > len(s.File.Input) || s.Start > s.End {
		return ""
	}
	return s.File.Input[s.Start:s.End]
}

// Join returns the smallest span covering a and b.
func Join(a, b Span) Span {
	if a.File == nil {
		return b
	}
	if b.File == nil {
		return a
	}
	out := a
	if b.Start < out.Start {
		out.Start = b.Start
	}
	if b.End > out.End {
		out.End = b.End
	}
	return out
}
