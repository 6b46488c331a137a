// Package diag collects user-facing compile errors.
package diag

import (
	"fmt"
	"io"
	"sort"
)

type Item struct {
	Filename string
	Line     int
	Col      int
	Code     string
	Msg      string
}

type Bag struct {
	Items []Item
}

func (b *Bag) Add(filename string, line int, col int, msg string) {
	b.Items = append(b.Items, Item{Filename: filename, Line: line, Col: col, Msg: msg})
}

func (b *Bag) AddAt(loc Loc, msg string) {
	b.Add(loc.Filename, loc.Line, loc.Col, msg)
}

// AddCode records an error classified by code.
func (b *Bag) AddCode(loc Loc, code string, msg string) {
	b.Items = append(b.Items, Item{Filename: loc.Filename, Line: loc.Line, Col: loc.Col, Code: code, Msg: msg})
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Items)
}

// Has reports whether an item with code was recorded.
func (b *Bag) Has(code string) bool {
	if b == nil {
		return false
	}
	for _, it := range b.Items {
		if it.Code == code {
			return true
		}
	}
	return false
}

type Loc struct {
	Filename string
	Line     int
	Col      int
}

func Print(w io.Writer, b *Bag) {
	if b == nil || len(b.Items) == 0 {
		return
	}
	items := make([]Item, 0, len(b.Items))
	items = append(items, b.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Filename != items[j].Filename {
			return items[i].Filename < items[j].Filename
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Col < items[j].Col
	})
	for _, it := range items {
		if it.Code != "" {
			fmt.Fprintf(w, "%s:%d:%d: error[%s]: %s\n", it.Filename, it.Line, it.Col, it.Code, it.Msg)
			continue
		}
		fmt.Fprintf(w, "%s:%d:%d: error: %s\n", it.Filename, it.Line, it.Col, it.Msg)
	}
}
