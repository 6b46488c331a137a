package ir

import (
	"io"
	"strings"

	"p0c/internal/names"
)

type Module struct {
	ID        string
	Externals []External
	Globals   []Global
	Funcs     []Func
}

// External is a function implemented outside the module (the runtime).
type External struct {
	Name   string
	Args   []Type
	Result Type
}

type Global struct {
	Name     string
	Ty       Type
	Constant bool
	Value    Constant
}

// Ref returns the address of the global.
func (g Global) Ref() GlobalRef { return GlobalRef{Name: g.Name, Ty: Ptr(g.Ty)} }

type Param struct {
	Name string
	Ty   Type
}

type Func struct {
	Name   string
	Params []Param
	Result Type
	Body   []Instr
}

// Format renders the module as textual IR.
func (m *Module) Format() string {
	var sb strings.Builder
	m.write(&sb)
	return sb.String()
}

// WriteTo streams the textual IR to w.
func (m *Module) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	m.write(&sb)
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (m *Module) write(sb *strings.Builder) {
	sb.WriteString("; ModuleID = '")
	sb.WriteString(m.ID)
	sb.WriteString("'\n")
	for _, d := range m.Externals {
		sb.WriteString("\ndeclare external ccc ")
		sb.WriteString(d.Result.String())
		sb.WriteByte(' ')
		sb.WriteString(names.Global(d.Name))
		sb.WriteByte('(')
		sb.WriteString(strings.Join(typeList(d.Args), ", "))
		sb.WriteString(")\n")
	}
	if len(m.Globals) > 0 {
		sb.WriteByte('\n')
	}
	for _, g := range m.Globals {
		sb.WriteString(names.Global(g.Name))
		if g.Constant {
			sb.WriteString(" = unnamed_addr constant ")
		} else {
			sb.WriteString(" = global ")
		}
		sb.WriteString(g.Value.Typed())
		sb.WriteByte('\n')
	}
	for _, f := range m.Funcs {
		sb.WriteString("\ndefine external ccc ")
		sb.WriteString(f.Result.String())
		sb.WriteByte(' ')
		sb.WriteString(names.Global(f.Name))
		sb.WriteByte('(')
		for i, p := range f.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Ty.String())
			sb.WriteByte(' ')
			sb.WriteString(names.Local(p.Name))
		}
		sb.WriteString(") {\n")
		for _, ins := range f.Body {
			if _, ok := ins.(*Label); !ok {
				sb.WriteString("  ")
			}
			sb.WriteString(ins.fmtString())
			sb.WriteByte('\n')
		}
		sb.WriteString("}\n")
	}
}

// FormatInstr renders a single instruction without indentation.
func FormatInstr(i Instr) string { return i.fmtString() }
