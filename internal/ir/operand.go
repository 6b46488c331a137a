package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"p0c/internal/names"
)

// Operand is either a local reference or a constant. Every operand carries
// its own type.
type Operand interface {
	operandNode()
	Type() Type
	// Typed renders the operand with its type prefix ("i32 5").
	Typed() string
	// Untyped renders the bare value ("5"), used where the type is implied.
	Untyped() string
}

// Constant is an operand whose value is known at assembly time.
type Constant interface {
	Operand
	constNode()
}

// LocalRef names a virtual register or a function parameter.
type LocalRef struct {
	Name string
	Ty   Type
}

func (LocalRef) operandNode()      {}
func (r LocalRef) Type() Type      { return r.Ty }
func (r LocalRef) Untyped() string { return names.Local(r.Name) }
func (r LocalRef) Typed() string   { return r.Ty.String() + " " + r.Untyped() }

type IntConst struct {
	Bits  int
	Value int64
}

func (IntConst) operandNode() {}
func (IntConst) constNode()   {}
func (c IntConst) Type() Type { return IntType{Bits: c.Bits} }
func (c IntConst) Untyped() string {
	if c.Bits == 1 {
		if c.Value != 0 {
			return "true"
		}
		return "false"
	}
	return strconv.FormatInt(c.Value, 10)
}
func (c IntConst) Typed() string { return c.Type().String() + " " + c.Untyped() }

// Int32 returns an i32 constant.
func Int32(v int32) IntConst { return IntConst{Bits: 32, Value: int64(v)} }

// Bool returns an i1 constant.
func Bool(b bool) IntConst {
	if b {
		return IntConst{Bits: 1, Value: 1}
	}
	return IntConst{Bits: 1, Value: 0}
}

type FloatConst struct {
	Kind  FloatKind
	Value float64
}

func (FloatConst) operandNode()      {}
func (FloatConst) constNode()        {}
func (c FloatConst) Type() Type      { return FloatType{Kind: c.Kind} }
func (c FloatConst) Untyped() string { return FloatHex(c.Kind, c.Value) }
func (c FloatConst) Typed() string   { return c.Type().String() + " " + c.Untyped() }

// Float32 returns a float constant.
func Float32(v float64) FloatConst { return FloatConst{Kind: Single, Value: v} }

// FloatHex encodes v as the 64-bit IEEE-754 pattern LLVM expects for every
// floating type. Single values are rounded to float32 first so the literal
// is exactly representable.
func FloatHex(kind FloatKind, v float64) string {
	if kind == Single {
		v = float64(float32(v))
	}
	return fmt.Sprintf("0x%016X", math.Float64bits(v))
}

// GlobalRef is the address of a module-level global or function. Ty is the
// pointer type.
type GlobalRef struct {
	Name string
	Ty   Type
}

func (GlobalRef) operandNode()      {}
func (GlobalRef) constNode()        {}
func (g GlobalRef) Type() Type      { return g.Ty }
func (g GlobalRef) Untyped() string { return names.Global(g.Name) }
func (g GlobalRef) Typed() string   { return g.Ty.String() + " " + g.Untyped() }

type ArrayConst struct {
	Elem   Type
	Values []Constant
}

func (ArrayConst) operandNode() {}
func (ArrayConst) constNode()   {}
func (a ArrayConst) Type() Type { return ArrayType{Size: len(a.Values), Elem: a.Elem} }
func (a ArrayConst) Untyped() string {
	if b, ok := a.bytes(); ok {
		return `c"` + names.EscapeBytes(b) + `"`
	}
	parts := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		parts = append(parts, v.Typed())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a ArrayConst) Typed() string { return a.Type().String() + " " + a.Untyped() }

func (a ArrayConst) bytes() ([]byte, bool) {
	if !TypesEqual(a.Elem, I8) || len(a.Values) == 0 {
		return nil, false
	}
	out := make([]byte, 0, len(a.Values))
	for _, v := range a.Values {
		c, ok := v.(IntConst)
		if !ok {
			return nil, false
		}
		out = append(out, byte(c.Value))
	}
	return out, true
}

// CString returns the zero-terminated i8 array holding s.
func CString(s string) ArrayConst {
	vals := make([]Constant, 0, len(s)+1)
	for i := 0; i < len(s); i++ {
		vals = append(vals, IntConst{Bits: 8, Value: int64(s[i])})
	}
	vals = append(vals, IntConst{Bits: 8, Value: 0})
	return ArrayConst{Elem: I8, Values: vals}
}

// GEPConst is a constant address computation.
type GEPConst struct {
	InBounds bool
	Elem     Type
	Addr     Constant
	Indices  []Constant
}

func (GEPConst) operandNode() {}
func (GEPConst) constNode()   {}
func (g GEPConst) Type() Type {
	idx := make([]Operand, 0, len(g.Indices))
	for _, c := range g.Indices {
		idx = append(idx, c)
	}
	return gepResult(g.Elem, idx)
}
func (g GEPConst) Untyped() string {
	var sb strings.Builder
	sb.WriteString("getelementptr ")
	if g.InBounds {
		sb.WriteString("inbounds ")
	}
	sb.WriteByte('(')
	sb.WriteString(g.Elem.String())
	sb.WriteString(", ")
	sb.WriteString(g.Addr.Typed())
	for _, i := range g.Indices {
		sb.WriteString(", ")
		sb.WriteString(i.Typed())
	}
	sb.WriteByte(')')
	return sb.String()
}
func (g GEPConst) Typed() string { return g.Type().String() + " " + g.Untyped() }

type ZextConst struct {
	Value Constant
	To    Type
}

func (ZextConst) operandNode()      {}
func (ZextConst) constNode()        {}
func (z ZextConst) Type() Type      { return z.To }
func (z ZextConst) Untyped() string { return fmt.Sprintf("zext (%s to %s)", z.Value.Typed(), z.To.String()) }
func (z ZextConst) Typed() string   { return z.To.String() + " " + z.Untyped() }

// gepResult walks elem with all indices but the first (which steps over
// the base pointer) and returns a pointer to the addressed element.
func gepResult(elem Type, indices []Operand) Type {
	t := elem
	for i := 1; i < len(indices); i++ {
		switch at := t.(type) {
		case ArrayType:
			t = at.Elem
		case StructType:
			c, ok := indices[i].(IntConst)
			if !ok || c.Value < 0 || int(c.Value) >= len(at.Elems) {
				return Ptr(Void)
			}
			t = at.Elems[c.Value]
		default:
			return Ptr(Void)
		}
	}
	return Ptr(t)
}
