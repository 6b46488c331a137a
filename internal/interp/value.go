package interp

import (
	"fmt"

	"p0c/internal/ir"
)

type ValueKind int

const (
	VInt ValueKind = iota
	VFloat
	VPtr
)

// Value is one scalar of the machine. Aggregates live only in memory.
type Value struct {
	K    ValueKind
	Bits int     // VInt width
	I    int64   // VInt, sign-extended from Bits
	F    float64 // VFloat, already rounded to its precision
	Mem  *memory // VPtr; nil is the null pointer
	Off  int     // VPtr scalar offset into Mem
}

// memory is one allocation: a stack slot or a global. Aggregates are
// flattened into their scalars.
type memory struct {
	name     string
	vals     []Value
	constant bool
}

func intValue(bits int, v int64) Value {
	return Value{K: VInt, Bits: bits, I: signExtend(v, bits)}
}

func signExtend(v int64, bits int) int64 {
	if bits >= 64 {
		return v
	}
	shift := 64 - bits
	return v << shift >> shift
}

func (v Value) unsigned() uint64 {
	if v.Bits >= 64 {
		return uint64(v.I)
	}
	return uint64(v.I) & (1<<uint(v.Bits) - 1)
}

func floatValue(kind ir.FloatKind, f float64) Value {
	if kind != ir.Double {
		f = float64(float32(f))
	}
	return Value{K: VFloat, F: f}
}

// zeroValue is the initial content of a fresh scalar of type t.
func zeroValue(t ir.Type) Value {
	switch t := t.(type) {
	case ir.IntType:
		return intValue(t.Bits, 0)
	case ir.FloatType:
		return Value{K: VFloat}
	default:
		return Value{K: VPtr}
	}
}

// sizeOf counts the scalars of t.
func sizeOf(t ir.Type) int {
	switch t := t.(type) {
	case ir.ArrayType:
		return t.Size * sizeOf(t.Elem)
	case ir.StructType:
		n := 0
		for _, e := range t.Elems {
			n += sizeOf(e)
		}
		return n
	default:
		return 1
	}
}

// scalars lays out zero values for every scalar of t.
func scalars(t ir.Type, out []Value) []Value {
	switch t := t.(type) {
	case ir.ArrayType:
		for i := 0; i < t.Size; i++ {
			out = scalars(t.Elem, out)
		}
		return out
	case ir.StructType:
		for _, e := range t.Elems {
			out = scalars(e, out)
		}
		return out
	default:
		return append(out, zeroValue(t))
	}
}

func (v Value) String() string {
	switch v.K {
	case VInt:
		return fmt.Sprintf("i%d %d", v.Bits, v.I)
	case VFloat:
		return fmt.Sprintf("float %g", v.F)
	default:
		if v.Mem == nil {
			return "null"
		}
		return fmt.Sprintf("&%s+%d", v.Mem.name, v.Off)
	}
}
