package ir

import (
	"fmt"
	"strings"
)

// Type is an IR type. Types are structural: two types are equal when they
// print the same.
type Type interface {
	typeNode()
	String() string
}

type VoidType struct{}

func (VoidType) typeNode()      {}
func (VoidType) String() string { return "void" }

type IntType struct {
	Bits int
}

func (IntType) typeNode()        {}
func (t IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }

type PointerType struct {
	Elem Type
}

func (PointerType) typeNode()        {}
func (t PointerType) String() string { return t.Elem.String() + "*" }

type FloatKind int

const (
	Half FloatKind = iota
	Single
	Double
)

type FloatType struct {
	Kind FloatKind
}

func (FloatType) typeNode() {}
func (t FloatType) String() string {
	switch t.Kind {
	case Half:
		return "half"
	case Single:
		return "float"
	default:
		return "double"
	}
}

type FuncType struct {
	Result Type
	Args   []Type
	VarArg bool
}

func (FuncType) typeNode() {}
func (t FuncType) String() string {
	parts := typeList(t.Args)
	if t.VarArg {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("%s (%s)", t.Result.String(), strings.Join(parts, ", "))
}

type StructType struct {
	Elems  []Type
	Packed bool
}

func (StructType) typeNode() {}
func (t StructType) String() string {
	body := "{ " + strings.Join(typeList(t.Elems), ", ") + " }"
	if t.Packed {
		return "<" + body + ">"
	}
	return body
}

type ArrayType struct {
	Size int
	Elem Type
}

func (ArrayType) typeNode()        {}
func (t ArrayType) String() string { return fmt.Sprintf("[%d x %s]", t.Size, t.Elem.String()) }

var (
	Void  Type = VoidType{}
	I1    Type = IntType{Bits: 1}
	I8    Type = IntType{Bits: 8}
	I32   Type = IntType{Bits: 32}
	I64   Type = IntType{Bits: 64}
	F16   Type = FloatType{Kind: Half}
	Float Type = FloatType{Kind: Single}
	F64   Type = FloatType{Kind: Double}
	I8Ptr Type = PointerType{Elem: I8}
)

// Ptr returns a pointer to t.
func Ptr(t Type) Type { return PointerType{Elem: t} }

// TypesEqual compares types structurally.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

// Elem returns the pointee of a pointer type, or nil.
func Elem(t Type) Type {
	if p, ok := t.(PointerType); ok {
		return p.Elem
	}
	return nil
}

func typeList(ts []Type) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.String())
	}
	return out
}
