package ir

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir/enum"

	"p0c/internal/names"
)

// Instr is one line of a function body. Labels are instructions too: the
// body is a flat stream and labels mark block boundaries.
type Instr interface {
	instrNode()
	fmtString() string
}

type BinOpKind string

const (
	OpAdd  BinOpKind = "add"
	OpSub  BinOpKind = "sub"
	OpMul  BinOpKind = "mul"
	OpSDiv BinOpKind = "sdiv"
	OpFAdd BinOpKind = "fadd"
	OpFSub BinOpKind = "fsub"
	OpFMul BinOpKind = "fmul"
	OpFDiv BinOpKind = "fdiv"
	OpAnd  BinOpKind = "and"
	OpOr   BinOpKind = "or"
	OpXor  BinOpKind = "xor"
)

// BinOp covers arithmetic and bitwise instructions; the result has the type
// of X.
type BinOp struct {
	Dst LocalRef
	Op  BinOpKind
	X   Operand
	Y   Operand
}

func (*BinOp) instrNode() {}
func (i *BinOp) fmtString() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Dst.Untyped(), i.Op, i.X.Typed(), i.Y.Untyped())
}

type ICmp struct {
	Dst  LocalRef
	Pred enum.IPred
	X    Operand
	Y    Operand
}

func (*ICmp) instrNode() {}
func (i *ICmp) fmtString() string {
	return fmt.Sprintf("%s = icmp %s %s, %s", i.Dst.Untyped(), i.Pred, i.X.Typed(), i.Y.Untyped())
}

type FCmp struct {
	Dst  LocalRef
	Pred enum.FPred
	X    Operand
	Y    Operand
}

func (*FCmp) instrNode() {}
func (i *FCmp) fmtString() string {
	return fmt.Sprintf("%s = fcmp %s %s, %s", i.Dst.Untyped(), i.Pred, i.X.Typed(), i.Y.Untyped())
}

// Alloca reserves a stack slot; Dst is a pointer to Elem.
type Alloca struct {
	Dst  LocalRef
	Elem Type
}

func (*Alloca) instrNode() {}
func (i *Alloca) fmtString() string {
	return fmt.Sprintf("%s = alloca %s", i.Dst.Untyped(), i.Elem.String())
}

type Load struct {
	Dst  LocalRef
	Elem Type
	Addr Operand
}

func (*Load) instrNode() {}
func (i *Load) fmtString() string {
	return fmt.Sprintf("%s = load %s, %s", i.Dst.Untyped(), i.Elem.String(), i.Addr.Typed())
}

type Store struct {
	Value Operand
	Addr  Operand
}

func (*Store) instrNode() {}
func (i *Store) fmtString() string {
	return fmt.Sprintf("store %s, %s", i.Value.Typed(), i.Addr.Typed())
}

type Br struct {
	Target string
}

func (*Br) instrNode()          {}
func (i *Br) fmtString() string { return "br label " + names.Local(i.Target) }

type CondBr struct {
	Cond Operand
	Then string
	Else string
}

func (*CondBr) instrNode() {}
func (i *CondBr) fmtString() string {
	return fmt.Sprintf("br %s, label %s, label %s", i.Cond.Typed(), names.Local(i.Then), names.Local(i.Else))
}

type Label struct {
	Name string
}

func (*Label) instrNode()          {}
func (i *Label) fmtString() string { return i.Name + ":" }

type PhiIncoming struct {
	Value Operand
	Label string
}

// Phi selects a value by predecessor block; its type is the type of the
// first incoming value.
type Phi struct {
	Dst      LocalRef
	Incoming []PhiIncoming
}

func (*Phi) instrNode() {}
func (i *Phi) fmtString() string {
	parts := make([]string, 0, len(i.Incoming))
	for _, in := range i.Incoming {
		parts = append(parts, fmt.Sprintf("[%s, %s]", in.Value.Untyped(), names.Local(in.Label)))
	}
	return fmt.Sprintf("%s = phi %s %s", i.Dst.Untyped(), i.Dst.Ty.String(), strings.Join(parts, ", "))
}

type Ret struct {
	Value Operand
}

func (*Ret) instrNode()          {}
func (i *Ret) fmtString() string { return "ret " + i.Value.Typed() }

type RetVoid struct{}

func (*RetVoid) instrNode()        {}
func (*RetVoid) fmtString() string { return "ret void" }

// Call invokes a function and binds its result.
type Call struct {
	Dst    LocalRef
	Ret    Type
	Callee string
	Args   []Operand
}

func (*Call) instrNode() {}
func (i *Call) fmtString() string {
	return fmt.Sprintf("%s = call ccc %s %s(%s)", i.Dst.Untyped(), i.Ret.String(), names.Global(i.Callee), typedArgs(i.Args))
}

type CallVoid struct {
	Callee string
	Args   []Operand
}

func (*CallVoid) instrNode() {}
func (i *CallVoid) fmtString() string {
	return fmt.Sprintf("call ccc void %s(%s)", names.Global(i.Callee), typedArgs(i.Args))
}

type Zext struct {
	Dst   LocalRef
	Value Operand
	To    Type
}

func (*Zext) instrNode() {}
func (i *Zext) fmtString() string {
	return fmt.Sprintf("%s = zext %s to %s", i.Dst.Untyped(), i.Value.Typed(), i.To.String())
}

// GEP computes an address inside an aggregate.
type GEP struct {
	Dst      LocalRef
	InBounds bool
	Elem     Type
	Addr     Operand
	Indices  []Operand
}

func (*GEP) instrNode() {}
func (i *GEP) fmtString() string {
	var sb strings.Builder
	sb.WriteString(i.Dst.Untyped())
	sb.WriteString(" = getelementptr ")
	if i.InBounds {
		sb.WriteString("inbounds ")
	}
	sb.WriteString(i.Elem.String())
	sb.WriteString(", ")
	sb.WriteString(i.Addr.Typed())
	for _, idx := range i.Indices {
		sb.WriteString(", ")
		sb.WriteString(idx.Typed())
	}
	return sb.String()
}

// GEPResultType is the type of a getelementptr over elem with the given
// indices.
func GEPResultType(elem Type, indices []Operand) Type { return gepResult(elem, indices) }

// Result returns the register an instruction defines, if any.
func Result(i Instr) (LocalRef, bool) {
	switch x := i.(type) {
	case *BinOp:
		return x.Dst, true
	case *ICmp:
		return x.Dst, true
	case *FCmp:
		return x.Dst, true
	case *Alloca:
		return x.Dst, true
	case *Load:
		return x.Dst, true
	case *Phi:
		return x.Dst, true
	case *Call:
		return x.Dst, true
	case *Zext:
		return x.Dst, true
	case *GEP:
		return x.Dst, true
	default:
		return LocalRef{}, false
	}
}

// IsTerminator reports whether i ends a basic block.
func IsTerminator(i Instr) bool {
	switch i.(type) {
	case *Br, *CondBr, *Ret, *RetVoid:
		return true
	default:
		return false
	}
}

func typedArgs(args []Operand) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.Typed())
	}
	return strings.Join(parts, ", ")
}
