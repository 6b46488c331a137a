package builder

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir/enum"

	"p0c/internal/ir"
)

// ErrUnbound is returned by Operand when no scope binds a name.
var ErrUnbound = errors.New("unbound name")

// Function builds one function body. The body always starts with the
// entry_0 label.
type Function struct {
	mod    *Module
	name   string
	params []ir.Param
	result ir.Type

	body      []ir.Instr
	nextReg   int
	nextLabel int
	cur       string
	scopes    []map[string]ir.Operand
	built     bool
}

func (f *Function) Name() string         { return f.name }
func (f *Function) Result() ir.Type      { return f.result }
func (f *Function) Module() *Module      { return f.mod }
func (f *Function) CurrentLabel() string { return f.cur }

// Param returns the incoming value of the i-th parameter.
func (f *Function) Param(i int) ir.LocalRef {
	p := f.params[i]
	return ir.LocalRef{Name: p.Name, Ty: p.Ty}
}

func (f *Function) NumParams() int { return len(f.params) }

// NewLabel returns a fresh label prefix_N; N is never reused within the
// function.
func (f *Function) NewLabel(prefix string) string {
	l := prefix + "_" + strconv.Itoa(f.nextLabel)
	f.nextLabel++
	return l
}

func (f *Function) OpenScope() { f.scopes = append(f.scopes, map[string]ir.Operand{}) }

func (f *Function) CloseScope() {
	if len(f.scopes) == 0 {
		panic("builder: CloseScope without OpenScope")
	}
	f.scopes = f.scopes[:len(f.scopes)-1]
}

// Register binds name in the innermost scope.
func (f *Function) Register(name string, op ir.Operand) {
	if len(f.scopes) == 0 {
		f.OpenScope()
	}
	f.scopes[len(f.scopes)-1][name] = op
}

// Operand resolves name innermost scope first, then module globals.
func (f *Function) Operand(name string) (ir.Operand, error) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if op, ok := f.scopes[i][name]; ok {
			return op, nil
		}
	}
	if ref, ok := f.mod.Global(name); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("%w: %s in function %s", ErrUnbound, name, f.name)
}

func (f *Function) emit(i ir.Instr) { f.body = append(f.body, i) }

func (f *Function) newReg(ty ir.Type) ir.LocalRef {
	r := ir.LocalRef{Name: strconv.Itoa(f.nextReg), Ty: ty}
	f.nextReg++
	return r
}

func (f *Function) binop(op ir.BinOpKind, x, y ir.Operand) ir.LocalRef {
	dst := f.newReg(x.Type())
	f.emit(&ir.BinOp{Dst: dst, Op: op, X: x, Y: y})
	return dst
}

func (f *Function) Add(x, y ir.Operand) ir.LocalRef  { return f.binop(ir.OpAdd, x, y) }
func (f *Function) Sub(x, y ir.Operand) ir.LocalRef  { return f.binop(ir.OpSub, x, y) }
func (f *Function) Mul(x, y ir.Operand) ir.LocalRef  { return f.binop(ir.OpMul, x, y) }
func (f *Function) SDiv(x, y ir.Operand) ir.LocalRef { return f.binop(ir.OpSDiv, x, y) }
func (f *Function) FAdd(x, y ir.Operand) ir.LocalRef { return f.binop(ir.OpFAdd, x, y) }
func (f *Function) FSub(x, y ir.Operand) ir.LocalRef { return f.binop(ir.OpFSub, x, y) }
func (f *Function) FMul(x, y ir.Operand) ir.LocalRef { return f.binop(ir.OpFMul, x, y) }
func (f *Function) FDiv(x, y ir.Operand) ir.LocalRef { return f.binop(ir.OpFDiv, x, y) }
func (f *Function) And(x, y ir.Operand) ir.LocalRef  { return f.binop(ir.OpAnd, x, y) }
func (f *Function) Or(x, y ir.Operand) ir.LocalRef   { return f.binop(ir.OpOr, x, y) }
func (f *Function) Xor(x, y ir.Operand) ir.LocalRef  { return f.binop(ir.OpXor, x, y) }

func (f *Function) ICmp(pred enum.IPred, x, y ir.Operand) ir.LocalRef {
	dst := f.newReg(ir.I1)
	f.emit(&ir.ICmp{Dst: dst, Pred: pred, X: x, Y: y})
	return dst
}

func (f *Function) FCmp(pred enum.FPred, x, y ir.Operand) ir.LocalRef {
	dst := f.newReg(ir.I1)
	f.emit(&ir.FCmp{Dst: dst, Pred: pred, X: x, Y: y})
	return dst
}

// Alloca returns the address of a new stack slot holding ty.
func (f *Function) Alloca(ty ir.Type) ir.LocalRef {
	dst := f.newReg(ir.Ptr(ty))
	f.emit(&ir.Alloca{Dst: dst, Elem: ty})
	return dst
}

func (f *Function) Load(ty ir.Type, addr ir.Operand) ir.LocalRef {
	dst := f.newReg(ty)
	f.emit(&ir.Load{Dst: dst, Elem: ty, Addr: addr})
	return dst
}

func (f *Function) Store(value, addr ir.Operand) {
	f.emit(&ir.Store{Value: value, Addr: addr})
}

func (f *Function) GetElementPointer(inBounds bool, elem ir.Type, addr ir.Operand, indices ...ir.Operand) ir.LocalRef {
	dst := f.newReg(ir.GEPResultType(elem, indices))
	f.emit(&ir.GEP{Dst: dst, InBounds: inBounds, Elem: elem, Addr: addr, Indices: indices})
	return dst
}

// Phi merges values by predecessor label; the result has the type of the
// first incoming value.
func (f *Function) Phi(incoming ...ir.PhiIncoming) ir.LocalRef {
	if len(incoming) == 0 {
		panic("builder: phi without incoming values")
	}
	dst := f.newReg(incoming[0].Value.Type())
	f.emit(&ir.Phi{Dst: dst, Incoming: incoming})
	return dst
}

func (f *Function) Zext(v ir.Operand, to ir.Type) ir.LocalRef {
	dst := f.newReg(to)
	f.emit(&ir.Zext{Dst: dst, Value: v, To: to})
	return dst
}

func (f *Function) Call(ret ir.Type, callee string, args ...ir.Operand) ir.LocalRef {
	dst := f.newReg(ret)
	f.emit(&ir.Call{Dst: dst, Ret: ret, Callee: callee, Args: args})
	return dst
}

func (f *Function) CallVoid(callee string, args ...ir.Operand) {
	f.emit(&ir.CallVoid{Callee: callee, Args: args})
}

func (f *Function) Br(label string) { f.emit(&ir.Br{Target: label}) }

func (f *Function) CondBr(cond ir.Operand, then, els string) {
	f.emit(&ir.CondBr{Cond: cond, Then: then, Else: els})
}

func (f *Function) Ret(v ir.Operand) { f.emit(&ir.Ret{Value: v}) }

func (f *Function) RetVoid() { f.emit(&ir.RetVoid{}) }

// Label starts a new block; subsequent instructions belong to it.
func (f *Function) Label(name string) {
	f.emit(&ir.Label{Name: name})
	f.cur = name
}

// Build moves the body into the owning module. The function builder must
// not be used afterwards.
func (f *Function) Build() {
	if f.built {
		panic("builder: function " + f.name + " built twice")
	}
	f.built = true
	f.mod.funcs = append(f.mod.funcs, ir.Func{
		Name:   f.name,
		Params: f.params,
		Result: f.result,
		Body:   f.body,
	})
	f.body = nil
	f.scopes = nil
}
