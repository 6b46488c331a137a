package interp

import (
	"fmt"
	"math"

	"github.com/llir/llvm/ir/enum"

	"p0c/internal/ir"
)

type frame struct {
	regs map[string]Value
	prev string // block we came from, for phi
	cur  string
}

func (rt *Runtime) exec(f *function, args []Value) (Value, error) {
	fr := &frame{regs: make(map[string]Value, len(f.fn.Body))}
	for i, p := range f.fn.Params {
		fr.regs[p.Name] = args[i]
	}
	body := f.fn.Body
	pc := 0
	for pc < len(body) {
		if rt.maxSteps > 0 {
			rt.steps++
			if rt.steps > rt.maxSteps {
				return Value{}, fmt.Errorf("%w: step limit %d exceeded", ErrTrap, rt.maxSteps)
			}
		}
		ins := body[pc]
		pc++
		switch ins := ins.(type) {
		case *ir.Label:
			// Falling through into a label.
			fr.prev, fr.cur = fr.cur, ins.Name
		case *ir.Br:
			next, err := rt.jump(f, fr, ins.Target)
			if err != nil {
				return Value{}, err
			}
			pc = next
		case *ir.CondBr:
			c, err := rt.operand(fr, ins.Cond)
			if err != nil {
				return Value{}, err
			}
			target := ins.Else
			if c.I != 0 {
				target = ins.Then
			}
			next, err := rt.jump(f, fr, target)
			if err != nil {
				return Value{}, err
			}
			pc = next
		case *ir.Ret:
			return rt.operand(fr, ins.Value)
		case *ir.RetVoid:
			return Value{}, nil
		default:
			if err := rt.step(fr, ins); err != nil {
				return Value{}, fmt.Errorf("%s: %w", ir.FormatInstr(ins), err)
			}
		}
	}
	return Value{}, fmt.Errorf("control reaches end of function without a terminator")
}

// jump positions execution after target's label.
func (rt *Runtime) jump(f *function, fr *frame, target string) (int, error) {
	pc, ok := f.labels[target]
	if !ok {
		return 0, fmt.Errorf("branch to unknown label %%%s", target)
	}
	fr.prev, fr.cur = fr.cur, target
	return pc + 1, nil
}

func (rt *Runtime) step(fr *frame, ins ir.Instr) error {
	switch ins := ins.(type) {
	case *ir.BinOp:
		x, y, err := rt.operands2(fr, ins.X, ins.Y)
		if err != nil {
			return err
		}
		v, err := binop(ins.Op, x, y)
		if err != nil {
			return err
		}
		fr.regs[ins.Dst.Name] = v
	case *ir.ICmp:
		x, y, err := rt.operands2(fr, ins.X, ins.Y)
		if err != nil {
			return err
		}
		b, err := icmp(ins.Pred, x, y)
		if err != nil {
			return err
		}
		fr.regs[ins.Dst.Name] = boolValue(b)
	case *ir.FCmp:
		x, y, err := rt.operands2(fr, ins.X, ins.Y)
		if err != nil {
			return err
		}
		b, err := fcmp(ins.Pred, x.F, y.F)
		if err != nil {
			return err
		}
		fr.regs[ins.Dst.Name] = boolValue(b)
	case *ir.Alloca:
		mem := &memory{name: ins.Dst.Untyped(), vals: scalars(ins.Elem, nil)}
		fr.regs[ins.Dst.Name] = Value{K: VPtr, Mem: mem}
	case *ir.Load:
		p, err := rt.operand(fr, ins.Addr)
		if err != nil {
			return err
		}
		v, err := load(p)
		if err != nil {
			return err
		}
		fr.regs[ins.Dst.Name] = v
	case *ir.Store:
		v, p, err := rt.operands2(fr, ins.Value, ins.Addr)
		if err != nil {
			return err
		}
		return store(p, v)
	case *ir.GEP:
		p, err := rt.operand(fr, ins.Addr)
		if err != nil {
			return err
		}
		idx := make([]int64, 0, len(ins.Indices))
		for _, o := range ins.Indices {
			v, err := rt.operand(fr, o)
			if err != nil {
				return err
			}
			idx = append(idx, v.I)
		}
		v, err := gep(p, ins.Elem, idx)
		if err != nil {
			return err
		}
		fr.regs[ins.Dst.Name] = v
	case *ir.Phi:
		for _, in := range ins.Incoming {
			if in.Label == fr.prev {
				v, err := rt.operand(fr, in.Value)
				if err != nil {
					return err
				}
				fr.regs[ins.Dst.Name] = v
				return nil
			}
		}
		return fmt.Errorf("no incoming value for predecessor %%%s", fr.prev)
	case *ir.Zext:
		v, err := rt.operand(fr, ins.Value)
		if err != nil {
			return err
		}
		to, ok := ins.To.(ir.IntType)
		if !ok {
			return fmt.Errorf("zext to %s", ins.To)
		}
		fr.regs[ins.Dst.Name] = intValue(to.Bits, int64(v.unsigned()))
	case *ir.Call:
		v, err := rt.callOperands(fr, ins.Callee, ins.Args)
		if err != nil {
			return err
		}
		fr.regs[ins.Dst.Name] = v
	case *ir.CallVoid:
		_, err := rt.callOperands(fr, ins.Callee, ins.Args)
		return err
	default:
		return fmt.Errorf("unsupported instruction %T", ins)
	}
	return nil
}

func (rt *Runtime) callOperands(fr *frame, callee string, ops []ir.Operand) (Value, error) {
	args := make([]Value, 0, len(ops))
	for _, o := range ops {
		v, err := rt.operand(fr, o)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
	}
	return rt.call(callee, args)
}

func (rt *Runtime) operands2(fr *frame, a, b ir.Operand) (Value, Value, error) {
	x, err := rt.operand(fr, a)
	if err != nil {
		return Value{}, Value{}, err
	}
	y, err := rt.operand(fr, b)
	if err != nil {
		return Value{}, Value{}, err
	}
	return x, y, nil
}

func (rt *Runtime) operand(fr *frame, o ir.Operand) (Value, error) {
	if r, ok := o.(ir.LocalRef); ok {
		v, ok := fr.regs[r.Name]
		if !ok {
			return Value{}, fmt.Errorf("use of undefined value %s", r.Untyped())
		}
		return v, nil
	}
	c, ok := o.(ir.Constant)
	if !ok {
		return Value{}, fmt.Errorf("unsupported operand %T", o)
	}
	return rt.constant(c)
}

func (rt *Runtime) constant(c ir.Constant) (Value, error) {
	switch c := c.(type) {
	case ir.IntConst:
		return intValue(c.Bits, c.Value), nil
	case ir.FloatConst:
		return floatValue(c.Kind, c.Value), nil
	case ir.GlobalRef:
		mem, ok := rt.globals[c.Name]
		if !ok {
			return Value{}, fmt.Errorf("reference to undefined global %s", c.Untyped())
		}
		return Value{K: VPtr, Mem: mem}, nil
	case ir.GEPConst:
		p, err := rt.constant(c.Addr)
		if err != nil {
			return Value{}, err
		}
		idx := make([]int64, 0, len(c.Indices))
		for _, i := range c.Indices {
			v, err := rt.constant(i)
			if err != nil {
				return Value{}, err
			}
			idx = append(idx, v.I)
		}
		return gep(p, c.Elem, idx)
	case ir.ZextConst:
		v, err := rt.constant(c.Value)
		if err != nil {
			return Value{}, err
		}
		to, ok := c.To.(ir.IntType)
		if !ok {
			return Value{}, fmt.Errorf("zext to %s", c.To)
		}
		return intValue(to.Bits, int64(v.unsigned())), nil
	}
	return Value{}, fmt.Errorf("unsupported constant %s", c.Typed())
}

func boolValue(b bool) Value {
	if b {
		return intValue(1, 1)
	}
	return intValue(1, 0)
}

func binop(op ir.BinOpKind, x, y Value) (Value, error) {
	switch op {
	case ir.OpAdd:
		return intValue(x.Bits, x.I+y.I), nil
	case ir.OpSub:
		return intValue(x.Bits, x.I-y.I), nil
	case ir.OpMul:
		return intValue(x.Bits, x.I*y.I), nil
	case ir.OpSDiv:
		if y.I == 0 {
			return Value{}, fmt.Errorf("%w: integer division by zero", ErrTrap)
		}
		if y.I == -1 && x.I == signExtend(1<<uint(x.Bits-1), x.Bits) {
			return Value{}, fmt.Errorf("%w: integer division overflow", ErrTrap)
		}
		return intValue(x.Bits, x.I/y.I), nil
	case ir.OpAnd:
		return intValue(x.Bits, x.I&y.I), nil
	case ir.OpOr:
		return intValue(x.Bits, x.I|y.I), nil
	case ir.OpXor:
		return intValue(x.Bits, x.I^y.I), nil
	}
	// Float operations are carried out in single precision.
	a, b := float32(x.F), float32(y.F)
	switch op {
	case ir.OpFAdd:
		return Value{K: VFloat, F: float64(a + b)}, nil
	case ir.OpFSub:
		return Value{K: VFloat, F: float64(a - b)}, nil
	case ir.OpFMul:
		return Value{K: VFloat, F: float64(a * b)}, nil
	case ir.OpFDiv:
		return Value{K: VFloat, F: float64(a / b)}, nil
	}
	return Value{}, fmt.Errorf("unsupported operator %s", op)
}

func icmp(pred enum.IPred, x, y Value) (bool, error) {
	switch pred {
	case enum.IPredEQ:
		return x.I == y.I, nil
	case enum.IPredNE:
		return x.I != y.I, nil
	case enum.IPredSLT:
		return x.I < y.I, nil
	case enum.IPredSLE:
		return x.I <= y.I, nil
	case enum.IPredSGT:
		return x.I > y.I, nil
	case enum.IPredSGE:
		return x.I >= y.I, nil
	case enum.IPredULT:
		return x.unsigned() < y.unsigned(), nil
	case enum.IPredULE:
		return x.unsigned() <= y.unsigned(), nil
	case enum.IPredUGT:
		return x.unsigned() > y.unsigned(), nil
	case enum.IPredUGE:
		return x.unsigned() >= y.unsigned(), nil
	}
	return false, fmt.Errorf("unsupported icmp predicate %s", pred)
}

func fcmp(pred enum.FPred, x, y float64) (bool, error) {
	unordered := math.IsNaN(x) || math.IsNaN(y)
	switch pred {
	case enum.FPredFalse:
		return false, nil
	case enum.FPredTrue:
		return true, nil
	case enum.FPredORD:
		return !unordered, nil
	case enum.FPredUNO:
		return unordered, nil
	case enum.FPredOEQ:
		return !unordered && x == y, nil
	case enum.FPredONE:
		return !unordered && x != y, nil
	case enum.FPredOLT:
		return !unordered && x < y, nil
	case enum.FPredOLE:
		return !unordered && x <= y, nil
	case enum.FPredOGT:
		return !unordered && x > y, nil
	case enum.FPredOGE:
		return !unordered && x >= y, nil
	case enum.FPredUEQ:
		return unordered || x == y, nil
	case enum.FPredUNE:
		return unordered || x != y, nil
	case enum.FPredULT:
		return unordered || x < y, nil
	case enum.FPredULE:
		return unordered || x <= y, nil
	case enum.FPredUGT:
		return unordered || x > y, nil
	case enum.FPredUGE:
		return unordered || x >= y, nil
	}
	return false, fmt.Errorf("unsupported fcmp predicate %s", pred)
}

func checkAddr(p Value) error {
	if p.K != VPtr || p.Mem == nil {
		return fmt.Errorf("%w: access through null or non-pointer %s", ErrTrap, p)
	}
	if p.Off < 0 || p.Off >= len(p.Mem.vals) {
		return fmt.Errorf("%w: offset %d outside %s", ErrTrap, p.Off, p.Mem.name)
	}
	return nil
}

func load(p Value) (Value, error) {
	if err := checkAddr(p); err != nil {
		return Value{}, err
	}
	return p.Mem.vals[p.Off], nil
}

func store(p, v Value) error {
	if err := checkAddr(p); err != nil {
		return err
	}
	if p.Mem.constant {
		return fmt.Errorf("%w: store to constant %s", ErrTrap, p.Mem.name)
	}
	p.Mem.vals[p.Off] = v
	return nil
}

// gep steps over the base pointer with the first index and into elem with
// the rest, in units of flattened scalars.
func gep(p Value, elem ir.Type, idx []int64) (Value, error) {
	if p.K != VPtr {
		return Value{}, fmt.Errorf("getelementptr on non-pointer %s", p)
	}
	if len(idx) == 0 {
		return p, nil
	}
	off := p.Off + int(idx[0])*sizeOf(elem)
	t := elem
	for _, i := range idx[1:] {
		switch tt := t.(type) {
		case ir.ArrayType:
			off += int(i) * sizeOf(tt.Elem)
			t = tt.Elem
		case ir.StructType:
			if i < 0 || int(i) >= len(tt.Elems) {
				return Value{}, fmt.Errorf("struct index %d out of range", i)
			}
			for _, e := range tt.Elems[:i] {
				off += sizeOf(e)
			}
			t = tt.Elems[i]
		default:
			return Value{}, fmt.Errorf("cannot index into %s", t)
		}
	}
	return Value{K: VPtr, Mem: p.Mem, Off: off}, nil
}
