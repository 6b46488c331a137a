// Package builder accumulates an ir.Module: module-level declarations, and
// per function a flat instruction stream with numbered registers, generated
// labels and a scope stack of name bindings.
package builder

import (
	"p0c/internal/ir"
	"p0c/internal/names"
)

// Module owns all mutable state of one module's construction.
type Module struct {
	id        string
	externals []ir.External
	globals   []ir.Global
	funcs     []ir.Func

	globalRefs map[string]ir.GlobalRef
	pool       map[string]ir.GlobalRef
}

func NewModule(id string) *Module {
	return &Module{
		id:         id,
		globalRefs: map[string]ir.GlobalRef{},
		pool:       map[string]ir.GlobalRef{},
	}
}

// DeclareExternal registers a function provided by the runtime.
func (m *Module) DeclareExternal(name string, args []ir.Type, result ir.Type) *Module {
	m.externals = append(m.externals, ir.External{Name: name, Args: append([]ir.Type(nil), args...), Result: result})
	return m
}

// DeclareGlobal registers a module-level global and returns its address.
// Functions built from this module resolve name to that address.
func (m *Module) DeclareGlobal(name string, ty ir.Type, constant bool, value ir.Constant) ir.GlobalRef {
	g := ir.Global{Name: name, Ty: ty, Constant: constant, Value: value}
	m.globals = append(m.globals, g)
	ref := g.Ref()
	m.globalRefs[name] = ref
	return ref
}

// Global looks up a global declared with DeclareGlobal.
func (m *Module) Global(name string) (ir.GlobalRef, bool) {
	ref, ok := m.globalRefs[name]
	return ref, ok
}

// InternString returns the constant array holding s, declaring it on first
// use. Identical literals share one global.
func (m *Module) InternString(s string) ir.GlobalRef {
	if ref, ok := m.pool[s]; ok {
		return ref
	}
	arr := ir.CString(s)
	g := ir.Global{Name: names.StringPool(len(m.pool)), Ty: arr.Type(), Constant: true, Value: arr}
	m.globals = append(m.globals, g)
	ref := g.Ref()
	m.pool[s] = ref
	return ref
}

// DeclareFunction starts a function body bound to this module. The body is
// added to the module by (*Function).Build.
func (m *Module) DeclareFunction(name string, params []ir.Param, result ir.Type) *Function {
	return &Function{
		mod:       m,
		name:      name,
		params:    append([]ir.Param(nil), params...),
		result:    result,
		body:      []ir.Instr{&ir.Label{Name: "entry_0"}},
		cur:       "entry_0",
		nextLabel: 1,
	}
}

// Build returns the finished module. The result shares nothing with the
// builder.
func (m *Module) Build() *ir.Module {
	return &ir.Module{
		ID:        m.id,
		Externals: append([]ir.External(nil), m.externals...),
		Globals:   append([]ir.Global(nil), m.globals...),
		Funcs:     append([]ir.Func(nil), m.funcs...),
	}
}
