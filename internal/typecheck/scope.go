package typecheck

import (
	"p0c/internal/diag"
	"p0c/internal/source"
)

type bindingKind int

const (
	bindConstant bindingKind = iota
	bindVariable
	bindFunction
)

type binding struct {
	kind bindingKind
	ty   Type // constants and variables

	params    []Type // functions
	result    Type
	hasResult bool
}

func (c *checker) pushScope() { c.scope = append(c.scope, map[string]binding{}) }
func (c *checker) popScope()  { c.scope = c.scope[:len(c.scope)-1] }

func (c *checker) scopeTop() map[string]binding {
	return c.scope[len(c.scope)-1]
}

func (c *checker) lookup(name string) (binding, bool) {
	for i := len(c.scope) - 1; i >= 0; i-- {
		if b, ok := c.scope[i][name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// declare binds name in the innermost scope, reporting a redefinition
// within that scope.
func (c *checker) declare(name string, at source.Span, b binding) {
	if _, dup := c.scopeTop()[name]; dup {
		c.errorAt(at, CodeAttemptToRedefineDeclaration, "attempt to redefine "+name)
		return
	}
	c.scopeTop()[name] = b
}

func (c *checker) errorAt(s source.Span, code string, msg string) {
	fn, line, col := s.LocStart()
	c.diags.AddCode(diag.Loc{Filename: fn, Line: line, Col: col}, code, msg)
}
