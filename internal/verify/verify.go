// Package verify checks emitted text by parsing it back with llir, which
// implements the LLVM assembly grammar.
package verify

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/asm"
	llvmir "github.com/llir/llvm/ir"

	"p0c/internal/ir"
)

var ErrInvalid = errors.New("invalid LLVM IR")

// Text parses src; name is used in error messages.
func Text(name, src string) (*llvmir.Module, error) {
	parsed, err := asm.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return parsed, nil
}

// Module renders m, parses the text and checks that every external,
// function and global survived the round trip.
func Module(m *ir.Module) error {
	parsed, err := Text(m.ID+".ll", m.Format())
	if err != nil {
		return err
	}
	want := map[string]bool{}
	for _, e := range m.Externals {
		want[e.Name] = false
	}
	for _, f := range m.Funcs {
		want[f.Name] = true
	}
	if len(parsed.Funcs) != len(want) {
		return fmt.Errorf("%w: parsed %d functions, module has %d", ErrInvalid, len(parsed.Funcs), len(want))
	}
	for _, f := range parsed.Funcs {
		defined, ok := want[f.Name()]
		if !ok {
			return fmt.Errorf("%w: unexpected function @%s", ErrInvalid, f.Name())
		}
		if defined != (len(f.Blocks) > 0) {
			return fmt.Errorf("%w: @%s lost its body or gained one", ErrInvalid, f.Name())
		}
	}
	if len(parsed.Globals) != len(m.Globals) {
		return fmt.Errorf("%w: parsed %d globals, module has %d", ErrInvalid, len(parsed.Globals), len(m.Globals))
	}
	return nil
}
