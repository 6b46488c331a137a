// Package stdlib carries the C runtime that compiled programs link against
// and the table of entry points the code generator may call.
package stdlib

import (
	_ "embed"
	"os"
	"path/filepath"

	"p0c/internal/ir"
)

//go:embed runtime/p0lib.c
var runtimeSrc string

// RuntimeFileName is the name the runtime is written under next to the
// build outputs.
const RuntimeFileName = "p0lib.c"

// Source returns the C source of the runtime.
func Source() string { return runtimeSrc }

// WriteRuntime writes p0lib.c into dir and returns its path.
func WriteRuntime(dir string) (string, error) {
	p := filepath.Join(dir, RuntimeFileName)
	if err := os.WriteFile(p, []byte(runtimeSrc), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// Print entry points.
const (
	PrintBool   = "_print_bool"
	PrintInt    = "_print_int"
	PrintString = "_print_string"
	PrintFloat  = "_print_float"
	PrintLn     = "_print_ln"
)

// Extern describes one runtime function.
type Extern struct {
	Name   string
	Args   []ir.Type
	Result ir.Type
}

// Externs lists the runtime functions in declaration order.
func Externs() []Extern {
	return []Extern{
		{Name: PrintBool, Args: []ir.Type{ir.I8}, Result: ir.Void},
		{Name: PrintInt, Args: []ir.Type{ir.I32}, Result: ir.Void},
		{Name: PrintString, Args: []ir.Type{ir.I8Ptr}, Result: ir.Void},
		{Name: PrintFloat, Args: []ir.Type{ir.Float}, Result: ir.Void},
		{Name: PrintLn, Result: ir.Void},
	}
}

// Lookup returns the extern named name.
func Lookup(name string) (Extern, bool) {
	for _, e := range Externs() {
		if e.Name == name {
			return e, true
		}
	}
	return Extern{}, false
}
