// Package codegen turns an ir.Module into something runnable: a .ll file,
// an LLVM bitcode program for lli, or a native executable linked with the
// P0 runtime.
package codegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type Mode string

const (
	// ModeLLVM assembles to bitcode, links the runtime as bitcode and runs
	// the result with lli.
	ModeLLVM Mode = "llvm"
	// ModeNative compiles and links in one clang invocation.
	ModeNative Mode = "native"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLLVM, ModeNative:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want llvm or native)", s)
}

type Tools struct {
	Clang    string
	LLVMAs   string
	LLVMLink string
	LLI      string
}

func DefaultTools() Tools {
	return Tools{Clang: "clang", LLVMAs: "llvm-as", LLVMLink: "llvm-link", LLI: "lli"}
}

// Needed lists the tools a mode invokes, in order of use.
func (t Tools) Needed(mode Mode) []string {
	if mode == ModeLLVM {
		return []string{t.LLVMAs, t.Clang, t.LLVMLink, t.LLI}
	}
	return []string{t.Clang}
}

// ErrToolMissing is returned when a tool cannot be found.
var ErrToolMissing = errors.New("tool not found")

// ToolError reports a tool that ran and failed.
type ToolError struct {
	Tool   string
	Args   []string
	Output []byte
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

func lookTool(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolMissing, name)
	}
	return p, nil
}

// runTool runs a build step, capturing its output for the error.
func runTool(ctx context.Context, name string, args ...string) error {
	bin, err := lookTool(name)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return &ToolError{Tool: name, Args: args, Output: out.Bytes(), Err: err}
	}
	return nil
}
