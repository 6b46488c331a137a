package codegen

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"p0c/internal/ir"
	"p0c/internal/stdlib"
)

type Options struct {
	Mode  Mode
	Tools Tools
	// KeepLL leaves the .ll file next to the artifact.
	KeepLL bool
}

// WriteLL writes the textual form of m to path.
func WriteLL(m *ir.Module, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Base strips the .p0 extension: "dir/fib.p0" -> "dir/fib". With outDir
// set the result is placed there instead.
func Base(src, outDir string) string {
	base := strings.TrimSuffix(src, filepath.Ext(src))
	if outDir != "" {
		base = filepath.Join(outDir, filepath.Base(base))
	}
	return base
}

// Artifact is the path Build produces for base.
func Artifact(base string, mode Mode) string {
	if mode == ModeLLVM {
		return base + ".bc"
	}
	return base
}

// Build writes base.ll and turns it into Artifact(base, opts.Mode).
// Intermediate files are removed whether or not the build succeeds.
func Build(ctx context.Context, m *ir.Module, base string, opts Options) (string, error) {
	if opts.Mode == "" {
		opts.Mode = ModeNative
	}
	if opts.Tools == (Tools{}) {
		opts.Tools = DefaultTools()
	}
	ll := base + ".ll"
	if err := WriteLL(m, ll); err != nil {
		return "", err
	}
	if !opts.KeepLL {
		defer os.Remove(ll)
	}

	rtDir, err := os.MkdirTemp("", "p0c-rt-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(rtDir)
	rt, err := stdlib.WriteRuntime(rtDir)
	if err != nil {
		return "", err
	}

	out := Artifact(base, opts.Mode)
	switch opts.Mode {
	case ModeNative:
		if err := runTool(ctx, opts.Tools.Clang, ll, rt, "-o", out); err != nil {
			return "", err
		}
	case ModeLLVM:
		progBC := base + ".prog.bc"
		defer os.Remove(progBC)
		rtBC := filepath.Join(rtDir, "p0lib.bc")
		if err := runTool(ctx, opts.Tools.LLVMAs, ll, "-o", progBC); err != nil {
			return "", err
		}
		if err := runTool(ctx, opts.Tools.Clang, "-c", "-emit-llvm", rt, "-o", rtBC); err != nil {
			return "", err
		}
		if err := runTool(ctx, opts.Tools.LLVMLink, progBC, rtBC, "-o", out); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown mode %q", opts.Mode)
	}
	return out, nil
}

// Run executes an artifact produced by Build, forwarding its output. The
// program's exit status is returned as an *exec.ExitError.
func Run(ctx context.Context, artifact string, opts Options, stdout, stderr io.Writer, args ...string) error {
	if opts.Tools == (Tools{}) {
		opts.Tools = DefaultTools()
	}
	var cmd *exec.Cmd
	switch opts.Mode {
	case ModeLLVM:
		lli, err := lookTool(opts.Tools.LLI)
		if err != nil {
			return err
		}
		cmd = exec.CommandContext(ctx, lli, append([]string{artifact}, args...)...)
	case ModeNative, "":
		bin, err := filepath.Abs(artifact)
		if err != nil {
			return err
		}
		cmd = exec.CommandContext(ctx, bin, args...)
	default:
		return fmt.Errorf("unknown mode %q", opts.Mode)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}
