package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"p0c/internal/codegen"
	"p0c/internal/loader"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--engine", "interp", "--mode=llvm", "-j", "3", "-o", "out", "-f", "--keep-ll", "--verify", "-v", "a.p0", "dir"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.eng != engineInterp {
		t.Fatalf("eng = %v, want %v", opts.eng, engineInterp)
	}
	if opts.mode != "llvm" {
		t.Fatalf("mode = %q, want %q", opts.mode, "llvm")
	}
	if opts.jobs != 3 {
		t.Fatalf("jobs = %d, want 3", opts.jobs)
	}
	if opts.outDir != "out" {
		t.Fatalf("outDir = %q, want %q", opts.outDir, "out")
	}
	if !opts.force || !opts.keepLL || !opts.verify || !opts.verbose {
		t.Fatalf("boolean flags not set: %+v", opts)
	}
	if len(opts.files) != 2 || opts.files[0] != "a.p0" || opts.files[1] != "dir" {
		t.Fatalf("files = %v, want [a.p0 dir]", opts.files)
	}
}

func TestParseOptions_ProgramArgs(t *testing.T) {
	opts, err := parseOptions([]string{"--interp", "main.p0", "--", "-x", "--mode=bogus"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.eng != engineInterp {
		t.Fatalf("eng = %v, want %v", opts.eng, engineInterp)
	}
	if len(opts.files) != 1 || opts.files[0] != "main.p0" {
		t.Fatalf("files = %v, want [main.p0]", opts.files)
	}
	if len(opts.progArgs) != 2 || opts.progArgs[0] != "-x" || opts.progArgs[1] != "--mode=bogus" {
		t.Fatalf("progArgs = %v", opts.progArgs)
	}
}

func TestParseOptions_Errors(t *testing.T) {
	cases := [][]string{
		{"--nope"},
		{"--engine=c"},
		{"--mode=wasm"},
		{"--jobs=0"},
		{"-j", "x"},
		{"--out-dir="},
		{"--engine"},
	}
	for _, args := range cases {
		if _, err := parseOptions(args); err == nil {
			t.Fatalf("parseOptions(%q): expected an error", args)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	if n, err := parsePositiveInt("12"); err != nil || n != 12 {
		t.Fatalf("parsePositiveInt(12) = %d, %v", n, err)
	}
	for _, s := range []string{"", "0", "-1", "1a", "99999999999999999999999"} {
		if _, err := parsePositiveInt(s); err == nil {
			t.Fatalf("parsePositiveInt(%q): expected an error", s)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestConfig_FlagsOverrideManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "p0c.toml"), "[tools]\nclang = \"clang-18\"\n\n[build]\nmode = \"llvm\"\njobs = 2\nout_dir = \"bin\"\n")
	chdir(t, dir)

	lo, err := config(options{}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if lo.Codegen.Mode != codegen.ModeLLVM || lo.Jobs != 2 || lo.Codegen.Tools.Clang != "clang-18" {
		t.Fatalf("manifest not applied: %+v", lo)
	}
	if filepath.Base(lo.OutDir) != "bin" {
		t.Fatalf("OutDir = %q, want .../bin", lo.OutDir)
	}

	lo, err = config(options{mode: "native", jobs: 5, outDir: "elsewhere", keepLL: true}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if lo.Codegen.Mode != codegen.ModeNative || lo.Jobs != 5 || lo.OutDir != "elsewhere" || !lo.Codegen.KeepLL {
		t.Fatalf("flags did not override manifest: %+v", lo)
	}
}

func TestRun_Interp(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, "hello.p0", `
fun twice(n: Int): Int { return n * 2; }
fun main() { println("hello ", twice(21)); }
`)
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), options{eng: engineInterp, files: []string{"hello"}}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if got, want := stdout.String(), "hello 42\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestRun_InterpReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, "bad.p0", "fun main() { print(y); }\n")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), options{eng: engineInterp, files: []string{"bad.p0"}}, &stdout, &stderr)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(stderr.String(), "bad.p0:1:") || !strings.Contains(stderr.String(), "UnknownIdentifier") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRun_RequiresOneFile(t *testing.T) {
	if err := run(context.Background(), options{eng: engineInterp}, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestCompile_IRPrintsModules(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, "a.p0", "fun main() { print(1); }\n")
	writeFile(t, "b.p0", "fun main() { print(2.5); }\n")
	var stdout, stderr bytes.Buffer
	if err := compile(context.Background(), options{verify: true}, loader.StageIR, &stdout, &stderr); err != nil {
		t.Fatalf("compile: %v\nstderr: %s", err, stderr.String())
	}
	out := stdout.String()
	if strings.Count(out, "define external ccc i32 @main()") != 2 {
		t.Fatalf("expected two modules, got:\n%s", out)
	}
	if strings.Index(out, "; ModuleID = 'a'") > strings.Index(out, "; ModuleID = 'b'") {
		t.Fatalf("modules not in input order:\n%s", out)
	}
}

func TestCompile_CheckContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, "good.p0", "fun main() { print(1); }\n")
	writeFile(t, "bad.p0", "fun main() { if 1 print(1); }\n")
	var stderr bytes.Buffer
	err := compile(context.Background(), options{}, loader.StageCheck, &bytes.Buffer{}, &stderr)
	if err == nil || err.Error() != "1 of 2 files failed" {
		t.Fatalf("err = %v, want %q", err, "1 of 2 files failed")
	}
	if !strings.Contains(stderr.String(), "IfGuardNotBoolean") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestCompile_NoFiles(t *testing.T) {
	chdir(t, t.TempDir())
	if err := compile(context.Background(), options{}, loader.StageCheck, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected an error")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
