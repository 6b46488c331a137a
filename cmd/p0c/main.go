package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"p0c/internal/codegen"
	"p0c/internal/diag"
	"p0c/internal/interp"
	"p0c/internal/loader"
	"p0c/internal/manifest"
)

func usage() {
	fmt.Fprintln(os.Stderr, "p0c - P0 compiler")
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  p0c build [flags] [files or dirs]")
	fmt.Fprintln(os.Stderr, "  p0c run [flags] file [-- args]")
	fmt.Fprintln(os.Stderr, "  p0c ir [flags] [files or dirs]")
	fmt.Fprintln(os.Stderr, "  p0c check [flags] [files or dirs]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "flags:")
	fmt.Fprintln(os.Stderr, "  --mode=llvm|native     artifact kind (default: native, or build.mode in p0c.toml)")
	fmt.Fprintln(os.Stderr, "  --engine=compile|interp  how run executes the program (default: compile)")
	fmt.Fprintln(os.Stderr, "  --interp               alias for --engine=interp")
	fmt.Fprintln(os.Stderr, "  --out-dir=DIR, -o DIR  write artifacts to DIR")
	fmt.Fprintln(os.Stderr, "  --jobs=N, -j N         files compiled in parallel (default: NumCPU)")
	fmt.Fprintln(os.Stderr, "  --force, -f            rebuild up-to-date artifacts")
	fmt.Fprintln(os.Stderr, "  --keep-ll              keep the generated .ll next to the artifact")
	fmt.Fprintln(os.Stderr, "  --verify               parse the generated IR before building")
	fmt.Fprintln(os.Stderr, "  -v                     verbose progress on stderr")
}

type engine int

const (
	engineCompile engine = iota
	engineInterp
)

type options struct {
	eng      engine
	mode     string
	outDir   string
	jobs     int
	force    bool
	keepLL   bool
	verify   bool
	verbose  bool
	files    []string
	progArgs []string
}

func parseOptions(args []string) (opts options, err error) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			opts.progArgs = append([]string(nil), args[i+1:]...)
			break
		}
		switch a {
		case "--interp":
			opts.eng = engineInterp
			continue
		case "--compile":
			opts.eng = engineCompile
			continue
		case "--force", "-f":
			opts.force = true
			continue
		case "--keep-ll":
			opts.keepLL = true
			continue
		case "--verify":
			opts.verify = true
			continue
		case "-v", "--verbose":
			opts.verbose = true
			continue
		}
		name, val, hasVal := strings.Cut(a, "=")
		switch name {
		case "--engine", "--mode", "--out-dir", "-o", "--jobs", "-j":
		default:
			if strings.HasPrefix(a, "-") {
				return options{}, fmt.Errorf("unknown flag: %s", a)
			}
			opts.files = append(opts.files, a)
			continue
		}
		if !hasVal {
			if i+1 >= len(args) {
				return options{}, fmt.Errorf("missing value for %s", name)
			}
			i++
			val = args[i]
		}
		switch name {
		case "--engine":
			switch val {
			case "compile":
				opts.eng = engineCompile
			case "interp":
				opts.eng = engineInterp
			default:
				return options{}, fmt.Errorf("unknown engine: %q", val)
			}
		case "--mode":
			if _, err := codegen.ParseMode(val); err != nil {
				return options{}, err
			}
			opts.mode = val
		case "--out-dir", "-o":
			if val == "" {
				return options{}, fmt.Errorf("empty value for %s", name)
			}
			opts.outDir = val
		case "--jobs", "-j":
			n, err := parsePositiveInt(val)
			if err != nil {
				return options{}, fmt.Errorf("invalid %s value %q: %v", name, val, err)
			}
			opts.jobs = n
		}
	}
	return opts, nil
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	n := 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("non-digit")
		}
		n = n*10 + int(b-'0')
		if n <= 0 {
			return 0, fmt.Errorf("overflow")
		}
	}
	if n <= 0 {
		return 0, fmt.Errorf("non-positive")
	}
	return n, nil
}

// config merges the nearest p0c.toml with the command-line flags.
func config(opts options, stderr io.Writer) (loader.Options, error) {
	m, err := manifest.Find(".")
	if err != nil {
		return loader.Options{}, err
	}
	mode := m.Build.Mode
	if opts.mode != "" {
		mode = opts.mode
	}
	cm, err := codegen.ParseMode(mode)
	if err != nil {
		return loader.Options{}, err
	}
	lo := loader.Options{
		Stage:  loader.StageBuild,
		Force:  opts.force,
		Jobs:   m.Build.Jobs,
		OutDir: m.Build.OutDir,
		Verify: m.Build.Verify || opts.verify,
		Codegen: codegen.Options{
			Mode: cm,
			Tools: codegen.Tools{
				Clang:    m.Tools.Clang,
				LLVMAs:   m.Tools.LLVMAs,
				LLVMLink: m.Tools.LLVMLink,
				LLI:      m.Tools.LLI,
			},
			KeepLL: m.Build.KeepLL || opts.keepLL,
		},
		Logger: newLogger(stderr, opts.verbose),
	}
	if opts.jobs > 0 {
		lo.Jobs = opts.jobs
	}
	if opts.outDir != "" {
		lo.OutDir = opts.outDir
	}
	if m.Path != "" {
		lo.Logger.Debug("using manifest", "path", m.Path)
	}
	return lo, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		usage()
		return
	}
	opts, err := parseOptions(os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "build":
		err = compile(ctx, opts, loader.StageBuild, os.Stdout, os.Stderr)
	case "ir":
		err = compile(ctx, opts, loader.StageIR, os.Stdout, os.Stderr)
	case "check":
		err = compile(ctx, opts, loader.StageCheck, os.Stdout, os.Stderr)
	case "run":
		err = run(ctx, opts, os.Stdout, os.Stderr)
	default:
		usage()
		stop()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

// compile drives every input file through stage. For StageIR the modules
// are printed to stdout in input order.
func compile(ctx context.Context, opts options, stage loader.Stage, stdout, stderr io.Writer) error {
	lo, err := config(opts, stderr)
	if err != nil {
		return err
	}
	lo.Stage = stage
	args := opts.files
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := loader.Expand(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files in %s", loader.Ext, strings.Join(args, " "))
	}
	results, err := loader.Build(ctx, files, lo)
	if err != nil {
		return err
	}
	if stage == loader.StageIR {
		for _, r := range results {
			if r.Failed() || r.Module == nil {
				continue
			}
			if _, err := r.Module.WriteTo(stdout); err != nil {
				return err
			}
		}
	}
	return report(results, stderr)
}

// report prints the diagnostics and errors of every failed file.
func report(results []*loader.Result, stderr io.Writer) error {
	failed := 0
	for _, r := range results {
		if !r.Failed() {
			continue
		}
		failed++
		diag.Print(stderr, r.Diags)
		if r.Err != nil {
			fmt.Fprintln(stderr, r.Err.Error())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	if len(opts.files) != 1 {
		return fmt.Errorf("run takes exactly one file")
	}
	files, err := loader.Expand(opts.files)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("run takes exactly one file, %s has %d", opts.files[0], len(files))
	}
	lo, err := config(opts, stderr)
	if err != nil {
		return err
	}

	if opts.eng == engineInterp {
		m, diags, err := loader.CompileFile(files[0], lo.Verify)
		if err != nil {
			return err
		}
		if diags.Len() > 0 {
			diag.Print(stderr, diags)
			return fmt.Errorf("build failed")
		}
		code, err := interp.Run(m, interp.Options{Stdout: stdout})
		if err != nil {
			return err
		}
		if code != 0 {
			return fmt.Errorf("exit status %d", code)
		}
		return nil
	}

	results, err := loader.Build(ctx, files, lo)
	if err != nil {
		return err
	}
	if err := report(results, stderr); err != nil {
		return err
	}
	return codegen.Run(ctx, results[0].Artifact, lo.Codegen, stdout, stderr, opts.progArgs...)
}
