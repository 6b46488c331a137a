// Package loader finds P0 sources and runs the compile pipeline over them,
// one independent compilation per file.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"p0c/internal/codegen"
	"p0c/internal/diag"
	"p0c/internal/ir"
	"p0c/internal/irgen"
	"p0c/internal/names"
	"p0c/internal/source"
	"p0c/internal/typecheck"
	"p0c/internal/verify"
)

// Ext is the P0 source extension.
const Ext = ".p0"

// Stage says how far Build takes each file.
type Stage int

const (
	StageCheck Stage = iota // parse and type-check
	StageIR                 // also lower to IR
	StageBuild              // also write and link an artifact
)

type Options struct {
	Stage   Stage
	Force   bool // rebuild even when the artifact is newer than the source
	Jobs    int  // 0 means one per CPU
	OutDir  string
	Verify  bool
	Codegen codegen.Options
	Logger  *slog.Logger
}

// Result is the outcome for one source file. A file failed when Diags is
// non-empty or Err is set.
type Result struct {
	Source   string
	Artifact string
	Skipped  bool // artifact was up to date
	Module   *ir.Module
	Diags    *diag.Bag
	Err      error
}

func (r *Result) Failed() bool { return r.Err != nil || r.Diags.Len() > 0 }

// Expand turns arguments into source paths. A directory contributes every
// .p0 file below it; a file name without extension gets .p0 appended.
func Expand(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		st, err := os.Stat(a)
		if err == nil && st.IsDir() {
			var found []string
			err := filepath.WalkDir(a, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && filepath.Ext(p) == Ext {
					found = append(found, p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			sort.Strings(found)
			out = append(out, found...)
			continue
		}
		if filepath.Ext(a) == "" {
			a += Ext
		}
		if filepath.Ext(a) != Ext {
			return nil, fmt.Errorf("%s: not a %s file", a, Ext)
		}
		out = append(out, a)
	}
	return out, nil
}

// Stale reports whether target must be rebuilt from src: the target is
// missing or older than the source.
func Stale(src, target string) (bool, error) {
	s, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	t, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return s.ModTime().After(t.ModTime()), nil
}

// CompileFile reads, checks and lowers one source file.
func CompileFile(path string, verifyIR bool) (*ir.Module, *diag.Bag, error) {
	file, err := source.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	prog, diags := typecheck.Translate(file)
	if diags.Len() > 0 {
		return nil, diags, nil
	}
	m, err := irgen.Compile(prog, irgen.Options{ModuleID: names.ModuleID(path)})
	if err != nil {
		return nil, nil, err
	}
	if verifyIR {
		if err := verify.Module(m); err != nil {
			return nil, nil, err
		}
	}
	return m, nil, nil
}

// Build processes files concurrently. Every file gets a Result in input
// order; a failing file does not stop the others. A file whose outputs
// would overwrite those of an earlier file fails without being built. The returned error is
// only set when ctx is cancelled.
func Build(ctx context.Context, files []string, opts Options) ([]*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]*Result, len(files))
	outputs := map[string]string{}
	for i, f := range files {
		results[i] = &Result{Source: f}
		if opts.Stage != StageBuild {
			continue
		}
		base := filepath.Clean(codegen.Base(f, opts.OutDir))
		if prev, dup := outputs[base]; dup {
			results[i].Err = fmt.Errorf("%s: output %s is also written for %s", f, base, prev)
			continue
		}
		outputs[base] = f
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buildOne(gctx, r, opts, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func buildOne(ctx context.Context, r *Result, opts Options, log *slog.Logger) {
	base := codegen.Base(r.Source, opts.OutDir)
	if opts.Stage == StageBuild {
		r.Artifact = codegen.Artifact(base, opts.Codegen.Mode)
		if !opts.Force {
			stale, err := Stale(r.Source, r.Artifact)
			if err != nil {
				r.Err = err
				return
			}
			if !stale {
				r.Skipped = true
				log.Debug("up to date", "file", r.Source, "artifact", r.Artifact)
				return
			}
		}
	}

	log.Info("compiling", "file", r.Source)
	if opts.Stage == StageCheck {
		file, err := source.ReadFile(r.Source)
		if err != nil {
			r.Err = err
			return
		}
		_, r.Diags = typecheck.Translate(file)
		return
	}
	r.Module, r.Diags, r.Err = CompileFile(r.Source, opts.Verify)
	if r.Failed() || opts.Stage == StageIR {
		return
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			r.Err = err
			return
		}
	}
	artifact, err := codegen.Build(ctx, r.Module, base, opts.Codegen)
	if err != nil {
		r.Err = fmt.Errorf("%s: %w", r.Source, err)
		return
	}
	r.Artifact = artifact
	log.Debug("built", "file", r.Source, "artifact", artifact)
}
