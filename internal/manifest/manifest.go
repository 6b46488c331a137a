// Package manifest reads p0c.toml, the optional per-project build
// configuration.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileName is looked up in the working directory and its parents.
const FileName = "p0c.toml"

type Manifest struct {
	Path  string // empty when no file was found
	Tools Tools
	Build Build
}

// Tools names the external programs; each may be a path or a name looked
// up in PATH.
type Tools struct {
	Clang    string
	LLVMAs   string
	LLVMLink string
	LLI      string
}

type Build struct {
	Mode   string // "llvm" or "native"
	OutDir string // relative to the manifest's directory; empty means next to the source
	KeepLL bool
	Jobs   int // 0 means one per CPU
	Verify bool
}

// Default is the configuration used without a p0c.toml.
func Default() *Manifest {
	return &Manifest{
		Tools: Tools{Clang: "clang", LLVMAs: "llvm-as", LLVMLink: "llvm-link", LLI: "lli"},
		Build: Build{Mode: "native"},
	}
}

// Find loads the nearest p0c.toml in dir or a parent, or returns Default.
func Find(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for cur := abs; ; {
		p := filepath.Join(cur, FileName)
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return Default(), nil
		}
		cur = parent
	}
}

// Load reads path on top of Default. Unknown keys are ignored.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := Default()
	m.Path = path
	var section string
	lineNo := 0
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		key, val, ok := cutKV(line)
		if !ok {
			return nil, fmt.Errorf("%s:%d: invalid line: %q", path, lineNo, line)
		}
		if err := m.set(section, key, val); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m.Build.OutDir != "" && !filepath.IsAbs(m.Build.OutDir) {
		m.Build.OutDir = filepath.Join(filepath.Dir(path), m.Build.OutDir)
	}
	return m, nil
}

func (m *Manifest) set(section, key, val string) error {
	switch section {
	case "tools":
		switch key {
		case "clang":
			m.Tools.Clang = unquote(val)
		case "llvm_as":
			m.Tools.LLVMAs = unquote(val)
		case "llvm_link":
			m.Tools.LLVMLink = unquote(val)
		case "lli":
			m.Tools.LLI = unquote(val)
		}
	case "build":
		switch key {
		case "mode":
			mode := unquote(val)
			if mode != "llvm" && mode != "native" {
				return fmt.Errorf("build.mode must be \"llvm\" or \"native\", got %q", mode)
			}
			m.Build.Mode = mode
		case "out_dir":
			m.Build.OutDir = unquote(val)
		case "keep_ll":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("build.keep_ll: %w", err)
			}
			m.Build.KeepLL = b
		case "verify":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("build.verify: %w", err)
			}
			m.Build.Verify = b
		case "jobs":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return fmt.Errorf("build.jobs must be a non-negative integer, got %s", val)
			}
			m.Build.Jobs = n
		}
	}
	return nil
}

func cutKV(line string) (key, val string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	val = strings.TrimSpace(line[i+1:])
	if key == "" || val == "" {
		return "", "", false
	}
	return key, val, true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
