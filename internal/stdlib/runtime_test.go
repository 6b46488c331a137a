package stdlib_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"p0c/internal/stdlib"
)

func TestRuntimeSourceIsEmbedded(t *testing.T) {
	src := stdlib.Source()
	if !strings.HasPrefix(src, "#include <stdio.h>") {
		t.Fatalf("unexpected runtime source start: %q", src[:min(len(src), 40)])
	}
	on, err := os.ReadFile(filepath.Join("runtime", stdlib.RuntimeFileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(on) != src {
		t.Fatalf("embedded runtime differs from runtime/%s", stdlib.RuntimeFileName)
	}
}

// A .c file next to the package sources would make the package unbuildable
// without cgo.
func TestNoCSourcesInPackageDir(t *testing.T) {
	matches, err := filepath.Glob("*.c")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no C files in the package directory, got %v", matches)
	}
}
