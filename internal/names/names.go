package names

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Global renders a module-level symbol reference: @name, or @"name" when the
// name is not a plain LLVM identifier.
func Global(name string) string { return "@" + ident(name) }

// Local renders a function-local value or label reference.
func Local(name string) string { return "%" + ident(name) }

// IsPlain reports whether name can be written without quotes.
//
// Plain identifiers match [-a-zA-Z$._][-a-zA-Z$._0-9]* or are all digits
// (numbered values).
func IsPlain(name string) bool {
	if name == "" {
		return false
	}
	allDigits := true
	for i := 0; i < len(name); i++ {
		if !isDigit(name[i]) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}
	if !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentStart(name[i]) && !isDigit(name[i]) {
			return false
		}
	}
	return true
}

func ident(name string) string {
	if IsPlain(name) {
		return name
	}
	return `"` + EscapeBytes([]byte(name)) + `"`
}

// EscapeBytes escapes b for use inside an LLVM quoted string (c"..." or a
// quoted name). Printable ASCII is kept except `"` and `\`; everything else
// becomes \XX.
func EscapeBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for _, ch := range b {
		switch {
		case ch == '"' || ch == '\\':
			fmt.Fprintf(&sb, "\\%02X", ch)
		case ch >= 0x20 && ch <= 0x7e:
			sb.WriteByte(ch)
		default:
			fmt.Fprintf(&sb, "\\%02X", ch)
		}
	}
	return sb.String()
}

// StringPool names the n-th pooled string literal of a module.
// The leading dot keeps it out of the P0 identifier space.
func StringPool(n int) string { return fmt.Sprintf(".str.%d", n) }

// ModuleID derives a module id from a source file name: "dir/fib.p0" -> "fib".
func ModuleID(fileName string) string {
	base := filepath.Base(fileName)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		return "p0"
	}
	return base
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '-' || ch == '$' || ch == '.' || ch == '_' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// Param names the incoming value of a P0 parameter; the suffix keeps it
// apart from generated labels such as then_1.
func Param(name string) string { return name + ".p" }
