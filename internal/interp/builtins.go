package interp

import (
	"fmt"
	"io"
	"math"

	"p0c/internal/stdlib"
)

// callRuntime implements the print externals with p0lib.c's output.
func (rt *Runtime) callRuntime(name string, args []Value) error {
	want := 1
	if name == stdlib.PrintLn {
		want = 0
	}
	if len(args) != want {
		return fmt.Errorf("@%s takes %d arguments, got %d", name, want, len(args))
	}
	var err error
	switch name {
	case stdlib.PrintBool:
		if args[0].I == 1 {
			_, err = io.WriteString(rt.out, "true")
		} else {
			_, err = io.WriteString(rt.out, "false")
		}
	case stdlib.PrintInt:
		_, err = fmt.Fprintf(rt.out, "%d", int32(args[0].I))
	case stdlib.PrintFloat:
		_, err = io.WriteString(rt.out, formatFloat(args[0].F))
	case stdlib.PrintString:
		s, serr := cString(args[0])
		if serr != nil {
			return serr
		}
		_, err = io.WriteString(rt.out, s)
	case stdlib.PrintLn:
		_, err = io.WriteString(rt.out, "\n")
	default:
		return fmt.Errorf("no runtime implementation of @%s", name)
	}
	return err
}

// formatFloat renders like C's printf("%f").
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		if math.Signbit(f) {
			return "-nan"
		}
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return fmt.Sprintf("%f", f)
}

// cString reads bytes from p up to the terminating zero.
func cString(p Value) (string, error) {
	var b []byte
	for {
		v, err := load(p)
		if err != nil {
			return "", err
		}
		if v.I == 0 {
			return string(b), nil
		}
		b = append(b, byte(v.I))
		p.Off++
	}
}
