package eval

import (
	"math"

	"nickandperla.net/monalisp/internal/form"
)

var mathConstants = map[string]float64{
	"PI":       math.Pi,
	"TAU":      2 * math.Pi,
	"E":        math.E,
	"PHI":      math.Phi,
	"EPSILON":  0x1p-52,
	"INFINITY": math.Inf(1),
}

var (
	numbers = MustSignature(RestParam("numbers", form.FlagNumber))
	unary   = MustSignature(Param("x", form.FlagNumber))
	binary  = MustSignature(Param("a", form.FlagNumber), Param("b", form.FlagNumber))
)

func mathBuiltins() []libraryEntry {
	return []libraryEntry{
		{"+", numbers, fold(0, func(a, b float64) float64 { return a + b })},
		{"-", numbers, leftFold(0, func(a, b float64) float64 { return a - b })},
		{"*", numbers, fold(1, func(a, b float64) float64 { return a * b })},
		{"/", numbers, leftFold(1, func(a, b float64) float64 { return a / b })},
		{"min", numbers, fold(math.Inf(1), math.Min)},
		{"max", numbers, fold(math.Inf(-1), math.Max)},
		{"mod", binary, binaryMath(math.Mod)},
		{"pow", binary, binaryMath(math.Pow)},
		{"atan2", binary, binaryMath(math.Atan2)},
		{"abs", unary, unaryMath(math.Abs)},
		{"round", unary, unaryMath(func(x float64) float64 { return math.Floor(x + 0.5) })},
		{"floor", unary, unaryMath(math.Floor)},
		{"ceil", unary, unaryMath(math.Ceil)},
		{"sqrt", unary, unaryMath(math.Sqrt)},
		{"sin", unary, unaryMath(math.Sin)},
		{"cos", unary, unaryMath(math.Cos)},
		{"tan", unary, unaryMath(math.Tan)},
		{"<", binary, compare(func(a, b float64) bool { return a < b })},
		{">", binary, compare(func(a, b float64) bool { return a > b })},
		{"<=", binary, compare(func(a, b float64) bool { return a <= b })},
		{">=", binary, compare(func(a, b float64) bool { return a >= b })},
	}
}

// fold combines every argument starting from identity.
func fold(identity float64, op func(a, b float64) float64) BuiltinFunc {
	return func(args []form.Tagged) (form.Value, error) {
		acc := identity
		for _, arg := range args {
			acc = op(acc, number(arg))
		}
		return form.Number(acc), nil
	}
}

// leftFold starts from the first argument, so (- x) and (/ x) return x.
// With no arguments it returns identity.
func leftFold(identity float64, op func(a, b float64) float64) BuiltinFunc {
	return func(args []form.Tagged) (form.Value, error) {
		if len(args) == 0 {
			return form.Number(identity), nil
		}
		acc := number(args[0])
		for _, arg := range args[1:] {
			acc = op(acc, number(arg))
		}
		return form.Number(acc), nil
	}
}

func unaryMath(op func(float64) float64) BuiltinFunc {
	return func(args []form.Tagged) (form.Value, error) {
		return form.Number(op(number(args[0]))), nil
	}
}

func binaryMath(op func(a, b float64) float64) BuiltinFunc {
	return func(args []form.Tagged) (form.Value, error) {
		return form.Number(op(number(args[0]), number(args[1]))), nil
	}
}

func compare(op func(a, b float64) bool) BuiltinFunc {
	return func(args []form.Tagged) (form.Value, error) {
		return form.Bool(op(number(args[0]), number(args[1]))), nil
	}
}
