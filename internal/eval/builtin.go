package eval

import (
	"fmt"
	"strings"

	"nickandperla.net/monalisp/internal/form"
)

// libraryEntry is one native procedure of the global scope.
type libraryEntry struct {
	name string
	sig  *Signature
	fn   BuiltinFunc
}

func installLibrary(e *Evaluator) {
	for _, group := range [][]libraryEntry{
		mathBuiltins(),
		logicBuiltins(),
		listBuiltins(),
		textBuiltins(e),
	} {
		for _, b := range group {
			e.Define(b.name, NewBuiltin(b.name, b.sig, b.fn))
		}
	}
	for name, v := range mathConstants {
		e.Define(name, form.Number(v))
	}
}

func textBuiltins(e *Evaluator) []libraryEntry {
	return []libraryEntry{
		{"str", MustSignature(RestParam("forms", form.FlagAny)), builtinStr},
		{"type-of", MustSignature(Param("form", form.FlagAny)), func(args []form.Tagged) (form.Value, error) {
			return e.symbols.Keyword(strings.ToLower(args[0].Flag().String())), nil
		}},
	}
}

// (str ...) concatenates the display text of its arguments.
func builtinStr(args []form.Tagged) (form.Value, error) {
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(form.Display(arg.Value))
	}
	return form.Text(sb.String()), nil
}

func number(t form.Tagged) float64 {
	return float64(t.Value.(form.Number))
}

func list(t form.Tagged) form.List {
	return t.Value.(form.List)
}

func argumentError(name, format string, args ...any) error {
	return fmt.Errorf("%s: %s", name, fmt.Sprintf(format, args...))
}
