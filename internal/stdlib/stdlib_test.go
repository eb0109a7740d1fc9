package stdlib

import (
	"testing"

	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/read"
)

func TestPreludeReads(t *testing.T) {
	forms, err := read.New(form.NewSymbols()).Read(Prelude)
	if err != nil {
		t.Fatalf("prelude does not read: %v", err)
	}

	defined := map[string]bool{}
	for _, f := range forms {
		items, ok := f.Value.(form.List)
		if !ok || len(items) < 2 || items[0].String() != "def" {
			t.Errorf("expected only definitions, got %s", f)
			continue
		}
		defined[items[1].String()] = true
	}
	for _, name := range []string{"identity", "inc", "dec", "when", "unless", "map", "filter", "reduce", "compose"} {
		if !defined[name] {
			t.Errorf("expected prelude to define %s", name)
		}
	}
}
