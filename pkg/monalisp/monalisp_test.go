package monalisp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/monalisp/internal/config"
	"nickandperla.net/monalisp/internal/form"
)

func newRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExecute(t *testing.T) {
	r := newRuntime(t)
	tests := []struct {
		input    string
		expected string
	}{
		{"(+ 10 20)", "30"},
		{"(def x 5) x", "5"},
		{"((fn (x) (* x x)) 7)", "49"},
		{"(if nil 1 2)", "2"},
		{"(and 1 2 3)", "3"},
		{"(or 0 false nil)", "nil"},
		{"", "nil"},
	}
	for _, tt := range tests {
		got, err := r.Execute(tt.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.input, err)
		}
		if got.String() != tt.expected {
			t.Errorf("%q: expected '%s', got '%s'", tt.input, tt.expected, got.String())
		}
	}
}

func TestExecuteFailures(t *testing.T) {
	r := newRuntime(t)

	_, err := r.Execute("(+ 1 2")
	var pf *ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected a parse failure, got %v", err)
	}

	source := `(def x 1) (+ x "a")`
	_, err = r.Execute(source)
	var ef *EvalFailure
	if !errors.As(err, &ef) {
		t.Fatalf("expected an evaluation failure, got %v", err)
	}
	desc := Describe(err, source)
	if !strings.Contains(desc, "Evaluation failed.") || !strings.Contains(desc, "^") {
		t.Errorf("unexpected description:\n%s", desc)
	}
	if Describe(pf, "(+ 1 2") != pf.Error() {
		t.Errorf("expected parse failures to describe themselves")
	}
}

func TestReadEvaluateDefine(t *testing.T) {
	r := newRuntime(t, WithNoStdlib())
	r.Define("answer", form.Number(42))

	forms, err := r.Read("(+ answer 1) answer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(forms))
	}
	got, err := r.Evaluate(r.Scope(), forms[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "43" {
		t.Errorf("expected '43', got '%s'", got.String())
	}

	found := false
	for _, name := range r.Globals() {
		if name == "answer" {
			found = true
		}
	}
	if !found {
		t.Error("expected answer among globals")
	}
}

func TestEvaluateEmptyScopeIsGlobal(t *testing.T) {
	r := newRuntime(t, WithNoStdlib())
	forms, err := r.Read("(def x 1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Evaluate(Scope{}, forms[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := r.Lookup("x"); !ok || v.String() != "1" {
		t.Errorf("expected global x = 1, got %s (%v)", v.String(), ok)
	}
}

func TestOptions(t *testing.T) {
	r := newRuntime(t, WithMaxDepth(10))
	_, err := r.Execute("(def f (fn (n) (f n))) (f 1)")
	if err == nil || !strings.Contains(err.Error(), "Maximum recursion depth of 10 exceeded.") {
		t.Errorf("expected depth failure, got %v", err)
	}

	r = newRuntime(t, WithMaxReadDepth(2))
	if _, err := r.Execute("(((1)))"); err == nil {
		t.Error("expected nesting failure")
	}

	r = newRuntime(t, WithRadixLiterals(true))
	got, err := r.Execute("(+ 0x10 0b11)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "19" {
		t.Errorf("expected '19', got '%s'", got.String())
	}
}

func TestSQLitePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defs.db")

	r, err := New(WithSQLiteStore(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Execute("(def cube (fn (x) (* x x x))) (persist cube)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Close()

	r2 := newRuntime(t, WithSQLiteStore(path))
	got, err := r2.Execute("(load cube) (cube 3)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "27" {
		t.Errorf("expected '27', got '%s'", got.String())
	}
}

func TestSQLiteStoreError(t *testing.T) {
	if _, err := New(WithSQLiteStore(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))); err == nil {
		t.Error("expected error for unopenable store")
	}
}

func TestWithConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.lisp"), []byte("(def seven 7)"), 0644); err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	c.Dir = dir
	c.Runtime.Prelude = "extra.lisp"
	c.Runtime.StrictIdentifiers = true
	c.Store.Path = "test.db"

	r := newRuntime(t, WithConfig(c))
	got, err := r.Execute("(+ seven (inc 0))")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "8" {
		t.Errorf("expected '8', got '%s'", got.String())
	}
	if _, err := r.Execute("nope"); err == nil {
		t.Error("expected strict identifiers from config")
	}
	if _, err := r.Execute("(persist seven)"); err != nil {
		t.Errorf("expected store from config, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "test.db")); err != nil {
		t.Errorf("expected database next to the config: %v", err)
	}
}
