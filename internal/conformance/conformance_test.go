package conformance

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	c := Parse("x.lisp", "# EXPECTED: Error: boom\n# EXPECTED:   indented\n(+ 1 2)\n(f)")
	if c.Expected != "Error: boom\n  indented" {
		t.Errorf("Expected = %q", c.Expected)
	}
	if c.Code != "(+ 1 2)\n(f)" {
		t.Errorf("Code = %q", c.Code)
	}
	if !c.ExpectsError() {
		t.Errorf("expected an error case")
	}
}

func TestParseWithoutDirectives(t *testing.T) {
	c := Parse("x.lisp", "(list)")
	if c.Expected != "" || c.Code != "(list)" || c.ExpectsError() {
		t.Errorf("unexpected case %+v", c)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.lisp", "a.lisp", "notes.txt", filepath.Join("sub", "c.lisp")} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("1"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	files, err := Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.lisp"),
		filepath.Join(dir, "b.lisp"),
		filepath.Join(dir, "sub", "c.lisp"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.lisp")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
