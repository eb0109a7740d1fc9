package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nickandperla.net/monalisp/pkg/monalisp"
)

// runCLI runs the CLI in-process with stdin and captures its output.
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestEvalFlag(t *testing.T) {
	code, out, errOut := runCLI(t, "", "-db", tempDB(t), "-e", "(def x 2) (+ x 1)")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "3\n" {
		t.Errorf("output = %q, want %q", out, "3\n")
	}
}

func TestEvalFlagNilPrintsNothing(t *testing.T) {
	code, out, _ := runCLI(t, "", "-db", tempDB(t), "-e", "(first (list))")
	if code != 0 || out != "" {
		t.Errorf("got exit %d output %q", code, out)
	}
}

func TestFileThenEval(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "defs.lisp")
	if err := os.WriteFile(file, []byte("(def square (fn (x) (* x x)))\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	code, out, errOut := runCLI(t, "", "-db", tempDB(t), "-f", file, "-e", "(square 7)")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "49\n" {
		t.Errorf("output = %q, want %q", out, "49\n")
	}
}

func TestMissingFile(t *testing.T) {
	code, _, errOut := runCLI(t, "", "-db", tempDB(t), "-f", filepath.Join(t.TempDir(), "nope.lisp"))
	if code != 1 || !strings.Contains(errOut, "Error loading file") {
		t.Errorf("got exit %d stderr %q", code, errOut)
	}
}

func TestPipedStdin(t *testing.T) {
	code, out, errOut := runCLI(t, "(map inc (list 1 2 3))", "-db", tempDB(t))
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "(2 3 4)\n" {
		t.Errorf("output = %q, want %q", out, "(2 3 4)\n")
	}
}

func TestFailureIsDescribed(t *testing.T) {
	code, out, errOut := runCLI(t, "", "-db", tempDB(t), "-e", "(+ 1 :a)")
	if code != 1 {
		t.Errorf("exit %d, want 1", code)
	}
	if out != "" {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(errOut, "Error: ") || !strings.Contains(errOut, "(+ 1 :a)") || !strings.Contains(errOut, "^") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestParseFailureIsDescribed(t *testing.T) {
	code, _, errOut := runCLI(t, "", "-db", tempDB(t), "-e", "(a b")
	if code != 1 || !strings.Contains(errOut, "line 1, column 5") {
		t.Errorf("got exit %d stderr %q", code, errOut)
	}
}

func TestNoStdlibFlag(t *testing.T) {
	code, out, _ := runCLI(t, "", "-db", tempDB(t), "-no-stdlib", "-e", "(fn? inc)")
	if code != 0 || out != "false\n" {
		t.Errorf("got exit %d output %q", code, out)
	}
}

func TestStrictFlag(t *testing.T) {
	code, _, errOut := runCLI(t, "", "-db", tempDB(t), "-strict", "-e", "undefined-thing")
	if code != 1 || !strings.Contains(errOut, "Undefined identifier undefined-thing.") {
		t.Errorf("got exit %d stderr %q", code, errOut)
	}
}

func TestPersistAcrossRuns(t *testing.T) {
	db := tempDB(t)
	if code, _, errOut := runCLI(t, "", "-db", db, "-e", "(def cube (fn (x) (* x x x))) (persist cube)"); code != 0 {
		t.Fatalf("first run exit %d: %s", code, errOut)
	}
	code, out, errOut := runCLI(t, "", "-db", db, "-e", "(load cube) (cube 3)")
	if code != 0 {
		t.Fatalf("second run exit %d: %s", code, errOut)
	}
	if out != "27\n" {
		t.Errorf("output = %q, want %q", out, "27\n")
	}
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	toml := "[runtime]\nstrict-identifiers = true\n\n[store]\npath = \"cfg.db\"\n"
	if err := os.WriteFile(filepath.Join(dir, "monalisp.toml"), []byte(toml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	code, _, errOut := runCLI(t, "", "-config", dir, "-e", "missing")
	if code != 1 || !strings.Contains(errOut, "Undefined identifier") {
		t.Errorf("got exit %d stderr %q", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "cfg.db")); err != nil {
		t.Errorf("expected store beside config: %v", err)
	}
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "monalisp.toml"), []byte("[runtime]\nbogus = 1\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	code, _, errOut := runCLI(t, "", "-config", dir, "-e", "1")
	if code != 1 || !strings.Contains(errOut, "bogus") {
		t.Errorf("got exit %d stderr %q", code, errOut)
	}
}

func TestUnknownFlag(t *testing.T) {
	if code, _, _ := runCLI(t, "", "-nonsense"); code != 2 {
		t.Errorf("exit %d, want 2", code)
	}
}

func newRuntime(t *testing.T) *monalisp.Runtime {
	t.Helper()
	r, err := monalisp.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestBasicREPL(t *testing.T) {
	r := newRuntime(t)
	var out bytes.Buffer
	runBasicREPL(r, strings.NewReader("(def x\n  41)\n\n(inc x)\n(first\n  (list))\n(+ 1 :a)\n"), &out)

	got := out.String()
	for _, want := range []string{">>> ", "... ", "41\n", "42\n", "nil\n", "Error: "} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in REPL output %q", want, got)
		}
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"(a b)", false},
		{"(a (b", true},
		{"{:a 1", true},
		{"\"unterminated", true},
		{"\"(\"", false},
		{"(a))", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.input); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLineEditorAltKeys(t *testing.T) {
	var out bytes.Buffer
	e := &lineEditor{in: strings.NewReader("\x1bb(+ . 1)\r"), out: &out}
	line, eof := e.readLine()
	if eof || line != "•(+ . 1)" {
		t.Errorf("readLine = %q, %v", line, eof)
	}

	e = &lineEditor{in: strings.NewReader("\x1b'x\r"), out: &out}
	if line, _ := e.readLine(); line != "'x" {
		t.Errorf("readLine = %q, want %q", line, "'x")
	}
}

func TestLineEditorEditing(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc\x7f\r", "ab"},            // backspace
		{"ac\x1b[Db\r", "abc"},         // left arrow then insert
		{"abc\x01x\r", "xabc"},         // Ctrl+A
		{"abc\x1b[D\x1b[D\x0b\r", "a"}, // Ctrl+K
		{"abc\x1b[D\x15\r", "c"},       // Ctrl+U
		{"abc\x01\x1b[3~\r", "bc"},     // Delete key
		{"λx\r", "λx"},                 // UTF-8
		{"ab\x01\x05c\r", "abc"},       // Ctrl+E
		{"ab\x01\x04\r", "b"},          // Ctrl+D deletes under cursor
	}
	for _, tt := range tests {
		var out bytes.Buffer
		e := &lineEditor{in: strings.NewReader(tt.input), out: &out}
		line, eof := e.readLine()
		if eof || line != tt.want {
			t.Errorf("%q: readLine = %q (eof %v), want %q", tt.input, line, eof, tt.want)
		}
	}
}

func TestLineEditorEOF(t *testing.T) {
	var out bytes.Buffer
	e := &lineEditor{in: strings.NewReader("\x04"), out: &out}
	if _, eof := e.readLine(); !eof {
		t.Errorf("expected EOF on Ctrl+D at empty line")
	}
	e = &lineEditor{in: strings.NewReader(""), out: &out}
	if _, eof := e.readLine(); !eof {
		t.Errorf("expected EOF on end of input")
	}
}

func TestLineEditorHistory(t *testing.T) {
	var out bytes.Buffer
	e := &lineEditor{in: strings.NewReader("\x1b[A\x1b[A\r" + "\x1b[A\x1b[Bdraft\r"), out: &out}
	e.remember("(first)")
	e.remember("(second)")
	e.remember("(second)")
	if len(e.history) != 2 {
		t.Fatalf("history = %v, want duplicates collapsed", e.history)
	}
	if line, _ := e.readLine(); line != "(first)" {
		t.Errorf("two ups = %q, want %q", line, "(first)")
	}
	if line, _ := e.readLine(); line != "draft" {
		t.Errorf("up then down = %q, want %q", line, "draft")
	}
}
