package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[runtime]
max-depth = 200
max-read-depth = 64
strict-identifiers = true
radix-literals = true
no-stdlib = true
prelude = "lib/prelude.lisp"

[store]
path = "data/defs.db"
history-limit = 5

[log]
verbosity = 2
file = "/var/log/monalisp.log"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Runtime.MaxDepth != 200 {
		t.Errorf("max-depth = %d, want 200", c.Runtime.MaxDepth)
	}
	if c.Runtime.MaxReadDepth != 64 {
		t.Errorf("max-read-depth = %d, want 64", c.Runtime.MaxReadDepth)
	}
	if !c.Runtime.StrictIdentifiers || !c.Runtime.RadixLiterals || !c.Runtime.NoStdlib {
		t.Errorf("runtime flags = %+v, want all true", c.Runtime)
	}
	if c.Store.HistoryLimit != 5 {
		t.Errorf("history-limit = %d, want 5", c.Store.HistoryLimit)
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", c.Log.Verbosity)
	}

	abs, _ := filepath.Abs(dir)
	if got := c.StorePath(); got != filepath.Join(abs, "data", "defs.db") {
		t.Errorf("store path = %q, want it resolved against %s", got, abs)
	}
	if got := c.PreludePath(); got != filepath.Join(abs, "lib", "prelude.lisp") {
		t.Errorf("prelude path = %q", got)
	}
	if got := c.LogFile(); got != "/var/log/monalisp.log" {
		t.Errorf("log file = %q, want absolute path unchanged", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[store]
history-limit = 3
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Runtime.MaxDepth != 10000 {
		t.Errorf("max-depth = %d, want default 10000", c.Runtime.MaxDepth)
	}
	if c.Store.Path != "monalisp.db" {
		t.Errorf("store path = %q, want default monalisp.db", c.Store.Path)
	}
	if c.Store.HistoryLimit != 3 {
		t.Errorf("history-limit = %d, want 3", c.Store.HistoryLimit)
	}
	if c.PreludePath() != "" {
		t.Errorf("prelude path = %q, want empty", c.PreludePath())
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing file")
	}

	dir := t.TempDir()
	writeConfig(t, dir, "[runtime\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}

	dir = t.TempDir()
	writeConfig(t, dir, "[runtime]\nmax-dept = 3\n")
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "runtime.max-dept") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[store]\npath = \":memory:\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("expected config to be found")
	}
	if c.StorePath() != ":memory:" {
		t.Errorf("store path = %q, want :memory:", c.StorePath())
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Runtime.MaxReadDepth != 512 || c.Store.HistoryLimit != 20 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.StorePath() != "monalisp.db" {
		t.Errorf("default store path = %q, want relative monalisp.db", c.StorePath())
	}
}
