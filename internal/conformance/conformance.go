// Package conformance reads the directive-annotated source files used to
// check the interpreter end to end.
//
// A case file starts with directive lines followed by monalisp source:
//
//	# EXPECTED: (1 4 9)
//	(map •(* .1 .1) (list 1 2 3))
//
// Each EXPECTED line contributes one line of expected output, so a failure
// spanning several lines is written as several directives.
package conformance

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the file extension of case files.
const Ext = ".lisp"

const expectedDirective = "# EXPECTED:"

// Case is one parsed case file.
type Case struct {
	Path     string
	Expected string // expected combined output, without trailing newline
	Code     string // source with directive lines removed
}

// ExpectsError reports whether the expected output is a failure report.
func (c Case) ExpectsError() bool {
	return strings.HasPrefix(c.Expected, "Error:") || strings.HasPrefix(c.Expected, "Error ")
}

// Parse splits content into expected output and source.
func Parse(path, content string) Case {
	var expected, code []string
	for _, line := range strings.Split(content, "\n") {
		if rest, ok := strings.CutPrefix(line, expectedDirective); ok {
			expected = append(expected, strings.TrimPrefix(rest, " "))
			continue
		}
		code = append(code, line)
	}
	return Case{
		Path:     path,
		Expected: strings.Join(expected, "\n"),
		Code:     strings.Join(code, "\n"),
	}
}

// Load reads and parses a case file.
func Load(path string) (Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Case{Path: path}, err
	}
	return Parse(path, string(content)), nil
}

// Find recursively finds all case files under dir, sorted.
func Find(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), Ext) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
