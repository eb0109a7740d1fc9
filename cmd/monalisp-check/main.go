// monalisp-check: syntax checker for monalisp source files.
//
// Reads each file with the monalisp reader, without evaluating it, and
// reports the first parse failure with its position. Conformance directives
// (# EXPECTED:) are stripped before reading.
//
// Usage:
//
//	monalisp-check FILE [FILE...]
//	monalisp-check --dir DIR
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"nickandperla.net/monalisp/internal/conformance"
	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/parse"
	"nickandperla.net/monalisp/internal/read"
)

// checkResult holds the outcome of checking a single file.
type checkResult struct {
	path         string
	errors       []string
	expectsError bool
}

// checkFile reads a case or source file and returns its syntax errors.
func checkFile(r *read.Reader, path string) checkResult {
	c, err := conformance.Load(path)
	if err != nil {
		return checkResult{
			path:   path,
			errors: []string{fmt.Sprintf("read error: %v", err)},
		}
	}

	result := checkResult{path: path, expectsError: c.ExpectsError()}
	if _, err := r.Read(c.Code); err != nil {
		var f *parse.Failure
		if errors.As(err, &f) {
			result.errors = append(result.errors,
				fmt.Sprintf("line %d:%d: %s", f.Info.Line, f.Info.Column+1, f.Message))
		} else {
			result.errors = append(result.errors, err.Error())
		}
	}
	return result
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Usage: monalisp-check [--dir DIR] FILE [FILE...]")
		return 1
	}

	var files []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--dir" {
			if i+1 >= len(args) {
				fmt.Fprintln(stderr, "Error: --dir requires an argument")
				return 1
			}
			i++
			found, err := conformance.Find(args[i])
			if err != nil {
				fmt.Fprintf(stderr, "Error scanning directory %s: %v\n", args[i], err)
				return 1
			}
			files = append(files, found...)
		} else {
			files = append(files, args[i])
		}
	}

	if len(files) == 0 {
		fmt.Fprintf(stderr, "No %s files found\n", conformance.Ext)
		return 1
	}

	r := read.New(form.NewSymbols(), read.WithRadixLiterals(true))
	passed := 0
	failed := 0
	expectedErr := 0

	for _, f := range files {
		result := checkFile(r, f)
		hasErrors := len(result.errors) > 0

		if result.expectsError {
			// Error cases may fail at evaluation rather than reading.
			expectedErr++
			if hasErrors {
				fmt.Fprintf(stdout, "OK   %s (expected error, found %d)\n", f, len(result.errors))
			} else {
				fmt.Fprintf(stdout, "OK   %s (expected error, reader accepted)\n", f)
			}
		} else if hasErrors {
			failed++
			fmt.Fprintf(stdout, "FAIL %s\n", f)
			for _, e := range result.errors {
				fmt.Fprintf(stdout, "     %s\n", e)
			}
		} else {
			passed++
			fmt.Fprintf(stdout, "OK   %s\n", f)
		}
	}

	fmt.Fprintf(stdout, "\n--- Summary ---\n")
	fmt.Fprintf(stdout, "Passed:          %d\n", passed)
	fmt.Fprintf(stdout, "Expected errors: %d\n", expectedErr)
	fmt.Fprintf(stdout, "Failed:          %d\n", failed)
	fmt.Fprintf(stdout, "Total:           %d\n", len(files))

	if failed > 0 {
		return 1
	}
	return 0
}
