// Command monalisp is the monalisp interpreter CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"nickandperla.net/monalisp/internal/config"
	"nickandperla.net/monalisp/internal/lsp"
	"nickandperla.net/monalisp/pkg/monalisp"
)

var version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("monalisp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		evalStr   = fs.String("e", "", "Evaluate monalisp source")
		file      = fs.String("f", "", "Execute monalisp file")
		dbPath    = fs.String("db", "", "SQLite database path (overrides config)")
		configDir = fs.String("config", "", "Directory containing monalisp.toml")
		serveLSP  = fs.Bool("lsp", false, "Run the language server on stdio")
		noStdlib  = fs.Bool("no-stdlib", false, "Disable standard library prelude")
		strict    = fs.Bool("strict", false, "Fail on unbound identifiers")
		verbosity = fs.Int("v", -1, "Log verbosity (overrides config)")
		logFile   = fs.String("log", "", "Log file path (overrides config)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Flags override file values
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *noStdlib {
		cfg.Runtime.NoStdlib = true
	}
	if *strict {
		cfg.Runtime.StrictIdentifiers = true
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	configureLogging(cfg)

	runtime, err := monalisp.New(monalisp.WithConfig(cfg))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer runtime.Close()

	if *serveLSP {
		if err := lsp.New(runtime, version).Run(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	// Step 1: execute file if specified
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading file: %v\n", err)
			return 1
		}
		if !execute(runtime, string(data), *evalStr == "", stdout, stderr) {
			return 1
		}
	}

	// Step 2: run -e source, after the file so it can use its definitions
	if *evalStr != "" {
		if !execute(runtime, *evalStr, true, stdout, stderr) {
			return 1
		}
	}

	if *file != "" || *evalStr != "" {
		return 0
	}

	if !isTerminal(stdin) {
		// Piped input
		input, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading stdin: %v\n", err)
			return 1
		}
		if !execute(runtime, string(input), true, stdout, stderr) {
			return 1
		}
		return 0
	}

	runREPL(runtime, stdin.(*os.File), stdout)
	return 0
}

// execute runs source, printing the final value unless it is nil. Failures
// are described against source on stderr.
func execute(runtime *monalisp.Runtime, source string, show bool, stdout, stderr io.Writer) bool {
	result, err := runtime.Execute(source)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", monalisp.Describe(err, source))
		return false
	}
	if show && !result.IsNil() {
		fmt.Fprintln(stdout, result.String())
	}
	return true
}

// loadConfig reads monalisp.toml from dir, or searches upward from the
// working directory when dir is empty. Defaults apply when no file exists.
func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func configureLogging(cfg *config.Config) {
	var path *string
	if file := cfg.LogFile(); file != "" {
		path = &file
	}
	commonlog.Configure(cfg.Log.Verbosity, path)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
