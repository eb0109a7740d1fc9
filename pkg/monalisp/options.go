package monalisp

import (
	"fmt"
	"os"

	"nickandperla.net/monalisp/internal/config"
	"nickandperla.net/monalisp/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path. A store
// that cannot be opened makes New fail.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.optErr = err
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore configures a custom store.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithMaxDepth bounds nested applications during evaluation.
func WithMaxDepth(n int) Option {
	return func(r *Runtime) {
		r.maxDepth = n
	}
}

// WithMaxReadDepth bounds list and dictionary nesting in source.
func WithMaxReadDepth(n int) Option {
	return func(r *Runtime) {
		r.maxReadDepth = n
	}
}

// WithStrictIdentifiers makes unbound identifiers an evaluation failure.
func WithStrictIdentifiers(strict bool) Option {
	return func(r *Runtime) {
		r.strict = strict
	}
}

// WithRadixLiterals enables 0x, 0o and 0b number literals.
func WithRadixLiterals(enabled bool) Option {
	return func(r *Runtime) {
		r.radix = enabled
	}
}

// WithHistoryLimit caps the versions returned by history (0 = all).
func WithHistoryLimit(n int) Option {
	return func(r *Runtime) {
		r.historyLimit = n
	}
}

// WithPrelude sets extra prelude source, evaluated after the standard one.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// WithNoStdlib disables loading the prelude.
func WithNoStdlib() Option {
	return func(r *Runtime) {
		r.noStdlib = true
	}
}

// WithConfig applies the runtime and store sections of a configuration
// file. The extra prelude is read and the store opened at their configured
// paths unless those are empty.
func WithConfig(c *config.Config) Option {
	return func(r *Runtime) {
		r.maxDepth = c.Runtime.MaxDepth
		r.maxReadDepth = c.Runtime.MaxReadDepth
		r.strict = c.Runtime.StrictIdentifiers
		r.radix = c.Runtime.RadixLiterals
		r.noStdlib = c.Runtime.NoStdlib
		r.historyLimit = c.Store.HistoryLimit
		if path := c.PreludePath(); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				r.optErr = fmt.Errorf("monalisp: prelude: %w", err)
				return
			}
			r.prelude = string(data)
		}
		if path := c.StorePath(); path != "" {
			WithSQLiteStore(path)(r)
		}
	}
}
