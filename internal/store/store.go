// Package store persists named monalisp definitions together with their
// version history.
package store

// Definition is one persisted binding. Source is the definition as
// re-readable text; Forms is the same definition as encoded forms so it can
// be evaluated without reparsing.
type Definition struct {
	Name   string
	Source string
	Forms  []byte
}

// Store is the interface for definition persistence.
type Store interface {
	// Get retrieves a definition by name. Returns nil if not found.
	Get(name string) (*Definition, error)
	// Put stores a definition, overwriting any current one with the same
	// name. Storing a source identical to the current one records no new
	// version.
	Put(def Definition) error
	// Delete removes a definition and its history.
	Delete(name string) error
	// Close releases resources.
	Close() error
}

// VersionEntry represents a single version of a persisted definition.
type VersionEntry struct {
	Version int
	Source  string
	Session string
	Ts      string
}

// HistoryStore extends Store with version history queries.
type HistoryStore interface {
	Store
	// GetHistory returns versions newest first. A limit of 0 returns all.
	// Unknown names yield nil.
	GetHistory(name string, limit int) ([]VersionEntry, error)
	// Session identifies the process that opened the store; it is recorded
	// on every version written through it.
	Session() string
}
