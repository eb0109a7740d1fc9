package store

import (
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory store for testing and for runs without a database.
type Memory struct {
	mu       sync.RWMutex
	session  string
	data     map[string]Definition
	versions map[string][]VersionEntry
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		session:  uuid.NewString(),
		data:     make(map[string]Definition),
		versions: make(map[string][]VersionEntry),
	}
}

// Session returns the id stamped on versions written through this store.
func (m *Memory) Session() string {
	return m.session
}

// Get retrieves a definition by name.
func (m *Memory) Get(name string) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if def, ok := m.data[name]; ok {
		def.Forms = append([]byte(nil), def.Forms...)
		return &def, nil
	}
	return nil, nil
}

// Put stores a definition and records a new version when the source changed.
func (m *Memory) Put(def Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	def.Forms = append([]byte(nil), def.Forms...)
	m.data[def.Name] = def

	vv := m.versions[def.Name]
	if len(vv) > 0 && vv[len(vv)-1].Source == def.Source {
		return nil
	}
	m.versions[def.Name] = append(vv, VersionEntry{
		Version: len(vv) + 1,
		Source:  def.Source,
		Session: m.session,
		Ts:      now(),
	})
	return nil
}

// Delete removes a definition and all of its versions.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	delete(m.versions, name)
	return nil
}

// GetHistory returns versions of name, newest first.
func (m *Memory) GetHistory(name string, limit int) ([]VersionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vv := m.versions[name]
	if len(vv) == 0 {
		return nil, nil
	}
	result := make([]VersionEntry, len(vv))
	for i, v := range vv {
		result[len(vv)-1-i] = v
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

