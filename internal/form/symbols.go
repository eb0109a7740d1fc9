package form

import (
	"sort"
	"sync"
)

// Symbols interns identifiers and keywords by name. A table lives as long as
// the runtime that owns it.
type Symbols struct {
	mu          sync.RWMutex
	identifiers map[string]*Identifier
	keywords    map[string]*Keyword
}

// NewSymbols creates an empty interning table.
func NewSymbols() *Symbols {
	return &Symbols{
		identifiers: make(map[string]*Identifier),
		keywords:    make(map[string]*Keyword),
	}
}

// Identifier returns the unique identifier for name, creating it on first use.
func (s *Symbols) Identifier(name string) *Identifier {
	s.mu.RLock()
	id, ok := s.identifiers[name]
	s.mu.RUnlock()
	if ok {
		return id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.identifiers[name]; ok {
		return id
	}
	id = &Identifier{Name: name}
	s.identifiers[name] = id
	return id
}

// Keyword returns the unique keyword for name (without colon).
func (s *Symbols) Keyword(name string) *Keyword {
	s.mu.RLock()
	kw, ok := s.keywords[name]
	s.mu.RUnlock()
	if ok {
		return kw
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if kw, ok := s.keywords[name]; ok {
		return kw
	}
	kw = &Keyword{Name: name}
	s.keywords[name] = kw
	return kw
}

// Identifiers returns the sorted names of every interned identifier.
func (s *Symbols) Identifiers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.identifiers))
	for name := range s.identifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
