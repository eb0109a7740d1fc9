// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"sort"
	"sync"

	"nickandperla.net/monalisp/internal/form"
)

// Undefined is what Resolve returns for an unbound identifier.
var Undefined = form.NilForm

// Scope is a single frame of bindings, keyed by identifier name. Bindings
// are added or overwritten by Define and never removed.
type Scope struct {
	mu    sync.RWMutex
	table map[string]form.Tagged
}

// NewScope creates an empty frame.
func NewScope() *Scope {
	return &Scope{
		table: make(map[string]form.Tagged),
	}
}

// Lookup returns the binding for name and whether it exists.
func (s *Scope) Lookup(name string) (form.Tagged, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.table[name]
	return v, ok
}

// Resolve returns the value bound to id, or Undefined.
func (s *Scope) Resolve(id *form.Identifier) form.Tagged {
	if v, ok := s.Lookup(id.Name); ok {
		return v
	}
	return Undefined
}

// Define binds id to v in this frame and returns v.
func (s *Scope) Define(id *form.Identifier, v form.Tagged) form.Tagged {
	return s.DefineName(id.Name, v)
}

// DefineName binds name to v in this frame and returns v.
func (s *Scope) DefineName(name string, v form.Tagged) form.Tagged {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[name] = v
	return v
}

// Names returns the sorted names bound in this frame.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.table))
	for name := range s.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stack is an ordered chain of frames, outermost first. Push and Pop return
// new stacks that share frame pointers, so a closure holding a Stack sees
// later definitions made into its frames but never a caller's pushes.
type Stack struct {
	frames []*Scope
}

// NewStack creates a stack from frames, outermost first.
func NewStack(frames ...*Scope) Stack {
	return Stack{frames: append([]*Scope(nil), frames...)}
}

// Push returns a new stack with frames added innermost.
func (st Stack) Push(frames ...*Scope) Stack {
	next := make([]*Scope, 0, len(st.frames)+len(frames))
	next = append(next, st.frames...)
	next = append(next, frames...)
	return Stack{frames: next}
}

// Pop returns a new stack without the innermost frame.
func (st Stack) Pop() Stack {
	if len(st.frames) == 0 {
		return st
	}
	return Stack{frames: st.frames[:len(st.frames)-1:len(st.frames)-1]}
}

// Len returns the number of frames.
func (st Stack) Len() int {
	return len(st.frames)
}

// Global returns the outermost frame, or nil for an empty stack.
func (st Stack) Global() *Scope {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[0]
}

// Innermost returns the frame Define writes to, or nil for an empty stack.
func (st Stack) Innermost() *Scope {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

// Lookup searches from the innermost frame outward.
func (st Stack) Lookup(name string) (form.Tagged, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if v, ok := st.frames[i].Lookup(name); ok {
			return v, true
		}
	}
	return form.Tagged{}, false
}

// Resolve returns the innermost binding of id, or Undefined.
func (st Stack) Resolve(id *form.Identifier) form.Tagged {
	if v, ok := st.Lookup(id.Name); ok {
		return v
	}
	return Undefined
}

// Define binds id in the innermost frame.
func (st Stack) Define(id *form.Identifier, v form.Tagged) form.Tagged {
	return st.Innermost().Define(id, v)
}
