// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parse provides a position-tracking character stream and a small
// backtracking parser combinator engine built on top of it.
package parse

// EOF is the sentinel returned by Peek and Next once the input is exhausted.
const EOF rune = -1

// State is a snapshot of the stream cursor. Line is 1-based, Column counts
// the characters already consumed on the current line.
type State struct {
	Pos    int
	Line   int
	Column int
}

// IsZero reports whether the state carries no position (synthesized forms).
func (s State) IsZero() bool {
	return s == State{}
}

// Info is the display form of a position, used only for diagnostics.
type Info struct {
	LineText string
	Line     int
	Column   int
}

// Stream is a rune cursor over source text with a stack of checkpoints for
// backtracking.
type Stream struct {
	source []rune
	state  State
	saved  []State
}

// NewStream creates a Stream positioned at the start of source.
func NewStream(source string) *Stream {
	return &Stream{
		source: []rune(source),
		state:  State{Line: 1},
	}
}

// State returns the current cursor state.
func (s *Stream) State() State {
	return s.state
}

// Info returns display information for the current position.
func (s *Stream) Info() Info {
	return InfoAt(s.source, s.state)
}

// InfoAt builds display information for st within source.
func InfoAt(source []rune, st State) Info {
	start := st.Pos - st.Column
	if start < 0 {
		start = 0
	}
	if start > len(source) {
		start = len(source)
	}
	end := start
	for end < len(source) && source[end] != '\n' {
		end++
	}
	return Info{
		LineText: string(source[start:end]),
		Line:     st.Line,
		Column:   st.Column,
	}
}

// Len returns the number of runes in the source.
func (s *Stream) Len() int {
	return len(s.source)
}

// IsDone reports whether every rune has been consumed.
func (s *Stream) IsDone() bool {
	return s.state.Pos >= len(s.source)
}

// Rest returns the unconsumed remainder of the source.
func (s *Stream) Rest() string {
	if s.IsDone() {
		return ""
	}
	return string(s.source[s.state.Pos:])
}

// Peek returns the current rune without consuming it.
func (s *Stream) Peek() rune {
	if s.IsDone() {
		return EOF
	}
	return s.source[s.state.Pos]
}

// Next consumes and returns the current rune, updating line and column.
func (s *Stream) Next() rune {
	if s.IsDone() {
		return EOF
	}
	r := s.source[s.state.Pos]
	s.state.Pos++
	if r == '\n' {
		s.state.Line++
		s.state.Column = 0
	} else {
		s.state.Column++
	}
	return r
}

// Save pushes a checkpoint of the current state.
func (s *Stream) Save() {
	s.saved = append(s.saved, s.state)
}

// Restore pops the most recent checkpoint and rewinds to it.
func (s *Stream) Restore() {
	n := len(s.saved)
	if n == 0 {
		return
	}
	s.state = s.saved[n-1]
	s.saved = s.saved[:n-1]
}

// Discard pops the most recent checkpoint without moving the cursor.
func (s *Stream) Discard() {
	if n := len(s.saved); n > 0 {
		s.saved = s.saved[:n-1]
	}
}

// Checkpoints returns the depth of the checkpoint stack.
func (s *Stream) Checkpoints() int {
	return len(s.saved)
}
