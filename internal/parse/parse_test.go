package parse

import (
	"strings"
	"testing"
)

func TestStreamLineColumn(t *testing.T) {
	s := NewStream("ab\ncd")
	for i := 0; i < 3; i++ {
		s.Next()
	}
	st := s.State()
	if st.Pos != 3 || st.Line != 2 || st.Column != 0 {
		t.Fatalf("unexpected state after newline: %+v", st)
	}
	s.Next()
	if got := s.Info(); got.LineText != "cd" || got.Column != 1 {
		t.Errorf("unexpected info: %+v", got)
	}
	s.Next()
	if !s.IsDone() {
		t.Errorf("expected stream to be done")
	}
	if r := s.Next(); r != EOF {
		t.Errorf("expected EOF past end, got %q", r)
	}
}

func TestStreamCheckpoints(t *testing.T) {
	s := NewStream("abcdef")
	s.Save()
	s.Next()
	s.Save()
	s.Next()
	s.Next()
	s.Restore()
	if s.Rest() != "bcdef" {
		t.Errorf("expected inner restore to rewind to 'bcdef', got %q", s.Rest())
	}
	s.Restore()
	if s.Rest() != "abcdef" {
		t.Errorf("expected outer restore to rewind to start, got %q", s.Rest())
	}
	if s.Checkpoints() != 0 {
		t.Errorf("expected empty checkpoint stack, got %d", s.Checkpoints())
	}
}

func TestChoiceReturnsLastFailure(t *testing.T) {
	p := Choice(Label("first", Char('a')), Label("second", Char('b')))
	_, f := p.RunString("c")
	if f == nil {
		t.Fatalf("expected failure")
	}
	if f.Label != "second" {
		t.Errorf("expected label of last alternative, got %q", f.Label)
	}

	v, f := p.RunString("b")
	if f != nil || v != 'b' {
		t.Errorf("expected 'b', got %q (%v)", v, f)
	}
}

func TestAttemptRewinds(t *testing.T) {
	// Consumes "ab" and then fails on the third rune.
	p := String("abc")

	s := NewStream("abd")
	if _, f := p(s); f == nil {
		t.Fatalf("expected failure")
	}
	if s.Rest() != "d" {
		t.Errorf("plain sequence should leave the stream advanced, rest=%q", s.Rest())
	}

	s = NewStream("abd")
	if _, f := Attempt(p)(s); f == nil {
		t.Fatalf("expected failure")
	}
	if s.State().Pos != 0 || s.Rest() != "abd" {
		t.Errorf("attempt should rewind, rest=%q", s.Rest())
	}
	if s.Checkpoints() != 0 {
		t.Errorf("attempt leaked a checkpoint")
	}

	s = NewStream("abcx")
	if v, f := Attempt(p)(s); f != nil || v != "abc" {
		t.Fatalf("expected success, got %q (%v)", v, f)
	}
	if s.Checkpoints() != 0 {
		t.Errorf("attempt should discard its checkpoint on success")
	}
}

func TestRepetition(t *testing.T) {
	a := Char('a')
	if v, f := Star(a).RunString("bbb"); f != nil || len(v) != 0 {
		t.Errorf("star should succeed with nothing, got %v (%v)", v, f)
	}
	if v, f := Star(a).RunString("aab"); f != nil || len(v) != 2 {
		t.Errorf("star should collect two, got %v (%v)", v, f)
	}
	if _, f := Plus(a).RunString("b"); f == nil {
		t.Errorf("plus should fail when the first attempt fails")
	}
	if v, f := Optional(a).RunString("b"); f != nil || v != 0 {
		t.Errorf("optional should yield the zero value, got %q (%v)", v, f)
	}
}

func TestSeries(t *testing.T) {
	p := Series(Runes(Plus(Satisfy(IsDigit, "digit"))), Char(','))
	v, f := p.RunString("1,22,333")
	if f != nil {
		t.Fatalf("unexpected failure: %v", f)
	}
	if strings.Join(v, " ") != "1 22 333" {
		t.Errorf("unexpected series: %v", v)
	}
	if v, f := p.RunString(""); f != nil || len(v) != 0 {
		t.Errorf("empty series should succeed, got %v (%v)", v, f)
	}
}

func TestBetweenAndSurround(t *testing.T) {
	p := Between(Char('('), Runes(Star(NoneOf(")", "body"))), Char(')'))
	if v, f := p.RunString("(hello)"); f != nil || v != "hello" {
		t.Errorf("between: got %q (%v)", v, f)
	}
	q := Surround(String("x"), AnySpace)
	if v, f := q.RunString("  x  "); f != nil || v != "x" {
		t.Errorf("surround: got %q (%v)", v, f)
	}
}

func TestForwardReference(t *testing.T) {
	// nested := '(' nested? ')'
	ref, nested := Forward[int]()
	if _, f := nested.RunString("()"); f == nil {
		t.Fatalf("unset forward reference should fail")
	}
	ref.Set(Map(Between(Char('('), Optional(nested), Char(')')), func(n int) int { return n + 1 }))
	if v, f := nested.RunString("((()))"); f != nil || v != 3 {
		t.Errorf("expected depth 3, got %d (%v)", v, f)
	}
}

func TestLabelAndFailureRendering(t *testing.T) {
	p := Label("list", Right(Char('('), Char(')')))
	_, f := p.RunString("(x")
	if f == nil {
		t.Fatalf("expected failure")
	}
	msg := f.Error()
	for _, want := range []string{"Failed to parse list.", "line 1, column 2", "  (x", "   ^ Unexpected 'x'."} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestCompletion(t *testing.T) {
	p := Completion(Left(Char('a'), AnySpace))
	if v, f := p.RunString("a a  a"); f != nil || len(v) != 3 {
		t.Errorf("expected three, got %v (%v)", v, f)
	}
	if _, f := p.RunString("a b"); f == nil {
		t.Errorf("expected failure on trailing garbage")
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		rest     string
	}{
		{"42", 42, ""},
		{"-7", -7, ""},
		{"3.25", 3.25, ""},
		{"-0.5)", -0.5, ")"},
		{"12.", 12, "."},
		{"1.x", 1, ".x"},
	}
	for _, tt := range tests {
		s := NewStream(tt.input)
		v, f := Float(s)
		if f != nil {
			t.Errorf("%q: unexpected failure: %v", tt.input, f)
			continue
		}
		if v != tt.expected || s.Rest() != tt.rest {
			t.Errorf("%q: expected %v rest %q, got %v rest %q", tt.input, tt.expected, tt.rest, v, s.Rest())
		}
	}

	if _, f := Float.RunString("-x"); f == nil {
		t.Errorf("expected failure for '-x'")
	}
	if v, f := Int.RunString("-12"); f != nil || v != -12 {
		t.Errorf("int: got %d (%v)", v, f)
	}
}

func TestRadix(t *testing.T) {
	tests := []struct {
		p        Parser[float64]
		input    string
		expected float64
	}{
		{Hex, "ff", 255},
		{Hex, "-1A", -26},
		{Octal, "17", 15},
		{Binary, "101", 5},
		{Radix("0x", HexDigits, 16, "hex"), "-0x10", -16},
		{Radix("0b", BinaryDigits, 2, "binary"), "0b11", 3},
	}
	for _, tt := range tests {
		v, f := tt.p.RunString(tt.input)
		if f != nil || v != tt.expected {
			t.Errorf("%q: expected %v, got %v (%v)", tt.input, tt.expected, v, f)
		}
	}
	if _, f := Octal.RunString("9"); f == nil {
		t.Errorf("expected octal failure on '9'")
	}
}
