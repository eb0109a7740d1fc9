package form

import (
	"math"
	"strings"
	"testing"

	"nickandperla.net/monalisp/internal/parse"
)

func TestFlagAccepts(t *testing.T) {
	numOrText := FlagNumber | FlagString
	if !numOrText.Accepts(FlagNumber) || !numOrText.Accepts(FlagString) {
		t.Errorf("union should accept both members")
	}
	if numOrText.Accepts(FlagList) {
		t.Errorf("union should not accept List")
	}
	if !FlagAny.Accepts(FlagCallable) {
		t.Errorf("Any should accept Callable")
	}
	if got := numOrText.String(); got != "Number | String" {
		t.Errorf("unexpected flag name %q", got)
	}
	if got := FlagAny.String(); got != "Any" {
		t.Errorf("unexpected flag name %q", got)
	}
}

func TestTaggedFlagIsDerived(t *testing.T) {
	syms := NewSymbols()
	tests := []struct {
		value Value
		flag  Flag
	}{
		{Nil{}, FlagNil},
		{Bool(true), FlagBoolean},
		{Number(1), FlagNumber},
		{Text("x"), FlagString},
		{syms.Identifier("x"), FlagIdentifier},
		{syms.Keyword("x"), FlagKeyword},
		{List{}, FlagList},
		{Dict{}, FlagDictionary},
	}
	for _, tt := range tests {
		if got := Lift(tt.value).Flag(); got != tt.flag {
			t.Errorf("%T: expected %s, got %s", tt.value, tt.flag, got)
		}
	}
	if got := (Tagged{}).Flag(); got != FlagNil {
		t.Errorf("zero Tagged should be Nil, got %s", got)
	}
}

func TestInterning(t *testing.T) {
	syms := NewSymbols()
	if syms.Identifier("foo") != syms.Identifier("foo") {
		t.Errorf("identifiers with the same name should be the same object")
	}
	if syms.Keyword("foo") != syms.Keyword("foo") {
		t.Errorf("keywords with the same name should be the same object")
	}
	other := NewSymbols()
	if syms.Identifier("foo") == other.Identifier("foo") {
		t.Errorf("separate tables should not share identifiers")
	}
	if got := strings.Join(syms.Identifiers(), ","); got != "foo" {
		t.Errorf("unexpected identifiers %q", got)
	}
}

func TestPrint(t *testing.T) {
	syms := NewSymbols()
	tests := []struct {
		value    Value
		expected string
	}{
		{Nil{}, "nil"},
		{Bool(false), "false"},
		{Number(30), "30"},
		{Number(-2.5), "-2.5"},
		{Number(math.Inf(1)), "Infinity"},
		{Number(math.Copysign(0, -1)), "0"},
		{Text("hi"), `"hi"`},
		{syms.Keyword("k"), ":k"},
		{List{Lift(syms.Identifier("a")), Lift(Number(1))}, "(a 1)"},
		{Dict{{Key: Lift(syms.Keyword("a")), Value: Lift(Number(1))}, {Key: Lift(Text("b")), Value: Lift(Nil{})}}, `{:a 1, "b" nil}`},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, got)
		}
	}
	if got := Display(Text("hi")); got != "hi" {
		t.Errorf("display should drop quotes, got %s", got)
	}
}

func TestTruthy(t *testing.T) {
	falsy := []Value{nil, Nil{}, Bool(false), Number(0), Number(math.NaN()), Text("")}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("expected %v to be falsy", v)
		}
	}
	truthy := []Value{Bool(true), Number(-1), Text("0"), List{}, Dict{}}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("expected %v to be truthy", v)
		}
	}
}

func TestRetagAndStrip(t *testing.T) {
	pos := parse.State{Pos: 4, Line: 1, Column: 4}
	inner := Tag(Number(1), parse.State{Pos: 1, Line: 1, Column: 1})
	outer := Tag(List{inner}, parse.State{Pos: 0, Line: 1})

	re := Retag(outer, pos)
	if re.Pos != pos || re.Value.(List)[0].Pos != pos {
		t.Errorf("retag should reach nested forms: %+v", re)
	}
	st := Strip(outer)
	if !st.Pos.IsZero() || !st.Value.(List)[0].Pos.IsZero() {
		t.Errorf("strip should clear nested positions")
	}
	if outer.Value.(List)[0].Pos.IsZero() {
		t.Errorf("strip must not mutate its input")
	}
}

func TestCodec(t *testing.T) {
	syms := NewSymbols()
	pos := parse.State{Pos: 3, Line: 2, Column: 1}
	forms := []Tagged{
		Tag(List{
			Lift(syms.Identifier("def")),
			Tag(syms.Identifier("sq"), pos),
			Lift(Dict{{Key: Lift(syms.Keyword("n")), Value: Lift(Number(2.5))}}),
			Lift(Text("s")),
			Lift(Bool(true)),
			Lift(Nil{}),
		}, pos),
	}
	data, err := Encode(forms)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	other := NewSymbols()
	got, err := Decode(data, other)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != 1 || !Equal(got[0].Value, forms[0].Value) {
		t.Fatalf("decoded forms differ: %v", got)
	}
	if got[0].Pos != pos || got[0].Value.(List)[1].Pos != pos {
		t.Errorf("positions should survive encoding")
	}
	if got[0].Value.(List)[0].Value != other.Identifier("def") {
		t.Errorf("decoded identifiers should be interned in the target table")
	}

	if _, err := Decode([]byte{0xff, 0x00}, other); err == nil {
		t.Errorf("expected error decoding garbage")
	}
}
