package form

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"nickandperla.net/monalisp/internal/parse"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("form: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireForm is the CBOR shape of a tagged form. Dictionaries store their
// pairs flattened into Items as key, value, key, value.
type wireForm struct {
	Flag   Flag       `cbor:"1,keyasint"`
	Bool   bool       `cbor:"2,keyasint,omitempty"`
	Number float64    `cbor:"3,keyasint,omitempty"`
	Text   string     `cbor:"4,keyasint,omitempty"`
	Items  []wireForm `cbor:"5,keyasint,omitempty"`
	Pos    []int      `cbor:"6,keyasint,omitempty"`
}

// Encode serializes tagged forms, positions included, to canonical CBOR.
// Callables have no serialized form and are rejected.
func Encode(forms []Tagged) ([]byte, error) {
	wire := make([]wireForm, len(forms))
	for i, f := range forms {
		w, err := toWire(f)
		if err != nil {
			return nil, err
		}
		wire[i] = w
	}
	return cborEncMode.Marshal(wire)
}

// Decode deserializes forms produced by Encode, interning symbols in syms.
func Decode(data []byte, syms *Symbols) ([]Tagged, error) {
	var wire []wireForm
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("form: unmarshal forms: %w", err)
	}
	forms := make([]Tagged, len(wire))
	for i, w := range wire {
		f, err := fromWire(w, syms)
		if err != nil {
			return nil, err
		}
		forms[i] = f
	}
	return forms, nil
}

func toWire(t Tagged) (wireForm, error) {
	w := wireForm{Flag: t.Flag()}
	if !t.Pos.IsZero() {
		w.Pos = []int{t.Pos.Pos, t.Pos.Line, t.Pos.Column}
	}
	switch v := t.Value.(type) {
	case nil, Nil:
	case Bool:
		w.Bool = bool(v)
	case Number:
		w.Number = float64(v)
	case Text:
		w.Text = string(v)
	case *Identifier:
		w.Text = v.Name
	case *Keyword:
		w.Text = v.Name
	case List:
		w.Items = make([]wireForm, len(v))
		for i, item := range v {
			iw, err := toWire(item)
			if err != nil {
				return wireForm{}, err
			}
			w.Items[i] = iw
		}
	case Dict:
		w.Items = make([]wireForm, 0, 2*len(v))
		for _, p := range v {
			kw, err := toWire(p.Key)
			if err != nil {
				return wireForm{}, err
			}
			vw, err := toWire(p.Value)
			if err != nil {
				return wireForm{}, err
			}
			w.Items = append(w.Items, kw, vw)
		}
	default:
		return wireForm{}, fmt.Errorf("form: cannot encode %s value %s", t.Flag(), t)
	}
	return w, nil
}

func fromWire(w wireForm, syms *Symbols) (Tagged, error) {
	var pos parse.State
	if len(w.Pos) == 3 {
		pos = parse.State{Pos: w.Pos[0], Line: w.Pos[1], Column: w.Pos[2]}
	}
	switch w.Flag {
	case FlagNil:
		return Tag(Nil{}, pos), nil
	case FlagBoolean:
		return Tag(Bool(w.Bool), pos), nil
	case FlagNumber:
		return Tag(Number(w.Number), pos), nil
	case FlagString:
		return Tag(Text(w.Text), pos), nil
	case FlagIdentifier:
		return Tag(syms.Identifier(w.Text), pos), nil
	case FlagKeyword:
		return Tag(syms.Keyword(w.Text), pos), nil
	case FlagList:
		items := make(List, len(w.Items))
		for i, iw := range w.Items {
			item, err := fromWire(iw, syms)
			if err != nil {
				return Tagged{}, err
			}
			items[i] = item
		}
		return Tag(items, pos), nil
	case FlagDictionary:
		if len(w.Items)%2 != 0 {
			return Tagged{}, fmt.Errorf("form: dictionary with odd item count %d", len(w.Items))
		}
		pairs := make(Dict, 0, len(w.Items)/2)
		for i := 0; i < len(w.Items); i += 2 {
			k, err := fromWire(w.Items[i], syms)
			if err != nil {
				return Tagged{}, err
			}
			v, err := fromWire(w.Items[i+1], syms)
			if err != nil {
				return Tagged{}, err
			}
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
		return Tag(pairs, pos), nil
	default:
		return Tagged{}, fmt.Errorf("form: unknown flag %d", w.Flag)
	}
}
