package form

import (
	"math"
	"strconv"
	"strings"
)

func (Nil) String() string { return "nil" }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (n Number) String() string {
	return FormatNumber(float64(n))
}

func (t Text) String() string {
	return `"` + string(t) + `"`
}

func (id *Identifier) String() string { return id.Name }

func (kw *Keyword) String() string { return ":" + kw.Name }

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, item := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(item.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range d {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Key.String())
		sb.WriteByte(' ')
		sb.WriteString(p.Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// FormatNumber prints integral values without a fraction and everything
// else in the shortest form that reads back to the same float.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// Display renders v for human output: strings lose their quotes, everything
// else prints as source.
func Display(v Value) string {
	if t, ok := v.(Text); ok {
		return string(t)
	}
	if v == nil {
		return Nil{}.String()
	}
	return v.String()
}
