package grfstr

import (
	"fmt"
	"strings"
)

// Render returns the language file notation of the string: literal text
// with braces and invisible characters escaped, {NAME} for parameters and
// visible markers, {} for line breaks and {RAW:XX} for unknown bytes.
func (d Decoded) Render() string {
	var b strings.Builder
	for _, t := range d.Tokens {
		t.render(&b)
	}
	return b.String()
}

// String implements fmt.Stringer.
func (t Token) String() string {
	var b strings.Builder
	t.render(&b)
	return b.String()
}

func (t Token) render(b *strings.Builder) {
	switch t.Kind {
	case KindLiteral:
		for _, r := range t.Text {
			if a, ok := aliases[r]; ok {
				b.WriteString(a)
				continue
			}
			b.WriteRune(r)
		}
	case KindParam:
		if t.Name != "" {
			fmt.Fprintf(b, "{%s}", t.Name)
		}
	case KindMarker:
		switch {
		case t.Name == MarkerNewline:
			b.WriteString("{}")
		case hidden[t.Name]:
		default:
			fmt.Fprintf(b, "{%s}", t.Name)
		}
	case KindUnknown:
		if t.Rune != 0 {
			fmt.Fprintf(b, "{RAW:U+%04X}", t.Rune)
			return
		}
		if t.Ext {
			fmt.Fprintf(b, "{RAW:%02X:%02X}", extPrefix, t.Code)
			return
		}
		fmt.Fprintf(b, "{RAW:%02X}", t.Code)
	}
}

// Text returns only the literal text of the string.
func (d Decoded) Text() string {
	var b strings.Builder
	for _, t := range d.Tokens {
		if t.Kind == KindLiteral {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// Params returns the parameter tokens in order.
func (d Decoded) Params() []Token {
	var out []Token
	for _, t := range d.Tokens {
		if t.Kind == KindParam {
			out = append(out, t)
		}
	}
	return out
}

// StringRefs returns the ids of strings embedded with inline {STRING} codes.
func (d Decoded) StringRefs() []uint16 {
	var out []uint16
	for _, t := range d.Tokens {
		if id, ok := t.StringRef(); ok {
			out = append(out, id)
		}
	}
	return out
}
