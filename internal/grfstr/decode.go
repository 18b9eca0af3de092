// Package grfstr translates raw NewGRF string bytes into tokens.
//
// A raw string is either in the legacy single-byte encoding or, when it starts
// with the UTF-8 encoding of 'Þ', in UTF-8 with control codes mapped to the
// private use range U+E000..U+E0FF. Both forms decode to the same token
// sequence.
package grfstr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/encoding/charmap"
)

// Kind classifies a token.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindParam
	KindMarker
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindParam:
		return "param"
	case KindMarker:
		return "marker"
	case KindUnknown:
		return "unknown"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Arg is one parameter slot taken from the text reference stack.
type Arg struct {
	Offset int `json:"offset"` // byte offset on the stack, -1 if unknown
	Size   int `json:"size"`
}

// Token is one element of a decoded string.
type Token struct {
	Kind   Kind   `json:"kind"`
	Text   string `json:"text,omitempty"`   // KindLiteral
	Name   string `json:"name,omitempty"`   // format hint or marker name
	Args   []Arg  `json:"args,omitempty"`   // KindParam stack slots
	Code   byte   `json:"code"`             // control byte, sub-code when Ext
	Ext    bool   `json:"ext,omitempty"`    // code followed the 0x9A prefix
	Inline []byte `json:"inline,omitempty"` // operand bytes
	Rune   rune   `json:"rune,omitempty"`   // KindUnknown from a private-use rune
}

// Literal returns a literal text token.
func Literal(text string) Token { return Token{Kind: KindLiteral, Text: text} }

// Unknown returns the token for a control byte without a table entry.
func Unknown(b byte) Token { return Token{Kind: KindUnknown, Code: b} }

// Index returns the stack offset of the first parameter, or -1.
func (t Token) Index() int {
	if len(t.Args) == 0 {
		return -1
	}
	return t.Args[0].Offset
}

// StringRef returns the string id embedded by an inline {STRING} code.
func (t Token) StringRef() (uint16, bool) {
	if t.Kind != KindParam || t.Ext || t.Code != 0x81 || len(t.Inline) != 2 {
		return 0, false
	}
	return uint16(t.Inline[0]) | uint16(t.Inline[1])<<8, true
}

// Decoded is the token sequence of one string. Decoders may share the token
// slice between equal inputs; treat it as read-only.
type Decoded struct {
	Tokens  []Token `json:"tokens"`
	Unicode bool    `json:"unicode,omitempty"`
}

// ErrUnknownCharset is returned for a charset name that has no mapping.
var ErrUnknownCharset = errors.New("grfstr: unknown charset")

// Options configures a Decoder.
type Options struct {
	Charset   string // "", "latin1" or "windows1252"
	CacheSize int    // memoized strings; 0 disables the cache
}

// Decoder translates raw strings. It is safe for concurrent use.
type Decoder struct {
	charset *charmap.Charmap
	cache   *lru.Cache[string, Decoded]
}

// NewDecoder returns a decoder for opts.
func NewDecoder(opts Options) (*Decoder, error) {
	d := &Decoder{}
	switch strings.ToLower(strings.TrimSpace(opts.Charset)) {
	case "", "none":
	case "latin1", "latin-1", "iso8859-1", "iso-8859-1":
		d.charset = charmap.ISO8859_1
	case "windows1252", "windows-1252", "cp1252":
		d.charset = charmap.Windows1252
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, opts.Charset)
	}
	if opts.CacheSize > 0 {
		c, err := lru.New[string, Decoded](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("grfstr: cache: %w", err)
		}
		d.cache = c
	}
	return d, nil
}

// Decode translates raw with the default decoder: no legacy charset, no cache.
func Decode(raw []byte) Decoded {
	var d Decoder
	return d.Decode(raw)
}

// Decode translates raw into tokens. It never fails: bytes it does not
// understand become Unknown tokens.
func (d *Decoder) Decode(raw []byte) Decoded {
	if d.cache != nil {
		if v, ok := d.cache.Get(string(raw)); ok {
			return v
		}
	}
	s := scanner{raw: raw, charset: d.charset, stack: newStack()}
	out := s.run()
	if d.cache != nil {
		d.cache.Add(string(raw), out)
	}
	return out
}

// unicodeMark is 'Þ' in UTF-8.
var unicodeMark = []byte{0xC3, 0x9E}

type scanner struct {
	raw     []byte
	pos     int
	charset *charmap.Charmap
	stack   []int
	lit     strings.Builder
	tokens  []Token
}

func newStack() []int {
	s := make([]int, 64)
	for i := range s {
		s[i] = i
	}
	return s
}

func (s *scanner) run() Decoded {
	unicode := len(s.raw) >= 2 && s.raw[0] == unicodeMark[0] && s.raw[1] == unicodeMark[1]
	if unicode {
		s.pos = 2
	}
	for s.pos < len(s.raw) {
		if unicode {
			s.stepUnicode()
		} else {
			s.stepLegacy()
		}
	}
	s.flush()
	return Decoded{Tokens: s.tokens, Unicode: unicode}
}

func (s *scanner) stepLegacy() {
	b := s.raw[s.pos]
	switch {
	case b >= 0x20 && b <= 0x7A:
		s.lit.WriteByte(b)
		s.pos++
	case b == extPrefix:
		s.ext()
	default:
		if c, ok := codes[b]; ok {
			s.control(b, c)
			return
		}
		if s.charset != nil && b >= 0xA0 {
			s.lit.WriteRune(s.charset.DecodeByte(b))
			s.pos++
			return
		}
		s.unknown(b)
	}
}

func (s *scanner) stepUnicode() {
	r, size := utf8.DecodeRune(s.raw[s.pos:])
	var b byte
	switch {
	case r == utf8.RuneError && size <= 1:
		// Undecodable bytes act as control bytes.
		b = s.raw[s.pos]
	case r >= 0xE000 && r <= 0xE0FF:
		b = byte(r - 0xE000)
	case r < 0x20:
		b = byte(r)
	default:
		s.lit.WriteRune(r)
		s.pos += size
		return
	}
	s.pos += size - 1 // control handlers consume the code byte itself
	if b == extPrefix {
		s.ext()
		return
	}
	if c, ok := codes[b]; ok {
		s.control(b, c)
		return
	}
	if r >= 0xE000 && r <= 0xE0FF {
		s.flush()
		s.tokens = append(s.tokens, Token{Kind: KindUnknown, Code: b, Rune: r})
		s.pos++
		return
	}
	s.unknown(b)
}

// control handles a single-byte code at s.pos.
func (s *scanner) control(b byte, c code) {
	inline, ok := s.inline(s.pos+1, c.inline)
	if !ok {
		s.unknown(b)
		return
	}
	s.pos += 1 + c.inline
	s.emit(Token{Kind: c.kind, Name: c.name, Code: b, Inline: inline}, c)
}

// ext handles the 0x9A prefix at s.pos.
func (s *scanner) ext() {
	if s.pos+1 >= len(s.raw) {
		s.unknown(extPrefix)
		return
	}
	sub := s.raw[s.pos+1]
	c, ok := extCodes[sub]
	if !ok {
		s.flush()
		s.tokens = append(s.tokens, Token{Kind: KindUnknown, Code: sub, Ext: true})
		s.pos += 2
		return
	}
	inline, ok := s.inline(s.pos+2, c.inline)
	if !ok {
		s.flush()
		s.tokens = append(s.tokens, Token{Kind: KindUnknown, Code: sub, Ext: true})
		s.pos += 2
		return
	}
	s.pos += 2 + c.inline
	s.emit(Token{Kind: c.kind, Name: c.name, Code: sub, Ext: true, Inline: inline}, c)
}

func (s *scanner) inline(at, n int) ([]byte, bool) {
	if n == 0 {
		return nil, true
	}
	if at+n > len(s.raw) {
		return nil, false
	}
	return append([]byte(nil), s.raw[at:at+n]...), true
}

func (s *scanner) emit(t Token, c code) {
	if c.kind == KindLiteral {
		s.lit.WriteString(c.text)
		return
	}
	for _, size := range c.stack {
		t.Args = append(t.Args, s.take(size))
	}
	switch c.op {
	case opPushWord:
		s.stack = append([]int{-1, -1}, s.stack...)
	case opRotate:
		if len(s.stack) >= 8 {
			rot := append(append([]int(nil), s.stack[6:8]...), s.stack[0:6]...)
			copy(s.stack, rot)
		}
	}
	s.flush()
	s.tokens = append(s.tokens, t)
}

// take pops size bytes off the reference stack.
func (s *scanner) take(size int) Arg {
	if len(s.stack) < size {
		s.stack = nil
		return Arg{Offset: -1, Size: size}
	}
	a := Arg{Offset: s.stack[0], Size: size}
	s.stack = s.stack[size:]
	return a
}

func (s *scanner) unknown(b byte) {
	s.flush()
	s.tokens = append(s.tokens, Unknown(b))
	s.pos++
}

func (s *scanner) flush() {
	if s.lit.Len() == 0 {
		return
	}
	s.tokens = append(s.tokens, Literal(s.lit.String()))
	s.lit.Reset()
}
