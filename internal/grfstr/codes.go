package grfstr

// stackOp is the effect of a control code on the text reference stack beyond
// consuming its own parameters.
type stackOp uint8

const (
	opNone stackOp = iota
	opPushWord
	opRotate
)

// code describes one control code.
type code struct {
	kind   Kind
	name   string // format hint or marker name
	text   string // KindLiteral: replacement characters
	inline int    // operand bytes following the code
	stack  []int  // text stack bytes consumed, one entry per argument
	op     stackOp
}

func marker(name string) code              { return code{kind: KindMarker, name: name} }
func param(name string, sizes ...int) code { return code{kind: KindParam, name: name, stack: sizes} }

// extPrefix introduces a second code byte looked up in extCodes.
const extPrefix = 0x9A

// Marker names with special rendering.
const (
	MarkerNewline = "NEWLINE"
)

var codes = map[byte]code{
	0x01: {kind: KindMarker, name: "SETX", inline: 1},
	0x0A: marker(MarkerNewline),
	0x0D: marker(MarkerNewline),
	0x0E: marker("TINY_FONT"),
	0x0F: marker("BIG_FONT"),
	0x1F: {kind: KindMarker, name: "SETXY", inline: 2},

	0x7B: param("COMMA", 4),
	0x7C: param("COMMA", 2),
	0x7D: param("COMMA", 1),
	0x7E: param("COMMA", 2),
	0x7F: param("CURRENCY_LONG", 4),
	0x80: param("STRING", 2),
	0x81: {kind: KindParam, name: "STRING", inline: 2},
	0x82: param("DATE_LONG", 2),
	0x83: param("DATE_SHORT", 2),
	0x84: param("SPEED", 2),
	0x85: param("", 2),
	0x86: {kind: KindMarker, name: "ROTATE", op: opRotate},
	0x87: param("VOLUME_LONG", 2),

	0x88: marker("BLUE"),
	0x89: marker("SILVER"),
	0x8A: marker("GOLD"),
	0x8B: marker("RED"),
	0x8C: marker("PURPLE"),
	0x8D: marker("LTBROWN"),
	0x8E: marker("ORANGE"),
	0x8F: marker("GREEN"),
	0x90: marker("YELLOW"),
	0x91: marker("DKGREEN"),
	0x92: marker("CREAM"),
	0x93: marker("BROWN"),
	0x94: marker("WHITE"),
	0x95: marker("LTBLUE"),
	0x96: marker("GRAY"),
	0x97: marker("DKBLUE"),
	0x98: marker("BLACK"),
	0x99: {kind: KindMarker, name: "COMPANY_COLOUR", inline: 1},

	0x9E: {kind: KindLiteral, text: "€"},
	0x9F: {kind: KindLiteral, text: "Ÿ"},
	0xA0: marker("UP_ARROW"),
	0xAA: marker("DOWN_ARROW"),
	0xAC: marker("CHECKMARK"),
	0xAD: marker("CROSS"),
	0xAF: marker("RIGHT_ARROW"),
	0xB4: marker("TRAIN"),
	0xB5: marker("LORRY"),
	0xB6: marker("BUS"),
	0xB7: marker("PLANE"),
	0xB8: marker("SHIP"),
	0xB9: {kind: KindLiteral, text: "₋₁"},
	0xBC: marker("SMALL_UP_ARROW"),
	0xBD: marker("SMALL_DOWN_ARROW"),
}

var extCodes = map[byte]code{
	0x00: param("CURRENCY_LONG", 8),
	0x01: param("CURRENCY_LONG", 8),
	0x02: marker("SKIP_COLOUR"),
	0x03: {kind: KindMarker, name: "PUSH_WORD", inline: 2, op: opPushWord},
	0x04: {kind: KindMarker, name: "UNPRINT", inline: 1},
	0x06: param("HEX", 1),
	0x07: param("HEX", 2),
	0x08: param("HEX", 4),
	0x0B: param("HEX", 8),
	0x0C: param("STATION", 2),
	0x0D: param("WEIGHT_LONG", 2),
	0x0E: {kind: KindMarker, name: "SET_GENDER", inline: 1},
	0x0F: {kind: KindMarker, name: "SET_CASE", inline: 1},
	0x10: {kind: KindMarker, name: "BEGIN_CHOICE", inline: 1},
	0x11: {kind: KindMarker, name: "BEGIN_DEFAULT", inline: 1},
	0x12: marker("END_CHOICE"),
	0x13: {kind: KindMarker, name: "GENDER_CHOICE", inline: 1},
	0x14: marker("CASE_CHOICE"),
	0x15: {kind: KindMarker, name: "PLURAL_CHOICE", inline: 1},
	0x16: param("DATE_LONG", 4),
	0x17: param("DATE_SHORT", 4),
	0x18: param("POWER", 2),
	0x19: param("VOLUME_SHORT", 2),
	0x1A: param("WEIGHT_SHORT", 2),
	0x1B: param("CARGO_LONG", 2, 2),
	0x1C: param("CARGO_SHORT", 2, 2),
	0x1D: param("CARGO_TINY", 2, 2),
	0x1E: param("CARGO_NAME", 2),
	0x1F: marker("PUSH_COLOUR"),
	0x20: marker("POP_COLOUR"),
	0x21: param("FORCE", 4),
}

// hidden markers only affect layout or the reference stack and render as
// nothing.
var hidden = map[string]bool{
	"SETX":           true,
	"SETXY":          true,
	"ROTATE":         true,
	"COMPANY_COLOUR": true,
	"SKIP_COLOUR":    true,
	"PUSH_WORD":      true,
	"UNPRINT":        true,
	"SET_GENDER":     true,
	"SET_CASE":       true,
	"BEGIN_CHOICE":   true,
	"BEGIN_DEFAULT":  true,
	"END_CHOICE":     true,
	"GENDER_CHOICE":  true,
	"CASE_CHOICE":    true,
	"PLURAL_CHOICE":  true,
}

// aliases replaces characters that language files spell as commands.
var aliases = map[rune]string{
	'{':      "{{}",
	'\u00a0': "{NBSP}",
	'\u00a9': "{COPYRIGHT}",
	'\u200e': "{LRM}",
	'\u200f': "{RLM}",
	'\u202a': "{LRE}",
	'\u202b': "{RLE}",
	'\u202d': "{LRO}",
	'\u202e': "{RLO}",
	'\u202c': "{PDF}",
}
