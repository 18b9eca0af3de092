// Package action decodes NewGRF pseudo-sprites into action records.
//
// Only the text-bearing actions are modeled in depth. Every other action is
// carried as an opaque payload; the sprite-skipping ones are still read far
// enough to know how many following sprites belong to them.
package action

import (
	"fmt"

	"grf2txt/internal/container"
	"grf2txt/internal/grffmt"
)

// Action type bytes.
const (
	TypeProperties   = 0x00
	TypeSpriteSets   = 0x01
	TypeStrings      = 0x04
	TypeReplacements = 0x05
	TypeParamEdit    = 0x06
	TypeSkipIf       = 0x07
	TypeInfo         = 0x08
	TypeSkipIfRT     = 0x09
	TypeReplaceBase  = 0x0A
	TypeError        = 0x0B
	TypeSounds       = 0x11
	TypeFonts        = 0x12
	TypeStaticInfo   = 0x14
)

// Entry is one raw string extracted from a pseudo-sprite.
type Entry struct {
	Lang   uint8 // physical language byte as stored
	ID     grffmt.StringID
	Raw    []byte
	Sprite int
}

// Action is a decoded pseudo-sprite. Text-bearing actions fill Entries; all
// others only carry their payload.
type Action struct {
	Type    byte
	Sprite  int
	Entries []Entry
	Payload []byte
	Skip    int // following sprites owned by this action
}

// HasText reports whether the action produced strings.
func (a Action) HasText() bool { return len(a.Entries) > 0 }

// Meta holds GRF-wide information gathered alongside the strings.
type Meta struct {
	GRFID         uint32                               `json:"grfid"`
	GRFVersion    uint8                                `json:"grf_version"`
	Version       *uint32                              `json:"version,omitempty"`
	MinCompatible *uint32                              `json:"min_compatible_version,omitempty"`
	Plurals       map[grffmt.LangID]uint8              `json:"plurals,omitempty"`
	Genders       map[grffmt.LangID]map[uint8][]string `json:"genders,omitempty"`
	Cases         map[grffmt.LangID]map[uint8][]string `json:"cases,omitempty"`
}

// GRFIDString formats the GRFID as its four stored bytes.
func (m *Meta) GRFIDString() string {
	b := []byte{byte(m.GRFID), byte(m.GRFID >> 8), byte(m.GRFID >> 16), byte(m.GRFID >> 24)}
	return fmt.Sprintf("%02X%02X%02X%02X", b[0], b[1], b[2], b[3])
}

// Dispatcher routes pseudo-sprites to their decoders. It keeps the little
// state that spans sprites: pending skips, the open action 0B message and the
// feature remapping announced by action 14.
type Dispatcher struct {
	meta       Meta
	skip       int
	errorID    *grffmt.StringID
	featureMap map[uint8]uint8
	nextFeat   *uint8
}

// NewDispatcher returns a dispatcher with empty metadata.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		meta: Meta{
			Plurals: make(map[grffmt.LangID]uint8),
			Genders: make(map[grffmt.LangID]map[uint8][]string),
			Cases:   make(map[grffmt.LangID]map[uint8][]string),
		},
		featureMap: make(map[uint8]uint8),
	}
}

// Meta returns the metadata gathered so far.
func (d *Dispatcher) Meta() *Meta { return &d.meta }

// Dispatch consumes one chunk. It must see every chunk, real ones included, so
// that skip counts stay aligned. ok is false when the chunk carries no action.
// A returned error wraps ErrCorruptChunk; the dispatcher state stays usable.
func (d *Dispatcher) Dispatch(ch container.Chunk) (Action, bool, error) {
	if ch.Kind != container.KindPseudo {
		if d.skip > 0 {
			d.skip--
		}
		return Action{}, false, nil
	}
	if d.skip > 0 {
		d.skip--
		return Action{}, false, nil
	}
	if ch.Index == 0 || len(ch.Payload) == 0 {
		return Action{}, false, nil
	}

	a := Action{Type: ch.Payload[0], Sprite: ch.Index, Payload: ch.Payload}
	cur := grffmt.NewCursor(ch.Payload[1:])
	var err error
	switch a.Type {
	case TypeProperties:
		err = d.properties(cur)
	case TypeSpriteSets:
		a.Skip, err = spriteSets(cur, len(ch.Payload))
	case TypeStrings:
		a.Entries, err = d.stringTable(cur, ch.Index)
	case TypeReplacements:
		if err = cur.Skip(1); err == nil {
			var n uint16
			n, err = cur.ReadExtByte()
			a.Skip = int(n)
		}
	case TypeSkipIf, TypeSkipIfRT:
		d.errorID = nil
	case TypeInfo:
		a.Entries, err = d.info(cur, ch.Index)
	case TypeReplaceBase:
		a.Skip, err = replaceBase(cur)
	case TypeError:
		a.Entries, err = d.errorMessage(cur, ch.Index)
	case TypeSounds:
		var n uint16
		n, err = cur.ReadUint16()
		a.Skip = int(n)
	case TypeFonts:
		a.Skip, err = fonts(cur)
	case TypeStaticInfo:
		a.Entries, err = d.staticInfo(cur, ch.Index)
	}
	if err != nil {
		return Action{Type: a.Type, Sprite: ch.Index, Payload: ch.Payload},
			true, fmt.Errorf("action %02X: %w", a.Type, grffmt.Corrupt(err))
	}
	d.skip = a.Skip
	return a, true, nil
}

func (d *Dispatcher) feature(f uint8) uint8 {
	if m, ok := d.featureMap[f]; ok {
		return m
	}
	return f
}

// spriteSets counts the real sprites following action 01. size is the
// payload length including the action byte.
func spriteSets(cur *grffmt.Cursor, size int) (int, error) {
	if err := cur.Skip(1); err != nil {
		return 0, err
	}
	sets, err := cur.ReadUint8()
	if err != nil {
		return 0, err
	}
	numSets := int(sets)
	// Extended format: zero sets followed by first-set and count ext bytes.
	// Some files define zero sets with fewer than 3 bytes left.
	if numSets == 0 && size-3 >= 3 {
		if _, err := cur.ReadExtByte(); err != nil {
			return 0, err
		}
		n, err := cur.ReadExtByte()
		if err != nil {
			return 0, err
		}
		numSets = int(n)
	}
	ent, err := cur.ReadExtByte()
	if err != nil {
		return 0, err
	}
	return numSets * int(ent), nil
}

func replaceBase(cur *grffmt.Cursor) (int, error) {
	sets, err := cur.ReadUint8()
	if err != nil {
		return 0, err
	}
	skip := 0
	for i := 0; i < int(sets); i++ {
		n, err := cur.ReadUint8()
		if err != nil {
			return 0, err
		}
		skip += int(n)
		if err := cur.Skip(2); err != nil {
			return 0, err
		}
	}
	return skip, nil
}

func fonts(cur *grffmt.Cursor) (int, error) {
	defs, err := cur.ReadUint8()
	if err != nil {
		return 0, err
	}
	skip := 0
	for i := 0; i < int(defs); i++ {
		if err := cur.Skip(1); err != nil {
			return 0, err
		}
		n, err := cur.ReadUint8()
		if err != nil {
			return 0, err
		}
		skip += int(n)
		if err := cur.Skip(2); err != nil {
			return 0, err
		}
	}
	return skip, nil
}

// Global settings (feature 08) properties and their per-id sizes.
var globalPropSize = map[uint8]int{
	0x08: 1,
	0x09: 4, 0x0B: 4, 0x0D: 4, 0x0E: 4, 0x12: 4, 0x16: 4, 0x17: 4,
	0x0A: 2, 0x0C: 2, 0x0F: 2,
	0x10: 12 * 32,
	0x11: 8,
}

const (
	propGenders = 0x13
	propCases   = 0x14
	propPlural  = 0x15
	featGlobal  = 0x08
)

// properties reads the language metadata carried by global settings. Parsing
// stops at the first property whose size is unknown.
func (d *Dispatcher) properties(cur *grffmt.Cursor) error {
	feat, err := cur.ReadUint8()
	if err != nil {
		return err
	}
	feat = d.feature(feat)
	numProps, err := cur.ReadUint8()
	if err != nil {
		return err
	}
	numIDs, err := cur.ReadUint8()
	if err != nil {
		return err
	}
	if numIDs == 0 {
		return nil
	}
	first, err := cur.ReadExtByte()
	if err != nil {
		return err
	}
	if feat != featGlobal {
		return nil
	}

	for p := 0; p < int(numProps); p++ {
		prop, err := cur.ReadUint8()
		if err != nil {
			return err
		}
		switch prop {
		case propGenders, propCases:
			dst := d.meta.Genders
			if prop == propCases {
				dst = d.meta.Cases
			}
			for i := 0; i < int(numIDs); i++ {
				if err := readNamedValues(cur, dst, grffmt.LangID(int(first)+i)); err != nil {
					return err
				}
			}
		case propPlural:
			for i := 0; i < int(numIDs); i++ {
				v, err := cur.ReadUint8()
				if err != nil {
					return err
				}
				d.meta.Plurals[grffmt.LangID(int(first)+i)] = v
			}
		default:
			size, ok := globalPropSize[prop]
			if !ok {
				return nil
			}
			if err := cur.Skip(size * int(numIDs)); err != nil {
				return err
			}
		}
	}
	return nil
}

// readNamedValues reads (index, name) pairs until a zero index.
func readNamedValues(cur *grffmt.Cursor, dst map[grffmt.LangID]map[uint8][]string, lang grffmt.LangID) error {
	for {
		idx, err := cur.ReadUint8()
		if err != nil {
			return err
		}
		if idx == 0 {
			return nil
		}
		name, err := cur.ReadCString()
		if err != nil {
			return err
		}
		if dst[lang] == nil {
			dst[lang] = make(map[uint8][]string)
		}
		dst[lang][idx] = append(dst[lang][idx], string(name))
	}
}
