package action

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"grf2txt/internal/grffmt"
)

// wordIDs marks action 04 tables that use 16-bit string ids.
const wordIDs = 0x80

// stringTable decodes action 04:
//
//	feature u8, lang u8, count u8, first-id, count × zero-terminated string
//
// With the high language bit clear the first id is an extended byte and ids
// are feature scoped; with it set the first id is a uint16 in the extended
// string space. Ids run sequentially from the first id.
func (d *Dispatcher) stringTable(cur *grffmt.Cursor, sprite int) ([]Entry, error) {
	feat, err := cur.ReadUint8()
	if err != nil {
		return nil, err
	}
	feat = d.feature(feat)
	lang, err := cur.ReadUint8()
	if err != nil {
		return nil, err
	}
	count, err := cur.ReadUint8()
	if err != nil {
		return nil, err
	}

	var first uint16
	id := func(i int) grffmt.StringID { return grffmt.FeatureString(feat, uint32(first)+uint32(i)) }
	if lang&wordIDs == 0 {
		first, err = cur.ReadExtByte()
	} else {
		first, err = cur.ReadUint16()
		id = func(i int) grffmt.StringID { return grffmt.ExtendedString(uint32(first) + uint32(i)) }
	}
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, count)
	for i := 0; i < int(count); i++ {
		raw, err := cur.ReadCString()
		if err != nil {
			return nil, fmt.Errorf("string %d of %d: %w", i, count, err)
		}
		entries = append(entries, Entry{Lang: lang, ID: id(i), Raw: raw, Sprite: sprite})
	}
	return entries, nil
}

// info decodes action 08: version u8, grfid u32, name, description.
func (d *Dispatcher) info(cur *grffmt.Cursor, sprite int) ([]Entry, error) {
	version, err := cur.ReadUint8()
	if err != nil {
		return nil, err
	}
	grfid, err := cur.ReadUint32()
	if err != nil {
		return nil, err
	}
	name, err := cur.ReadCString()
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	desc, err := cur.ReadCString()
	if err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	d.meta.GRFVersion = version
	d.meta.GRFID = grfid
	lang := uint8(grffmt.LangGeneric)
	return []Entry{
		{Lang: lang, ID: grffmt.InfoString(grffmt.InfoName), Raw: name, Sprite: sprite},
		{Lang: lang, ID: grffmt.InfoString(grffmt.InfoDescription), Raw: desc, Sprite: sprite},
	}, nil
}

// errorMessage decodes action 0B: severity u8, lang u8, message-id u8, text.
// Consecutive 0B sprites translate one message; the generic language entry
// closes it.
func (d *Dispatcher) errorMessage(cur *grffmt.Cursor, sprite int) ([]Entry, error) {
	if err := cur.Skip(1); err != nil {
		return nil, err
	}
	lang, err := cur.ReadUint8()
	if err != nil {
		return nil, err
	}
	if err := cur.Skip(1); err != nil {
		return nil, err
	}
	text, err := cur.ReadCString()
	if err != nil {
		return nil, err
	}

	if d.errorID == nil {
		id := grffmt.ErrorString(sprite)
		d.errorID = &id
	}
	id := *d.errorID
	if grffmt.LangID(lang) == grffmt.LangGeneric {
		d.errorID = nil
	}
	if len(text) == 0 {
		return nil, nil
	}
	return []Entry{{Lang: lang, ID: id, Raw: text, Sprite: sprite}}, nil
}

// Action 14 node paths.
var (
	pathInfoName    = []byte("INFONAME")
	pathInfoDesc    = []byte("INFODESC")
	pathInfoURL     = []byte("INFOURL_")
	pathInfoVersion = []byte("INFOVRSN")
	pathInfoMinVer  = []byte("INFOMINV")
	pathInfoParam   = []byte("INFOPARA")
	pathFeatureName = []byte("FIDMNAME")
	pathFeatureID   = []byte("FIDMFTID")
	leafName        = []byte("NAME")
	leafDesc        = []byte("DESC")
)

// staticInfo decodes action 14, a tree of C (container), B (binary) and
// T (text) nodes, each named by four bytes.
func (d *Dispatcher) staticInfo(cur *grffmt.Cursor, sprite int) ([]Entry, error) {
	var entries []Entry
	_, err := d.staticNodes(cur, nil, sprite, &entries)
	return entries, err
}

// staticNodes returns false when it met a node type it does not know; the
// rest of the sprite is then ignored.
func (d *Dispatcher) staticNodes(cur *grffmt.Cursor, path []byte, sprite int, out *[]Entry) (bool, error) {
	for {
		typ, err := cur.ReadUint8()
		if err != nil {
			return false, err
		}
		if typ == 0 {
			return true, nil
		}
		name, err := cur.Take(4)
		if err != nil {
			return false, err
		}
		sub := append(append([]byte(nil), path...), name...)

		switch typ {
		case 'C':
			ok, err := d.staticNodes(cur, sub, sprite, out)
			if err != nil || !ok {
				return ok, err
			}
		case 'B':
			size, err := cur.ReadUint16()
			if err != nil {
				return false, err
			}
			data, err := cur.Take(int(size))
			if err != nil {
				return false, err
			}
			d.staticBinary(sub, data)
		case 'T':
			lang, err := cur.ReadUint8()
			if err != nil {
				return false, err
			}
			text, err := cur.ReadCString()
			if err != nil {
				return false, err
			}
			if id, ok := d.staticText(sub, text); ok {
				*out = append(*out, Entry{Lang: lang, ID: id, Raw: text, Sprite: sprite})
			}
		default:
			return false, nil
		}
	}
}

func (d *Dispatcher) staticBinary(path, data []byte) {
	switch {
	case bytes.Equal(path, pathFeatureID) && d.nextFeat != nil && len(data) >= 1:
		// JGRPP maps features by name; the id node follows the name node.
		d.featureMap[data[0]] = *d.nextFeat
		d.nextFeat = nil
	case bytes.Equal(path, pathInfoVersion) && len(data) >= 4:
		v := binary.LittleEndian.Uint32(data)
		d.meta.Version = &v
	case bytes.Equal(path, pathInfoMinVer) && len(data) >= 4:
		v := binary.LittleEndian.Uint32(data)
		d.meta.MinCompatible = &v
	}
}

func (d *Dispatcher) staticText(path, text []byte) (grffmt.StringID, bool) {
	switch {
	case bytes.Equal(path, pathFeatureName):
		if string(text) == "road_stops" {
			f := grffmt.FeatureRoadStop
			d.nextFeat = &f
		}
	case bytes.Equal(path, pathInfoName):
		return grffmt.InfoString(grffmt.InfoName), true
	case bytes.Equal(path, pathInfoDesc):
		return grffmt.InfoString(grffmt.InfoDescription), true
	case bytes.Equal(path, pathInfoURL):
		return grffmt.InfoString(grffmt.InfoURL), true
	case len(path) == 16 && bytes.HasPrefix(path, pathInfoParam):
		param := binary.LittleEndian.Uint32(path[8:12])
		switch {
		case bytes.Equal(path[12:], leafName):
			return grffmt.StringID{Space: grffmt.SpaceParamName, Index: param}, true
		case bytes.Equal(path[12:], leafDesc):
			return grffmt.StringID{Space: grffmt.SpaceParamDesc, Index: param}, true
		}
	}
	return grffmt.StringID{}, false
}
