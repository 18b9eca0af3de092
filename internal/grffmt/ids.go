package grffmt

import "fmt"

// LangID is a canonical 7-bit NewGRF language id.
type LangID uint8

const (
	LangName    LangID = 0x7E // text names the string instead of translating it
	LangGeneric LangID = 0x7F // default text for any language
)

// CanonicalLang strips the high bit from a physical language byte. Action 04
// uses that bit to select 16-bit string ids; it never names another language.
func CanonicalLang(physical uint8) LangID { return LangID(physical & 0x7F) }

func (l LangID) String() string {
	switch l {
	case LangGeneric:
		return "generic"
	case LangName:
		return "name"
	}
	return fmt.Sprintf("0x%02X", uint8(l))
}

// Space selects the numbering regime of a StringID.
type Space uint8

const (
	SpaceFeature   Space = iota // action 04, byte ids scoped to a feature
	SpaceExtended               // action 04 with 16-bit ids
	SpaceError                  // action 0B, keyed by sprite number
	SpaceInfo                   // GRF name, description, url
	SpaceParamName              // action 14 parameter names
	SpaceParamDesc              // action 14 parameter descriptions
)

// Info string indices.
const (
	InfoName uint32 = iota
	InfoDescription
	InfoURL
)

// StringID identifies a string within a language table.
type StringID struct {
	Space   Space
	Feature uint8
	Index   uint32
}

// FeatureString returns the id of string index in the table of feature.
func FeatureString(feature uint8, index uint32) StringID {
	return StringID{Space: SpaceFeature, Feature: feature, Index: index}
}

// ExtendedString returns the id of a 16-bit string.
func ExtendedString(index uint32) StringID {
	return StringID{Space: SpaceExtended, Index: index}
}

// ErrorString returns the id of the error message defined at sprite.
func ErrorString(sprite int) StringID {
	return StringID{Space: SpaceError, Index: uint32(sprite)}
}

// InfoString returns the id of a GRF info string.
func InfoString(index uint32) StringID {
	return StringID{Space: SpaceInfo, Index: index}
}

// Features maps feature numbers to their symbolic names.
var Features = map[uint8]string{
	0x00: "TRAIN",
	0x01: "ROAD_VEHICLE",
	0x02: "SHIP",
	0x03: "AIRCRAFT",
	0x04: "STATION",
	0x05: "CANAL",
	0x06: "BRIDGE",
	0x07: "HOUSE",
	0x08: "GLOBAL",
	0x09: "INDUSTRY_TILE",
	0x0A: "INDUSTRY",
	0x0B: "CARGO",
	0x0C: "SOUND_EFFECT",
	0x0D: "AIRPORT",
	0x0E: "SIGNAL",
	0x0F: "OBJECT",
	0x10: "RAILTYPE",
	0x11: "AIRPORT_TILE",
	0x12: "ROADTYPE",
	0x13: "TRAMTYPE",
	0x14: "ROAD_STOP",
}

// FeatureRoadStop is the feature number JGRPP maps road stops to.
const FeatureRoadStop uint8 = 0x14

// String returns the symbolic string name used in language files.
func (id StringID) String() string {
	switch id.Space {
	case SpaceFeature:
		f, ok := Features[id.Feature]
		if !ok {
			f = fmt.Sprintf("%d", id.Feature)
		}
		return fmt.Sprintf("STR_%s_%d", f, id.Index)
	case SpaceExtended:
		switch {
		case id.Index >= 0xC400 && id.Index < 0xC500:
			return fmt.Sprintf("STR_STATION_CLASS_%d_NAME", id.Index-0xC400)
		case id.Index >= 0xC500 && id.Index < 0xC600:
			return fmt.Sprintf("STR_STATION_%d_NAME", id.Index-0xC500)
		case id.Index >= 0xC900 && id.Index < 0xCA00:
			return fmt.Sprintf("STR_HOUSE_%d_NAME", id.Index-0xC900)
		}
		return fmt.Sprintf("STR_GENERIC_%04X", id.Index)
	case SpaceError:
		return fmt.Sprintf("STR_ERROR_%d", id.Index)
	case SpaceInfo:
		switch id.Index {
		case InfoName:
			return "STR_GRF_NAME"
		case InfoDescription:
			return "STR_GRF_DESCRIPTION"
		case InfoURL:
			return "STR_GRF_URL"
		}
		return fmt.Sprintf("STR_GRF_INFO_%d", id.Index)
	case SpaceParamName:
		return fmt.Sprintf("STR_PARAM_%d_NAME", id.Index)
	case SpaceParamDesc:
		return fmt.Sprintf("STR_PARAM_%d_DESCRIPTION", id.Index)
	}
	return fmt.Sprintf("STR_%d_%d_%d", id.Space, id.Feature, id.Index)
}
