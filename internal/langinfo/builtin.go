package langinfo

import "time"

// builtin covers the languages most NewGRFs ship. Gender and case names are
// left out; the GRF itself declares the ones it uses.
var builtin = []LangInfo{
	{ISOCode: "en_US", GRFLangID: 0x00, Filename: "english_US", Name: "English (US)", OwnName: "English (US)"},
	{ISOCode: "en_GB", GRFLangID: 0x01, Filename: "english", Name: "English (UK)", OwnName: "English (UK)"},
	{ISOCode: "de_DE", GRFLangID: 0x02, Filename: "german", Name: "German", OwnName: "Deutsch"},
	{ISOCode: "fr_FR", GRFLangID: 0x03, Filename: "french", Name: "French", OwnName: "Français", Plural: 2},
	{ISOCode: "es_ES", GRFLangID: 0x04, Filename: "spanish", Name: "Spanish", OwnName: "Español (España)"},
	{ISOCode: "eo_EO", GRFLangID: 0x05, Filename: "esperanto", Name: "Esperanto", OwnName: "Esperanto"},
	{ISOCode: "ru_RU", GRFLangID: 0x07, Filename: "russian", Name: "Russian", OwnName: "Русский", Plural: 6},
	{ISOCode: "ga_IE", GRFLangID: 0x08, Filename: "irish", Name: "Irish", OwnName: "Gaeilge"},
	{ISOCode: "zh_TW", GRFLangID: 0x0C, Filename: "traditional_chinese", Name: "Chinese (Traditional)", OwnName: "中文（繁體）", Plural: 1},
	{ISOCode: "cy_GB", GRFLangID: 0x0F, Filename: "welsh", Name: "Welsh", OwnName: "Cymraeg"},
	{ISOCode: "be_BY", GRFLangID: 0x10, Filename: "belarusian", Name: "Belarusian", OwnName: "Беларуская", Plural: 6},
	{ISOCode: "cs_CZ", GRFLangID: 0x15, Filename: "czech", Name: "Czech", OwnName: "Čeština", Plural: 10},
	{ISOCode: "sk_SK", GRFLangID: 0x16, Filename: "slovak", Name: "Slovak", OwnName: "Slovensky", Plural: 10},
	{ISOCode: "bg_BG", GRFLangID: 0x18, Filename: "bulgarian", Name: "Bulgarian", OwnName: "Български"},
	{ISOCode: "el_GR", GRFLangID: 0x1E, Filename: "greek", Name: "Greek", OwnName: "Ελληνικά", Plural: 2},
	{ISOCode: "nl_NL", GRFLangID: 0x1F, Filename: "dutch", Name: "Dutch", OwnName: "Nederlands"},
	{ISOCode: "ca_ES", GRFLangID: 0x22, Filename: "catalan", Name: "Catalan", OwnName: "Català"},
	{ISOCode: "hu_HU", GRFLangID: 0x24, Filename: "hungarian", Name: "Hungarian", OwnName: "Magyar", Plural: 2},
	{ISOCode: "it_IT", GRFLangID: 0x27, Filename: "italian", Name: "Italian", OwnName: "Italiano"},
	{ISOCode: "ro_RO", GRFLangID: 0x28, Filename: "romanian", Name: "Romanian", OwnName: "Română"},
	{ISOCode: "da_DK", GRFLangID: 0x2D, Filename: "danish", Name: "Danish", OwnName: "Dansk"},
	{ISOCode: "sv_SE", GRFLangID: 0x2E, Filename: "swedish", Name: "Swedish", OwnName: "Svenska"},
	{ISOCode: "nb_NO", GRFLangID: 0x2F, Filename: "norwegian_bokmal", Name: "Norwegian (Bokmal)", OwnName: "Norsk (bokmål)"},
	{ISOCode: "pl_PL", GRFLangID: 0x30, Filename: "polish", Name: "Polish", OwnName: "Polski", Plural: 7},
	{ISOCode: "uk_UA", GRFLangID: 0x33, Filename: "ukrainian", Name: "Ukrainian", OwnName: "Українська", Plural: 6},
	{ISOCode: "fi_FI", GRFLangID: 0x35, Filename: "finnish", Name: "Finnish", OwnName: "Suomi"},
	{ISOCode: "pt_PT", GRFLangID: 0x36, Filename: "portuguese", Name: "Portuguese", OwnName: "Português"},
	{ISOCode: "pt_BR", GRFLangID: 0x37, Filename: "brazilian_portuguese", Name: "Portuguese (Brazilian)", OwnName: "Português (BR)", Plural: 2},
	{ISOCode: "ja_JP", GRFLangID: 0x39, Filename: "japanese", Name: "Japanese", OwnName: "日本語", Plural: 1},
	{ISOCode: "ko_KR", GRFLangID: 0x3A, Filename: "korean", Name: "Korean", OwnName: "한국어", Plural: 11},
	{ISOCode: "tr_TR", GRFLangID: 0x3E, Filename: "turkish", Name: "Turkish", OwnName: "Türkçe", Plural: 1},
	{ISOCode: "zh_CN", GRFLangID: 0x56, Filename: "simplified_chinese", Name: "Chinese (Simplified)", OwnName: "简体中文", Plural: 1},
}

// Builtin returns the compiled-in table.
func Builtin() *Table { return NewTable(builtin, OriginBuiltin, time.Time{}) }
