// Package output writes extraction results: OpenTTD language files and the
// JSON strings dump.
package output

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"grf2txt/internal/action"
	"grf2txt/internal/container"
	"grf2txt/internal/grffmt"
	"grf2txt/internal/grfstr"
	"grf2txt/internal/strtab"
	"grf2txt/internal/version"
)

// Schema is the JSON schema of strings.json.
//
//go:embed strings.schema.json
var Schema []byte

// ErrInvalidDocument is returned when a dump does not match Schema.
var ErrInvalidDocument = errors.New("output: document does not match schema")

// Document is the strings.json root.
type Document struct {
	Tool        string         `json:"tool"`
	Version     string         `json:"version"`
	Source      string         `json:"source,omitempty"`
	GRFID       string         `json:"grfid"`
	Container   container.Info `json:"container"`
	Meta        *action.Meta   `json:"meta"`
	Strings     []StringDoc    `json:"strings"`
	Diagnostics []grffmt.Diag  `json:"diagnostics"`
}

// StringDoc is one string id with all its translations.
type StringDoc struct {
	ID           string           `json:"id"`
	Name         string           `json:"name,omitempty"`
	Translations []TranslationDoc `json:"translations"`
}

// TranslationDoc is one language's text of a string.
type TranslationDoc struct {
	Lang     string         `json:"lang"`
	LangID   uint8          `json:"lang_id"`
	Physical uint8          `json:"physical"`
	Sprite   int            `json:"sprite"`
	Text     string         `json:"text"`
	Raw      string         `json:"raw"`
	Tokens   []grfstr.Token `json:"tokens"`
}

// BuildDocument assembles the dump. Strings keep first-seen order and
// translations are ordered by language id.
func BuildDocument(source string, info container.Info, meta *action.Meta, tab *strtab.Table, diags []grffmt.Diag) *Document {
	if meta == nil {
		meta = &action.Meta{}
	}
	doc := &Document{
		Tool:        "grf2txt",
		Version:     version.String(),
		Source:      source,
		GRFID:       meta.GRFIDString(),
		Container:   info,
		Meta:        meta,
		Strings:     []StringDoc{},
		Diagnostics: slices.Clone(diags),
	}
	if doc.Diagnostics == nil {
		doc.Diagnostics = []grffmt.Diag{}
	}
	for _, id := range tab.IDs() {
		sd := StringDoc{ID: id.String(), Translations: []TranslationDoc{}}
		sd.Name, _ = tab.Name(id)
		tr := tab.Translations(id)
		langs := make([]grffmt.LangID, 0, len(tr))
		for lid := range tr {
			langs = append(langs, lid)
		}
		slices.Sort(langs)
		for _, lid := range langs {
			e := tr[lid]
			toks := e.Decoded.Tokens
			if toks == nil {
				toks = []grfstr.Token{}
			}
			sd.Translations = append(sd.Translations, TranslationDoc{
				Lang:     lid.String(),
				LangID:   uint8(lid),
				Physical: e.Physical,
				Sprite:   e.Sprite,
				Text:     e.Decoded.Render(),
				Raw:      hex.EncodeToString(e.Raw),
				Tokens:   toks,
			})
		}
		doc.Strings = append(doc.Strings, sd)
	}
	return doc
}

// WriteStringsJSON validates doc and writes it to dir/strings.json.
func WriteStringsJSON(dir string, doc *Document) (string, error) {
	data, err := MarshalDocument(doc)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "strings.json")
	err = writeFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	return path, err
}

// MarshalDocument encodes doc as indented JSON and checks it against Schema.
func MarshalDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		return nil, err
	}
	if err := Validate(buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode: %w", err)
	}
	return nil
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// Validate checks a strings.json document against Schema.
func Validate(data []byte) error {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(Schema))
	})
	if schemaErr != nil {
		return fmt.Errorf("output: load schema: %w", schemaErr)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("output: validate: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}
