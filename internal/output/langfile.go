package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"grf2txt/internal/action"
	"grf2txt/internal/grffmt"
	"grf2txt/internal/strtab"
)

// MinIndent is the narrowest key column of a language file.
const MinIndent = 40

// LangNamer maps a language id to its file base name.
type LangNamer interface {
	Filename(grffmt.LangID) string
}

// Line is one string of a language file.
type Line struct {
	Key  string
	Text string
}

// LangFile is the content of one lang/<name>.txt file.
type LangFile struct {
	Lang    grffmt.LangID
	Plural  *uint8
	Cases   string // "##case" value, empty when the GRF declares none
	Genders string
	Lines   []Line
}

// Summary counts what a plan contains.
type Summary struct {
	Translations int `json:"translations"`
	Named        int `json:"named_strings"`
	Unnamed      int `json:"unnamed_strings"`
	MissingBase  int `json:"missing_base"`
}

func (s Summary) String() string {
	return fmt.Sprintf("Translations: %d\nNamed strings: %d\nUnnamed strings: %d", s.Translations, s.Named, s.Unnamed)
}

// Plan is the set of language files for one table.
type Plan struct {
	Files       []LangFile
	Indent      int
	Summary     Summary
	MissingBase []string // keys written without generic text
}

// PlanOptions controls which strings a plan includes.
type PlanOptions struct {
	Unnamed bool // also write strings that were never named
}

// BuildPlan lays out the language files of tab. Named strings use their name
// as key; unnamed ones use the symbolic id and are only included on request.
// Generic text fills language 0x01, or 0x00 when 0x01 is already translated.
func BuildPlan(tab *strtab.Table, meta *action.Meta, opts PlanOptions) *Plan {
	p := &Plan{Indent: MinIndent}
	byLang := make(map[grffmt.LangID][]Line)

	for _, id := range tab.IDs() {
		key, named := tab.Name(id)
		if named {
			p.Summary.Named++
		} else {
			p.Summary.Unnamed++
			if !opts.Unnamed {
				continue
			}
			key = id.String()
		}
		p.Indent = max(p.Indent, len(key))

		texts := make(map[grffmt.LangID]string)
		for lid, e := range tab.Translations(id) {
			texts[lid] = e.Decoded.Render()
		}
		if base, ok := texts[grffmt.LangGeneric]; ok {
			delete(texts, grffmt.LangGeneric)
			if _, ok := texts[0x01]; !ok {
				texts[0x01] = base
			} else if _, ok := texts[0x00]; !ok {
				texts[0x00] = base
			}
		} else {
			p.MissingBase = append(p.MissingBase, key)
		}
		for lid, text := range texts {
			byLang[lid] = append(byLang[lid], Line{Key: key, Text: text})
		}
	}

	langs := make([]grffmt.LangID, 0, len(byLang))
	for lid := range byLang {
		langs = append(langs, lid)
	}
	slices.Sort(langs)
	for _, lid := range langs {
		f := LangFile{Lang: lid, Lines: byLang[lid]}
		if meta != nil {
			if v, ok := meta.Plurals[lid]; ok {
				f.Plural = &v
			}
			f.Cases = namedValues(meta.Cases[lid])
			f.Genders = namedValues(meta.Genders[lid])
		}
		p.Files = append(p.Files, f)
	}
	p.Summary.Translations = len(p.Files)
	p.Summary.MissingBase = len(p.MissingBase)
	return p
}

// namedValues joins the names of each value with '=' and the values with
// spaces, ordered by value.
func namedValues(m map[uint8][]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]uint8, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.Join(m[k], "="))
	}
	return strings.Join(parts, " ")
}

// WriteLangFile writes f in OpenTTD language file syntax.
func WriteLangFile(w io.Writer, f LangFile, indent int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "##grflangid 0x%02X\n", uint8(f.Lang))
	if f.Plural != nil {
		fmt.Fprintf(bw, "##plural %d\n", *f.Plural)
	}
	if f.Cases != "" {
		fmt.Fprintf(bw, "##case %s\n", f.Cases)
	}
	if f.Genders != "" {
		fmt.Fprintf(bw, "##gender %s\n", f.Genders)
	}
	bw.WriteString("\n")
	for _, l := range f.Lines {
		fmt.Fprintf(bw, "%-*s:%s\n", indent, l.Key, l.Text)
	}
	return bw.Flush()
}

// WriteLangDir writes every file of p into dir and returns the paths written.
func WriteLangDir(dir string, p *Plan, names LangNamer) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	var paths []string
	for _, f := range p.Files {
		path := filepath.Join(dir, names.Filename(f.Lang)+".txt")
		if err := writeFile(path, func(w io.Writer) error { return WriteLangFile(w, f, p.Indent) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("output: close %s: %w", path, err)
	}
	return nil
}
