package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grf2txt/internal/action"
	"grf2txt/internal/container"
	"grf2txt/internal/grffmt"
	"grf2txt/internal/grfstr"
	"grf2txt/internal/strtab"
)

type namer map[grffmt.LangID]string

func (n namer) Filename(id grffmt.LangID) string {
	if s, ok := n[id]; ok {
		return s
	}
	return "unknown"
}

func record(t *testing.T, b *strtab.Builder, lang uint8, id grffmt.StringID, raw string) {
	t.Helper()
	if err := b.Record(lang, id, grfstr.Decode([]byte(raw)), []byte(raw), 1); err != nil {
		t.Fatal(err)
	}
}

// sampleTable holds a named string with generic, English and German text,
// a named string with only generic text and an unnamed one.
func sampleTable(t *testing.T) *strtab.Table {
	t.Helper()
	b := strtab.NewBuilder()
	engine := grffmt.FeatureString(0x00, 0)
	wagon := grffmt.FeatureString(0x00, 1)
	hidden := grffmt.ExtendedString(0xD000)

	record(t, b, 0x7F, engine, "Engine\x7B")
	record(t, b, 0x01, engine, "Locomotive")
	record(t, b, 0x02, engine, "Lok")
	if err := b.Name(engine, "STR_ENGINE"); err != nil {
		t.Fatal(err)
	}
	record(t, b, 0x7F, wagon, "Wagon")
	if err := b.Name(wagon, "STR_WAGON"); err != nil {
		t.Fatal(err)
	}
	record(t, b, 0x82, hidden, "versteckt")
	return b.Finalize()
}

func sampleMeta() *action.Meta {
	return &action.Meta{
		GRFID:      0x04030201,
		GRFVersion: 8,
		Plurals:    map[grffmt.LangID]uint8{0x02: 0},
		Genders:    map[grffmt.LangID]map[uint8][]string{0x02: {1: {"m"}, 0: {"w", "f"}}},
		Cases:      map[grffmt.LangID]map[uint8][]string{0x02: {1: {"gen"}}},
	}
}

func TestBuildPlan(t *testing.T) {
	p := BuildPlan(sampleTable(t), sampleMeta(), PlanOptions{})

	if p.Summary != (Summary{Translations: 3, Named: 2, Unnamed: 1}) {
		t.Errorf("summary = %+v", p.Summary)
	}
	if len(p.Files) != 3 || p.Files[0].Lang != 0x00 || p.Files[1].Lang != 0x01 || p.Files[2].Lang != 0x02 {
		t.Fatalf("files = %+v", p.Files)
	}
	// English already has STR_ENGINE, so its generic text goes to American.
	us := p.Files[0].Lines
	if len(us) != 1 || us[0] != (Line{"STR_ENGINE", "Engine{COMMA}"}) {
		t.Errorf("american = %+v", us)
	}
	en := p.Files[1].Lines
	want := []Line{{"STR_ENGINE", "Locomotive"}, {"STR_WAGON", "Wagon"}}
	if len(en) != 2 || en[0] != want[0] || en[1] != want[1] {
		t.Errorf("english = %+v", en)
	}
	de := p.Files[2]
	if len(de.Lines) != 1 || de.Lines[0] != (Line{"STR_ENGINE", "Lok"}) {
		t.Errorf("german = %+v", de.Lines)
	}
	if de.Plural == nil || *de.Plural != 0 || de.Genders != "w=f m" || de.Cases != "gen" {
		t.Errorf("german header = %+v", de)
	}
}

func TestBuildPlanGenericFallsBackToAmerican(t *testing.T) {
	b := strtab.NewBuilder()
	id := grffmt.FeatureString(0x01, 3)
	record(t, b, 0x7F, id, "Bus")
	record(t, b, 0x01, id, "Coach")
	if err := b.Name(id, "STR_BUS"); err != nil {
		t.Fatal(err)
	}
	p := BuildPlan(b.Finalize(), nil, PlanOptions{})
	if len(p.Files) != 2 || p.Files[0].Lang != 0x00 || p.Files[0].Lines[0].Text != "Bus" {
		t.Errorf("files = %+v", p.Files)
	}
}

func TestBuildPlanUnnamed(t *testing.T) {
	p := BuildPlan(sampleTable(t), sampleMeta(), PlanOptions{Unnamed: true})
	de := p.Files[2]
	if len(de.Lines) != 2 || de.Lines[1] != (Line{"STR_GENERIC_D000", "versteckt"}) {
		t.Errorf("german = %+v", de.Lines)
	}
	if len(p.MissingBase) != 1 || p.MissingBase[0] != "STR_GENERIC_D000" || p.Summary.MissingBase != 1 {
		t.Errorf("missing base = %v", p.MissingBase)
	}
}

func TestIndentGrowsWithLongKeys(t *testing.T) {
	b := strtab.NewBuilder()
	id := grffmt.FeatureString(0, 0)
	long := "STR_" + strings.Repeat("X", 50)
	record(t, b, 0x7F, id, "x")
	if err := b.Name(id, long); err != nil {
		t.Fatal(err)
	}
	if p := BuildPlan(b.Finalize(), nil, PlanOptions{}); p.Indent != len(long) {
		t.Errorf("indent = %d, want %d", p.Indent, len(long))
	}
}

func TestWriteLangFile(t *testing.T) {
	p := BuildPlan(sampleTable(t), sampleMeta(), PlanOptions{})
	var buf bytes.Buffer
	if err := WriteLangFile(&buf, p.Files[2], p.Indent); err != nil {
		t.Fatal(err)
	}
	want := "##grflangid 0x02\n##plural 0\n##case gen\n##gender w=f m\n\n" +
		"STR_ENGINE" + strings.Repeat(" ", 30) + ":Lok\n"
	if buf.String() != want {
		t.Errorf("got\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	if err := WriteLangFile(&buf, p.Files[1], p.Indent); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "##grflangid 0x01\n\n") {
		t.Errorf("english header = %q", buf.String())
	}
}

func TestWriteLangDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lang")
	p := BuildPlan(sampleTable(t), sampleMeta(), PlanOptions{})
	paths, err := WriteLangDir(dir, p, namer{0x00: "english_US", 0x01: "english", 0x02: "german"})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 || filepath.Base(paths[0]) != "english_US.txt" || filepath.Base(paths[2]) != "german.txt" {
		t.Fatalf("paths = %v", paths)
	}
	b, err := os.ReadFile(filepath.Join(dir, "english.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "STR_WAGON"+strings.Repeat(" ", 31)+":Wagon\n") {
		t.Errorf("english.txt = %q", b)
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Translations: 3, Named: 10, Unnamed: 2}
	if got := s.String(); got != "Translations: 3\nNamed strings: 10\nUnnamed strings: 2" {
		t.Errorf("summary = %q", got)
	}
}

func TestStringsJSONMatchesSchema(t *testing.T) {
	info := container.Info{Version: container.V2, Pseudo: 4, Complete: true, MD5: strings.Repeat("0a", 16)}
	diags := []grffmt.Diag{{Offset: 0x20, Sprite: 3, Kind: grffmt.DiagCorrupt, Msg: "bad"}}
	doc := BuildDocument("test.grf", info, sampleMeta(), sampleTable(t), diags)

	dir := t.TempDir()
	path, err := WriteStringsJSON(dir, doc)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(data); err != nil {
		t.Fatal(err)
	}

	var back struct {
		GRFID   string `json:"grfid"`
		Strings []struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			Translations []struct {
				Lang   string `json:"lang"`
				Text   string `json:"text"`
				Raw    string `json:"raw"`
				Tokens []struct {
					Kind string `json:"kind"`
				} `json:"tokens"`
			} `json:"translations"`
		} `json:"strings"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.GRFID != "01020304" || len(back.Strings) != 3 {
		t.Fatalf("doc = %+v", back)
	}
	engine := back.Strings[0]
	if engine.ID != "STR_TRAIN_0" || engine.Name != "STR_ENGINE" || len(engine.Translations) != 3 {
		t.Fatalf("engine = %+v", engine)
	}
	generic := engine.Translations[2]
	if generic.Lang != "generic" || generic.Text != "Engine{COMMA}" || generic.Raw != "456e67696e657b" {
		t.Errorf("generic = %+v", generic)
	}
	if len(generic.Tokens) != 2 || generic.Tokens[0].Kind != "literal" || generic.Tokens[1].Kind != "param" {
		t.Errorf("tokens = %+v", generic.Tokens)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]string{
		"wrong tool":     `{"tool":"x","version":"1","grfid":"00000000","container":{"version":1,"pseudo_sprites":0,"real_sprites":0,"complete":true},"meta":{"grfid":0,"grf_version":0},"strings":[],"diagnostics":[]}`,
		"null strings":   `{"tool":"grf2txt","version":"1","grfid":"00000000","container":{"version":1,"pseudo_sprites":0,"real_sprites":0,"complete":true},"meta":{"grfid":0,"grf_version":0},"strings":null,"diagnostics":[]}`,
		"bad diag kind":  `{"tool":"grf2txt","version":"1","grfid":"00000000","container":{"version":2,"pseudo_sprites":0,"real_sprites":0,"complete":true},"meta":{"grfid":0,"grf_version":0},"strings":[],"diagnostics":[{"offset":0,"sprite":1,"kind":"oops","msg":""}]}`,
		"lower grfid":    `{"tool":"grf2txt","version":"1","grfid":"0a0b0c0d","container":{"version":2,"pseudo_sprites":0,"real_sprites":0,"complete":true},"meta":{"grfid":0,"grf_version":0},"strings":[],"diagnostics":[]}`,
		"missing fields": `{"tool":"grf2txt"}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if err := Validate([]byte(doc)); !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestEmptyTableDocument(t *testing.T) {
	doc := BuildDocument("", container.Info{Version: container.V1}, nil, strtab.NewBuilder().Finalize(), nil)
	if _, err := MarshalDocument(doc); err != nil {
		t.Fatal(err)
	}
}
