package refgraph

import (
	"strings"
	"testing"

	"github.com/zboralski/lattice"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/grfstr"
	"grf2txt/internal/strtab"
)

func record(t *testing.T, b *strtab.Builder, lang uint8, id grffmt.StringID, raw string) {
	t.Helper()
	if err := b.Record(lang, id, grfstr.Decode([]byte(raw)), []byte(raw), 1); err != nil {
		t.Fatal(err)
	}
}

func countEdges(g *lattice.Graph, caller, callee string) int {
	n := 0
	for _, e := range g.Edges {
		if e.Caller == caller && e.Callee == callee {
			n++
		}
	}
	return n
}

func TestBuild(t *testing.T) {
	b := strtab.NewBuilder()
	a := grffmt.ExtendedString(0xD000)
	target := grffmt.ExtendedString(0xD001)
	c := grffmt.FeatureString(0x00, 4)

	record(t, b, 0x7F, a, "See \x81\x01\xD0")
	record(t, b, 0x82, a, "Siehe \x81\x01\xD0")
	record(t, b, 0x7F, target, "target")
	if err := b.Name(target, "STR_TARGET"); err != nil {
		t.Fatal(err)
	}
	record(t, b, 0x7F, c, "\x81\x34\x12 and \x81\x00\xD0")
	tab := b.Finalize()

	g := Build(tab)
	if n := countEdges(g, "STR_GENERIC_D000", "STR_TARGET"); n != 1 {
		t.Errorf("edges a->target = %d, want 1", n)
	}
	if n := countEdges(g, "STR_TRAIN_4", "0x1234"); n != 1 {
		t.Errorf("edges c->0x1234 = %d, want 1", n)
	}
	if n := countEdges(g, "STR_TRAIN_4", "STR_GENERIC_D000"); n != 1 {
		t.Errorf("edges c->a = %d, want 1", n)
	}
	if len(g.Edges) != 3 {
		t.Errorf("edges = %+v", g.Edges)
	}

	seen := make(map[string]int)
	for _, n := range g.Nodes {
		seen[n]++
	}
	for _, want := range []string{"STR_GENERIC_D000", "STR_TARGET", "STR_TRAIN_4", "0x1234"} {
		if seen[want] != 1 {
			t.Errorf("node %s seen %d times", want, seen[want])
		}
	}

	dot := DOT(g, "refs")
	for _, want := range []string{"STR_TARGET", "0x1234"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
}

func TestBuildNoRefs(t *testing.T) {
	b := strtab.NewBuilder()
	record(t, b, 0x7F, grffmt.FeatureString(1, 0), "plain")
	g := Build(b.Finalize())
	if len(g.Nodes) != 1 || len(g.Edges) != 0 {
		t.Errorf("graph = %+v", g)
	}
}
