// Package refgraph builds the graph of strings that embed other strings.
package refgraph

import (
	"fmt"
	"slices"

	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/strtab"
)

// Key returns the node name of id: its string name when it has one, else the
// symbolic id.
func Key(tab *strtab.Table, id grffmt.StringID) string {
	if n, ok := tab.Name(id); ok {
		return n
	}
	return id.String()
}

// Build constructs a lattice.Graph from tab. Every string becomes a node and
// every inline {STRING} reference, in any language, an edge. References to
// ids the GRF does not define get a hex node.
func Build(tab *strtab.Table) *lattice.Graph {
	g := &lattice.Graph{}
	seen := make(map[string]bool)
	node := func(name string) {
		if !seen[name] {
			seen[name] = true
			g.Nodes = append(g.Nodes, name)
		}
	}
	for _, id := range tab.IDs() {
		caller := Key(tab, id)
		node(caller)
		tr := tab.Translations(id)
		langs := make([]grffmt.LangID, 0, len(tr))
		for lid := range tr {
			langs = append(langs, lid)
		}
		slices.Sort(langs)
		for _, lid := range langs {
			for _, ref := range tr[lid].Decoded.StringRefs() {
				callee := target(tab, ref)
				node(callee)
				g.Edges = append(g.Edges, lattice.Edge{Caller: caller, Callee: callee})
			}
		}
	}
	g.Dedup()
	return g
}

func target(tab *strtab.Table, ref uint16) string {
	id := grffmt.ExtendedString(uint32(ref))
	if len(tab.Translations(id)) > 0 {
		return Key(tab, id)
	}
	if _, ok := tab.Name(id); ok {
		return Key(tab, id)
	}
	return fmt.Sprintf("0x%04X", ref)
}

// DOT renders g in Graphviz syntax.
func DOT(g *lattice.Graph, title string) string { return render.DOT(g, title) }
