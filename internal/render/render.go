// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a GraphDocument into an ECharts force-directed graph
// view and writes it as a self-contained HTML page.
package render

import (
	"strings"

	"github.com/pdiddy/citation-graph/internal/taxonomy"
	"github.com/pdiddy/citation-graph/pkg/types"
)

const (
	largeSymbol = 50
	smallSymbol = 25
)

// largeTypes are drawn with the large symbol.
var largeTypes = map[string]bool{
	"Thesis":       true,
	"Article":      true,
	"CreativeWork": true,
}

// Category is one legend entry.
type Category struct {
	Name string `json:"name"`
}

// Node is one graph node. Category indexes View.Categories; Value carries
// the normalized type for the tooltip.
type Node struct {
	Name       string `json:"name"`
	Category   int    `json:"category"`
	SymbolSize int    `json:"symbolSize"`
	Draggable  bool   `json:"draggable"`
	Value      string `json:"value"`
}

// Link is one directed edge labeled with its relation.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  string `json:"value"`
}

// View is the data handed to the chart.
type View struct {
	Categories []Category
	Nodes      []Node
	Links      []Link

	// PaperNodes and PersonNodes count nodes of the paper and researcher
	// types after normalization.
	PaperNodes  int
	PersonNodes int
}

// CategoryNames returns the legend labels in category order.
func (v View) CategoryNames() []string {
	names := make([]string, len(v.Categories))
	for i, c := range v.Categories {
		names[i] = c.Name
	}
	return names
}

// BuildView derives the chart data from doc. Entities are de-duplicated by
// trimmed name, first occurrence wins. Triples whose endpoints are not both
// nodes are dropped. A nil tax uses the built-in taxonomy.
func BuildView(doc *types.GraphDocument, tax *taxonomy.Taxonomy) View {
	if tax == nil {
		tax = taxonomy.Builtin()
	}
	entities := doc.KnowledgeGraph.Entities

	raw := make([]string, len(entities))
	for i, e := range entities {
		raw[i] = e.Type
	}
	view := View{
		Categories: []Category{},
		Nodes:      []Node{},
		Links:      []Link{},
	}
	index := make(map[string]int)
	for i, name := range tax.CategoriesFor(raw) {
		view.Categories = append(view.Categories, Category{Name: name})
		index[name] = i
	}

	paperType := tax.Normalize(types.RawTypePaper)
	personType := tax.Normalize(types.RawTypeResearcher)

	names := make(map[string]bool)
	for _, e := range entities {
		name := strings.TrimSpace(e.Name)
		if name == "" || names[name] {
			continue
		}
		names[name] = true

		typ := tax.Normalize(e.Type)
		size := smallSymbol
		if largeTypes[typ] {
			size = largeSymbol
		}
		view.Nodes = append(view.Nodes, Node{
			Name:       name,
			Category:   index[typ],
			SymbolSize: size,
			Draggable:  true,
			Value:      typ,
		})
		switch typ {
		case paperType:
			view.PaperNodes++
		case personType:
			view.PersonNodes++
		}
	}

	for _, t := range doc.KnowledgeGraph.Triples {
		head := strings.TrimSpace(t.Head)
		tail := strings.TrimSpace(t.Tail)
		if !names[head] || !names[tail] {
			continue
		}
		view.Links = append(view.Links, Link{Source: head, Target: tail, Value: t.Relation})
	}
	return view
}
