// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"strings"

	"github.com/pdiddy/citation-graph/internal/extract"
	"github.com/pdiddy/citation-graph/internal/taxonomy"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// assembler accumulates the entity and triple collections of one build.
// Entity names are unique by trimmed string and the first write wins.
type assembler struct {
	tax      *taxonomy.Taxonomy
	entities []types.Entity
	seen     map[string]bool
	triples  []types.Triple
}

func newAssembler(tax *taxonomy.Taxonomy) *assembler {
	return &assembler{tax: tax, seen: make(map[string]bool)}
}

// addEntity records name with the normalized rawType unless the trimmed
// name is blank or already present. It reports whether it was added.
func (a *assembler) addEntity(name, rawType, arxivID string) bool {
	name = strings.TrimSpace(name)
	if name == "" || a.seen[name] {
		return false
	}
	a.seen[name] = true
	a.entities = append(a.entities, types.Entity{
		Name:    name,
		Type:    a.tax.Normalize(rawType),
		ArxivID: arxivID,
	})
	return true
}

// addTriple records a triple with trimmed endpoints. Endpoints need not be
// known entities.
func (a *assembler) addTriple(head, relation, tail string) {
	head, tail = strings.TrimSpace(head), strings.TrimSpace(tail)
	if head == "" || tail == "" {
		return
	}
	a.triples = append(a.triples, types.Triple{Head: head, Relation: relation, Tail: tail})
}

// addPapers emits paper entities, then author entities in paper order, then
// one author_of edge per author per paper.
func (a *assembler) addPapers(papers []*types.Paper) {
	for _, p := range papers {
		a.addEntity(p.Title, types.RawTypePaper, p.ArxivID)
	}
	for _, p := range papers {
		for _, author := range p.Authors {
			a.addEntity(author, types.RawTypeResearcher, "")
		}
	}
	for _, p := range papers {
		for _, author := range p.Authors {
			a.addTriple(author, types.RelAuthorOf, p.Title)
		}
	}
}

// mergeExtraction adds one paper's LLM output. Triple endpoints that name an
// entity id from the same reply are resolved to that entity's name.
func (a *assembler) mergeExtraction(r extract.Result) {
	idToName := make(map[string]string)
	for _, e := range r.Entities {
		a.addEntity(e.Name, e.Type, "")
		if e.ID != "" {
			idToName[e.ID] = e.Name
		}
		idToName[e.Name] = e.Name
	}
	for _, t := range r.Triples {
		head, tail := t.Head, t.Tail
		if n, ok := idToName[head]; ok {
			head = n
		}
		if n, ok := idToName[tail]; ok {
			tail = n
		}
		a.addTriple(head, t.Relation, tail)
	}
}

func (a *assembler) graph() types.KnowledgeGraph {
	kg := types.KnowledgeGraph{Entities: a.entities, Triples: a.triples}
	if kg.Entities == nil {
		kg.Entities = []types.Entity{}
	}
	if kg.Triples == nil {
		kg.Triples = []types.Triple{}
	}
	return kg
}
