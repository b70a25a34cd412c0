// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citation-graph pipeline:
// paper records, graph entities and triples, the persisted graph document,
// and stage configuration.
package types

// Relation labels emitted by the pipeline. LLM extraction may emit other,
// free-form labels; those pass through unchanged.
const (
	RelCites         = "cites"
	RelAuthorOf      = "author_of"
	RelProposedModel = "proposed_model"
	RelBaselineModel = "baseline_model"
	RelEvaluatedOn   = "evaluated_on"
	RelUsesMetric    = "uses_metric"
)

// Raw entity types assigned by the builder before taxonomy normalization.
const (
	RawTypePaper      = "AIPaper"
	RawTypeResearcher = "Researcher"
)

// Entity is a named node in the knowledge graph.
type Entity struct {
	// Name is the trimmed display name. It is the de-duplication key.
	Name string `json:"name" yaml:"name"`

	// Type is a label from the type taxonomy.
	Type string `json:"type" yaml:"type"`

	// ArxivID is set for paper entities that have one.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
}

// Triple is a directed, labeled edge between two entity names. A triple may
// reference a name that is not in the entity list.
type Triple struct {
	Head     string `json:"head" yaml:"head"`
	Relation string `json:"relation" yaml:"relation"`
	Tail     string `json:"tail" yaml:"tail"`
}

// KnowledgeGraph is the entity and triple collection of a GraphDocument.
type KnowledgeGraph struct {
	Entities []Entity `json:"entities" yaml:"entities"`
	Triples  []Triple `json:"triples" yaml:"triples"`
}

// RelatedCounts records how many direct references and citations of the
// seed paper the graph holds.
type RelatedCounts struct {
	References int `json:"references" yaml:"references"`
	Citations  int `json:"citations" yaml:"citations"`
}

// GraphDocument is the persisted unit produced by one build. TopN is set by
// one-shot builds; TopK and Depth by recursive builds.
type GraphDocument struct {
	PaperMetadata      Paper          `json:"paper_metadata" yaml:"paper_metadata"`
	RelatedPapersCount RelatedCounts  `json:"related_papers_count" yaml:"related_papers_count"`
	RelatedPapers      []Paper        `json:"related_papers" yaml:"related_papers"`
	TopN               *int           `json:"top_n,omitempty" yaml:"top_n,omitempty"`
	TopK               *int           `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Depth              *int           `json:"depth,omitempty" yaml:"depth,omitempty"`
	KnowledgeGraph     KnowledgeGraph `json:"knowledge_graph" yaml:"knowledge_graph"`
}
