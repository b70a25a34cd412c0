// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-graph/internal/taxonomy"
	"github.com/pdiddy/citation-graph/pkg/types"
)

func sampleDoc() *types.GraphDocument {
	return &types.GraphDocument{
		PaperMetadata: types.Paper{
			ArxivID:       "1706.03762",
			Title:         "Attention Is All You Need",
			Authors:       []string{"A1", "A2", "A3", "A4", "A5"},
			PublishedDate: "2017-06-12",
		},
		RelatedPapersCount: types.RelatedCounts{References: 1, Citations: 2},
		KnowledgeGraph: types.KnowledgeGraph{
			Entities: []types.Entity{
				{Name: "Attention Is All You Need", Type: "Thesis"},
				{Name: "A1", Type: "Person"},
				{Name: " A1 ", Type: "Thesis"},
				{Name: "Transformer", Type: "SoftwareApplication"},
				{Name: "  ", Type: "Person"},
			},
			Triples: []types.Triple{
				{Head: "A1", Relation: types.RelAuthorOf, Tail: "Attention Is All You Need"},
				{Head: " Attention Is All You Need ", Relation: types.RelProposedModel, Tail: "Transformer"},
				{Head: "Attention Is All You Need", Relation: types.RelCites, Tail: "Missing Paper"},
			},
		},
	}
}

func TestBuildView_NodesDeduplicatedByTrimmedName(t *testing.T) {
	view := BuildView(sampleDoc(), taxonomy.Builtin())

	require.Len(t, view.Nodes, 3)
	assert.Equal(t, Node{Name: "Attention Is All You Need", Category: 0, SymbolSize: 50, Draggable: true, Value: "Thesis"}, view.Nodes[0])
	assert.Equal(t, Node{Name: "A1", Category: 1, SymbolSize: 25, Draggable: true, Value: "Person"}, view.Nodes[1])
	assert.Equal(t, Node{Name: "Transformer", Category: 2, SymbolSize: 25, Draggable: true, Value: "SoftwareApplication"}, view.Nodes[2])
	assert.Equal(t, []string{"Thesis", "Person", "SoftwareApplication"}, view.CategoryNames())
	assert.Equal(t, 1, view.PaperNodes)
	assert.Equal(t, 1, view.PersonNodes)
}

func TestBuildView_DropsDanglingLinks(t *testing.T) {
	view := BuildView(sampleDoc(), nil)

	assert.Equal(t, []Link{
		{Source: "A1", Target: "Attention Is All You Need", Value: types.RelAuthorOf},
		{Source: "Attention Is All You Need", Target: "Transformer", Value: types.RelProposedModel},
	}, view.Links)
}

func TestBuildView_NormalizesRawTypes(t *testing.T) {
	doc := &types.GraphDocument{KnowledgeGraph: types.KnowledgeGraph{
		Entities: []types.Entity{
			{Name: "P", Type: types.RawTypePaper},
			{Name: "R", Type: types.RawTypeResearcher},
			{Name: "X", Type: "Gadget"},
		},
	}}
	view := BuildView(doc, taxonomy.Builtin())

	require.Len(t, view.Nodes, 3)
	assert.Equal(t, "Thesis", view.Nodes[0].Value)
	assert.Equal(t, "Person", view.Nodes[1].Value)
	assert.Equal(t, "CreativeWork", view.Nodes[2].Value)
	assert.Equal(t, 50, view.Nodes[2].SymbolSize)
	assert.Empty(t, view.Links)
}

func TestHTML_EmbedsChartData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleDoc(), nil, Options{}))
	page := buf.String()

	assert.Contains(t, page, `<script src="`+CDNScript+`">`)
	assert.Contains(t, page, "<title>Citation Graph - Attention Is All You Need</title>")
	assert.Contains(t, page, "A1, A2, A3, A4</p>")
	assert.NotContains(t, page, "A5")
	assert.Contains(t, page, `"symbolSize":50`)
	assert.Contains(t, page, `"source":"A1"`)
	assert.NotContains(t, page, "Missing Paper")
}

func TestHTML_EscapesMarkup(t *testing.T) {
	doc := sampleDoc()
	doc.PaperMetadata.Title = "<script>alert(1)</script>"
	doc.KnowledgeGraph.Entities = append(doc.KnowledgeGraph.Entities, types.Entity{Name: "</script><b>", Type: "Person"})

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, doc, nil, Options{ScriptSrc: LocalScript}))
	page := buf.String()

	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.NotContains(t, page, "</script><b>")
	assert.Contains(t, page, `<script src="echarts.min.js">`)
}

func TestWriteHTML_PrefersLocalBundle(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "graph.html")

	require.NoError(t, WriteHTML(out, sampleDoc(), nil))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), CDNScript)

	require.NoError(t, os.WriteFile(filepath.Join(dir, LocalScript), []byte("//"), 0o644))
	require.NoError(t, WriteHTML(out, sampleDoc(), nil))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `<script src="echarts.min.js">`))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abc", shorten("abc", 5))
	assert.Equal(t, "注意力", shorten("注意力机制", 3))
}
