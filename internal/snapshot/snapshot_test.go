// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-graph/pkg/types"
)

func sampleDoc() *types.GraphDocument {
	return &types.GraphDocument{
		PaperMetadata: types.Paper{
			ArxivID:       "1706.03762",
			Title:         "Attention Is All You Need",
			Abstract:      "The dominant sequence <transduction> models & more.",
			Authors:       []string{"Ashish Vaswani", "Noam Shazeer"},
			PublishedDate: "2017-06-12",
			PDFURL:        "http://arxiv.org/pdf/1706.03762v7",
			Year:          types.IntPtr(2017),
		},
		RelatedPapersCount: types.RelatedCounts{References: 1, Citations: 1},
		RelatedPapers: []types.Paper{
			{ArxivID: "1409.0473", Title: "Neural Machine Translation", Authors: []string{"Dzmitry Bahdanau"}, CitationCount: types.IntPtr(20000)},
			{S2ID: "abc123", Title: "BERT", Authors: []string{}, PublishedDate: "2019"},
		},
		TopN: types.IntPtr(2),
		KnowledgeGraph: types.KnowledgeGraph{
			Entities: []types.Entity{
				{Name: "Attention Is All You Need", Type: "Thesis", ArxivID: "1706.03762"},
				{Name: "Ashish Vaswani", Type: "Person"},
			},
			Triples: []types.Triple{
				{Head: "Ashish Vaswani", Relation: types.RelAuthorOf, Tail: "Attention Is All You Need"},
				{Head: "Attention Is All You Need", Relation: types.RelCites, Tail: "Neural Machine Translation"},
			},
		},
	}
}

func TestBaseNames(t *testing.T) {
	assert.Equal(t, "top_citations_kg_1706.03762", TopBaseName("1706.03762"))
	assert.Equal(t, "recursive_kg_1706.03762_k3_d2", RecursiveBaseName("1706.03762", 3, 2))
	assert.Equal(t, "top_citations_kg_hep-th_9901001", TopBaseName("hep-th/9901001"))
}

func TestWriteJSON_IndentedWithoutHTMLEscaping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, WriteJSON(path, sampleDoc()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n  \"paper_metadata\": {"))
	assert.Contains(t, text, "<transduction> models & more")
	assert.Contains(t, text, `"related_papers_count": {`)
	assert.Contains(t, text, `"top_n": 2`)
	assert.NotContains(t, text, `"top_k"`)
	assert.NotContains(t, text, `"depth"`)
}

func TestLoad_RoundTripsEveryFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc := sampleDoc()

	paths, err := Write(ctx, dir, TopBaseName("1706.03762"),
		[]types.SnapshotFormat{types.FormatJSON, types.FormatYAML, types.FormatSQLite}, doc)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "top_citations_kg_1706.03762.json"), paths[0])
	assert.Equal(t, filepath.Join(dir, "top_citations_kg_1706.03762.yaml"), paths[1])
	assert.Equal(t, filepath.Join(dir, "top_citations_kg_1706.03762.db"), paths[2])

	for _, p := range paths {
		t.Run(filepath.Ext(p), func(t *testing.T) {
			got, err := Load(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, doc, got)
		})
	}
}

func TestWrite_DefaultsToJSON(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(context.Background(), dir, "x", nil, sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "x.json")}, paths)
}

func TestWrite_UnknownFormat(t *testing.T) {
	_, err := Write(context.Background(), t.TempDir(), "x", []types.SnapshotFormat{"toml"}, sampleDoc())
	assert.ErrorContains(t, err, "unknown snapshot format")
}

func TestWrite_ReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	formats := []types.SnapshotFormat{types.FormatJSON, types.FormatSQLite}

	_, err := Write(ctx, dir, "kg", formats, sampleDoc())
	require.NoError(t, err)

	smaller := sampleDoc()
	smaller.KnowledgeGraph.Triples = smaller.KnowledgeGraph.Triples[:1]
	_, err = Write(ctx, dir, "kg", formats, smaller)
	require.NoError(t, err)

	for _, ext := range []string{".json", ".db"} {
		got, err := Load(ctx, filepath.Join(dir, "kg"+ext))
		require.NoError(t, err)
		assert.Len(t, got.KnowledgeGraph.Triples, 1, ext)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestLoadSQLite_KeepsRecursiveParameters(t *testing.T) {
	ctx := context.Background()
	doc := sampleDoc()
	doc.TopN = nil
	doc.TopK = types.IntPtr(3)
	doc.Depth = types.IntPtr(2)

	path := filepath.Join(t.TempDir(), RecursiveBaseName("1706.03762", 3, 2)+".db")
	require.NoError(t, WriteSQLite(ctx, path, doc))

	got, err := LoadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Nil(t, got.TopN)
	require.NotNil(t, got.TopK)
	require.NotNil(t, got.Depth)
	assert.Equal(t, 3, *got.TopK)
	assert.Equal(t, 2, *got.Depth)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Load(ctx, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = Load(ctx, filepath.Join(dir, "missing.db"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(ctx, bad)
	assert.ErrorContains(t, err, "parsing JSON")
}

func largeDoc(n int) *types.GraphDocument {
	doc := sampleDoc()
	doc.KnowledgeGraph.Entities = nil
	doc.KnowledgeGraph.Triples = nil
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Concept %04d with a reasonably long descriptive name", i)
		doc.KnowledgeGraph.Entities = append(doc.KnowledgeGraph.Entities, types.Entity{Name: name, Type: "Concept"})
		doc.KnowledgeGraph.Triples = append(doc.KnowledgeGraph.Triples,
			types.Triple{Head: doc.PaperMetadata.Title, Relation: "uses", Tail: name})
	}
	return doc
}

func TestLoadSQLite_ReadsEveryRow(t *testing.T) {
	ctx := context.Background()
	doc := largeDoc(3000)
	path := filepath.Join(t.TempDir(), "large.db")
	require.NoError(t, WriteSQLite(ctx, path, doc))

	got, err := LoadSQLite(ctx, path)
	require.NoError(t, err)
	require.Len(t, got.KnowledgeGraph.Entities, 3000)
	require.Len(t, got.KnowledgeGraph.Triples, 3000)
	assert.Equal(t, doc.KnowledgeGraph.Entities[2999], got.KnowledgeGraph.Entities[2999])
	assert.Equal(t, doc.KnowledgeGraph.Triples[2999], got.KnowledgeGraph.Triples[2999])
}

func TestLoadSQLite_TruncatedFileFails(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "truncated.db")
	require.NoError(t, WriteSQLite(ctx, path, largeDoc(3000)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()/2))

	got, err := LoadSQLite(ctx, path)
	assert.Error(t, err, "a damaged file must not load as a partial graph")
	assert.Nil(t, got)
}
