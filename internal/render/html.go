// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/citation-graph/internal/taxonomy"
	"github.com/pdiddy/citation-graph/pkg/types"
)

// CDNScript is the ECharts bundle used when no local copy sits next to the
// output page.
const CDNScript = "https://unpkg.com/echarts@5.4.3/dist/echarts.min.js"

// LocalScript is the file name of a local ECharts bundle.
const LocalScript = "echarts.min.js"

const (
	maxTitleRunes = 50
	maxAuthors    = 4
)

// Options control page generation.
type Options struct {
	// ScriptSrc is the ECharts bundle URL. Empty uses CDNScript.
	ScriptSrc string
}

type pageData struct {
	ScriptSrc  string
	ShortTitle string
	Paper      types.Paper
	Authors    []string
	Counts     types.RelatedCounts
	Triples    int
	View       View
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Citation Graph - {{.ShortTitle}}</title>
    <script src="{{.ScriptSrc}}"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        html, body { height: 100%; }
        body { background: #f5f5f5; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; }
        #main { width: 100%; height: 100%; min-height: 400px; }
        .panel {
            position: absolute; background: white; border-radius: 8px;
            box-shadow: 0 2px 12px rgba(0,0,0,0.1); padding: 20px; font-size: 14px; z-index: 999; max-width: 420px;
        }
        .header { top: 20px; left: 20px; }
        .stats { top: 20px; right: 20px; }
        .header h2 { margin-bottom: 10px; color: #333; }
        .header p { color: #666; margin: 5px 0; line-height: 1.5; }
        .stat-item { margin: 8px 0; }
        .stat-label { font-weight: bold; color: #333; }
        .stat-value { color: #0066cc; }
    </style>
</head>
<body>
    <div id="main"></div>
    <div class="panel header">
        <h2>{{.Paper.Title}}</h2>
        <p><strong>Authors:</strong> {{range $i, $a := .Authors}}{{if $i}}, {{end}}{{$a}}{{end}}</p>
        <p><strong>Published:</strong> {{.Paper.PublishedDate}}</p>
        <p><strong>arXiv ID:</strong> <code>{{.Paper.ArxivID}}</code></p>
    </div>
    <div class="panel stats">
        <div class="stat-item"><span class="stat-label">Papers:</span> <span class="stat-value">{{.View.PaperNodes}}</span></div>
        <div class="stat-item"><span class="stat-label">Researchers:</span> <span class="stat-value">{{.View.PersonNodes}}</span></div>
        <div class="stat-item"><span class="stat-label">Relations:</span> <span class="stat-value">{{.Triples}}</span></div>
        <div class="stat-item"><span class="stat-label">References:</span> <span class="stat-value">{{.Counts.References}}</span></div>
        <div class="stat-item"><span class="stat-label">Citations:</span> <span class="stat-value">{{.Counts.Citations}}</span></div>
    </div>
    <script type="text/javascript">
        function initChart() {
            if (typeof echarts === 'undefined') {
                document.getElementById('main').innerHTML = '<p style="padding:20px">ECharts could not be loaded.</p>';
                return;
            }
            var chart = echarts.init(document.getElementById('main'));
            chart.setOption({
                tooltip: { formatter: function(params) {
                    if (params.dataType === 'node') return params.name + ' (' + (params.value || '') + ')';
                    return params.data.source + ' ' + (params.value || '') + ' ' + params.data.target;
                }},
                legend: { data: {{.View.CategoryNames}} },
                series: [{
                    type: 'graph', layout: 'force',
                    data: {{.View.Nodes}},
                    links: {{.View.Links}},
                    categories: {{.View.Categories}},
                    roam: true,
                    label: { show: true, position: 'right', formatter: '{b}' },
                    edgeLabel: { fontSize: 11, formatter: '{c}' },
                    edgeSymbol: ['none', 'arrow'], edgeSymbolSize: 10,
                    lineStyle: { color: 'source', curveness: 0.3 },
                    force: { repulsion: 1500, edgeLength: 250 },
                    emphasis: { focus: 'adjacency', lineStyle: { width: 4 } }
                }]
            });
            setTimeout(function() { chart.resize(); }, 100);
            window.addEventListener('resize', function() { chart.resize(); });
        }
        if (document.readyState === 'loading') {
            document.addEventListener('DOMContentLoaded', initChart);
        } else {
            initChart();
        }
    </script>
</body>
</html>
`))

// HTML writes the chart page for doc to w.
func HTML(w io.Writer, doc *types.GraphDocument, tax *taxonomy.Taxonomy, opts Options) error {
	src := opts.ScriptSrc
	if src == "" {
		src = CDNScript
	}
	authors := doc.PaperMetadata.Authors
	if len(authors) > maxAuthors {
		authors = authors[:maxAuthors]
	}
	data := pageData{
		ScriptSrc:  src,
		ShortTitle: shorten(doc.PaperMetadata.Title, maxTitleRunes),
		Paper:      doc.PaperMetadata,
		Authors:    authors,
		Counts:     doc.RelatedPapersCount,
		Triples:    len(doc.KnowledgeGraph.Triples),
		View:       BuildView(doc, tax),
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

// WriteHTML renders doc to path. A local echarts.min.js in the same
// directory is preferred over the CDN bundle.
func WriteHTML(path string, doc *types.GraphDocument, tax *taxonomy.Taxonomy) error {
	var opts Options
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), LocalScript)); err == nil {
		opts.ScriptSrc = LocalScript
	}

	var buf bytes.Buffer
	if err := HTML(&buf, doc, tax, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
