// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Paper holds the metadata for one paper in a citation graph. Records are
// created partially by the citation fetcher and completed in place by the
// metadata completion stage.
type Paper struct {
	// ArxivID is the primary identifier (e.g. "1706.03762"). Empty when the
	// paper is not on arXiv.
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// S2ID is the Semantic Scholar paperId, used as the fallback identifier.
	S2ID string `json:"paper_id_s2,omitempty" yaml:"paper_id_s2,omitempty"`

	// Title is the paper title. It is the join key across sources.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublishedDate is "YYYY-MM-DD" from arXiv, or a bare year from the
	// fallback source.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// PDFURL links to the full text. Empty for fallback-only records.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// CitationCount is the number of citing papers, when the source reports it.
	CitationCount *int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Year is the publication year, when the source reports it.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`
}

// HasMetadata reports whether the abstract and the author list are both present.
func (p *Paper) HasMetadata() bool {
	return p.Abstract != "" && len(p.Authors) > 0
}

// Citations returns the citation count, or 0 when unknown.
func (p *Paper) Citations() int {
	if p.CitationCount == nil {
		return 0
	}
	return *p.CitationCount
}

// Key returns the trimmed title used to join records across sources.
func (p *Paper) Key() string {
	return strings.TrimSpace(p.Title)
}

// MergeFrom fills empty fields of p from src. Fields already set on p win.
func (p *Paper) MergeFrom(src *Paper) {
	if p.ArxivID == "" {
		p.ArxivID = src.ArxivID
	}
	if p.S2ID == "" {
		p.S2ID = src.S2ID
	}
	if p.Title == "" {
		p.Title = src.Title
	}
	if p.Abstract == "" {
		p.Abstract = src.Abstract
	}
	if len(p.Authors) == 0 && len(src.Authors) > 0 {
		p.Authors = src.Authors
	}
	if p.PublishedDate == "" {
		p.PublishedDate = src.PublishedDate
	}
	if p.PDFURL == "" {
		p.PDFURL = src.PDFURL
	}
	if p.CitationCount == nil && src.CitationCount != nil {
		p.CitationCount = src.CitationCount
	}
	if p.Year == nil && src.Year != nil {
		p.Year = src.Year
	}
}

// Related holds the ranked neighbours of a paper in the citation network.
type Related struct {
	// References are papers the source paper cites.
	References []Paper `json:"references" yaml:"references"`

	// Citations are papers that cite the source paper.
	Citations []Paper `json:"citations" yaml:"citations"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
