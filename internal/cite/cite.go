// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite exports the papers of a GraphDocument as a CSL (Citation
// Style Language) bibliography, consumable by Pandoc and reference managers.
package cite

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-graph/pkg/types"
)

// Item is one CSL-JSON/CSL-YAML bibliographic entry.
type Item struct {
	ID       string `json:"id" yaml:"id"`
	Type     string `json:"type" yaml:"type"`
	Title    string `json:"title" yaml:"title"`
	Author   []Name `json:"author,omitempty" yaml:"author,omitempty"`
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Issued   *Date  `json:"issued,omitempty" yaml:"issued,omitempty"`
	URL      string `json:"URL,omitempty" yaml:"URL,omitempty"`
	Number   string `json:"number,omitempty" yaml:"number,omitempty"`
	Archive  string `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// Name is a person's name in CSL form.
type Name struct {
	Family  string `json:"family,omitempty" yaml:"family,omitempty"`
	Given   string `json:"given,omitempty" yaml:"given,omitempty"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// Date is a CSL date using date-parts.
type Date struct {
	DateParts [][]int `json:"date-parts" yaml:"date-parts"`
}

// Items converts the seed and related papers of doc, seed first. Papers
// sharing an id are listed once.
func Items(doc *types.GraphDocument) []Item {
	papers := append([]types.Paper{doc.PaperMetadata}, doc.RelatedPapers...)
	items := make([]Item, 0, len(papers))
	seen := make(map[string]bool)
	for _, p := range papers {
		item := ToItem(p)
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items
}

// ToItem converts one paper. arXiv papers become preprints keyed by their
// arXiv id; others are keyed by Semantic Scholar id, or by title.
func ToItem(p types.Paper) Item {
	item := Item{
		Type:     "article",
		Title:    strings.TrimSpace(p.Title),
		Abstract: p.Abstract,
		URL:      p.PDFURL,
		Issued:   issued(p),
	}
	switch {
	case p.ArxivID != "":
		item.ID = "arXiv:" + p.ArxivID
		item.Number = p.ArxivID
		item.Archive = "arXiv"
	case p.S2ID != "":
		item.ID = "s2:" + p.S2ID
	default:
		item.ID = item.Title
	}
	for _, a := range p.Authors {
		if n := ParseName(a); n != (Name{}) {
			item.Author = append(item.Author, n)
		}
	}
	return item
}

// issued reads "YYYY-MM-DD" or a bare year from PublishedDate, then falls
// back to Year.
func issued(p types.Paper) *Date {
	var parts []int
	for _, s := range strings.SplitN(strings.TrimSpace(p.PublishedDate), "-", 3) {
		n, err := strconv.Atoi(s)
		if err != nil {
			parts = nil
			break
		}
		parts = append(parts, n)
	}
	if len(parts) == 0 && p.Year != nil && *p.Year > 0 {
		parts = []int{*p.Year}
	}
	if len(parts) == 0 {
		return nil
	}
	return &Date{DateParts: [][]int{parts}}
}

// ParseName splits a full name on the last space: everything before is the
// given name, the last token the family name. Single-token names use the
// literal field.
func ParseName(name string) Name {
	name = strings.TrimSpace(name)
	if name == "" {
		return Name{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return Name{Literal: name}
	}
	return Name{
		Given:  strings.TrimSpace(name[:idx]),
		Family: name[idx+1:],
	}
}

// WriteYAML writes the bibliography of doc as CSL-YAML.
func WriteYAML(w io.Writer, doc *types.GraphDocument) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(Items(doc)); err != nil {
		return fmt.Errorf("encoding CSL-YAML: %w", err)
	}
	return nil
}

// WriteJSON writes the bibliography of doc as CSL-JSON.
func WriteJSON(w io.Writer, doc *types.GraphDocument) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Items(doc)); err != nil {
		return fmt.Errorf("encoding CSL-JSON: %w", err)
	}
	return nil
}
